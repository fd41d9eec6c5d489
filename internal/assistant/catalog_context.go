package assistant

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"tienda-api/internal/model"
)

const (
	DefaultContextMaxChars = 2000

	blockDelimiter = "---\n"

	// NoMatchesNotice replaces the catalog block when a product question found nothing.
	NoMatchesNotice = "No se encontraron productos que coincidan exactamente con la búsqueda en el catálogo, pero puedes sugerir alternativas de la tienda."
)

// FormatCatalogContext renders products as the text block quoted to the
// model. The result never exceeds maxChars characters and is cut between
// product blocks whenever possible.
func FormatCatalogContext(products []model.Product, productQuery bool, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultContextMaxChars
	}
	if len(products) == 0 {
		if productQuery {
			return NoMatchesNotice
		}
		return ""
	}

	var b strings.Builder
	for i, p := range products {
		block := formatProduct(p)
		if i > 0 {
			block = blockDelimiter + block
		}
		if utf8.RuneCountInString(b.String())+utf8.RuneCountInString(block) > maxChars {
			if i == 0 {
				return truncateRunes(block, maxChars)
			}
			break
		}
		b.WriteString(block)
	}
	return b.String()
}

func formatProduct(p model.Product) string {
	var b strings.Builder
	b.WriteString("Producto: ")
	b.WriteString(p.Name)
	b.WriteString("\nPrecio: $")
	b.WriteString(FormatPrice(p.Price))
	b.WriteString("\n")

	if len(p.Variants) > 0 {
		if colors := distinctColors(p.Variants); len(colors) > 0 {
			b.WriteString("Colores: ")
			b.WriteString(strings.Join(colors, ", "))
			b.WriteString("\n")
		}
		if sizes := distinctSizes(p.Variants); len(sizes) > 0 {
			b.WriteString("Tallas: ")
			b.WriteString(strings.Join(sizes, ", "))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func distinctColors(variants []model.ProductVariant) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range variants {
		color := strings.TrimSpace(v.Color)
		if color == "" {
			continue
		}
		if _, ok := seen[color]; ok {
			continue
		}
		seen[color] = struct{}{}
		out = append(out, color)
	}
	return out
}

func distinctSizes(variants []model.ProductVariant) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range variants {
		size := strings.TrimSpace(v.Size)
		if size == "" {
			continue
		}
		if _, ok := seen[size]; ok {
			continue
		}
		seen[size] = struct{}{}
		out = append(out, size)
	}
	sort.Strings(out)
	return out
}

// FormatPrice renders a price with two decimals, a comma as decimal mark and
// dots between thousands: 1234567.5 -> "1.234.567,50".
func FormatPrice(price float64) string {
	cents := int64(math.Round(math.Abs(price) * 100))
	whole := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	if price < 0 && cents > 0 {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
