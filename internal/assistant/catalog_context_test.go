package assistant

import (
	"strings"
	"testing"
	"unicode/utf8"

	"tienda-api/internal/model"
)

func TestFormatPrice(t *testing.T) {
	cases := map[float64]string{
		0:          "0,00",
		5:          "5,00",
		89990:      "89.990,00",
		1234.5:     "1.234,50",
		1234567.89: "1.234.567,89",
		999.999:    "1.000,00",
		-42.1:      "-42,10",
	}
	for in, want := range cases {
		if got := FormatPrice(in); got != want {
			t.Fatalf("FormatPrice(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatCatalogContextRendersVariants(t *testing.T) {
	products := []model.Product{
		{
			Name:  "Vestido Largo",
			Price: 89990,
			Variants: []model.ProductVariant{
				{Color: "Rojo", Size: "M"},
				{Color: "Negro", Size: "L"},
				{Color: "Rojo", Size: "S"},
				{Color: "Rojo", Size: "M"},
			},
		},
		{Name: "Cinturón", Price: 15000},
	}
	got := FormatCatalogContext(products, true, 2000)
	want := "Producto: Vestido Largo\nPrecio: $89.990,00\nColores: Rojo, Negro\nTallas: L, M, S\n" +
		"---\nProducto: Cinturón\nPrecio: $15.000,00\n"
	if got != want {
		t.Fatalf("unexpected context:\n%q\nwant\n%q", got, want)
	}
}

func TestFormatCatalogContextEmpty(t *testing.T) {
	if got := FormatCatalogContext(nil, true, 2000); got != NoMatchesNotice {
		t.Fatalf("expected fallback notice, got %q", got)
	}
	if got := FormatCatalogContext(nil, false, 2000); got != "" {
		t.Fatalf("expected empty context for non product query, got %q", got)
	}
}

func TestFormatCatalogContextRespectsBudget(t *testing.T) {
	long := strings.Repeat("á", 900)
	products := []model.Product{
		{Name: long, Price: 1},
		{Name: long, Price: 2},
		{Name: long, Price: 3},
	}
	got := FormatCatalogContext(products, true, 2000)
	if n := utf8.RuneCountInString(got); n > 2000 {
		t.Fatalf("context has %d characters", n)
	}
	if strings.Count(got, "Producto: ") != 2 {
		t.Fatalf("expected two whole blocks, got %q", got[:40])
	}
	if !strings.HasSuffix(got, "\n") {
		t.Fatalf("context should end at a block boundary")
	}

	single := FormatCatalogContext([]model.Product{{Name: strings.Repeat("x", 5000), Price: 1}}, true, 2000)
	if utf8.RuneCountInString(single) != 2000 {
		t.Fatalf("oversized single block should be cut to the budget, got %d", utf8.RuneCountInString(single))
	}
}
