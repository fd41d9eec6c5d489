// Package assistant holds the product-aware pieces of the shopping chat:
// keyword extraction, catalog matching and the catalog context block that is
// injected into the model prompt.
package assistant

import (
	"strings"
	"unicode/utf8"
)

const minKeywordLength = 3

var punctuation = strings.NewReplacer(
	"¿", " ", "?", " ", "¡", " ", "!", " ",
	".", " ", ",", " ", ";", " ", ":", " ",
	"\"", " ", "'", " ", "(", " ", ")", " ",
	"[", " ", "]", " ", "{", " ", "}", " ",
	"«", " ", "»", " ", "“", " ", "”", " ",
)

var stopWords = toSet(
	// articles, pronouns, prepositions, conjunctions
	"el", "la", "los", "las", "un", "una", "unos", "unas", "lo", "al", "del",
	"de", "en", "con", "por", "para", "sin", "sobre", "entre", "hasta", "desde",
	"que", "qué", "cual", "cuál", "cuales", "cuáles", "como", "cómo", "cuanto",
	"cuánto", "cuanta", "cuánta", "donde", "dónde", "cuando", "cuándo",
	"y", "o", "u", "pero", "mas", "más", "muy", "también", "tambien",
	"yo", "tu", "tú", "mi", "mis", "me", "te", "se", "nos", "usted", "ustedes",
	"este", "esta", "estos", "estas", "ese", "esa", "esos", "esas", "algo", "alguna", "alguno",
	"algunos", "algunas", "otro", "otra", "otros", "otras",
	// filler verbs and courtesy words
	"tienes", "tienen", "tiene", "tengo", "hay", "busco", "buscando", "quiero",
	"quisiera", "necesito", "gustaría", "gustaria", "puedes", "puede", "podrías",
	"podrias", "mostrar", "muestra", "muéstrame", "muestrame", "ver", "venden",
	"vendes", "estoy", "están", "estan", "está", "esta", "son", "ser", "hola",
	"gracias", "favor", "buenas", "buenos", "días", "dias", "tal", "bien",
	// english
	"the", "and", "for", "with", "you", "have", "has", "any", "some", "want",
	"need", "looking", "show", "please", "are", "can", "what", "which", "hello",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// ExtractKeywords returns the distinct lowercase search terms in text. An
// empty result means the text is not a product query.
func ExtractKeywords(text string) []string {
	cleaned := punctuation.Replace(strings.ToLower(text))

	var keywords []string
	seen := make(map[string]struct{})
	for _, token := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(token) < minKeywordLength {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}

// Variants returns the keyword followed by its naive singular and plural
// forms, without duplicates.
func Variants(keyword string) []string {
	out := []string{keyword}
	if singular := strings.TrimSuffix(keyword, "s"); singular != keyword && singular != "" {
		out = append(out, singular)
	}
	out = append(out, keyword+"s")
	return out
}

// TermGroups expands every keyword into its variant group.
func TermGroups(keywords []string) [][]string {
	groups := make([][]string, 0, len(keywords))
	for _, kw := range keywords {
		groups = append(groups, Variants(kw))
	}
	return groups
}
