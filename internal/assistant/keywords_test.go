package assistant

import (
	"sort"
	"testing"
)

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func equalSets(a, b []string) bool {
	a, b = sorted(a), sorted(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExtractKeywords(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"question with inverted marks", "¿Tienes camisas azules?", []string{"camisas", "azules"}},
		{"guest dress search", "Busco un vestido rojo", []string{"vestido", "rojo"}},
		{"duplicates collapse", "Jeans, jeans y más JEANS!", []string{"jeans"}},
		{"only stop words", "¿Qué tienes para mí?", nil},
		{"only short tokens", "ok sí no ya", nil},
		{"empty", "   ", nil},
		{"english", "Do you have any leather boots?", []string{"leather", "boots"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractKeywords(tc.in)
			if !equalSets(got, tc.want) {
				t.Fatalf("ExtractKeywords(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractKeywordsCountsRunesNotBytes(t *testing.T) {
	got := ExtractKeywords("ñu año")
	if !equalSets(got, []string{"año"}) {
		t.Fatalf("expected only the three-letter token, got %v", got)
	}
}

func TestVariants(t *testing.T) {
	if got := Variants("camisas"); !equalSets(got, []string{"camisas", "camisa", "camisass"}) {
		t.Fatalf("unexpected variants for plural: %v", got)
	}
	if got := Variants("rojo"); !equalSets(got, []string{"rojo", "rojos"}) {
		t.Fatalf("unexpected variants for singular: %v", got)
	}
}

func TestTermGroupsKeepsOneGroupPerKeyword(t *testing.T) {
	groups := TermGroups([]string{"vestido", "rojo"})
	if len(groups) != 2 || groups[0][0] != "vestido" || groups[1][0] != "rojo" {
		t.Fatalf("unexpected groups: %v", groups)
	}
}
