package assistant

import (
	"errors"
	"testing"

	"tienda-api/internal/model"
)

type fakeSearcher struct {
	calls    int
	groups   [][]string
	limit    int
	products []model.Product
	err      error
}

func (f *fakeSearcher) SearchActiveByTerms(groups [][]string, limit int) ([]model.Product, error) {
	f.calls++
	f.groups = groups
	f.limit = limit
	return f.products, f.err
}

func TestMatchSkipsSearchWithoutKeywords(t *testing.T) {
	searcher := &fakeSearcher{}
	got, err := NewCatalogMatcher(searcher, 3).Match(nil)
	if err != nil || got != nil {
		t.Fatalf("expected nil result, got %v %v", got, err)
	}
	if searcher.calls != 0 {
		t.Fatalf("searcher must not be called, got %d calls", searcher.calls)
	}
}

func TestMatchExpandsKeywordsAndCaps(t *testing.T) {
	searcher := &fakeSearcher{products: make([]model.Product, 5)}
	got, err := NewCatalogMatcher(searcher, 0).Match([]string{"vestido", "rojos"})
	if err != nil {
		t.Fatalf("Match err: %v", err)
	}
	if len(got) != DefaultMaxResults {
		t.Fatalf("expected %d results, got %d", DefaultMaxResults, len(got))
	}
	if searcher.limit != DefaultMaxResults {
		t.Fatalf("expected limit %d, got %d", DefaultMaxResults, searcher.limit)
	}
	if len(searcher.groups) != 2 || !equalSets(searcher.groups[1], []string{"rojos", "rojo", "rojoss"}) {
		t.Fatalf("unexpected groups: %v", searcher.groups)
	}
}

func TestMatchPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	if _, err := NewCatalogMatcher(&fakeSearcher{err: boom}, 3).Match([]string{"falda"}); !errors.Is(err, boom) {
		t.Fatalf("expected db error, got %v", err)
	}
}
