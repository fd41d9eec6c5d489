package assistant

import (
	"tienda-api/internal/model"
)

// DefaultMaxResults bounds how many products are quoted to the model.
const DefaultMaxResults = 3

type ProductSearcher interface {
	SearchActiveByTerms(groups [][]string, limit int) ([]model.Product, error)
}

// CatalogMatcher finds the active products that match every keyword.
type CatalogMatcher struct {
	searcher   ProductSearcher
	maxResults int
}

func NewCatalogMatcher(searcher ProductSearcher, maxResults int) *CatalogMatcher {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &CatalogMatcher{searcher: searcher, maxResults: maxResults}
}

func (m *CatalogMatcher) Match(keywords []string) ([]model.Product, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	products, err := m.searcher.SearchActiveByTerms(TermGroups(keywords), m.maxResults)
	if err != nil {
		return nil, err
	}
	if len(products) > m.maxResults {
		products = products[:m.maxResults]
	}
	return products, nil
}
