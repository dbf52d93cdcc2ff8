package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductList(t *testing.T) {
	ps := NewProductServiceWith([]Category{
		{Title: "Face", Products: []Product{{Name: "Cream", Price: 689}}},
		{Title: "Hair", Products: []Product{{Name: "Oil", Price: 399, Note: "200ml"}}},
	})

	assert.Equal(t, "\n*Face*\n- Cream - ₹689\n\n*Hair*\n- Oil - ₹399 (200ml)\n", ps.ProductList())
}

func TestSearchProducts(t *testing.T) {
	ps := NewProductService()

	found := ps.SearchProducts("TURMERIC")
	require.NotEmpty(t, found)
	for _, p := range found {
		assert.Contains(t, strings.ToLower(p.Name), "turmeric")
	}

	assert.Empty(t, ps.SearchProducts("no-such-product"))

	total := 0
	for _, c := range ps.Categories() {
		total += len(c.Products)
	}
	assert.Len(t, ps.SearchProducts(""), total)
}
