package services

import (
	"fmt"
	"strings"
)

// Product represents a simple product
type Product struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
	Note  string `json:"note,omitempty"`
}

// Category groups products under a heading of the product list
type Category struct {
	Title    string    `json:"title"`
	Products []Product `json:"products"`
}

// ProductService holds the static product catalog shown to customers
type ProductService struct {
	categories []Category
}

// NewProductService creates service with the default catalog
func NewProductService() *ProductService {
	return NewProductServiceWith(defaultCategories())
}

// NewProductServiceWith creates service over the given categories
func NewProductServiceWith(categories []Category) *ProductService {
	return &ProductService{categories: categories}
}

// Categories returns the catalog categories
func (ps *ProductService) Categories() []Category {
	return ps.categories
}

// ProductList renders the catalog in the chat dialect: bold category titles
// followed by "- Name - ₹Price" lines.
func (ps *ProductService) ProductList() string {
	var b strings.Builder
	b.WriteString("\n")
	for i, category := range ps.categories {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "*%s*\n", category.Title)
		for _, product := range category.Products {
			fmt.Fprintf(&b, "- %s - ₹%d", product.Name, product.Price)
			if product.Note != "" {
				fmt.Fprintf(&b, " (%s)", product.Note)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// SearchProducts searches for products by name, case-insensitive
func (ps *ProductService) SearchProducts(query string) []Product {
	queryLower := strings.ToLower(strings.TrimSpace(query))

	var results []Product
	for _, category := range ps.categories {
		for _, product := range category.Products {
			if queryLower == "" || strings.Contains(strings.ToLower(product.Name), queryLower) {
				results = append(results, product)
			}
		}
	}

	return results
}

func defaultCategories() []Category {
	return []Category{
		{
			Title: "SKIN CARE PRODUCTS",
			Products: []Product{
				{Name: "Kumkumadi Brightening Cream", Price: 689},
				{Name: "Rose Dew Face Cleanser", Price: 299},
				{Name: "Red Sandalwood Powder (50g)", Price: 449},
				{Name: "Wayanadan Turmeric Oil", Price: 399},
				{Name: "Carrot Seed Oil", Price: 420},
				{Name: "Melasma Face pack (80g)", Price: 599},
				{Name: "ABC Face & Body Oil", Price: 299},
				{Name: "Kasthuri Manjal Magic Powder", Price: 497},
			},
		},
		{
			Title: "🎁 SKIN CARE COMBOS",
			Products: []Product{
				{Name: "White Turmeric + Carrot Oil Combo", Price: 847},
				{Name: "Melasma Shield + Kasturi Manjal Combo", Price: 995},
			},
		},
		{
			Title: "🧖 HAIR CARE",
			Products: []Product{
				{Name: "No-Flak Anti-Dandruff Hair Oil", Price: 328},
				{Name: "Extra Virgin Coconut Oil (100ml)", Price: 297},
			},
		},
		{
			Title: "🌿 ESSENTIAL OIL",
			Products: []Product{
				{Name: "Natural De-Stress Relax Oil (Pack of 3)", Price: 360, Note: "Combo MRP ₹749"},
			},
		},
	}
}
