// Package catalog holds the read-only category and product reference data
// shown on the terminal.
package catalog

import (
	"fmt"
	"strings"
)

// Catalog is an immutable, validated set of categories and products.
// The zero value is an empty catalog.
type Catalog struct {
	categories []Category
	products   []Product
	byProduct  map[string]int
	byCategory map[string]int
}

// New validates the reference data and builds a catalog from copies of it.
func New(categories []Category, products []Product) (Catalog, error) {
	c := Catalog{
		categories: append([]Category(nil), categories...),
		products:   append([]Product(nil), products...),
		byProduct:  make(map[string]int, len(products)),
		byCategory: make(map[string]int, len(categories)),
	}

	for i, cat := range c.categories {
		if strings.TrimSpace(cat.ID) == "" {
			return Catalog{}, fmt.Errorf("%w: category %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.byCategory[cat.ID]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate category id %q", ErrInvalidCatalog, cat.ID)
		}
		c.byCategory[cat.ID] = i
	}

	for i, p := range c.products {
		if strings.TrimSpace(p.ID) == "" {
			return Catalog{}, fmt.Errorf("%w: product %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.byProduct[p.ID]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate product id %q", ErrInvalidCatalog, p.ID)
		}
		if p.Price.IsNegative() {
			return Catalog{}, fmt.Errorf("%w: product %q has negative price %s", ErrInvalidCatalog, p.ID, p.Price)
		}
		if _, ok := c.byCategory[p.CategoryID]; !ok {
			return Catalog{}, fmt.Errorf("%w: product %q references unknown category %q", ErrInvalidCatalog, p.ID, p.CategoryID)
		}
		c.byProduct[p.ID] = i
	}

	return c, nil
}

// Categories returns the categories in display order.
func (c Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// Products returns every product in display order.
func (c Catalog) Products() []Product {
	return append([]Product(nil), c.products...)
}

// Product resolves a product by id.
func (c Catalog) Product(id string) (Product, bool) {
	i, ok := c.byProduct[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// HasCategory reports whether id names a category of this catalog.
func (c Catalog) HasCategory(id string) bool {
	_, ok := c.byCategory[id]
	return ok
}

// Filter returns the products belonging to categoryID, preserving catalog
// order. An empty categoryID means no filter and yields every product.
// A category without products, or an unknown one, yields an empty slice.
func (c Catalog) Filter(categoryID string) []Product {
	if categoryID == "" {
		return c.Products()
	}
	filtered := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if p.CategoryID == categoryID {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
