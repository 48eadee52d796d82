package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestLoadDemoDatasets(t *testing.T) {
	for _, key := range Keys() {
		c, err := Load(key)
		require.NoError(t, err, key)
		assert.Len(t, c.Categories(), 4, key)
		assert.Len(t, c.Products(), 15, key)
	}
}

func TestLoadUnknownDataset(t *testing.T) {
	_, err := Load("pharmacy")
	assert.ErrorIs(t, err, ErrUnknownDataset)
}

func TestFilterWithoutCategoryReturnsAllInOrder(t *testing.T) {
	c, err := Load(DatasetCoffee)
	require.NoError(t, err)

	all := c.Filter("")
	assert.Equal(t, ids(c.Products()), ids(all))
	assert.Equal(t, "p1", all[0].ID)
	assert.Equal(t, "p15", all[len(all)-1].ID)
}

func TestFilterByCategoryPreservesRelativeOrder(t *testing.T) {
	c, err := Load(DatasetCoffee)
	require.NoError(t, err)

	assert.Equal(t, []string{"p7", "p8", "p9", "p10"}, ids(c.Filter("cat-2")))
	assert.Equal(t, []string{"p13", "p14", "p15"}, ids(c.Filter("cat-4")))
}

func TestFilterUnmatchedCategoryIsEmpty(t *testing.T) {
	c, err := New(
		[]Category{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		[]Product{{ID: "x", Name: "X", Price: decimal.NewFromInt(1), CategoryID: "a"}},
	)
	require.NoError(t, err)

	filtered := c.Filter("b")
	assert.NotNil(t, filtered)
	assert.Empty(t, filtered)
	assert.Empty(t, c.Filter("missing"))
}

func TestFilterReturnsCopies(t *testing.T) {
	c, err := Load(DatasetRetail)
	require.NoError(t, err)

	products := c.Filter("")
	products[0].Name = "mutated"

	p, ok := c.Product(products[0].ID)
	require.True(t, ok)
	assert.Equal(t, "T-Shirt", p.Name)
}

func TestProductLookup(t *testing.T) {
	c, err := Load(DatasetRestaurant)
	require.NoError(t, err)

	p, ok := c.Product("p5")
	require.True(t, ok)
	assert.Equal(t, "Steak", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("42.00")))

	_, ok = c.Product("p99")
	assert.False(t, ok)
	assert.True(t, c.HasCategory("cat-3"))
	assert.False(t, c.HasCategory(""))
}

func TestNewRejectsInvalidReferenceData(t *testing.T) {
	cats := []Category{{ID: "c1", Name: "One"}}
	cases := map[string]struct {
		categories []Category
		products   []Product
	}{
		"empty category id":  {[]Category{{ID: ""}}, nil},
		"duplicate category": {[]Category{{ID: "c1"}, {ID: "c1"}}, nil},
		"empty product id":   {cats, []Product{{ID: " ", CategoryID: "c1"}}},
		"duplicate product": {cats, []Product{
			{ID: "p", CategoryID: "c1"},
			{ID: "p", CategoryID: "c1"},
		}},
		"negative price":   {cats, []Product{{ID: "p", CategoryID: "c1", Price: decimal.NewFromInt(-1)}}},
		"dangling product": {cats, []Product{{ID: "p", CategoryID: "c2"}}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(tc.categories, tc.products)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestZeroCatalogIsEmpty(t *testing.T) {
	var c Catalog
	assert.Empty(t, c.Filter(""))
	_, ok := c.Product("p1")
	assert.False(t, ok)
}
