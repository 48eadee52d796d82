package catalog

import "github.com/shopspring/decimal"

// Category groups products on the terminal's category bar.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Product is a sellable item. Price is in currency units with two decimals.
type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID string          `json:"category_id"`
	Color      string          `json:"color"`
}
