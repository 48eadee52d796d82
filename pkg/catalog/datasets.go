package catalog

import "github.com/shopspring/decimal"

// Demo dataset keys.
const (
	DatasetCoffee     = "coffee"
	DatasetRestaurant = "restaurant"
	DatasetRetail     = "retail"

	DefaultDataset = DatasetCoffee
)

var datasets = map[string]Catalog{
	DatasetCoffee: mustNew(
		[]Category{
			{ID: "cat-1", Name: "Coffee", Icon: "☕", Color: "#8B4513"},
			{ID: "cat-2", Name: "Food", Icon: "🍽️", Color: "#228B22"},
			{ID: "cat-3", Name: "Drinks", Icon: "🥤", Color: "#4169E1"},
			{ID: "cat-4", Name: "Desserts", Icon: "🍰", Color: "#FF69B4"},
		},
		[]Product{
			{ID: "p1", Name: "Flat White", Price: price("5.50"), CategoryID: "cat-1", Color: "#D4A574"},
			{ID: "p2", Name: "Cappuccino", Price: price("5.50"), CategoryID: "cat-1", Color: "#C4A484"},
			{ID: "p3", Name: "Long Black", Price: price("5.00"), CategoryID: "cat-1", Color: "#3C2415"},
			{ID: "p4", Name: "Latte", Price: price("5.50"), CategoryID: "cat-1", Color: "#E8D4B8"},
			{ID: "p5", Name: "Mocha", Price: price("6.00"), CategoryID: "cat-1", Color: "#5C4033"},
			{ID: "p6", Name: "Espresso", Price: price("4.00"), CategoryID: "cat-1", Color: "#2C1810"},
			{ID: "p7", Name: "Avo Toast", Price: price("16.00"), CategoryID: "cat-2", Color: "#568203"},
			{ID: "p8", Name: "Eggs Bene", Price: price("22.00"), CategoryID: "cat-2", Color: "#FFD700"},
			{ID: "p9", Name: "Bacon Eggs", Price: price("18.00"), CategoryID: "cat-2", Color: "#CD853F"},
			{ID: "p10", Name: "Croissant", Price: price("6.50"), CategoryID: "cat-2", Color: "#DEB887"},
			{ID: "p11", Name: "OJ Fresh", Price: price("6.00"), CategoryID: "cat-3", Color: "#FFA500"},
			{ID: "p12", Name: "Smoothie", Price: price("8.00"), CategoryID: "cat-3", Color: "#FF6B6B"},
			{ID: "p13", Name: "Choc Cake", Price: price("9.00"), CategoryID: "cat-4", Color: "#4A2C2A"},
			{ID: "p14", Name: "Cheesecake", Price: price("10.00"), CategoryID: "cat-4", Color: "#FFFACD"},
			{ID: "p15", Name: "Brownie", Price: price("7.00"), CategoryID: "cat-4", Color: "#3D2314"},
		},
	),
	DatasetRestaurant: mustNew(
		[]Category{
			{ID: "cat-1", Name: "Starters", Icon: "🥗", Color: "#4CAF50"},
			{ID: "cat-2", Name: "Mains", Icon: "🍖", Color: "#FF5722"},
			{ID: "cat-3", Name: "Drinks", Icon: "🍷", Color: "#9C27B0"},
			{ID: "cat-4", Name: "Desserts", Icon: "🍮", Color: "#E91E63"},
		},
		[]Product{
			{ID: "p1", Name: "Soup", Price: price("12.00"), CategoryID: "cat-1", Color: "#FF9800"},
			{ID: "p2", Name: "Bruschetta", Price: price("14.00"), CategoryID: "cat-1", Color: "#F44336"},
			{ID: "p3", Name: "Calamari", Price: price("18.00"), CategoryID: "cat-1", Color: "#FFE0B2"},
			{ID: "p4", Name: "Salad", Price: price("15.00"), CategoryID: "cat-1", Color: "#8BC34A"},
			{ID: "p5", Name: "Steak", Price: price("42.00"), CategoryID: "cat-2", Color: "#8D6E63"},
			{ID: "p6", Name: "Fish", Price: price("36.00"), CategoryID: "cat-2", Color: "#03A9F4"},
			{ID: "p7", Name: "Pasta", Price: price("28.00"), CategoryID: "cat-2", Color: "#FFC107"},
			{ID: "p8", Name: "Risotto", Price: price("26.00"), CategoryID: "cat-2", Color: "#FFEB3B"},
			{ID: "p9", Name: "Burger", Price: price("24.00"), CategoryID: "cat-2", Color: "#795548"},
			{ID: "p10", Name: "Red Wine", Price: price("14.00"), CategoryID: "cat-3", Color: "#880E4F"},
			{ID: "p11", Name: "White Wine", Price: price("13.00"), CategoryID: "cat-3", Color: "#F5F5DC"},
			{ID: "p12", Name: "Beer", Price: price("10.00"), CategoryID: "cat-3", Color: "#FFB300"},
			{ID: "p13", Name: "Tiramisu", Price: price("14.00"), CategoryID: "cat-4", Color: "#D7CCC8"},
			{ID: "p14", Name: "Panna Cotta", Price: price("12.00"), CategoryID: "cat-4", Color: "#FFF8E1"},
			{ID: "p15", Name: "Gelato", Price: price("10.00"), CategoryID: "cat-4", Color: "#FFCCBC"},
		},
	),
	DatasetRetail: mustNew(
		[]Category{
			{ID: "cat-1", Name: "Apparel", Icon: "👕", Color: "#2196F3"},
			{ID: "cat-2", Name: "Accessories", Icon: "👜", Color: "#9C27B0"},
			{ID: "cat-3", Name: "Footwear", Icon: "👟", Color: "#4CAF50"},
			{ID: "cat-4", Name: "Sale", Icon: "🏷️", Color: "#F44336"},
		},
		[]Product{
			{ID: "p1", Name: "T-Shirt", Price: price("35.00"), CategoryID: "cat-1", Color: "#64B5F6"},
			{ID: "p2", Name: "Jeans", Price: price("89.00"), CategoryID: "cat-1", Color: "#1565C0"},
			{ID: "p3", Name: "Hoodie", Price: price("75.00"), CategoryID: "cat-1", Color: "#455A64"},
			{ID: "p4", Name: "Jacket", Price: price("120.00"), CategoryID: "cat-1", Color: "#37474F"},
			{ID: "p5", Name: "Dress", Price: price("95.00"), CategoryID: "cat-1", Color: "#EC407A"},
			{ID: "p6", Name: "Watch", Price: price("199.00"), CategoryID: "cat-2", Color: "#78909C"},
			{ID: "p7", Name: "Sunglasses", Price: price("85.00"), CategoryID: "cat-2", Color: "#212121"},
			{ID: "p8", Name: "Belt", Price: price("45.00"), CategoryID: "cat-2", Color: "#5D4037"},
			{ID: "p9", Name: "Bag", Price: price("149.00"), CategoryID: "cat-2", Color: "#8D6E63"},
			{ID: "p10", Name: "Sneakers", Price: price("129.00"), CategoryID: "cat-3", Color: "#E0E0E0"},
			{ID: "p11", Name: "Boots", Price: price("165.00"), CategoryID: "cat-3", Color: "#4E342E"},
			{ID: "p12", Name: "Sandals", Price: price("55.00"), CategoryID: "cat-3", Color: "#BCAAA4"},
			{ID: "p13", Name: "Cap 50%", Price: price("15.00"), CategoryID: "cat-4", Color: "#EF5350"},
			{ID: "p14", Name: "Scarf 40%", Price: price("25.00"), CategoryID: "cat-4", Color: "#EF5350"},
			{ID: "p15", Name: "Gloves 30%", Price: price("18.00"), CategoryID: "cat-4", Color: "#EF5350"},
		},
	),
}

// Keys lists the demo dataset keys in menu order.
func Keys() []string {
	return []string{DatasetCoffee, DatasetRestaurant, DatasetRetail}
}

// Load returns the demo catalog registered under key.
func Load(key string) (Catalog, error) {
	c, ok := datasets[key]
	if !ok {
		return Catalog{}, ErrUnknownDataset
	}
	return c, nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustNew(categories []Category, products []Product) Catalog {
	c, err := New(categories, products)
	if err != nil {
		panic(err)
	}
	return c
}
