package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"possim/pkg/catalog"
)

// TaxRate is the GST fraction applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.15")

// cart is the ordered set of lines of the active order. It is owned by the
// session goroutine and never shared.
type cart struct {
	lines []CartLine
}

func (c *cart) index(productID string) int {
	for i, line := range c.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// add increments the line for p or appends a new one with quantity 1.
func (c *cart) add(p catalog.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
	} else {
		c.lines = append(c.lines, CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  1,
		})
	}
	c.mustBeValid()
}

// remove takes one unit off the line for productID, dropping the line when it
// reaches zero. It reports whether a line was found.
func (c *cart) remove(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	if c.lines[i].Quantity > 1 {
		c.lines[i].Quantity--
	} else {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
	c.mustBeValid()
	return true
}

func (c *cart) clear() {
	c.lines = nil
}

func (c *cart) empty() bool {
	return len(c.lines) == 0
}

func (c *cart) snapshot() []CartLine {
	return append([]CartLine{}, c.lines...)
}

func (c *cart) itemCount() int {
	n := 0
	for _, line := range c.lines {
		n += line.Quantity
	}
	return n
}

func (c *cart) subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range c.lines {
		sum = sum.Add(line.LineTotal())
	}
	return sum
}

// Tax returns subtotal × TaxRate rounded to cents.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate).Round(2)
}

// Total returns subtotal plus its tax.
func Total(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(Tax(subtotal))
}

// mustBeValid panics when a mutation broke the one-line-per-product or
// positive-quantity invariants.
func (c *cart) mustBeValid() {
	seen := make(map[string]struct{}, len(c.lines))
	for _, line := range c.lines {
		if line.Quantity < 1 {
			panic(fmt.Sprintf("order: cart line %q has quantity %d", line.ProductID, line.Quantity))
		}
		if _, dup := seen[line.ProductID]; dup {
			panic(fmt.Sprintf("order: duplicate cart line for %q", line.ProductID))
		}
		seen[line.ProductID] = struct{}{}
	}
}
