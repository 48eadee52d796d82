package order

import (
	"time"

	"github.com/shopspring/decimal"

	"possim/pkg/catalog"
)

// CartLine aggregates every unit of one product in the active order. Name and
// UnitPrice are captured when the product is first added and are not re-read
// from the catalog afterwards.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is UnitPrice × Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PaymentStatus is the phase of the simulated card payment.
type PaymentStatus int

const (
	PaymentIdle PaymentStatus = iota
	PaymentInProgress
	PaymentApproved
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentIdle:
		return "idle"
	case PaymentInProgress:
		return "in_progress"
	case PaymentApproved:
		return "approved"
	default:
		return "unknown"
	}
}

// MarshalText renders the status as its string form in JSON payloads.
func (s PaymentStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PaymentState is the externally visible state of the payment simulation.
// Amount is the charge fixed at initiation; it is zero while idle.
type PaymentState struct {
	Status        PaymentStatus   `json:"status"`
	Progress      int             `json:"progress"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// Transaction records one approved payment.
type Transaction struct {
	ID         string          `json:"id"`
	Dataset    string          `json:"dataset"`
	Amount     decimal.Decimal `json:"amount"`
	ItemCount  int             `json:"item_count"`
	Lines      []CartLine      `json:"lines"`
	ApprovedAt time.Time       `json:"approved_at"`
}

// Snapshot is everything a view needs to draw the terminal at one instant.
type Snapshot struct {
	Dataset        string             `json:"dataset"`
	Categories     []catalog.Category `json:"categories"`
	ActiveCategory string             `json:"active_category"`
	Products       []catalog.Product  `json:"products"`
	Lines          []CartLine         `json:"lines"`
	ItemCount      int                `json:"item_count"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Tax            decimal.Decimal    `json:"tax"`
	Total          decimal.Decimal    `json:"total"`
	Payment        PaymentState       `json:"payment"`
}
