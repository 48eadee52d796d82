package order

import "errors"

var (
	// ErrEmptyCart rejects a payment initiation with nothing to charge.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPaymentBusy rejects a payment initiation while another payment is
	// in progress or its approval is still displayed.
	ErrPaymentBusy = errors.New("a payment is already in progress")
	// ErrSessionClosed is returned by every call made after Close.
	ErrSessionClosed = errors.New("order session is closed")
	// ErrSessionBusy is returned when the session goroutine does not pick up
	// or answer a request in time.
	ErrSessionBusy = errors.New("order session is busy")
)

// IsRejection reports whether err is a payment rejection that left the
// session unchanged, as opposed to an infrastructure failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrPaymentBusy)
}
