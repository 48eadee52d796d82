package order

import (
	"time"

	"github.com/shopspring/decimal"

	"possim/internal/clock"
)

// Payment simulation timing. Progress moves ProgressStep percent every
// ProgressInterval, so an approval takes 50 ticks (3s); the approval stays on screen
// for ApprovalDisplay.
const (
	ProgressStep     = 2
	ProgressInterval = 60 * time.Millisecond
	ApprovalDisplay  = 2500 * time.Millisecond
)

// payment is the state machine Idle → InProgress → Approved → Idle, with
// InProgress → Idle on cancel. The handle of the one scheduled callback that
// may still fire is kept next to the state; gen identifies the transition
// that scheduled it so a callback from an earlier transition is recognised
// and dropped.
type payment struct {
	state   PaymentState
	charged []CartLine
	gen     uint64
	pending clock.Timer
}

func (p *payment) status() PaymentStatus {
	return p.state.Status
}

// begin enters InProgress charging amount for lines and returns the
// generation the progress ticker must carry.
func (p *payment) begin(amount decimal.Decimal, lines []CartLine) uint64 {
	p.release()
	p.state = PaymentState{Status: PaymentInProgress, Amount: amount}
	p.charged = lines
	return p.gen
}

// advance moves progress one step and reports whether it reached 100.
func (p *payment) advance() bool {
	if p.state.Status != PaymentInProgress {
		return false
	}
	p.state.Progress += ProgressStep
	if p.state.Progress >= 100 {
		p.state.Progress = 100
		return true
	}
	return false
}

// approve enters Approved keeping the charged amount and returns the
// generation the dismiss callback must carry.
func (p *payment) approve(transactionID string) uint64 {
	p.release()
	p.state.Status = PaymentApproved
	p.state.Progress = 100
	p.state.TransactionID = transactionID
	return p.gen
}

// idle drops any pending callback and returns to Idle.
func (p *payment) idle() {
	p.release()
	p.state = PaymentState{Status: PaymentIdle}
	p.charged = nil
}

// hold stores the handle of the callback scheduled for the current generation.
func (p *payment) hold(t clock.Timer) {
	p.pending = t
}

// current reports whether a callback carrying gen still belongs to the live
// transition.
func (p *payment) current(gen uint64) bool {
	return gen == p.gen && p.state.Status != PaymentIdle
}

// release stops the pending callback, if any, and invalidates its generation.
func (p *payment) release() {
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
	p.gen++
}
