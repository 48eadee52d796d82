// Package order implements the terminal's order session: the cart, its
// totals and the simulated card payment.
package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"possim/internal/clock"
	"possim/pkg/catalog"
)

const defaultRequestTimeout = 2 * time.Second

// command is one unit of work for the session goroutine. A nil apply is a
// pure query.
type command struct {
	name  string
	apply func() error
	reply chan commandResult
}

// commandResult carries the snapshot taken right after the command ran.
type commandResult struct {
	snapshot Snapshot
	err      error
}

// Session owns the catalog, the category filter, the cart and the payment
// simulation of one terminal. Every command, query and timer callback is run
// by a single goroutine, so the state below the separator is never touched
// concurrently.
type Session struct {
	logger         *zap.Logger
	clock          clock.Clock
	requestTimeout time.Duration
	startDataset   string
	journalSize    int

	commands  chan command
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// owned by loop
	dataset        string
	catalog        catalog.Catalog
	activeCategory string
	cart           cart
	payment        payment
	journal        *journal
}

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the wall clock driving the payment timers.
func WithClock(c clock.Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDataset selects the demo dataset loaded at start and on Reset.
func WithDataset(key string) Option {
	return func(s *Session) { s.startDataset = key }
}

// WithJournalSize bounds the number of approved transactions kept.
func WithJournalSize(n int) Option {
	return func(s *Session) { s.journalSize = n }
}

// NewSession loads the starting dataset and launches the session goroutine.
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{
		logger:         zap.NewNop(),
		clock:          clock.Real(),
		requestTimeout: defaultRequestTimeout,
		startDataset:   catalog.DefaultDataset,
		commands:       make(chan command),
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	c, err := catalog.Load(s.startDataset)
	if err != nil {
		return nil, fmt.Errorf("load dataset %q: %w", s.startDataset, err)
	}
	s.logger = s.logger.With(zap.String("component", "order-session"))
	s.journal = newJournal(s.journalSize)
	s.install(s.startDataset, c)

	go s.loop()
	return s, nil
}

// loop runs commands one at a time until Close.
func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case cmd := <-s.commands:
			var err error
			if cmd.apply != nil {
				err = cmd.apply()
			}
			cmd.reply <- commandResult{snapshot: s.snapshot(), err: err}
		case <-s.quit:
			s.payment.idle()
			return
		}
	}
}

// exec hands apply to the session goroutine and waits for the snapshot taken
// after it ran.
func (s *Session) exec(ctx context.Context, name string, apply func() error) (Snapshot, error) {
	reply := make(chan commandResult, 1)
	cmd := command{name: name, apply: apply, reply: reply}

	select {
	case s.commands <- cmd:
	case <-s.quit:
		return Snapshot{}, ErrSessionClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-time.After(s.requestTimeout):
		return Snapshot{}, fmt.Errorf("%w: %s was not accepted", ErrSessionBusy, name)
	}

	select {
	case res := <-reply:
		return res.snapshot, res.err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-time.After(s.requestTimeout):
		return Snapshot{}, fmt.Errorf("%w: %s took too long", ErrSessionBusy, name)
	}
}

// Close stops the session goroutine and cancels pending payment timers.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	<-s.done
}

// Snapshot returns the full view state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.exec(ctx, "snapshot", nil)
}

// Categories returns the categories of the loaded dataset.
func (s *Session) Categories(ctx context.Context) ([]catalog.Category, error) {
	snap, err := s.Snapshot(ctx)
	return snap.Categories, err
}

// FilteredProducts returns the products passing the active category filter.
func (s *Session) FilteredProducts(ctx context.Context) ([]catalog.Product, error) {
	snap, err := s.Snapshot(ctx)
	return snap.Products, err
}

// Cart returns the cart lines in first-added order.
func (s *Session) Cart(ctx context.Context) ([]CartLine, error) {
	snap, err := s.Snapshot(ctx)
	return snap.Lines, err
}

// ItemCount returns the number of units in the cart.
func (s *Session) ItemCount(ctx context.Context) (int, error) {
	snap, err := s.Snapshot(ctx)
	return snap.ItemCount, err
}

// Subtotal returns Σ unit price × quantity.
func (s *Session) Subtotal(ctx context.Context) (decimal.Decimal, error) {
	snap, err := s.Snapshot(ctx)
	return snap.Subtotal, err
}

// Tax returns the tax on the current subtotal.
func (s *Session) Tax(ctx context.Context) (decimal.Decimal, error) {
	snap, err := s.Snapshot(ctx)
	return snap.Tax, err
}

// Total returns subtotal plus tax.
func (s *Session) Total(ctx context.Context) (decimal.Decimal, error) {
	snap, err := s.Snapshot(ctx)
	return snap.Total, err
}

// PaymentState returns the state of the payment simulation.
func (s *Session) PaymentState(ctx context.Context) (PaymentState, error) {
	snap, err := s.Snapshot(ctx)
	return snap.Payment, err
}

// Catalog returns the loaded reference data and its dataset key.
func (s *Session) Catalog(ctx context.Context) (catalog.Catalog, string, error) {
	var (
		c   catalog.Catalog
		key string
	)
	_, err := s.exec(ctx, "catalog", func() error {
		c, key = s.catalog, s.dataset
		return nil
	})
	return c, key, err
}

// Transactions returns the approved payments kept by the journal, oldest first.
func (s *Session) Transactions(ctx context.Context) ([]Transaction, error) {
	var txs []Transaction
	_, err := s.exec(ctx, "list transactions", func() error {
		txs = s.journal.list()
		return nil
	})
	return txs, err
}

// SelectCategory sets the category filter. An empty id clears it; an id the
// catalog does not know is ignored.
func (s *Session) SelectCategory(ctx context.Context, categoryID string) (Snapshot, error) {
	return s.exec(ctx, "select category", func() error {
		if categoryID != "" && !s.catalog.HasCategory(categoryID) {
			s.logger.Debug("ignoring unknown category", zap.String("category_id", categoryID))
			return nil
		}
		s.activeCategory = categoryID
		return nil
	})
}

// AddToCart adds one unit of the product. Unknown ids are ignored.
func (s *Session) AddToCart(ctx context.Context, productID string) (Snapshot, error) {
	return s.exec(ctx, "add to cart", func() error {
		p, ok := s.catalog.Product(productID)
		if !ok {
			s.logger.Debug("ignoring unknown product", zap.String("product_id", productID))
			return nil
		}
		s.cart.add(p)
		return nil
	})
}

// RemoveFromCart takes one unit of the product off the cart. Products not in
// the cart are ignored.
func (s *Session) RemoveFromCart(ctx context.Context, productID string) (Snapshot, error) {
	return s.exec(ctx, "remove from cart", func() error {
		if !s.cart.remove(productID) {
			s.logger.Debug("ignoring removal of product not in cart", zap.String("product_id", productID))
		}
		return nil
	})
}

// ClearCart empties the cart.
func (s *Session) ClearCart(ctx context.Context) (Snapshot, error) {
	return s.exec(ctx, "clear cart", func() error {
		s.cart.clear()
		return nil
	})
}

// LoadDataset swaps the reference data, empties the cart, clears the filter
// and abandons any payment in flight. An unknown key loads the default
// dataset instead.
func (s *Session) LoadDataset(ctx context.Context, key string) (Snapshot, error) {
	return s.exec(ctx, "load dataset", func() error {
		return s.load(key)
	})
}

// Reset reloads the dataset the session started with.
func (s *Session) Reset(ctx context.Context) (Snapshot, error) {
	return s.exec(ctx, "reset", func() error {
		return s.load(s.startDataset)
	})
}

// InitiatePayment starts charging the current total. It fails with
// ErrEmptyCart or ErrPaymentBusy, leaving the session unchanged, unless the
// cart has lines and no other payment is active.
func (s *Session) InitiatePayment(ctx context.Context) (Snapshot, error) {
	return s.exec(ctx, "initiate payment", func() error {
		if s.payment.status() != PaymentIdle {
			s.logger.Debug("payment initiation rejected", zap.Stringer("status", s.payment.status()))
			return ErrPaymentBusy
		}
		if s.cart.empty() {
			s.logger.Debug("payment initiation rejected", zap.String("reason", "empty cart"))
			return ErrEmptyCart
		}
		amount := Total(s.cart.subtotal())
		gen := s.payment.begin(amount, s.cart.snapshot())
		s.scheduleTick(gen)
		s.logger.Info("payment started", zap.String("amount", amount.StringFixed(2)))
		return nil
	})
}

// CancelPayment aborts an in-progress payment, leaving the cart untouched.
// It does nothing in any other state.
func (s *Session) CancelPayment(ctx context.Context) (Snapshot, error) {
	return s.exec(ctx, "cancel payment", func() error {
		if s.payment.status() != PaymentInProgress {
			s.logger.Debug("ignoring cancel", zap.Stringer("status", s.payment.status()))
			return nil
		}
		s.logger.Info("payment cancelled",
			zap.String("amount", s.payment.state.Amount.StringFixed(2)),
			zap.Int("progress", s.payment.state.Progress))
		s.payment.idle()
		return nil
	})
}

func (s *Session) load(key string) error {
	c, err := catalog.Load(key)
	if err != nil {
		s.logger.Warn("unknown dataset, loading default",
			zap.String("dataset", key),
			zap.String("default", catalog.DefaultDataset))
		key = catalog.DefaultDataset
		if c, err = catalog.Load(key); err != nil {
			return err
		}
	}
	s.install(key, c)
	return nil
}

func (s *Session) install(key string, c catalog.Catalog) {
	if s.payment.status() != PaymentIdle {
		s.logger.Info("abandoning payment for dataset reload", zap.Stringer("status", s.payment.status()))
	}
	s.payment.idle()
	s.dataset = key
	s.catalog = c
	s.activeCategory = ""
	s.cart.clear()
	s.logger.Info("dataset loaded",
		zap.String("dataset", key),
		zap.Int("categories", len(c.Categories())),
		zap.Int("products", len(c.Products())))
}

// scheduleTick arranges the next progress step for payment generation gen.
func (s *Session) scheduleTick(gen uint64) {
	s.payment.hold(s.clock.AfterFunc(ProgressInterval, func() {
		s.fire("payment progress", func() { s.onTick(gen) })
	}))
}

func (s *Session) onTick(gen uint64) {
	if !s.payment.current(gen) || s.payment.status() != PaymentInProgress {
		return
	}
	if !s.payment.advance() {
		s.scheduleTick(gen)
		return
	}
	s.approve()
}

// approve finalises the charge, records it and empties the cart.
func (s *Session) approve() {
	lines := s.payment.charged
	tx := Transaction{
		ID:         uuid.NewString(),
		Dataset:    s.dataset,
		Amount:     s.payment.state.Amount,
		Lines:      lines,
		ApprovedAt: s.clock.Now().UTC(),
	}
	for _, line := range lines {
		tx.ItemCount += line.Quantity
	}

	gen := s.payment.approve(tx.ID)
	s.cart.clear()
	s.journal.record(tx)
	s.logger.Info("payment approved",
		zap.String("transaction_id", tx.ID),
		zap.String("amount", tx.Amount.StringFixed(2)),
		zap.Int("items", tx.ItemCount))

	s.payment.hold(s.clock.AfterFunc(ApprovalDisplay, func() {
		s.fire("approval dismiss", func() { s.onDismiss(gen) })
	}))
}

func (s *Session) onDismiss(gen uint64) {
	if !s.payment.current(gen) || s.payment.status() != PaymentApproved {
		return
	}
	s.cart.clear()
	s.payment.idle()
	s.logger.Debug("approval dismissed")
}

// fire runs a timer callback on the session goroutine.
func (s *Session) fire(name string, fn func()) {
	_, err := s.exec(context.Background(), name, func() error {
		fn()
		return nil
	})
	if err != nil && !errors.Is(err, ErrSessionClosed) {
		s.logger.Warn("timer callback dropped", zap.String("callback", name), zap.Error(err))
	}
}

func (s *Session) snapshot() Snapshot {
	subtotal := s.cart.subtotal()
	return Snapshot{
		Dataset:        s.dataset,
		Categories:     s.catalog.Categories(),
		ActiveCategory: s.activeCategory,
		Products:       s.catalog.Filter(s.activeCategory),
		Lines:          s.cart.snapshot(),
		ItemCount:      s.cart.itemCount(),
		Subtotal:       subtotal,
		Tax:            Tax(subtotal),
		Total:          Total(subtotal),
		Payment:        s.payment.state,
	}
}
