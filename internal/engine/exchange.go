// Package engine implements the trading core of an exchange: listed
// inventory, per-operator allocations and the price update that follows
// every trade.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/efreitasn/borsanova/internal/domain"
	"github.com/efreitasn/borsanova/internal/pricing"
)

// TradeRecorder receives every completed trade.
type TradeRecorder interface {
	Record(t *domain.Trade)
}

// listing is the exchange's live state for one quoted company.
type listing struct {
	price     int64
	available int64
	issued    int64 // available + all allocations; fixed by the last quote
}

// Exchange owns the inventory, allocations and prices of the companies
// quoted on it. All methods are safe for concurrent use; each mutating
// operation runs under the exchange's write lock and validates every
// precondition before touching state.
type Exchange struct {
	name string

	mu          sync.RWMutex
	listings    map[string]*listing // company name → listing
	allocations *ledger
	policy      pricing.Policy

	recorder TradeRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Exchange.
type Option func(*Exchange)

// WithPolicy sets the initial price policy. A nil policy is ignored.
func WithPolicy(p pricing.Policy) Option {
	return func(e *Exchange) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithTradeRecorder sends every completed trade to r.
func WithTradeRecorder(r TradeRecorder) Option {
	return func(e *Exchange) { e.recorder = r }
}

// WithLogger sets the logger used for trade events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exchange) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the source of trade timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Exchange) {
		if now != nil {
			e.now = now
		}
	}
}

// NewExchange creates an exchange with no listings and the default
// price policy.
func NewExchange(name string, opts ...Option) (*Exchange, error) {
	if err := domain.ValidateName("exchange", name); err != nil {
		return nil, err
	}
	e := &Exchange{
		name:        name,
		listings:    make(map[string]*listing),
		allocations: newLedger(),
		policy:      pricing.Default(),
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Name returns the exchange's name.
func (e *Exchange) Name() string {
	return e.name
}

// Policy returns the active price policy.
func (e *Exchange) Policy() pricing.Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.policy
}

// SetPolicy replaces the price policy. Prices already reached are kept;
// only later trades use the new policy.
func (e *Exchange) SetPolicy(p pricing.Policy) error {
	if p == nil {
		return domain.ErrNilReference
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policy = p
	e.logger.Info("price policy changed",
		slog.String("exchange", e.name),
		slog.String("policy", p.Name()),
	)
	return nil
}

// Quote registers shares of company at unitPrice. Quoting a company
// that is already listed replaces its available inventory and price;
// shares already allocated to operators stay with them.
func (e *Exchange) Quote(company string, shares, unitPrice int64) error {
	if err := domain.ValidateName("company", company); err != nil {
		return err
	}
	if shares < 0 {
		return domain.Invalid(fmt.Sprintf("shares must be >= 0, got %d", shares))
	}
	if unitPrice < 0 {
		return domain.Invalid(fmt.Sprintf("unit price must be >= 0, got %d", unitPrice))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	held := e.allocations.total(company)
	if shares > math.MaxInt64-held {
		return domain.Invalid(fmt.Sprintf("quoting %d shares of %s overflows the %d already held", shares, company, held))
	}
	e.listings[company] = &listing{
		price:     unitPrice,
		available: shares,
		issued:    shares + held,
	}
	e.logger.Debug("company quoted",
		slog.String("exchange", e.name),
		slog.String("company", company),
		slog.Int64("shares", shares),
		slog.Int64("price", unitPrice),
	)
	return nil
}

// CurrentPrice returns the unit price of company. It returns
// domain.ErrNotListed if the company is not quoted here.
func (e *Exchange) CurrentPrice(company string) (int64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	l, ok := e.listings[company]
	if !ok {
		return 0, domain.ErrNotListed
	}
	return l.price, nil
}

// Available returns the unallocated shares of company, or 0 if it is
// not listed.
func (e *Exchange) Available(company string) int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	l, ok := e.listings[company]
	if !ok {
		return 0
	}
	return l.available
}

// Issued returns the total shares of company on this exchange, allocated
// or not, or 0 if it is not listed.
func (e *Exchange) Issued(company string) int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	l, ok := e.listings[company]
	if !ok {
		return 0
	}
	return l.issued
}

// Held returns the shares of company allocated to operator.
func (e *Exchange) Held(operator, company string) int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.allocations.held(company, operator)
}

// Holders returns the operators holding company, ordered by name.
func (e *Exchange) Holders(company string) []Allocation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.allocations.holders(company)
}

// HoldingsOf returns every allocation of operator, ordered by company.
func (e *Exchange) HoldingsOf(operator string) []Allocation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.allocations.byOperator(operator)
}

// Listed returns the names of all quoted companies in order.
func (e *Exchange) Listed() []string {
	e.mu.RLock()
	names := make([]string, 0, len(e.listings))
	for name := range e.listings {
		names = append(names, name)
	}
	e.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Buy moves quantity shares of company from the exchange's inventory to
// operator and returns their cost at the pre-trade price. It fails with
// domain.ErrNotListed, domain.ErrInsufficientInventory, or a validation
// error when the cost does not fit in an int64, without any state change.
func (e *Exchange) Buy(operator, company string, quantity int64) (int64, error) {
	if err := validateTrade(operator, company, quantity); err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.listings[company]
	if !ok {
		return 0, domain.ErrNotListed
	}
	if l.available < quantity {
		return 0, domain.ErrInsufficientInventory
	}
	if err := checkTotal(l.price, quantity); err != nil {
		return 0, err
	}

	l.available -= quantity
	e.allocations.add(company, operator, quantity)
	return e.settle(l, domain.SideBuy, operator, company, quantity), nil
}

// Sell moves quantity shares of company from operator back to the
// exchange's inventory and returns the revenue at the pre-trade price.
// It fails with domain.ErrNotListed, domain.ErrInsufficientHoldings, or a
// validation error when the revenue does not fit in an int64, without any
// state change.
func (e *Exchange) Sell(operator, company string, quantity int64) (int64, error) {
	if err := validateTrade(operator, company, quantity); err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.listings[company]
	if !ok {
		return 0, domain.ErrNotListed
	}
	if e.allocations.held(company, operator) < quantity {
		return 0, domain.ErrInsufficientHoldings
	}
	if err := checkTotal(l.price, quantity); err != nil {
		return 0, err
	}

	l.available += quantity
	e.allocations.add(company, operator, -quantity)
	return e.settle(l, domain.SideSell, operator, company, quantity), nil
}

// settle prices a trade whose inventory and allocation changes are
// already applied, then runs the policy on the pre-trade price. Must be
// called with the write lock held.
func (e *Exchange) settle(l *listing, side domain.Side, operator, company string, quantity int64) int64 {
	pre := l.price
	total := pre * quantity
	l.price = e.policy.Update(pre, quantity, side == domain.SideBuy)

	trade := &domain.Trade{
		TradeID:    uuid.New().String(),
		Exchange:   e.name,
		Company:    company,
		Operator:   operator,
		Side:       side,
		Quantity:   quantity,
		Price:      pre,
		Total:      total,
		PriceAfter: l.price,
		ExecutedAt: e.now(),
	}
	if e.recorder != nil {
		e.recorder.Record(trade)
	}

	e.logger.Debug("trade executed",
		slog.String("trade_id", trade.TradeID),
		slog.String("exchange", e.name),
		slog.String("company", company),
		slog.String("operator", operator),
		slog.String("side", string(side)),
		slog.Int64("quantity", quantity),
		slog.Int64("price", pre),
		slog.Int64("price_after", l.price),
	)
	return total
}

func validateTrade(operator, company string, quantity int64) error {
	if err := domain.ValidateName("operator", operator); err != nil {
		return err
	}
	if err := domain.ValidateName("company", company); err != nil {
		return err
	}
	if quantity <= 0 {
		return domain.Invalid(fmt.Sprintf("quantity must be > 0, got %d", quantity))
	}
	return nil
}

// checkTotal rejects trades whose value price*quantity overflows int64.
func checkTotal(price, quantity int64) error {
	if price > 0 && quantity > math.MaxInt64/price {
		return domain.Invalid(fmt.Sprintf("trade value %d x %d overflows", quantity, price))
	}
	return nil
}
