package service

import (
	"log/slog"
	"time"

	"github.com/efreitasn/borsanova/internal/domain"
	"github.com/efreitasn/borsanova/internal/engine"
	"github.com/efreitasn/borsanova/internal/pricing"
	"github.com/efreitasn/borsanova/internal/store"
)

// Options configures a Market.
type Options struct {
	Policy       pricing.Policy   // default policy for new exchanges; nil means pricing.Default()
	TradeHistory int              // trades kept per (exchange, company); 0 keeps all
	Logger       *slog.Logger     // nil means slog.Default()
	Clock        func() time.Time // nil means time.Now
}

// Position is one holding of an operator, valued at the current price.
type Position struct {
	Exchange string
	Company  string
	Shares   int64
	Price    int64
}

// Market is one trading session. It owns the identity registries for
// companies, exchanges and operators, so every name resolves to a single
// instance within the session and nothing is shared between sessions.
//
// Exchange trades never debit or credit an operator's budget; settlement
// is left to the caller.
type Market struct {
	companies *store.Registry[*domain.Company]
	exchanges *store.Registry[*engine.Exchange]
	operators *store.Registry[*domain.Operator]
	trades    *store.TradeStore
	logger    *slog.Logger
}

// NewMarket creates an empty session.
func NewMarket(opts Options) *Market {
	policy := opts.Policy
	if policy == nil {
		policy = pricing.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Market{
		companies: store.NewRegistry(domain.NewCompany),
		operators: store.NewRegistry(domain.NewOperator),
		trades:    store.NewTradeStore(opts.TradeHistory),
		logger:    logger,
	}
	m.exchanges = store.NewRegistry(func(name string) (*engine.Exchange, error) {
		return engine.NewExchange(name,
			engine.WithPolicy(policy),
			engine.WithTradeRecorder(m.trades),
			engine.WithLogger(logger),
			engine.WithClock(opts.Clock),
		)
	})
	return m
}

// Company returns the session's company with the given name, creating it
// on first use.
func (m *Market) Company(name string) (*domain.Company, error) {
	return m.companies.Of(name)
}

// Exchange returns the session's exchange with the given name, creating
// it on first use.
func (m *Market) Exchange(name string) (*engine.Exchange, error) {
	return m.exchanges.Of(name)
}

// Operator returns the session's operator with the given name, creating
// it on first use.
func (m *Market) Operator(name string) (*domain.Operator, error) {
	return m.operators.Of(name)
}

// Companies returns the names of all companies in the session.
func (m *Market) Companies() []string { return m.companies.Names() }

// Exchanges returns the names of all exchanges in the session.
func (m *Market) Exchanges() []string { return m.exchanges.Names() }

// Operators returns the names of all operators in the session.
func (m *Market) Operators() []string { return m.operators.Names() }

// List quotes shares of company on exchange at unitPrice.
func (m *Market) List(company, exchange string, shares, unitPrice int64) error {
	c, e, err := m.pair(company, exchange)
	if err != nil {
		return err
	}
	if err := c.ListOn(e, shares, unitPrice); err != nil {
		return err
	}
	m.logger.Info("company listed",
		slog.String("company", company),
		slog.String("exchange", exchange),
		slog.Int64("shares", shares),
		slog.Int64("price", unitPrice),
	)
	return nil
}

// SetPolicy switches the price policy of exchange and returns the policy
// now in effect.
func (m *Market) SetPolicy(exchange, kind string, k int64) (pricing.Policy, error) {
	p, err := pricing.Parse(kind, k)
	if err != nil {
		return nil, err
	}
	e, err := m.exchanges.Of(exchange)
	if err != nil {
		return nil, err
	}
	if err := e.SetPolicy(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Buy buys quantity shares of company on exchange for operator and
// returns their cost.
func (m *Market) Buy(operator, company, exchange string, quantity int64) (int64, error) {
	op, e, err := m.trader(operator, company, exchange)
	if err != nil {
		return 0, err
	}
	return e.Buy(op.Name(), company, quantity)
}

// Sell sells quantity shares of company on exchange for operator and
// returns the revenue.
func (m *Market) Sell(operator, company, exchange string, quantity int64) (int64, error) {
	op, e, err := m.trader(operator, company, exchange)
	if err != nil {
		return 0, err
	}
	return e.Sell(op.Name(), company, quantity)
}

// Deposit adds amount to operator's budget.
func (m *Market) Deposit(operator string, amount int64) error {
	op, err := m.operators.Of(operator)
	if err != nil {
		return err
	}
	return op.Deposit(amount)
}

// Withdraw removes amount from operator's budget.
func (m *Market) Withdraw(operator string, amount int64) error {
	op, err := m.operators.Of(operator)
	if err != nil {
		return err
	}
	return op.Withdraw(amount)
}

// Budget returns operator's budget, or 0 for an operator the session has
// not seen.
func (m *Market) Budget(operator string) (int64, error) {
	op, err := m.lookupOperator(operator)
	if err != nil || op == nil {
		return 0, err
	}
	return op.Budget(), nil
}

// Price returns the current price of company on exchange. It returns
// domain.ErrNotListed unless company was listed there. Unknown names are
// not registered.
func (m *Market) Price(company, exchange string) (int64, error) {
	c, e, err := m.lookupPair(company, exchange)
	if err != nil {
		return 0, err
	}
	if c == nil || e == nil {
		return 0, domain.ErrNotListed
	}
	return c.PriceAt(e)
}

// Available returns the unallocated shares of company on exchange, or 0
// if either is unknown.
func (m *Market) Available(company, exchange string) (int64, error) {
	_, e, err := m.lookupPair(company, exchange)
	if err != nil || e == nil {
		return 0, err
	}
	return e.Available(company), nil
}

// Held returns the shares of company operator holds on exchange, or 0 if
// any of the names is unknown.
func (m *Market) Held(operator, company, exchange string) (int64, error) {
	op, err := m.lookupOperator(operator)
	if err != nil {
		return 0, err
	}
	_, e, err := m.lookupPair(company, exchange)
	if err != nil || e == nil || op == nil {
		return 0, err
	}
	return e.Held(op.Name(), company), nil
}

// Trades returns the recorded trades of company on exchange, oldest first.
func (m *Market) Trades(company, exchange string) []*domain.Trade {
	return m.trades.Get(exchange, company)
}

// Portfolio returns every holding of operator across all exchanges,
// ordered by exchange then company.
func (m *Market) Portfolio(operator string) ([]Position, error) {
	op, err := m.lookupOperator(operator)
	if err != nil || op == nil {
		return nil, err
	}

	var positions []Position
	for _, name := range m.exchanges.Names() {
		e, _ := m.exchanges.Lookup(name)
		for _, a := range e.HoldingsOf(op.Name()) {
			price, _ := e.CurrentPrice(a.Company)
			positions = append(positions, Position{
				Exchange: name,
				Company:  a.Company,
				Shares:   a.Shares,
				Price:    price,
			})
		}
	}
	return positions, nil
}

func (m *Market) pair(company, exchange string) (*domain.Company, *engine.Exchange, error) {
	c, err := m.companies.Of(company)
	if err != nil {
		return nil, nil, err
	}
	e, err := m.exchanges.Of(exchange)
	if err != nil {
		return nil, nil, err
	}
	return c, e, nil
}

// lookupPair resolves company and exchange without registering them. A
// missing name yields a nil result and no error.
func (m *Market) lookupPair(company, exchange string) (*domain.Company, *engine.Exchange, error) {
	if err := domain.ValidateName("company", company); err != nil {
		return nil, nil, err
	}
	if err := domain.ValidateName("exchange", exchange); err != nil {
		return nil, nil, err
	}
	c, _ := m.companies.Lookup(company)
	e, _ := m.exchanges.Lookup(exchange)
	return c, e, nil
}

func (m *Market) lookupOperator(name string) (*domain.Operator, error) {
	if err := domain.ValidateName("operator", name); err != nil {
		return nil, err
	}
	op, _ := m.operators.Lookup(name)
	return op, nil
}

func (m *Market) trader(operator, company, exchange string) (*domain.Operator, *engine.Exchange, error) {
	op, err := m.operators.Of(operator)
	if err != nil {
		return nil, nil, err
	}
	_, e, err := m.pair(company, exchange)
	if err != nil {
		return nil, nil, err
	}
	return op, e, nil
}
