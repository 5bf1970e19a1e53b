package domain

import (
	"fmt"
	"slices"
	"sync"
)

// Quoter is the part of an exchange a Company needs in order to list
// itself and read its price back.
type Quoter interface {
	Name() string
	Quote(company string, shares, unitPrice int64) error
	CurrentPrice(company string) (int64, error)
}

// Listing records how a company was quoted on one exchange. It is the
// company's own read-only copy; the exchange holds the live state.
type Listing struct {
	Exchange  string
	Shares    int64
	UnitPrice int64
}

// Company is an issuer that can be quoted on any number of exchanges.
type Company struct {
	name     string
	mu       sync.RWMutex
	listings map[string]Listing // exchange name → listing
}

// NewCompany creates a company that is not listed anywhere yet.
func NewCompany(name string) (*Company, error) {
	if err := ValidateName("company", name); err != nil {
		return nil, err
	}
	return &Company{
		name:     name,
		listings: make(map[string]Listing),
	}, nil
}

// Name returns the company's name.
func (c *Company) Name() string {
	return c.name
}

// ListOn quotes shares of the company on q at the given unit price.
// Listing again on the same exchange replaces the previous listing.
func (c *Company) ListOn(q Quoter, shares, unitPrice int64) error {
	if q == nil {
		return ErrNilReference
	}
	if shares <= 0 {
		return Invalid(fmt.Sprintf("shares must be > 0, got %d", shares))
	}
	if unitPrice <= 0 {
		return Invalid(fmt.Sprintf("unit price must be > 0, got %d", unitPrice))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := q.Quote(c.name, shares, unitPrice); err != nil {
		return err
	}
	c.listings[q.Name()] = Listing{
		Exchange:  q.Name(),
		Shares:    shares,
		UnitPrice: unitPrice,
	}
	return nil
}

// PriceAt returns the current price of the company's shares on q.
// It returns ErrNotListed if the company never listed there.
func (c *Company) PriceAt(q Quoter) (int64, error) {
	if q == nil {
		return 0, ErrNilReference
	}
	if _, ok := c.Listing(q.Name()); !ok {
		return 0, ErrNotListed
	}
	return q.CurrentPrice(c.name)
}

// Listing returns the listing recorded for the named exchange.
func (c *Company) Listing(exchange string) (Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.listings[exchange]
	return l, ok
}

// Listings returns every listing ordered by exchange name.
func (c *Company) Listings() []Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Listing, 0, len(c.listings))
	for _, l := range c.listings {
		result = append(result, l)
	}
	slices.SortFunc(result, func(a, b Listing) int {
		return CompareNames(a.Exchange, b.Exchange)
	})
	return result
}
