package service

import (
	"github.com/efreitasn/borsanova/internal/domain"
	"github.com/efreitasn/borsanova/internal/engine"
)

// Share is a read-only view of one company's stock on one exchange. It
// holds no state of its own; the price is always read from the exchange.
type Share struct {
	company  *domain.Company
	exchange *engine.Exchange
}

// Share resolves company and exchange through the session registries.
// Both must already exist, otherwise domain.ErrNotFound is returned.
func (m *Market) Share(company, exchange string) (Share, error) {
	c, e, err := m.lookupPair(company, exchange)
	if err != nil {
		return Share{}, err
	}
	if c == nil || e == nil {
		return Share{}, domain.ErrNotFound
	}
	return Share{company: c, exchange: e}, nil
}

// Company returns the company name.
func (s Share) Company() string { return s.company.Name() }

// Exchange returns the exchange name.
func (s Share) Exchange() string { return s.exchange.Name() }

// Price returns the current price on the exchange.
func (s Share) Price() (int64, error) {
	return s.exchange.CurrentPrice(s.company.Name())
}

// Equal reports whether both views name the same company and exchange.
func (s Share) Equal(other Share) bool {
	return s.Company() == other.Company() && s.Exchange() == other.Exchange()
}
