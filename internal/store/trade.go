package store

import (
	"sync"

	"github.com/efreitasn/borsanova/internal/domain"
)

// tradeKey identifies one company's trade list on one exchange.
type tradeKey struct {
	exchange string
	company  string
}

// TradeStore is a thread-safe in-memory store for trades, keyed by
// (exchange, company). Trades are append-only and chronological.
type TradeStore struct {
	mu     sync.RWMutex
	limit  int
	trades map[tradeKey][]*domain.Trade
}

// NewTradeStore creates an empty TradeStore. When limit is positive only
// the most recent limit trades are kept per (exchange, company).
func NewTradeStore(limit int) *TradeStore {
	return &TradeStore{
		limit:  limit,
		trades: make(map[tradeKey][]*domain.Trade),
	}
}

// Record appends a trade to its (exchange, company) list.
func (s *TradeStore) Record(t *domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tradeKey{exchange: t.Exchange, company: t.Company}
	list := append(s.trades[key], t)
	if s.limit > 0 && len(list) > s.limit {
		list = list[len(list)-s.limit:]
	}
	s.trades[key] = list
}

// Get returns the trades of company on exchange in chronological order.
// Returns an empty slice if no trades exist.
func (s *TradeStore) Get(exchange, company string) []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades := s.trades[tradeKey{exchange: exchange, company: company}]
	if trades == nil {
		return []*domain.Trade{}
	}

	// Return a copy to avoid callers mutating the internal slice.
	result := make([]*domain.Trade, len(trades))
	copy(result, trades)
	return result
}

// Last returns the most recent trade of company on exchange.
func (s *TradeStore) Last(exchange, company string) (*domain.Trade, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades := s.trades[tradeKey{exchange: exchange, company: company}]
	if len(trades) == 0 {
		return nil, false
	}
	return trades[len(trades)-1], true
}
