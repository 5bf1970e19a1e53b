package domain

import "time"

// Side indicates whether a trade took shares out of an exchange's
// inventory (buy) or returned them (sell).
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Trade records one completed transaction between an operator and an
// exchange's inventory.
type Trade struct {
	TradeID    string
	Exchange   string
	Company    string
	Operator   string
	Side       Side
	Quantity   int64
	Price      int64 // unit price before the trade; Total is computed from it
	Total      int64
	PriceAfter int64 // unit price produced by the exchange's policy
	ExecutedAt time.Time
}
