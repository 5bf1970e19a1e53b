// Package pricing holds the rules an exchange uses to move a company's
// price after each trade.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/efreitasn/borsanova/internal/domain"
)

// Policy computes the price that follows a completed trade. Update
// receives the price before the trade and must not keep any state.
type Policy interface {
	Update(current, quantity int64, purchase bool) int64
	Name() string
}

// Policy kinds accepted by Parse.
const (
	KindIncrement = "increment"
	KindDecrement = "decrement"
)

// ConstantIncrement raises the price by a constant after every purchase
// and leaves it unchanged after a sale. The price saturates at
// math.MaxInt64. The zero value never moves the price.
type ConstantIncrement struct {
	k int64
}

// NewConstantIncrement returns a ConstantIncrement policy. k must be >= 0.
func NewConstantIncrement(k int64) (ConstantIncrement, error) {
	if k < 0 {
		return ConstantIncrement{}, domain.Invalid(fmt.Sprintf("increment must be >= 0, got %d", k))
	}
	return ConstantIncrement{k: k}, nil
}

func (p ConstantIncrement) Update(current, _ int64, purchase bool) int64 {
	if !purchase {
		return current
	}
	if current > math.MaxInt64-p.k {
		return math.MaxInt64
	}
	return current + p.k
}

// K returns the increment applied after a purchase.
func (p ConstantIncrement) K() int64 { return p.k }

func (p ConstantIncrement) Name() string {
	return fmt.Sprintf("%s(%d)", KindIncrement, p.k)
}

// ConstantDecrement lowers the price by a constant after every sale,
// never below 1, and leaves it unchanged after a purchase.
type ConstantDecrement struct {
	k int64
}

// NewConstantDecrement returns a ConstantDecrement policy. k must be >= 0.
func NewConstantDecrement(k int64) (ConstantDecrement, error) {
	if k < 0 {
		return ConstantDecrement{}, domain.Invalid(fmt.Sprintf("decrement must be >= 0, got %d", k))
	}
	return ConstantDecrement{k: k}, nil
}

func (p ConstantDecrement) Update(current, _ int64, purchase bool) int64 {
	if purchase {
		return current
	}
	if next := current - p.k; next > 0 {
		return next
	}
	return 1
}

// K returns the decrement applied after a sale.
func (p ConstantDecrement) K() int64 { return p.k }

func (p ConstantDecrement) Name() string {
	return fmt.Sprintf("%s(%d)", KindDecrement, p.k)
}

// Default is the policy of a freshly created exchange: prices stay put.
func Default() Policy {
	return ConstantIncrement{}
}

// Kinds lists the policy kinds Parse understands.
func Kinds() []string {
	return []string{KindIncrement, KindDecrement}
}

// Parse builds a policy from its kind and constant.
func Parse(kind string, k int64) (Policy, error) {
	switch strings.ToLower(kind) {
	case KindIncrement:
		return NewConstantIncrement(k)
	case KindDecrement:
		return NewConstantDecrement(k)
	}
	return nil, domain.Invalid(fmt.Sprintf("unknown price policy %q, must be one of: %s",
		kind, strings.Join(Kinds(), ", ")))
}
