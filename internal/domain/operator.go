package domain

import (
	"fmt"
	"math"
	"sync"
)

// Operator is a trading participant with a cash budget. Share ownership
// is tracked by each exchange, not here.
type Operator struct {
	name   string
	mu     sync.Mutex
	budget int64
}

// NewOperator creates an operator with a zero budget.
func NewOperator(name string) (*Operator, error) {
	if err := ValidateName("operator", name); err != nil {
		return nil, err
	}
	return &Operator{name: name}, nil
}

// Name returns the operator's name.
func (o *Operator) Name() string {
	return o.name
}

// Budget returns the current budget.
func (o *Operator) Budget() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.budget
}

// Deposit adds amount to the budget. A deposit that would overflow the
// budget is rejected and leaves it unchanged.
func (o *Operator) Deposit(amount int64) error {
	if amount <= 0 {
		return Invalid(fmt.Sprintf("deposit amount must be > 0, got %d", amount))
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.budget > math.MaxInt64-amount {
		return Invalid(fmt.Sprintf("deposit of %d overflows budget %d", amount, o.budget))
	}
	o.budget += amount
	return nil
}

// Withdraw removes amount from the budget. It returns
// ErrInsufficientFunds without changing the budget if amount exceeds it.
func (o *Operator) Withdraw(amount int64) error {
	if amount <= 0 {
		return Invalid(fmt.Sprintf("withdrawal amount must be > 0, got %d", amount))
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if amount > o.budget {
		return ErrInsufficientFunds
	}
	o.budget -= amount
	return nil
}
