package engine

import (
	"github.com/google/btree"
)

// Allocation is the number of shares of one company an operator holds
// at an exchange.
type Allocation struct {
	Company  string
	Operator string
	Shares   int64
}

// allocationLess orders allocations by company, then operator. All
// allocations of one company are contiguous, with holders in name order.
func allocationLess(a, b Allocation) bool {
	if a.Company != b.Company {
		return a.Company < b.Company
	}
	return a.Operator < b.Operator
}

// ledger holds the per-(company, operator) allocations of one exchange.
// Entries whose share count drops to zero are removed, so absence means
// zero. Callers serialize access.
type ledger struct {
	tree *btree.BTreeG[Allocation]
}

func newLedger() *ledger {
	const degree = 16
	return &ledger{tree: btree.NewG[Allocation](degree, allocationLess)}
}

// held returns the operator's allocation of company, or 0.
func (l *ledger) held(company, operator string) int64 {
	a, ok := l.tree.Get(Allocation{Company: company, Operator: operator})
	if !ok {
		return 0
	}
	return a.Shares
}

// add adjusts an allocation by delta. The caller guarantees the result
// is not negative.
func (l *ledger) add(company, operator string, delta int64) {
	shares := l.held(company, operator) + delta
	key := Allocation{Company: company, Operator: operator}
	if shares == 0 {
		l.tree.Delete(key)
		return
	}
	key.Shares = shares
	l.tree.ReplaceOrInsert(key)
}

// holders returns the non-zero allocations of company in operator order.
func (l *ledger) holders(company string) []Allocation {
	var result []Allocation
	l.tree.AscendGreaterOrEqual(Allocation{Company: company}, func(a Allocation) bool {
		if a.Company != company {
			return false
		}
		result = append(result, a)
		return true
	})
	return result
}

// total returns the sum of all allocations of company.
func (l *ledger) total(company string) int64 {
	var sum int64
	for _, a := range l.holders(company) {
		sum += a.Shares
	}
	return sum
}

// byOperator returns every non-zero allocation held by operator, in
// company order.
func (l *ledger) byOperator(operator string) []Allocation {
	var result []Allocation
	l.tree.Ascend(func(a Allocation) bool {
		if a.Operator == operator {
			result = append(result, a)
		}
		return true
	})
	return result
}
