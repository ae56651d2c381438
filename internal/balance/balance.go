// Package balance derives net positions from a ledger of expenses and
// settlements and collapses them into a minimal set of settling transfers.
// Everything here is pure computation over immutable inputs: no I/O, no
// shared state, safe to call concurrently. Callers must pass a consistent
// snapshot of the ledger with soft-deleted rows already filtered out.
//
// Amounts accumulate in integer cents, so the result is independent of
// input order and free of floating-point drift.
package balance

import (
	"github.com/shopspring/decimal"

	"github.com/divvyup/divvy/internal/money"
)

// Line is one (user, amount) row of an expense: a payer contribution or a
// split share.
type Line struct {
	UserID string
	Amount decimal.Decimal
}

// Expense is the slice of an expense record the engine needs. Payers may
// list more than one contributor; Splits is the persisted split result.
type Expense struct {
	Payers []Line
	Splits []Line
}

// Settlement records that PayerID transferred Amount to PayeeID to reduce
// a debt.
type Settlement struct {
	PayerID string
	PayeeID string
	Amount  decimal.Decimal
}

// Calculate folds expenses and settlements into a net balance per user.
// Positive means the user is owed money, negative means the user owes.
//
//   - expense payer contributions add to the payer's balance
//   - expense split lines subtract from each participant's balance
//   - a settlement adds to the payer (their debt shrinks) and subtracts
//     from the payee (what they are owed shrinks)
//
// Users absent from every record do not appear in the result. In a closed
// ledger the balances sum to zero.
func Calculate(expenses []Expense, settlements []Settlement) map[string]decimal.Decimal {
	cents := make(map[string]int64)

	for _, e := range expenses {
		for _, p := range e.Payers {
			cents[p.UserID] += money.ToCents(p.Amount)
		}
		for _, s := range e.Splits {
			cents[s.UserID] -= money.ToCents(s.Amount)
		}
	}

	for _, s := range settlements {
		amt := money.ToCents(s.Amount)
		cents[s.PayerID] += amt
		cents[s.PayeeID] -= amt
	}

	balances := make(map[string]decimal.Decimal, len(cents))
	for userID, c := range cents {
		balances[userID] = money.FromCents(c)
	}
	return balances
}
