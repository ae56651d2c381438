package balance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/divvyup/divvy/internal/money"
)

// SimplifiedDebt says From should pay To the given (strictly positive)
// amount to settle net positions.
type SimplifiedDebt struct {
	From   string
	To     string
	Amount decimal.Decimal
}

type party struct {
	userID string
	cents  int64
}

// Simplify collapses net balances into settling transfers by greedily
// matching the largest creditor against the largest debtor. The result fully
// settles the ledger and is minimal for the common one-creditor-cluster /
// one-debtor-cluster topology; certain cyclic debt graphs admit fewer
// transfers, which is accepted.
//
// Balances within 0.001 currency units of zero count as settled. Working in
// integer cents that threshold is sub-resolution, so the effective rule is
// that any whole-cent balance participates. An empty balance map yields an
// empty transfer list.
func Simplify(balances map[string]decimal.Decimal) []SimplifiedDebt {
	var creditors, debtors []party
	for userID, b := range balances {
		c := money.ToCents(b)
		switch {
		case c > 0:
			creditors = append(creditors, party{userID, c})
		case c < 0:
			debtors = append(debtors, party{userID, -c})
		}
	}

	// Largest first; user id breaks ties so output is deterministic.
	byAmountDesc := func(ps []party) func(i, j int) bool {
		return func(i, j int) bool {
			if ps[i].cents != ps[j].cents {
				return ps[i].cents > ps[j].cents
			}
			return ps[i].userID < ps[j].userID
		}
	}
	sort.Slice(creditors, byAmountDesc(creditors))
	sort.Slice(debtors, byAmountDesc(debtors))

	var debts []SimplifiedDebt
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		transfer := creditors[i].cents
		if debtors[j].cents < transfer {
			transfer = debtors[j].cents
		}

		if transfer > 0 {
			debts = append(debts, SimplifiedDebt{
				From:   debtors[j].userID,
				To:     creditors[i].userID,
				Amount: money.FromCents(transfer),
			})
		}

		creditors[i].cents -= transfer
		debtors[j].cents -= transfer

		if creditors[i].cents == 0 {
			i++
		}
		if debtors[j].cents == 0 {
			j++
		}
	}

	return debts
}
