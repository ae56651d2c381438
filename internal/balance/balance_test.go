package balance

import (
	"testing"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func checkBalance(t *testing.T, balances map[string]decimal.Decimal, userID, want string) {
	t.Helper()
	got, ok := balances[userID]
	if !ok {
		t.Fatalf("no balance for %s", userID)
	}
	if !got.Equal(amt(want)) {
		t.Errorf("balance(%s) = %s, want %s", userID, got, want)
	}
}

func TestCalculate(t *testing.T) {
	t.Run("single expense equal split", func(t *testing.T) {
		// Alice paid 30, split 10 each across three people.
		expenses := []Expense{{
			Payers: []Line{{"alice", amt("30.00")}},
			Splits: []Line{
				{"alice", amt("10.00")},
				{"bob", amt("10.00")},
				{"carol", amt("10.00")},
			},
		}}

		balances := Calculate(expenses, nil)
		checkBalance(t, balances, "alice", "20.00")
		checkBalance(t, balances, "bob", "-10.00")
		checkBalance(t, balances, "carol", "-10.00")
	})

	t.Run("multiple payers on one expense", func(t *testing.T) {
		expenses := []Expense{{
			Payers: []Line{
				{"alice", amt("60.00")},
				{"bob", amt("40.00")},
			},
			Splits: []Line{
				{"alice", amt("50.00")},
				{"bob", amt("50.00")},
			},
		}}

		balances := Calculate(expenses, nil)
		checkBalance(t, balances, "alice", "10.00")
		checkBalance(t, balances, "bob", "-10.00")
	})

	t.Run("settlement neutrality", func(t *testing.T) {
		expenses := []Expense{{
			Payers: []Line{{"alice", amt("20.00")}},
			Splits: []Line{
				{"alice", amt("10.00")},
				{"bob", amt("10.00")},
			},
		}}
		settlements := []Settlement{
			{PayerID: "bob", PayeeID: "alice", Amount: amt("4.00")},
		}

		before := Calculate(expenses, nil)
		after := Calculate(expenses, settlements)

		if !after["bob"].Sub(before["bob"]).Equal(amt("4.00")) {
			t.Errorf("bob moved by %s, want +4.00", after["bob"].Sub(before["bob"]))
		}
		if !after["alice"].Sub(before["alice"]).Equal(amt("-4.00")) {
			t.Errorf("alice moved by %s, want -4.00", after["alice"].Sub(before["alice"]))
		}
	})

	t.Run("settlement fully clears a debt", func(t *testing.T) {
		expenses := []Expense{{
			Payers: []Line{{"alice", amt("20.00")}},
			Splits: []Line{
				{"alice", amt("10.00")},
				{"bob", amt("10.00")},
			},
		}}
		settlements := []Settlement{
			{PayerID: "bob", PayeeID: "alice", Amount: amt("10.00")},
		}

		balances := Calculate(expenses, settlements)
		checkBalance(t, balances, "alice", "0.00")
		checkBalance(t, balances, "bob", "0.00")
	})

	t.Run("empty ledger yields empty map", func(t *testing.T) {
		balances := Calculate(nil, nil)
		if len(balances) != 0 {
			t.Errorf("got %d balances, want 0", len(balances))
		}
	})

	t.Run("untouched users do not appear", func(t *testing.T) {
		expenses := []Expense{{
			Payers: []Line{{"alice", amt("5.00")}},
			Splits: []Line{{"bob", amt("5.00")}},
		}}

		balances := Calculate(expenses, nil)
		if _, ok := balances["carol"]; ok {
			t.Error("carol should not appear in balances")
		}
		if len(balances) != 2 {
			t.Errorf("got %d balances, want 2", len(balances))
		}
	})

	t.Run("order of folding does not matter", func(t *testing.T) {
		a := Expense{
			Payers: []Line{{"alice", amt("33.33")}},
			Splits: []Line{{"bob", amt("16.67")}, {"alice", amt("16.66")}},
		}
		b := Expense{
			Payers: []Line{{"bob", amt("70.01")}},
			Splits: []Line{{"alice", amt("35.01")}, {"bob", amt("35.00")}},
		}
		s := Settlement{PayerID: "alice", PayeeID: "bob", Amount: amt("12.34")}

		forward := Calculate([]Expense{a, b}, []Settlement{s})
		backward := Calculate([]Expense{b, a}, []Settlement{s})

		for userID := range forward {
			if !forward[userID].Equal(backward[userID]) {
				t.Errorf("balance(%s) depends on order: %s vs %s",
					userID, forward[userID], backward[userID])
			}
		}
	})
}

// Expenses and settlements are balance-neutral by construction, so every
// closed ledger must sum to zero exactly.
func TestCalculateConservation(t *testing.T) {
	expenses := []Expense{
		{
			Payers: []Line{{"alice", amt("100.00")}},
			Splits: []Line{
				{"alice", amt("33.34")},
				{"bob", amt("33.33")},
				{"carol", amt("33.33")},
			},
		},
		{
			Payers: []Line{{"bob", amt("45.67")}},
			Splits: []Line{
				{"bob", amt("15.23")},
				{"carol", amt("15.22")},
				{"dave", amt("15.22")},
			},
		},
		{
			Payers: []Line{{"carol", amt("9.99")}, {"dave", amt("0.01")}},
			Splits: []Line{
				{"alice", amt("5.00")},
				{"bob", amt("5.00")},
			},
		},
	}
	settlements := []Settlement{
		{PayerID: "bob", PayeeID: "alice", Amount: amt("20.00")},
		{PayerID: "carol", PayeeID: "alice", Amount: amt("13.33")},
		{PayerID: "dave", PayeeID: "bob", Amount: amt("0.01")},
	}

	balances := Calculate(expenses, settlements)

	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b)
	}
	if !sum.IsZero() {
		t.Errorf("balances sum to %s, want 0", sum)
	}
}
