package balance

import (
	"testing"

	"github.com/shopspring/decimal"
)

func balancesOf(pairs map[string]string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(pairs))
	for userID, s := range pairs {
		out[userID] = amt(s)
	}
	return out
}

// netOf applies the transfers back to each participant: money flows out of
// From (+) and into To (−), so the net must reproduce the original balances.
func netOf(debts []SimplifiedDebt) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal)
	for _, d := range debts {
		net[d.From] = net[d.From].Sub(d.Amount)
		net[d.To] = net[d.To].Add(d.Amount)
	}
	return net
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]string
		want     []SimplifiedDebt
	}{
		{
			name:     "chain collapses to one transfer",
			balances: map[string]string{"a": "-20.00", "b": "0.00", "c": "20.00"},
			want: []SimplifiedDebt{
				{From: "a", To: "c", Amount: amt("20.00")},
			},
		},
		{
			name:     "two debtors one creditor",
			balances: map[string]string{"a": "-15.00", "b": "-5.00", "c": "20.00"},
			want: []SimplifiedDebt{
				{From: "a", To: "c", Amount: amt("15.00")},
				{From: "b", To: "c", Amount: amt("5.00")},
			},
		},
		{
			name:     "largest matched against largest first",
			balances: map[string]string{"a": "-10.00", "b": "-30.00", "c": "25.00", "d": "15.00"},
			want: []SimplifiedDebt{
				{From: "b", To: "c", Amount: amt("25.00")},
				{From: "b", To: "d", Amount: amt("5.00")},
				{From: "a", To: "d", Amount: amt("10.00")},
			},
		},
		{
			name:     "equal amounts break ties by user id",
			balances: map[string]string{"b": "-10.00", "a": "-10.00", "d": "10.00", "c": "10.00"},
			want: []SimplifiedDebt{
				{From: "a", To: "c", Amount: amt("10.00")},
				{From: "b", To: "d", Amount: amt("10.00")},
			},
		},
		{
			name:     "already settled yields nothing",
			balances: map[string]string{"a": "0.00", "b": "0.00"},
			want:     nil,
		},
		{
			name:     "empty ledger yields nothing",
			balances: map[string]string{},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(balancesOf(tt.balances))

			if len(got) != len(tt.want) {
				t.Fatalf("got %d transfers %v, want %d", len(got), got, len(tt.want))
			}
			for i, want := range tt.want {
				if got[i].From != want.From || got[i].To != want.To || !got[i].Amount.Equal(want.Amount) {
					t.Errorf("transfer %d = {%s -> %s %s}, want {%s -> %s %s}",
						i, got[i].From, got[i].To, got[i].Amount,
						want.From, want.To, want.Amount)
				}
			}
		})
	}
}

func TestSimplifyProperties(t *testing.T) {
	cases := []map[string]string{
		{"a": "-20.00", "b": "0.00", "c": "20.00"},
		{"a": "-1.00", "b": "-2.00", "c": "-3.00", "d": "6.00"},
		{"a": "-0.01", "b": "0.01"},
		{"a": "-99.99", "b": "33.33", "c": "33.33", "d": "33.33"},
		{"a": "-50.00", "b": "-50.00", "c": "-50.00", "d": "75.00", "e": "75.00"},
	}

	for _, c := range cases {
		balances := balancesOf(c)
		debts := Simplify(balances)

		for _, d := range debts {
			if !d.Amount.IsPositive() {
				t.Errorf("non-positive transfer %s -> %s: %s", d.From, d.To, d.Amount)
			}
			if d.From == d.To {
				t.Errorf("self transfer for %s", d.From)
			}
		}

		net := netOf(debts)
		for userID, want := range balances {
			if !net[userID].Equal(want) {
				t.Errorf("netting transfers gives %s for %s, balance was %s",
					net[userID], userID, want)
			}
		}
	}
}

func TestCalculateThenSimplify(t *testing.T) {
	// End to end: ledger rows in, settling transfers out.
	expenses := []Expense{{
		Payers: []Line{{"alice", amt("100.00")}},
		Splits: []Line{
			{"alice", amt("33.34")},
			{"bob", amt("33.33")},
			{"carol", amt("33.33")},
		},
	}}
	settlements := []Settlement{
		{PayerID: "bob", PayeeID: "alice", Amount: amt("33.33")},
	}

	debts := Simplify(Calculate(expenses, settlements))

	if len(debts) != 1 {
		t.Fatalf("got %d transfers, want 1: %v", len(debts), debts)
	}
	d := debts[0]
	if d.From != "carol" || d.To != "alice" || !d.Amount.Equal(amt("33.33")) {
		t.Errorf("transfer = {%s -> %s %s}, want {carol -> alice 33.33}", d.From, d.To, d.Amount)
	}
}
