package split

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

var (
	alice = Participant{ID: "u-alice", Name: "Alice", Email: "alice@example.com"}
	bob   = Participant{ID: "u-bob", Name: "Bob", Email: "bob@example.com"}
	carol = Participant{ID: "u-carol", Name: "Carol", Email: "carol@example.com"}
)

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func shareMap(shares []Share) map[string]string {
	out := make(map[string]string, len(shares))
	for _, s := range shares {
		out[s.UserID] = s.Amount.StringFixed(2)
	}
	return out
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		in      *Input
		want    map[string]string
		wantErr error
	}{
		{
			name:   "equal three-way remainder goes to payer",
			policy: PolicyEqual,
			in: &Input{
				Total:        amount("100.00"),
				PayerID:      alice.ID,
				Participants: []Participant{carol, alice, bob},
			},
			want: map[string]string{
				alice.ID: "33.34",
				bob.ID:   "33.33",
				carol.ID: "33.33",
			},
		},
		{
			name:   "equal two-way no remainder",
			policy: PolicyEqual,
			in: &Input{
				Total:        amount("10.00"),
				PayerID:      alice.ID,
				Participants: []Participant{bob, carol},
			},
			want: map[string]string{
				bob.ID:   "5.00",
				carol.ID: "5.00",
			},
		},
		{
			name:   "equal payer outside split remainder to first by name",
			policy: PolicyEqual,
			in: &Input{
				Total:        amount("10.00"),
				PayerID:      alice.ID,
				Participants: []Participant{carol, bob, {ID: "u-dave", Name: "Dave"}},
			},
			want: map[string]string{
				bob.ID:   "3.34",
				carol.ID: "3.33",
				"u-dave": "3.33",
			},
		},
		{
			name:   "payer absorbs multi-cent remainder",
			policy: PolicyEqual,
			in: &Input{
				Total:        amount("100.01"),
				PayerID:      carol.ID,
				Participants: []Participant{alice, bob, carol},
			},
			want: map[string]string{
				alice.ID: "33.33",
				bob.ID:   "33.33",
				carol.ID: "33.35",
			},
		},
		{
			name:   "percentage exact with no remainder",
			policy: PolicyPercentage,
			in: &Input{
				Total:        amount("90.00"),
				PayerID:      alice.ID,
				Participants: []Participant{alice, bob, carol},
				Percentages:  map[string]float64{alice.ID: 50, bob.ID: 30, carol.ID: 20},
			},
			want: map[string]string{
				alice.ID: "45.00",
				bob.ID:   "27.00",
				carol.ID: "18.00",
			},
		},
		{
			name:   "percentage with zero-percent participant",
			policy: PolicyPercentage,
			in: &Input{
				Total:        amount("50.00"),
				PayerID:      alice.ID,
				Participants: []Participant{alice, bob, carol},
				Percentages:  map[string]float64{alice.ID: 100, bob.ID: 0, carol.ID: 0},
			},
			want: map[string]string{
				alice.ID: "50.00",
				bob.ID:   "0.00",
				carol.ID: "0.00",
			},
		},
		{
			name:   "shares weighted 2:1:1",
			policy: PolicyShares,
			in: &Input{
				Total:        amount("90.00"),
				PayerID:      alice.ID,
				Participants: []Participant{alice, bob, carol},
				Shares:       map[string]int64{alice.ID: 2, bob.ID: 1, carol.ID: 1},
			},
			want: map[string]string{
				alice.ID: "45.00",
				bob.ID:   "22.50",
				carol.ID: "22.50",
			},
		},
		{
			name:   "shares 1:2 payer outside split remainder to first by name",
			policy: PolicyShares,
			in: &Input{
				Total:        amount("10.00"),
				PayerID:      alice.ID,
				Participants: []Participant{bob, carol},
				Shares:       map[string]int64{bob.ID: 1, carol.ID: 2},
			},
			want: map[string]string{
				bob.ID:   "3.34",
				carol.ID: "6.66",
			},
		},
		{
			name:   "shares zero-weight participant stays at zero",
			policy: PolicyShares,
			in: &Input{
				Total:        amount("30.00"),
				PayerID:      bob.ID,
				Participants: []Participant{alice, bob, carol},
				Shares:       map[string]int64{alice.ID: 1, bob.ID: 0, carol.ID: 2},
			},
			want: map[string]string{
				alice.ID: "10.00",
				bob.ID:   "0.00",
				carol.ID: "20.00",
			},
		},
		{
			name:   "percentages not summing to 100 rejected",
			policy: PolicyPercentage,
			in: &Input{
				Total:        amount("90.00"),
				PayerID:      alice.ID,
				Participants: []Participant{alice, bob, carol},
				Percentages:  map[string]float64{alice.ID: 50, bob.ID: 30, carol.ID: 10},
			},
			wantErr: ErrInvalidPercentages,
		},
		{
			name:   "missing percentage entry rejected",
			policy: PolicyPercentage,
			in: &Input{
				Total:        amount("90.00"),
				PayerID:      alice.ID,
				Participants: []Participant{alice, bob},
				Percentages:  map[string]float64{alice.ID: 100},
			},
			wantErr: ErrMissingPercentage,
		},
		{
			name:   "percentage for non-participant rejected",
			policy: PolicyPercentage,
			in: &Input{
				Total:        amount("90.00"),
				PayerID:      alice.ID,
				Participants: []Participant{alice, bob},
				Percentages:  map[string]float64{alice.ID: 50, bob.ID: 50, carol.ID: 0},
			},
			wantErr: ErrUnknownParticipant,
		},
		{
			name:   "percentage out of range rejected",
			policy: PolicyPercentage,
			in: &Input{
				Total:        amount("90.00"),
				PayerID:      alice.ID,
				Participants: []Participant{alice, bob},
				Percentages:  map[string]float64{alice.ID: 150, bob.ID: -50},
			},
			wantErr: ErrPercentageOutOfRange,
		},
		{
			name:   "negative share weight rejected",
			policy: PolicyShares,
			in: &Input{
				Total:        amount("90.00"),
				PayerID:      alice.ID,
				Participants: []Participant{alice, bob},
				Shares:       map[string]int64{alice.ID: -1, bob.ID: 2},
			},
			wantErr: ErrNegativeShare,
		},
		{
			name:   "all-zero share weights rejected",
			policy: PolicyShares,
			in: &Input{
				Total:        amount("90.00"),
				PayerID:      alice.ID,
				Participants: []Participant{alice, bob},
				Shares:       map[string]int64{alice.ID: 0, bob.ID: 0},
			},
			wantErr: ErrZeroTotalShares,
		},
		{
			name:   "missing share entry rejected",
			policy: PolicyShares,
			in: &Input{
				Total:        amount("90.00"),
				PayerID:      alice.ID,
				Participants: []Participant{alice, bob},
				Shares:       map[string]int64{alice.ID: 1},
			},
			wantErr: ErrMissingShare,
		},
		{
			name:   "empty participant set rejected",
			policy: PolicyEqual,
			in: &Input{
				Total:   amount("90.00"),
				PayerID: alice.ID,
			},
			wantErr: ErrNoParticipants,
		},
		{
			name:   "duplicate participant rejected",
			policy: PolicyEqual,
			in: &Input{
				Total:        amount("90.00"),
				PayerID:      alice.ID,
				Participants: []Participant{alice, alice},
			},
			wantErr: ErrDuplicateParticipant,
		},
		{
			name:   "non-positive amount rejected",
			policy: PolicyEqual,
			in: &Input{
				Total:        amount("0"),
				PayerID:      alice.ID,
				Participants: []Participant{alice, bob},
			},
			wantErr: ErrNonPositiveAmount,
		},
	}

	factory := NewSplitStrategyFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := factory.Create(tt.policy)
			if err != nil {
				t.Fatalf("Create(%s): %v", tt.policy, err)
			}

			shares, err := strategy.Calculate(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Calculate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate() unexpected error: %v", err)
			}

			if len(shares) != len(tt.in.Participants) {
				t.Fatalf("got %d shares, want %d", len(shares), len(tt.in.Participants))
			}
			got := shareMap(shares)
			for userID, want := range tt.want {
				if got[userID] != want {
					t.Errorf("share for %s = %s, want %s", userID, got[userID], want)
				}
			}

			sum := decimal.Zero
			for _, s := range shares {
				if s.Amount.IsNegative() {
					t.Errorf("negative share for %s: %s", s.UserID, s.Amount)
				}
				sum = sum.Add(s.Amount)
			}
			if !sum.Equal(tt.in.Total.Round(2)) {
				t.Errorf("shares sum to %s, want %s", sum, tt.in.Total)
			}
		})
	}
}

// Conservation must hold for every policy across awkward totals and sizes.
func TestCalculateConservation(t *testing.T) {
	people := []Participant{
		alice, bob, carol,
		{ID: "u-dave", Name: "Dave"},
		{ID: "u-eve", Name: "eve"},
		{ID: "u-frank", Email: "frank@example.com"},
		{ID: "u-grace", Name: "Grace"},
	}
	totals := []string{"0.01", "0.10", "1.00", "10.01", "99.97", "100.00", "1234.56", "33333.33"}

	factory := NewSplitStrategyFactory()
	for n := 1; n <= len(people); n++ {
		participants := people[:n]
		for _, totalStr := range totals {
			total := amount(totalStr)

			pcts := make(map[string]float64, n)
			weights := make(map[string]int64, n)
			for i, p := range participants {
				pcts[p.ID] = 100.0 / float64(n)
				weights[p.ID] = int64(i + 1)
			}
			// Fix up float drift so the sum is within tolerance.
			inputs := []*Input{
				{Total: total, PayerID: participants[0].ID, Participants: participants},
				{Total: total, PayerID: participants[0].ID, Participants: participants, Percentages: pcts},
				{Total: total, PayerID: participants[0].ID, Participants: participants, Shares: weights},
			}

			for i, policy := range []Policy{PolicyEqual, PolicyPercentage, PolicyShares} {
				strategy, _ := factory.Create(policy)
				shares, err := strategy.Calculate(inputs[i])
				if err != nil {
					t.Fatalf("%s n=%d total=%s: %v", policy, n, totalStr, err)
				}
				sum := decimal.Zero
				seen := make(map[string]bool, len(shares))
				for _, s := range shares {
					if seen[s.UserID] {
						t.Errorf("%s n=%d total=%s: %s appears twice", policy, n, totalStr, s.UserID)
					}
					seen[s.UserID] = true
					if s.Amount.IsNegative() {
						t.Errorf("%s n=%d total=%s: negative share %s", policy, n, totalStr, s.Amount)
					}
					sum = sum.Add(s.Amount)
				}
				if !sum.Equal(total) {
					t.Errorf("%s n=%d total=%s: shares sum to %s", policy, n, totalStr, sum)
				}
				if len(seen) != n {
					t.Errorf("%s n=%d total=%s: %d participants in result", policy, n, totalStr, len(seen))
				}
			}
		}
	}
}

func TestCalculateOrdering(t *testing.T) {
	// Output order is case-insensitive display-name order, name falling back
	// to email, ties broken by id.
	anon := Participant{ID: "u-anon", Email: "Aaron@example.com"}
	bobUpper := Participant{ID: "u-bob2", Name: "BOB"}
	in := &Input{
		Total:        amount("40.00"),
		PayerID:      "someone-else",
		Participants: []Participant{carol, bobUpper, bob, anon},
	}

	strategy := &EqualStrategy{}
	shares, err := strategy.Calculate(in)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	wantOrder := []string{anon.ID, bob.ID, bobUpper.ID, carol.ID}
	for i, want := range wantOrder {
		if shares[i].UserID != want {
			t.Errorf("position %d = %s, want %s", i, shares[i].UserID, want)
		}
	}
}

func TestFactoryRejectsUnknownPolicy(t *testing.T) {
	factory := NewSplitStrategyFactory()
	if _, err := factory.CreateFromString("EXACT"); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("CreateFromString(EXACT) = %v, want ErrUnknownPolicy", err)
	}
}
