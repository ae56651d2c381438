// Package split partitions an expense total among participants in exact
// integer cents. Each allocation policy floors the raw ideal shares first and
// then assigns the leftover cents: the payer absorbs the whole remainder when
// they are part of the split, otherwise remainder cents go one at a time to
// participants in display-name order. The resulting amounts always sum to the
// original total.
package split

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/divvyup/divvy/internal/money"
)

// Policy defines the allocation policy for a split
type Policy string

const (
	PolicyEqual      Policy = "EQUAL"
	PolicyPercentage Policy = "PERCENTAGE"
	PolicyShares     Policy = "SHARES"
)

// percentageTolerance is how far a percentage sum may deviate from 100
// before the input is rejected.
const percentageTolerance = 0.01

// Participant identifies one member of a split. Name (falling back to Email)
// is only used for the deterministic remainder ordering.
type Participant struct {
	ID    string
	Name  string
	Email string
}

// Input carries everything a strategy needs to compute a split.
type Input struct {
	Total        decimal.Decimal
	PayerID      string
	Participants []Participant
	Percentages  map[string]float64 // PERCENTAGE only
	Shares       map[string]int64   // SHARES only
}

// Share is one participant's computed portion of the total.
type Share struct {
	UserID string
	Amount decimal.Decimal
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes the per-participant amounts, in display-name order
	Calculate(in *Input) ([]Share, error)

	// Policy returns the policy identifier for this strategy
	Policy() Policy

	// Validate checks if the inputs are valid for this strategy
	Validate(in *Input) error
}

// Factory creates split strategies based on the requested policy
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the policy
func (f *Factory) Create(p Policy) (Strategy, error) {
	switch p {
	case PolicyEqual:
		return &EqualStrategy{}, nil
	case PolicyPercentage:
		return &PercentageStrategy{}, nil
	case PolicyShares:
		return &SharesStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, p)
	}
}

// CreateFromString creates a strategy from a string policy (useful for API requests)
func (f *Factory) CreateFromString(p string) (Strategy, error) {
	return f.Create(Policy(p))
}

var (
	ErrUnknownPolicy        = errors.New("unknown split policy")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrDuplicateParticipant = errors.New("duplicate participant in split")
	ErrNonPositiveAmount    = errors.New("amount must be positive")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrMissingShare         = errors.New("share weight required for all participants")
	ErrNegativeShare        = errors.New("share weights cannot be negative")
	ErrZeroTotalShares      = errors.New("total share weight must be positive")
	ErrUnknownParticipant   = errors.New("parameters reference a user outside the split")
)

// validateCommon checks the constraints shared by every policy.
func validateCommon(in *Input) error {
	if len(in.Participants) == 0 {
		return ErrNoParticipants
	}
	if !in.Total.IsPositive() {
		return ErrNonPositiveAmount
	}
	seen := make(map[string]struct{}, len(in.Participants))
	for _, p := range in.Participants {
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// checkNoStrayKeys rejects parameter maps that mention users outside the split.
func checkNoStrayKeys[V any](in *Input, params map[string]V) error {
	ids := make(map[string]struct{}, len(in.Participants))
	for _, p := range in.Participants {
		ids[p.ID] = struct{}{}
	}
	for id := range params {
		if _, ok := ids[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownParticipant, id)
		}
	}
	return nil
}

// displayName returns the string a participant sorts by: name, falling back
// to email for accounts without one.
func displayName(p Participant) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

// sortedParticipants returns a copy ordered case-insensitively by display
// name, with the ID as the tie-break.
func sortedParticipants(ps []Participant) []Participant {
	out := make([]Participant, len(ps))
	copy(out, ps)
	sort.Slice(out, func(i, j int) bool {
		a := strings.ToLower(displayName(out[i]))
		b := strings.ToLower(displayName(out[j]))
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// buildShares runs the shared two-phase scheme: floor every raw share to
// cents via rawCents, hand the remainder to distributeRemainder, and convert
// back to decimals in sorted participant order.
func buildShares(in *Input, rawCents func(p Participant, totalCents int64) int64) []Share {
	totalCents := money.ToCents(in.Total)
	sorted := sortedParticipants(in.Participants)

	cents := make([]int64, len(sorted))
	var distributed int64
	for i, p := range sorted {
		cents[i] = rawCents(p, totalCents)
		distributed += cents[i]
	}

	distributeRemainder(cents, sorted, totalCents-distributed, in.PayerID)

	shares := make([]Share, len(sorted))
	for i, p := range sorted {
		shares[i] = Share{UserID: p.ID, Amount: money.FromCents(cents[i])}
	}
	return shares
}

// distributeRemainder assigns the cents left over after flooring. The payer
// absorbs the whole remainder when part of the split; otherwise cents go one
// at a time to participants in display-name order. A negative remainder (a
// percentage sum sitting at the far edge of the tolerance on a large total)
// is taken back in reverse order, never pushing an amount below zero.
func distributeRemainder(cents []int64, sorted []Participant, remainder int64, payerID string) {
	if remainder == 0 {
		return
	}
	for i, p := range sorted {
		if p.ID == payerID {
			if cents[i]+remainder >= 0 {
				cents[i] += remainder
				return
			}
			break
		}
	}
	for i := 0; remainder > 0; i = (i + 1) % len(cents) {
		cents[i]++
		remainder--
	}
	for i := len(cents) - 1; remainder < 0; i = (i - 1 + len(cents)) % len(cents) {
		if cents[i] > 0 {
			cents[i]--
			remainder++
		}
	}
}
