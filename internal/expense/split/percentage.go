package split

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Policy returns the split policy identifier
func (s *PercentageStrategy) Policy() Policy {
	return PolicyPercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(in *Input) error {
	if err := validateCommon(in); err != nil {
		return err
	}
	if err := checkNoStrayKeys(in, in.Percentages); err != nil {
		return err
	}

	var sum float64
	for _, p := range in.Participants {
		pct, ok := in.Percentages[p.ID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingPercentage, p.ID)
		}
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: %s has %v", ErrPercentageOutOfRange, p.ID, pct)
		}
		sum += pct
	}

	if math.Abs(sum-100) > percentageTolerance {
		return fmt.Errorf("%w: got %v", ErrInvalidPercentages, sum)
	}

	return nil
}

// Calculate allocates totalCents * pct / 100 to each participant, flooring to
// cents; the remainder follows the standard remainder rule. A 0% participant
// stays in the split with a zero amount.
func (s *PercentageStrategy) Calculate(in *Input) ([]Share, error) {
	if err := s.Validate(in); err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	return buildShares(in, func(p Participant, totalCents int64) int64 {
		raw := decimal.NewFromInt(totalCents).
			Mul(decimal.NewFromFloat(in.Percentages[p.ID])).
			Div(hundred)
		return raw.Floor().IntPart()
	}), nil
}
