package split

import "fmt"

// =============================================================================
// SHARES SPLIT STRATEGY
// Divides the expense by integer weights (e.g. 2:1:1)
// =============================================================================

// SharesStrategy implements the Strategy interface for weighted splits
type SharesStrategy struct{}

// Policy returns the split policy identifier
func (s *SharesStrategy) Policy() Policy {
	return PolicyShares
}

// Validate checks if the inputs are valid for a weighted split
func (s *SharesStrategy) Validate(in *Input) error {
	if err := validateCommon(in); err != nil {
		return err
	}
	if err := checkNoStrayKeys(in, in.Shares); err != nil {
		return err
	}

	var totalWeight int64
	for _, p := range in.Participants {
		w, ok := in.Shares[p.ID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingShare, p.ID)
		}
		if w < 0 {
			return fmt.Errorf("%w: %s has %d", ErrNegativeShare, p.ID, w)
		}
		totalWeight += w
	}

	if totalWeight <= 0 {
		return ErrZeroTotalShares
	}

	return nil
}

// Calculate allocates totalCents * weight / totalWeight to each participant,
// flooring to cents; the remainder follows the standard remainder rule. A
// zero-weight participant stays in the split with a zero amount.
func (s *SharesStrategy) Calculate(in *Input) ([]Share, error) {
	if err := s.Validate(in); err != nil {
		return nil, err
	}

	var totalWeight int64
	for _, p := range in.Participants {
		totalWeight += in.Shares[p.ID]
	}

	return buildShares(in, func(p Participant, totalCents int64) int64 {
		return totalCents * in.Shares[p.ID] / totalWeight
	}), nil
}
