package split

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense equally among all participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Policy returns the split policy identifier
func (s *EqualStrategy) Policy() Policy {
	return PolicyEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(in *Input) error {
	return validateCommon(in)
}

// Calculate divides the total evenly, flooring each share to cents and
// handing the remainder to the standard remainder rule.
func (s *EqualStrategy) Calculate(in *Input) ([]Share, error) {
	if err := s.Validate(in); err != nil {
		return nil, err
	}

	n := int64(len(in.Participants))
	return buildShares(in, func(_ Participant, totalCents int64) int64 {
		return totalCents / n
	}), nil
}
