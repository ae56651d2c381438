package settlement

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DeletionWindow is how long after creation a settlement can still be
// deleted by one of its parties.
const DeletionWindow = 24 * time.Hour

// Common errors
var (
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrSelfSettlement     = errors.New("payer and payee must be different users")
	ErrNonPositiveAmount  = errors.New("amount must be positive")
	ErrPartyNotMember     = errors.New("payer and payee must both be group members")
	ErrNotParty           = errors.New("only the payer or payee can delete a settlement")
	ErrWindowClosed       = errors.New("settlements can only be deleted within 24 hours of creation")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD or RFC 3339")
)

// Notifier tells the payee a repayment was recorded to them
type Notifier interface {
	NotifySettlementRecorded(ctx context.Context, recipientID, payerName, settlementID string) error
}

// Service handles settlement business logic
type Service struct {
	repo     *Repository
	notifier Notifier
}

// NewService creates a new settlement service
func NewService(repo *Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Create records a repayment between two members of a group
func (s *Service) Create(ctx context.Context, req *CreateSettlementRequest) (*Settlement, error) {
	if req.PayerID == req.PayeeID {
		return nil, ErrSelfSettlement
	}
	if req.Amount <= 0 {
		return nil, ErrNonPositiveAmount
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			return nil, err
		}
		date = parsed
	}

	exists, err := s.repo.GroupExists(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGroupNotFound
	}

	for _, userID := range []string{req.PayerID, req.PayeeID} {
		member, err := s.repo.IsMember(ctx, req.GroupID, userID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrPartyNotMember
		}
	}

	created, err := s.repo.Create(ctx, req, date)
	if err != nil {
		return nil, err
	}

	// Re-read for the joined payer and payee names
	settlement, err := s.GetByID(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifySettlementRecorded(ctx, settlement.PayeeID, settlement.PayerName, settlement.ID); err != nil {
		slog.Warn("failed to notify payee", "settlement_id", settlement.ID, "error", err)
	}

	return settlement, nil
}

// GetByID retrieves a settlement by its ID. Soft-deleted settlements are
// treated as missing.
func (s *Service) GetByID(ctx context.Context, id string) (*Settlement, error) {
	settlement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement == nil || settlement.DeletedAt != nil {
		return nil, ErrSettlementNotFound
	}
	return settlement, nil
}

// ListByGroupID retrieves the group's non-deleted settlements, newest first
func (s *Service) ListByGroupID(ctx context.Context, groupID string, page, perPage int) ([]*Settlement, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroupID(ctx, groupID, perPage, offset)
}

// Delete soft-deletes a settlement. Only the payer or payee may delete it,
// and only within DeletionWindow of when it was recorded.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	settlement, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if settlement.PayerID != userID && settlement.PayeeID != userID {
		return ErrNotParty
	}
	if time.Since(settlement.CreatedAt) > DeletionWindow {
		return ErrWindowClosed
	}

	return s.repo.SoftDelete(ctx, id)
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}
