package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/divvyup/divvy/internal/expense/split"
	"github.com/divvyup/divvy/internal/money"
)

// Common errors
var (
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrPayerNotMember       = errors.New("payer is not a group member")
	ErrParticipantNotMember = errors.New("split participant is not a group member")
	ErrNotPayer             = errors.New("only a payer can delete an expense")
	ErrInvalidDate          = errors.New("invalid date")
)

// Notifier tells participants about expenses they owe a share of
type Notifier interface {
	NotifyExpenseAdded(ctx context.Context, recipientID, payerName, description, expenseID string) error
}

// Service handles expense business logic
type Service struct {
	repo         *Repository
	splitFactory *split.Factory
	notifier     Notifier
}

// NewService creates a new expense service with dependencies injected
func NewService(repo *Repository, splitFactory *split.Factory, notifier Notifier) *Service {
	return &Service{
		repo:         repo,
		splitFactory: splitFactory,
		notifier:     notifier,
	}
}

// Create validates the request against group membership, runs the split
// calculator, and persists the expense with its payer contribution and the
// computed split rows in one transaction.
func (s *Service) Create(ctx context.Context, req *CreateExpenseRequest) (*Expense, error) {
	mode := req.SplitMode
	if mode == "" {
		mode = string(split.PolicyEqual)
	}
	strategy, err := s.splitFactory.CreateFromString(mode)
	if err != nil {
		return nil, err
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.GetGroupMembers(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrGroupNotFound
	}

	memberByID := make(map[string]*Member, len(members))
	for _, m := range members {
		memberByID[m.UserID] = m
	}

	if _, ok := memberByID[req.PaidBy]; !ok {
		return nil, ErrPayerNotMember
	}

	participants := make([]split.Participant, 0, len(req.SplitAmong))
	for _, userID := range req.SplitAmong {
		m, ok := memberByID[userID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrParticipantNotMember, userID)
		}
		participants = append(participants, m.ToParticipant())
	}

	shares, err := strategy.Calculate(&split.Input{
		Total:        money.FromFloat(req.Amount),
		PayerID:      req.PaidBy,
		Participants: participants,
		Percentages:  req.Percentages,
		Shares:       req.Shares,
	})
	if err != nil {
		return nil, err
	}

	expense, err := s.repo.Create(ctx, req, split.Policy(mode), date, shares)
	if err != nil {
		return nil, err
	}

	// Notify participants best-effort; a failed notification does not fail
	// the expense.
	payer := memberByID[req.PaidBy]
	payerName := payer.Name
	if payerName == "" {
		payerName = payer.Email
	}
	for _, share := range shares {
		if share.UserID == req.PaidBy || share.Amount.IsZero() {
			continue
		}
		if err := s.notifier.NotifyExpenseAdded(ctx, share.UserID, payerName, req.Description, expense.ID); err != nil {
			slog.Warn("failed to notify participant", "expense_id", expense.ID, "user_id", share.UserID, "error", err)
		}
	}

	return s.GetByID(ctx, expense.ID)
}

// GetByID retrieves an expense with its payer contributions and splits
func (s *Service) GetByID(ctx context.Context, id string) (*Expense, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil || expense.DeletedAt != nil {
		return nil, ErrExpenseNotFound
	}

	if err := s.repo.AttachShares(ctx, expense); err != nil {
		return nil, err
	}

	return expense, nil
}

// ListByGroupID retrieves the group's non-deleted expenses, newest first
func (s *Service) ListByGroupID(ctx context.Context, groupID string, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	expenses, total, err := s.repo.ListByGroupID(ctx, groupID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	for _, e := range expenses {
		if err := s.repo.AttachShares(ctx, e); err != nil {
			return nil, 0, err
		}
	}

	return expenses, total, nil
}

// Delete soft-deletes an expense. Only a payer on the expense may delete it;
// the rows stay behind but stop contributing to balances.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if expense == nil || expense.DeletedAt != nil {
		return ErrExpenseNotFound
	}

	if err := s.repo.AttachShares(ctx, expense); err != nil {
		return err
	}

	isPayer := false
	for _, p := range expense.Payers {
		if p.UserID == userID {
			isPayer = true
			break
		}
	}
	if !isPayer {
		return ErrNotPayer
	}

	return s.repo.SoftDelete(ctx, id)
}

// parseDate accepts a date-only or RFC 3339 timestamp string.
func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, value)
}
