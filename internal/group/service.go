package group

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/divvyup/divvy/internal/balance"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
	ErrNotAuthorized       = errors.New("not authorized to perform this action")
	ErrInviteNotFound      = errors.New("invite not found")
	ErrNameRequired        = errors.New("group name is required")
)

// ExpenseSource loads a group's expenses in balance-engine form
type ExpenseSource interface {
	ListForBalance(ctx context.Context, groupID string) ([]balance.Expense, error)
}

// SettlementSource loads a group's settlements in balance-engine form
type SettlementSource interface {
	ListForBalance(ctx context.Context, groupID string) ([]balance.Settlement, error)
}

// Notifier tells the group creator someone joined via invite
type Notifier interface {
	NotifyMemberJoined(ctx context.Context, recipientID, memberName, groupName, groupID string) error
}

// Service handles group business logic
type Service struct {
	repo        *Repository
	expenses    ExpenseSource
	settlements SettlementSource
	notifier    Notifier
}

// NewService creates a new group service
func NewService(repo *Repository, expenses ExpenseSource, settlements SettlementSource, notifier Notifier) *Service {
	return &Service{repo: repo, expenses: expenses, settlements: settlements, notifier: notifier}
}

// Create creates a new group and adds the creator as its first member
func (s *Service) Create(ctx context.Context, creatorID string, req *CreateGroupRequest) (*Group, error) {
	if req.Name == "" {
		return nil, ErrNameRequired
	}

	return s.repo.Create(ctx, creatorID, req)
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group with all its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id string) (*Group, []*GroupMember, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// ListByUserID retrieves all groups the user belongs to
func (s *Service) ListByUserID(ctx context.Context, userID string, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}

// Update modifies an existing group. Any member may edit it.
func (s *Service) Update(ctx context.Context, id, userID string, req *UpdateGroupRequest) (*Group, error) {
	if err := s.requireMember(ctx, id, userID); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, req)
}

// Delete removes a group. Only the creator may delete it.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if group.CreatedBy != userID {
		return ErrNotAuthorized
	}

	return s.repo.Delete(ctx, id)
}

// AddMember adds a user to a group
func (s *Service) AddMember(ctx context.Context, groupID string, req *AddMemberRequest) (*GroupMember, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMember(ctx, groupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberAlreadyExists
	}

	return s.repo.AddMember(ctx, groupID, req.UserID)
}

// RemoveMember removes a user from a group
func (s *Service) RemoveMember(ctx context.Context, groupID, userID string) error {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}

	return s.repo.RemoveMember(ctx, groupID, userID)
}

// CreateInvite mints a shareable join token for the group
func (s *Service) CreateInvite(ctx context.Context, groupID, userID string) (*Invite, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	return s.repo.CreateInvite(ctx, groupID, userID)
}

// JoinByToken adds the user to the group the invite token points at.
// Joining a group you already belong to is a no-op.
func (s *Service) JoinByToken(ctx context.Context, token, userID string) (*Group, error) {
	invite, err := s.repo.GetInvite(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, ErrInviteNotFound
	}

	group, err := s.GetByID(ctx, invite.GroupID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMember(ctx, invite.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return group, nil
	}

	if _, err := s.repo.AddMember(ctx, invite.GroupID, userID); err != nil {
		return nil, err
	}

	if joined, err := s.repo.GetMember(ctx, invite.GroupID, userID); err == nil && joined != nil && group.CreatedBy != userID {
		if err := s.notifier.NotifyMemberJoined(ctx, group.CreatedBy, displayName(joined), group.Name, group.ID); err != nil {
			slog.Warn("failed to notify group creator", "group_id", group.ID, "error", err)
		}
	}

	return group, nil
}

// GetBalances computes the group's net balances and the simplified debt
// graph from its live expenses and settlements.
func (s *Service) GetBalances(ctx context.Context, groupID, userID string) (*BalancesResponse, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	members, err := s.repo.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenses.ListForBalance(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.settlements.ListForBalance(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := balance.Calculate(expenses, settlements)
	debts := balance.Simplify(balances)

	nameByID := make(map[string]string, len(members))
	for _, m := range members {
		nameByID[m.UserID] = displayName(m)
	}

	// Every member appears in the snapshot, including those with a zero
	// balance and no recorded activity.
	memberBalances := make([]*MemberBalanceResponse, 0, len(members))
	for _, m := range members {
		memberBalances = append(memberBalances, &MemberBalanceResponse{
			UserID: m.UserID,
			Name:   nameByID[m.UserID],
			Amount: balances[m.UserID].InexactFloat64(),
		})
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].UserID < memberBalances[j].UserID
	})

	debtResponses := make([]*DebtResponse, 0, len(debts))
	for _, d := range debts {
		debtResponses = append(debtResponses, &DebtResponse{
			FromUserID: d.From,
			FromName:   nameByID[d.From],
			ToUserID:   d.To,
			ToName:     nameByID[d.To],
			Amount:     d.Amount.InexactFloat64(),
		})
	}

	return &BalancesResponse{
		GroupID:         groupID,
		Balances:        memberBalances,
		SimplifiedDebts: debtResponses,
	}, nil
}

func (s *Service) requireMember(ctx context.Context, groupID, userID string) error {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return err
	}

	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotAuthorized
	}
	return nil
}

func displayName(m *GroupMember) string {
	if m.Name != "" {
		return m.Name
	}
	return m.Email
}
