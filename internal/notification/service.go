package notification

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Service handles notification business logic
type Service struct {
	repo *Repository
}

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new notification
func (s *Service) Create(ctx context.Context, recipientID, message string, entityType, entityID *string) (*Notification, error) {
	return s.repo.Create(ctx, recipientID, message, entityType, entityID)
}

// ListByRecipientID retrieves all notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID string, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID string) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// Helper methods for creating specific notification types. They return only
// an error so callers can depend on a narrow interface.

// NotifyExpenseAdded tells a participant they owe a share of a new expense
func (s *Service) NotifyExpenseAdded(ctx context.Context, recipientID, payerName, description, expenseID string) error {
	message := fmt.Sprintf("%s added %q and you owe a share", payerName, description)
	entityType := "EXPENSE"
	_, err := s.repo.Create(ctx, recipientID, message, &entityType, &expenseID)
	return err
}

// NotifySettlementRecorded tells the payee a repayment was recorded to them
func (s *Service) NotifySettlementRecorded(ctx context.Context, recipientID, payerName, settlementID string) error {
	message := payerName + " recorded a payment to you"
	entityType := "SETTLEMENT"
	_, err := s.repo.Create(ctx, recipientID, message, &entityType, &settlementID)
	return err
}

// NotifyMemberJoined tells the group creator someone joined via invite
func (s *Service) NotifyMemberJoined(ctx context.Context, recipientID, memberName, groupName, groupID string) error {
	message := fmt.Sprintf("%s joined %s", memberName, groupName)
	entityType := "GROUP"
	_, err := s.repo.Create(ctx, recipientID, message, &entityType, &groupID)
	return err
}
