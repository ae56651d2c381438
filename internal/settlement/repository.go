package settlement

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/divvyup/divvy/internal/balance"
	"github.com/divvyup/divvy/internal/money"
)

// Repository handles settlement data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new settlement
func (r *Repository) Create(ctx context.Context, req *CreateSettlementRequest, date time.Time) (*Settlement, error) {
	settlement := &Settlement{}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO settlements (id, group_id, payer_id, payee_id, amount, currency, notes, settled_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, group_id, payer_id, payee_id, amount, currency, notes, settled_on, created_at
	`,
		uuid.New().String(),
		req.GroupID,
		req.PayerID,
		req.PayeeID,
		money.FromFloat(req.Amount),
		"USD",
		req.Notes,
		date,
	).Scan(
		&settlement.ID,
		&settlement.GroupID,
		&settlement.PayerID,
		&settlement.PayeeID,
		&settlement.Amount,
		&settlement.Currency,
		&settlement.Notes,
		&settlement.Date,
		&settlement.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	return settlement, nil
}

// GetByID retrieves a settlement by its ID, including soft-deleted rows so
// the service can distinguish deleted from missing
func (r *Repository) GetByID(ctx context.Context, id string) (*Settlement, error) {
	query := `
		SELECT s.id, s.group_id, s.payer_id, s.payee_id, s.amount, s.currency,
		       s.notes, s.settled_on, s.created_at, s.deleted_at,
		       payer.name, payee.name
		FROM settlements s
		JOIN users payer ON s.payer_id = payer.id
		JOIN users payee ON s.payee_id = payee.id
		WHERE s.id = $1
	`

	settlement := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&settlement.ID,
		&settlement.GroupID,
		&settlement.PayerID,
		&settlement.PayeeID,
		&settlement.Amount,
		&settlement.Currency,
		&settlement.Notes,
		&settlement.Date,
		&settlement.CreatedAt,
		&settlement.DeletedAt,
		&settlement.PayerName,
		&settlement.PayeeName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return settlement, nil
}

// ListByGroupID retrieves the group's non-deleted settlements, newest first
func (r *Repository) ListByGroupID(ctx context.Context, groupID string, limit, offset int) ([]*Settlement, int, error) {
	// Get total count
	var total int
	countQuery := `SELECT COUNT(*) FROM settlements WHERE group_id = $1 AND deleted_at IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count settlements: %w", err)
	}

	// Get settlements
	query := `
		SELECT s.id, s.group_id, s.payer_id, s.payee_id, s.amount, s.currency,
		       s.notes, s.settled_on, s.created_at, s.deleted_at,
		       payer.name, payee.name
		FROM settlements s
		JOIN users payer ON s.payer_id = payer.id
		JOIN users payee ON s.payee_id = payee.id
		WHERE s.group_id = $1 AND s.deleted_at IS NULL
		ORDER BY s.settled_on DESC, s.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		settlement := &Settlement{}
		if err := rows.Scan(
			&settlement.ID,
			&settlement.GroupID,
			&settlement.PayerID,
			&settlement.PayeeID,
			&settlement.Amount,
			&settlement.Currency,
			&settlement.Notes,
			&settlement.Date,
			&settlement.CreatedAt,
			&settlement.DeletedAt,
			&settlement.PayerName,
			&settlement.PayeeName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	return settlements, total, rows.Err()
}

// SoftDelete marks a settlement deleted without removing its row
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE settlements SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrSettlementNotFound
	}

	return nil
}

// GroupExists reports whether the group exists
func (r *Repository) GroupExists(ctx context.Context, groupID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`, groupID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check group: %w", err)
	}
	return exists, nil
}

// IsMember reports whether the user belongs to the group
func (r *Repository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// ListForBalance loads the group's non-deleted settlements in the shape the
// balance engine consumes
func (r *Repository) ListForBalance(ctx context.Context, groupID string) ([]balance.Settlement, error) {
	query := `
		SELECT payer_id, payee_id, amount
		FROM settlements
		WHERE group_id = $1 AND deleted_at IS NULL
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlements: %w", err)
	}
	defer rows.Close()

	var settlements []balance.Settlement
	for rows.Next() {
		var s balance.Settlement
		if err := rows.Scan(&s.PayerID, &s.PayeeID, &s.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan settlement row: %w", err)
		}
		settlements = append(settlements, s)
	}

	return settlements, rows.Err()
}
