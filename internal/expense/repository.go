package expense

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/divvyup/divvy/internal/balance"
	"github.com/divvyup/divvy/internal/expense/split"
	"github.com/divvyup/divvy/internal/money"
)

// Repository handles expense data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an expense, the payer contribution, and the split rows in
// one transaction so a partially written expense can never reach balances.
func (r *Repository) Create(ctx context.Context, req *CreateExpenseRequest, mode split.Policy, date time.Time, shares []split.Share) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	expense := &Expense{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO expenses (id, group_id, description, amount, currency, split_mode, expense_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, group_id, description, amount, currency, split_mode, expense_date, created_at
	`,
		uuid.New().String(),
		req.GroupID,
		req.Description,
		money.FromFloat(req.Amount),
		"USD",
		mode,
		date,
	).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.Description,
		&expense.Amount,
		&expense.Currency,
		&expense.SplitMode,
		&expense.Date,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO expense_payers (expense_id, user_id, amount)
		VALUES ($1, $2, $3)
	`, expense.ID, req.PaidBy, expense.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to create payer contribution: %w", err)
	}

	for _, share := range shares {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO expense_splits (expense_id, user_id, amount)
			VALUES ($1, $2, $3)
		`, expense.ID, share.UserID, share.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to create split row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return expense, nil
}

// GetByID retrieves an expense by its ID, including soft-deleted rows so the
// service can distinguish deleted from missing
func (r *Repository) GetByID(ctx context.Context, id string) (*Expense, error) {
	query := `
		SELECT id, group_id, description, amount, currency, split_mode, expense_date, created_at, deleted_at
		FROM expenses
		WHERE id = $1
	`

	expense := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.Description,
		&expense.Amount,
		&expense.Currency,
		&expense.SplitMode,
		&expense.Date,
		&expense.CreatedAt,
		&expense.DeletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

// AttachShares populates the expense's payer contributions and split rows
func (r *Repository) AttachShares(ctx context.Context, expense *Expense) error {
	payers, err := r.queryShares(ctx, "expense_payers", expense.ID)
	if err != nil {
		return err
	}
	splits, err := r.queryShares(ctx, "expense_splits", expense.ID)
	if err != nil {
		return err
	}

	expense.Payers = payers
	expense.Splits = splits
	return nil
}

func (r *Repository) queryShares(ctx context.Context, table, expenseID string) ([]*Share, error) {
	// Split rows are persisted and listed in display-name order, matching
	// the order the calculator produced them in.
	query := fmt.Sprintf(`
		SELECT s.expense_id, s.user_id, s.amount, u.name, u.email
		FROM %s s
		JOIN users u ON s.user_id = u.id
		WHERE s.expense_id = $1
		ORDER BY LOWER(CASE WHEN u.name <> '' THEN u.name ELSE u.email END), s.user_id
	`, table)

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", table, err)
	}
	defer rows.Close()

	var shares []*Share
	for rows.Next() {
		share := &Share{}
		if err := rows.Scan(
			&share.ExpenseID,
			&share.UserID,
			&share.Amount,
			&share.UserName,
			&share.UserEmail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, share)
	}

	return shares, rows.Err()
}

// ListByGroupID retrieves the group's non-deleted expenses, newest first
func (r *Repository) ListByGroupID(ctx context.Context, groupID string, limit, offset int) ([]*Expense, int, error) {
	// Get total count
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE group_id = $1 AND deleted_at IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	// Get expenses
	query := `
		SELECT id, group_id, description, amount, currency, split_mode, expense_date, created_at, deleted_at
		FROM expenses
		WHERE group_id = $1 AND deleted_at IS NULL
		ORDER BY expense_date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense := &Expense{}
		if err := rows.Scan(
			&expense.ID,
			&expense.GroupID,
			&expense.Description,
			&expense.Amount,
			&expense.Currency,
			&expense.SplitMode,
			&expense.Date,
			&expense.CreatedAt,
			&expense.DeletedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	return expenses, total, rows.Err()
}

// SoftDelete marks an expense deleted without removing its rows
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// GetGroupMembers retrieves the group's members with display identifiers
func (r *Repository) GetGroupMembers(ctx context.Context, groupID string) ([]*Member, error) {
	query := `
		SELECT u.id, u.name, u.email
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// ListForBalance loads the group's non-deleted expenses in the shape the
// balance engine consumes: payer and split lines only.
func (r *Repository) ListForBalance(ctx context.Context, groupID string) ([]balance.Expense, error) {
	byExpense := make(map[string]*balance.Expense)
	var order []string

	load := func(table string, assign func(e *balance.Expense, line balance.Line)) error {
		query := fmt.Sprintf(`
			SELECT s.expense_id, s.user_id, s.amount
			FROM %s s
			JOIN expenses e ON s.expense_id = e.id
			WHERE e.group_id = $1 AND e.deleted_at IS NULL
			ORDER BY s.expense_id
		`, table)

		rows, err := r.db.QueryContext(ctx, query, groupID)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", table, err)
		}
		defer rows.Close()

		for rows.Next() {
			var expenseID string
			var line balance.Line
			if err := rows.Scan(&expenseID, &line.UserID, &line.Amount); err != nil {
				return fmt.Errorf("failed to scan %s row: %w", table, err)
			}
			e, ok := byExpense[expenseID]
			if !ok {
				e = &balance.Expense{}
				byExpense[expenseID] = e
				order = append(order, expenseID)
			}
			assign(e, line)
		}
		return rows.Err()
	}

	if err := load("expense_payers", func(e *balance.Expense, line balance.Line) {
		e.Payers = append(e.Payers, line)
	}); err != nil {
		return nil, err
	}
	if err := load("expense_splits", func(e *balance.Expense, line balance.Line) {
		e.Splits = append(e.Splits, line)
	}); err != nil {
		return nil, err
	}

	expenses := make([]balance.Expense, 0, len(order))
	for _, id := range order {
		expenses = append(expenses, *byExpense[id])
	}
	return expenses, nil
}
