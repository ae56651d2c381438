package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/divvyup/divvy/internal/expense/split"
)

// Expense represents a logged group expense with its payer contributions and
// persisted split result. Soft-deleted expenses keep their rows but never
// reach balance computation.
type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	SplitMode   split.Policy    `json:"split_mode"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`

	// Populated separately
	Payers []*Share `json:"payers,omitempty"`
	Splits []*Share `json:"splits,omitempty"`
}

// Share is one (user, amount) row attached to an expense: a payer
// contribution or a split line.
type Share struct {
	ExpenseID string          `json:"expense_id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`

	// Populated via JOIN
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// Member is the slice of a group member the expense feature needs to build
// split participants.
type Member struct {
	UserID string
	Name   string
	Email  string
}

// ToParticipant converts a member to the split package's participant type
func (m *Member) ToParticipant() split.Participant {
	return split.Participant{
		ID:    m.UserID,
		Name:  m.Name,
		Email: m.Email,
	}
}
