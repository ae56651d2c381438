package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement represents a direct repayment between two group members
type Settlement struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id"`
	PayerID   string          `json:"payer_id"`
	PayeeID   string          `json:"payee_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Notes     *string         `json:"notes,omitempty"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
	DeletedAt *time.Time      `json:"deleted_at,omitempty"`

	// Populated from JOIN
	PayerName string `json:"payer_name,omitempty"`
	PayeeName string `json:"payee_name,omitempty"`
}
