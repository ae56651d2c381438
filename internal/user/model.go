package user

import "time"

// User represents a registered member of the ledger. Name may be empty for
// accounts created from an invite link; display falls back to the email.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
