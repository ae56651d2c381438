package settlement

// CreateSettlementRequest represents the request to record a settlement
type CreateSettlementRequest struct {
	GroupID string  `json:"group_id" validate:"required"`
	PayerID string  `json:"payer_id" validate:"required"`
	PayeeID string  `json:"payee_id" validate:"required"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Notes   *string `json:"notes,omitempty"`
	Date    string  `json:"date,omitempty"`
}

// SettlementResponse represents the response for a settlement
type SettlementResponse struct {
	ID        string  `json:"id"`
	GroupID   string  `json:"group_id"`
	PayerID   string  `json:"payer_id"`
	PayerName string  `json:"payer_name"`
	PayeeID   string  `json:"payee_id"`
	PayeeName string  `json:"payee_name"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Notes     *string `json:"notes,omitempty"`
	Date      string  `json:"date"`
	CreatedAt string  `json:"created_at"`
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:        s.ID,
		GroupID:   s.GroupID,
		PayerID:   s.PayerID,
		PayerName: s.PayerName,
		PayeeID:   s.PayeeID,
		PayeeName: s.PayeeName,
		Amount:    s.Amount.InexactFloat64(),
		Currency:  s.Currency,
		Notes:     s.Notes,
		Date:      s.Date.Format("2006-01-02"),
		CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
