package expense

// CreateExpenseRequest represents the request to log an expense
type CreateExpenseRequest struct {
	GroupID     string             `json:"group_id" validate:"required"`
	Description string             `json:"description" validate:"required,min=1,max=200"`
	Amount      float64            `json:"amount" validate:"required,gt=0"`
	PaidBy      string             `json:"paid_by" validate:"required"`
	SplitAmong  []string           `json:"split_among" validate:"required,min=1"`
	SplitMode   string             `json:"split_mode,omitempty"` // EQUAL (default), PERCENTAGE, SHARES
	Percentages map[string]float64 `json:"percentages,omitempty"`
	Shares      map[string]int64   `json:"shares,omitempty"`
	Date        string             `json:"date" validate:"required"`
}

// ShareResponse represents one payer contribution or split line
type ShareResponse struct {
	UserID   string  `json:"user_id"`
	UserName string  `json:"user_name,omitempty"`
	Amount   float64 `json:"amount"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID          string           `json:"id"`
	GroupID     string           `json:"group_id"`
	Description string           `json:"description"`
	Amount      float64          `json:"amount"`
	Currency    string           `json:"currency"`
	SplitMode   string           `json:"split_mode"`
	Date        string           `json:"date"`
	CreatedAt   string           `json:"created_at"`
	Payers      []*ShareResponse `json:"payers,omitempty"`
	Splits      []*ShareResponse `json:"splits,omitempty"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount.InexactFloat64(),
		Currency:    e.Currency,
		SplitMode:   string(e.SplitMode),
		Date:        e.Date.Format("2006-01-02"),
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	for _, p := range e.Payers {
		resp.Payers = append(resp.Payers, p.ToResponse())
	}
	for _, s := range e.Splits {
		resp.Splits = append(resp.Splits, s.ToResponse())
	}
	return resp
}

// ToResponse converts a Share model to a ShareResponse DTO
func (s *Share) ToResponse() *ShareResponse {
	name := s.UserName
	if name == "" {
		name = s.UserEmail
	}
	return &ShareResponse{
		UserID:   s.UserID,
		UserName: name,
		Amount:   s.Amount.InexactFloat64(),
	}
}
