package group

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   string            `json:"created_at"`
	Members     []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	JoinedAt string `json:"joined_at"`
}

// InviteResponse represents a shareable invite token
type InviteResponse struct {
	Token   string `json:"token"`
	GroupID string `json:"group_id"`
}

// MemberBalanceResponse is one member's net position in the group.
// Positive means the group owes them, negative means they owe the group.
type MemberBalanceResponse struct {
	UserID string  `json:"user_id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// DebtResponse is one suggested repayment from the simplified debt graph
type DebtResponse struct {
	FromUserID string  `json:"from_user_id"`
	FromName   string  `json:"from_name"`
	ToUserID   string  `json:"to_user_id"`
	ToName     string  `json:"to_name"`
	Amount     float64 `json:"amount"`
}

// BalancesResponse represents the response for a group's balance snapshot
type BalancesResponse struct {
	GroupID         string                   `json:"group_id"`
	Balances        []*MemberBalanceResponse `json:"balances"`
	SimplifiedDebts []*DebtResponse          `json:"simplified_debts"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a GroupMember model to a MemberResponse DTO
func (m *GroupMember) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts an Invite model to an InviteResponse DTO
func (i *Invite) ToResponse() *InviteResponse {
	return &InviteResponse{
		Token:   i.Token,
		GroupID: i.GroupID,
	}
}
