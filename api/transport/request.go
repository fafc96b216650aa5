package transport

import "time"

type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdateRequest struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	AssigneeID  *int64     `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
	SortOrder   int        `json:"sort_order"`
}

// UpdateTaskRequest is a partial update: absent fields stay unchanged.
type UpdateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Priority      *string    `json:"priority"`
	AssigneeID    *int64     `json:"assignee_id"`
	ClearAssignee bool       `json:"clear_assignee"`
	DueDate       *time.Time `json:"due_date"`
	ClearDueDate  bool       `json:"clear_due_date"`
	SortOrder     *int       `json:"sort_order"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type CommentRequest struct {
	Body string `json:"body"`
}

type PointsAdjustRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}
