package req

type AssignRequest struct {
	UserID uint64 `json:"user_id" binding:"required"`
}

type PriorityRequest struct {
	PriorityID uint64 `json:"priority_id" binding:"required"`
}

// StatusRequest carries a workflow status id (lead, brief or call status).
type StatusRequest struct {
	StatusID uint64 `json:"status_id" binding:"required"`
}
