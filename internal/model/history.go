package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Action kinds recorded in every history table.
const (
	ActionCreated      = "created"
	ActionUpdated      = "updated"
	ActionDeleted      = "deleted"
	ActionRestored     = "restored"
	ActionForceDeleted = "force_deleted"
)

// HistoryBase is embedded by the append-only history tables.
type HistoryBase struct {
	ID        uint64         `json:"id" gorm:"primaryKey"`
	UUID      string         `json:"uuid" gorm:"size:36;uniqueIndex"`
	Action    string         `json:"action" gorm:"size:32;index"`
	Status    int            `json:"status" gorm:"default:1"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (h *HistoryBase) BeforeCreate(tx *gorm.DB) error {
	if h.UUID == "" {
		h.UUID = uuid.NewString()
	}
	return nil
}

type LeadAssignHistory struct {
	HistoryBase
	LeadID        uint64  `json:"lead_id" gorm:"index"`
	AssignUserID  *uint64 `json:"assign_user_id" gorm:"index"`
	CurrentUserID *uint64 `json:"current_user_id" gorm:"index"`
	PriorityID    *uint64 `json:"priority_id"`
	LeadStatusID  *uint64 `json:"lead_status_id"`
	CallStatusID  *uint64 `json:"call_status_id"`
}

type PlannerHistory struct {
	HistoryBase
	PlannerID       uint64  `json:"planner_id" gorm:"index"`
	BriefID         uint64  `json:"brief_id" gorm:"index"`
	AssignUserID    *uint64 `json:"assign_user_id" gorm:"index"`
	CurrentUserID   *uint64 `json:"current_user_id" gorm:"index"`
	PlannerStatusID *uint64 `json:"planner_status_id"`
}

type BriefAssignHistory struct {
	HistoryBase
	BriefID       uint64  `json:"brief_id" gorm:"index"`
	AssignUserID  *uint64 `json:"assign_user_id" gorm:"index"`
	CurrentUserID *uint64 `json:"current_user_id" gorm:"index"`
	PriorityID    *uint64 `json:"priority_id"`
	BriefStatusID *uint64 `json:"brief_status_id"`
}

// ActivityLog is the generic cross-entity trail.
type ActivityLog struct {
	HistoryBase
	UserID      *uint64 `json:"user_id" gorm:"index"`
	Model       string  `json:"model" gorm:"size:64;index:idx_activity_model"`
	ModelID     uint64  `json:"model_id" gorm:"index:idx_activity_model"`
	Description *string `json:"description" gorm:"type:text"`
	OldData     Payload `json:"old_data"`
	NewData     Payload `json:"new_data"`
}

// Payload is a JSON object column. Unlike datatypes.JSONMap it reads NULL
// back as nil, so an absent side stays null in API responses. Numbers come
// back as json.Number.
type Payload map[string]any

func (p Payload) Value() (driver.Value, error) {
	return datatypes.JSONMap(p).Value()
}

func (p *Payload) Scan(val any) error {
	if val == nil {
		*p = nil
		return nil
	}
	var m datatypes.JSONMap
	if err := m.Scan(val); err != nil {
		return err
	}
	*p = Payload(m)
	return nil
}

func (Payload) GormDataType() string {
	return datatypes.JSONMap{}.GormDataType()
}

func (Payload) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return datatypes.JSONMap{}.GormDBDataType(db, field)
}
