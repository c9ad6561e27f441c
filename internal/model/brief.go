package model

import "time"

type Brief struct {
	Base
	Name           string     `json:"name" gorm:"size:191;index"`
	BrandID        *uint64    `json:"brand_id" gorm:"index"`
	AgencyID       *uint64    `json:"agency_id" gorm:"index"`
	LeadID         *uint64    `json:"lead_id" gorm:"index"`
	AssignUserID   *uint64    `json:"assign_user_id" gorm:"index"`
	PriorityID     *uint64    `json:"priority_id"`
	BriefStatusID  *uint64    `json:"brief_status_id"`
	Budget         float64    `json:"budget"`
	SubmissionDate *time.Time `json:"submission_date"`
}

type Planner struct {
	Base
	BriefID         uint64  `json:"brief_id" gorm:"index"`
	AssignUserID    *uint64 `json:"assign_user_id" gorm:"index"`
	PlannerStatusID *uint64 `json:"planner_status_id"`
	Notes           string  `json:"notes" gorm:"type:text"`
}
