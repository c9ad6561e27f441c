package model

type Lead struct {
	Base
	Name              string  `json:"name" gorm:"size:191;index"`
	ContactPerson     string  `json:"contact_person" gorm:"size:191"`
	Email             string  `json:"email" gorm:"size:191"`
	Mobile            string  `json:"mobile" gorm:"size:32"`
	BrandID           *uint64 `json:"brand_id" gorm:"index"`
	AgencyID          *uint64 `json:"agency_id" gorm:"index"`
	IndustryID        *uint64 `json:"industry_id"`
	LeadSubSourceID   *uint64 `json:"lead_sub_source_id"`
	CurrentAssignUser *uint64 `json:"current_assign_user" gorm:"index"`
	PriorityID        *uint64 `json:"priority_id"`
	LeadStatusID      *uint64 `json:"lead_status_id"`
	CallStatusID      *uint64 `json:"call_status_id"`
}
