package model

import "time"

type Role struct {
	Base
	Name        string `json:"name" gorm:"size:191;uniqueIndex"`
	DisplayName string `json:"display_name" gorm:"size:191"`
	Description string `json:"description" gorm:"size:500"`
}

type Permission struct {
	Base
	Name        string `json:"name" gorm:"size:191;uniqueIndex"`
	DisplayName string `json:"display_name" gorm:"size:191"`
	Description string `json:"description" gorm:"size:500"`
}

type Agency struct {
	Base
	Name        string `json:"name" gorm:"size:191;index"`
	Description string `json:"description" gorm:"size:500"`
}

type Brand struct {
	Base
	Name        string  `json:"name" gorm:"size:191;index"`
	AgencyID    *uint64 `json:"agency_id" gorm:"index"`
	Description string  `json:"description" gorm:"size:500"`
}

type Industry struct {
	Base
	Name        string `json:"name" gorm:"size:191"`
	Description string `json:"description" gorm:"size:500"`
}

type Department struct {
	Base
	Name        string `json:"name" gorm:"size:191"`
	Description string `json:"description" gorm:"size:500"`
}

type Designation struct {
	Base
	Name        string `json:"name" gorm:"size:191"`
	Description string `json:"description" gorm:"size:500"`
}

type Team struct {
	Base
	Name        string `json:"name" gorm:"size:191"`
	Description string `json:"description" gorm:"size:500"`
}

type LeadSubSource struct {
	Base
	Name         string  `json:"name" gorm:"size:191"`
	LeadSourceID *uint64 `json:"lead_source_id"`
	Description  string  `json:"description" gorm:"size:500"`
}

type MissCampaign struct {
	Base
	Name        string  `json:"name" gorm:"size:191"`
	BrandID     *uint64 `json:"brand_id" gorm:"index"`
	Description string  `json:"description" gorm:"size:500"`
}

type Meeting struct {
	Base
	Title       string     `json:"title" gorm:"size:191"`
	LeadID      *uint64    `json:"lead_id" gorm:"index"`
	BriefID     *uint64    `json:"brief_id" gorm:"index"`
	UserID      *uint64    `json:"user_id" gorm:"index"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Location    string     `json:"location" gorm:"size:255"`
}
