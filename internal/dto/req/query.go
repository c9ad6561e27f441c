package req

import "time"

type ListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Status   int    `form:"status"`
}

type HistoryQuery struct {
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	ActorID  *uint64    `form:"actor_id"`
	Type     string     `form:"entity_type"`
	EntityID *uint64    `form:"entity_id"`
	Action   string     `form:"action"`
	From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

type RecentQuery struct {
	Limit int `form:"limit"`
}
