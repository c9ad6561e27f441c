package repository

import (
	"context"
	"time"

	"leadtrail/internal/model"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 15
	MaxPageSize     = 100
	MaxPage         = 1_000_000
)

// Page is one page of a newest-first listing.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// HistoryFilter constraints are ANDed; zero values leave a dimension open.
type HistoryFilter struct {
	ActorID    *uint64
	EntityType string
	EntityID   *uint64
	Action     string
	From       *time.Time
	To         *time.Time
}

// HistoryWriter appends history rows.
type HistoryWriter[T any] interface {
	Create(ctx context.Context, record *T) error
	WithTx(tx *gorm.DB) HistoryWriter[T]
}

// HistoryReader is the read surface shared by every history table.
type HistoryReader[T any] interface {
	ListForEntity(ctx context.Context, entityType string, entityID uint64, page, pageSize int) (*Page[T], error)
	ListForActor(ctx context.Context, actorID uint64, page, pageSize int) (*Page[T], error)
	ListByAction(ctx context.Context, action string, page, pageSize int) (*Page[T], error)
	ListRecent(ctx context.Context, limit int) ([]T, error)
	ListFiltered(ctx context.Context, filter HistoryFilter, page, pageSize int) (*Page[T], error)
}

// historyColumns maps the uniform filter dimensions onto a table's columns.
// Specialized tables have no type column and answer for a single entity type.
type historyColumns struct {
	entityType string
	fixedType  string
	entityID   string
	actor      string
}

// HistoryRepository is the gorm store behind one history table.
type HistoryRepository[T any] struct {
	db   *gorm.DB
	cols historyColumns
}

func NewLeadHistoryRepository(db *gorm.DB) *HistoryRepository[model.LeadAssignHistory] {
	return &HistoryRepository[model.LeadAssignHistory]{db: db, cols: historyColumns{
		fixedType: "Lead", entityID: "lead_id", actor: "current_user_id",
	}}
}

func NewPlannerHistoryRepository(db *gorm.DB) *HistoryRepository[model.PlannerHistory] {
	return &HistoryRepository[model.PlannerHistory]{db: db, cols: historyColumns{
		fixedType: "Planner", entityID: "planner_id", actor: "current_user_id",
	}}
}

func NewBriefHistoryRepository(db *gorm.DB) *HistoryRepository[model.BriefAssignHistory] {
	return &HistoryRepository[model.BriefAssignHistory]{db: db, cols: historyColumns{
		fixedType: "Brief", entityID: "brief_id", actor: "current_user_id",
	}}
}

func NewActivityLogRepository(db *gorm.DB) *HistoryRepository[model.ActivityLog] {
	return &HistoryRepository[model.ActivityLog]{db: db, cols: historyColumns{
		entityType: "model", entityID: "model_id", actor: "user_id",
	}}
}

func (r *HistoryRepository[T]) Create(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *HistoryRepository[T]) WithTx(tx *gorm.DB) HistoryWriter[T] {
	return &HistoryRepository[T]{db: tx, cols: r.cols}
}

func (r *HistoryRepository[T]) ListForEntity(ctx context.Context, entityType string, entityID uint64, page, pageSize int) (*Page[T], error) {
	return r.ListFiltered(ctx, HistoryFilter{EntityType: entityType, EntityID: &entityID}, page, pageSize)
}

func (r *HistoryRepository[T]) ListForActor(ctx context.Context, actorID uint64, page, pageSize int) (*Page[T], error) {
	return r.ListFiltered(ctx, HistoryFilter{ActorID: &actorID}, page, pageSize)
}

func (r *HistoryRepository[T]) ListByAction(ctx context.Context, action string, page, pageSize int) (*Page[T], error) {
	return r.ListFiltered(ctx, HistoryFilter{Action: action}, page, pageSize)
}

func (r *HistoryRepository[T]) ListRecent(ctx context.Context, limit int) ([]T, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	var records []T
	err := r.db.WithContext(ctx).Model(new(T)).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *HistoryRepository[T]) ListFiltered(ctx context.Context, filter HistoryFilter, page, pageSize int) (*Page[T], error) {
	page, pageSize = NormalizePage(page, pageSize)
	result := &Page[T]{Items: []T{}, Page: page, PageSize: pageSize}

	query := r.scope(r.db.WithContext(ctx).Model(new(T)), filter).Session(&gorm.Session{})
	if err := query.Count(&result.Total).Error; err != nil {
		return nil, err
	}
	if result.Total == 0 {
		return result, nil
	}

	err := query.
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&result.Items).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *HistoryRepository[T]) scope(db *gorm.DB, f HistoryFilter) *gorm.DB {
	if f.EntityType != "" {
		switch {
		case r.cols.entityType != "":
			db = db.Where(r.cols.entityType+" = ?", f.EntityType)
		case f.EntityType != r.cols.fixedType:
			db = db.Where("1 = 0")
		}
	}
	if f.EntityID != nil {
		db = db.Where(r.cols.entityID+" = ?", *f.EntityID)
	}
	if f.ActorID != nil {
		db = db.Where(r.cols.actor+" = ?", *f.ActorID)
	}
	if f.Action != "" {
		db = db.Where("action = ?", f.Action)
	}
	if f.From != nil {
		db = db.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("created_at <= ?", *f.To)
	}
	return db
}

// NormalizePage clamps page to [1, MaxPage] and pageSize to (0, MaxPageSize],
// which keeps the offset well inside int range.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
