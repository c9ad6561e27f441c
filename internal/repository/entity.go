package repository

import (
	"context"
	"errors"
	"strings"

	"leadtrail/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// ErrDuplicate is a unique key violation; it needs TranslateError on the DB.
var ErrDuplicate = gorm.ErrDuplicatedKey

// ListQuery drives entity listings: LIKE search over the repository's search
// columns, optional status filter and pagination.
type ListQuery struct {
	Search   string
	Status   int
	Page     int
	PageSize int
}

// EntityInterface defines persistence for one watched entity type.
type EntityInterface[T any, P model.Entity[T]] interface {
	Get(ctx context.Context, id uint64) (P, error)
	GetWithTrashed(ctx context.Context, id uint64) (P, error)
	GetForUpdate(ctx context.Context, id uint64) (P, error)
	Create(ctx context.Context, entity P) error
	UpdateColumns(ctx context.Context, id uint64, columns map[string]any) error
	SoftDelete(ctx context.Context, entity P) error
	Restore(ctx context.Context, entity P) error
	ForceDelete(ctx context.Context, entity P) error
	List(ctx context.Context, q ListQuery) (*Page[T], error)
	WithTx(tx *gorm.DB) EntityInterface[T, P]
}

// EntityRepository is the gorm implementation of EntityInterface.
type EntityRepository[T any, P model.Entity[T]] struct {
	db            *gorm.DB
	searchColumns []string
}

func NewEntityRepository[T any, P model.Entity[T]](db *gorm.DB, searchColumns ...string) *EntityRepository[T, P] {
	return &EntityRepository[T, P]{db: db, searchColumns: searchColumns}
}

func (r *EntityRepository[T, P]) Get(ctx context.Context, id uint64) (P, error) {
	return r.first(r.db.WithContext(ctx), id)
}

func (r *EntityRepository[T, P]) GetWithTrashed(ctx context.Context, id uint64) (P, error) {
	return r.first(r.db.WithContext(ctx).Unscoped(), id)
}

// GetForUpdate reads the row, trashed or not, under an exclusive row lock
// held until the surrounding transaction ends. Call it inside a transaction.
func (r *EntityRepository[T, P]) GetForUpdate(ctx context.Context, id uint64) (P, error) {
	db := r.db.WithContext(ctx).Unscoped().Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	return r.first(db, id)
}

func (r *EntityRepository[T, P]) first(db *gorm.DB, id uint64) (P, error) {
	entity := P(new(T))
	if err := db.First(entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (r *EntityRepository[T, P]) Create(ctx context.Context, entity P) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *EntityRepository[T, P]) UpdateColumns(ctx context.Context, id uint64, columns map[string]any) error {
	res := r.db.WithContext(ctx).Model(P(new(T))).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	return nil
}

// SoftDelete flips status to deleted and stamps deleted_at; the row stays.
func (r *EntityRepository[T, P]) SoftDelete(ctx context.Context, entity P) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(entity).Update("status", model.StatusDeleted).Error; err != nil {
		return err
	}
	return db.Delete(entity).Error
}

func (r *EntityRepository[T, P]) Restore(ctx context.Context, entity P) error {
	return r.db.WithContext(ctx).Unscoped().Model(entity).Updates(map[string]any{
		"status":     model.StatusActive,
		"deleted_at": nil,
	}).Error
}

func (r *EntityRepository[T, P]) ForceDelete(ctx context.Context, entity P) error {
	return r.db.WithContext(ctx).Unscoped().Delete(entity).Error
}

func (r *EntityRepository[T, P]) List(ctx context.Context, q ListQuery) (*Page[T], error) {
	page, pageSize := NormalizePage(q.Page, q.PageSize)
	result := &Page[T]{Items: []T{}, Page: page, PageSize: pageSize}

	query := r.db.WithContext(ctx).Model(P(new(T)))
	if q.Status != 0 {
		query = query.Where("status = ?", q.Status)
	}
	if search := strings.TrimSpace(q.Search); search != "" && len(r.searchColumns) > 0 {
		like := "%" + search + "%"
		clauses := make([]string, 0, len(r.searchColumns))
		args := make([]any, 0, len(r.searchColumns))
		for _, col := range r.searchColumns {
			clauses = append(clauses, col+" LIKE ?")
			args = append(args, like)
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&result.Total).Error; err != nil {
		return nil, err
	}
	if result.Total == 0 {
		return result, nil
	}
	if err := query.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&result.Items).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *EntityRepository[T, P]) WithTx(tx *gorm.DB) EntityInterface[T, P] {
	return &EntityRepository[T, P]{db: tx, searchColumns: r.searchColumns}
}

// PingContext checks the underlying connection pool.
func PingContext(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
