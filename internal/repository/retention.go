package repository

import (
	"context"
	"time"

	"leadtrail/internal/model"

	"gorm.io/gorm"
)

// ActivityRetention purges old activity_logs rows. Specialized history
// tables are never purged.
type ActivityRetention struct {
	db *gorm.DB
}

func NewActivityRetention(db *gorm.DB) *ActivityRetention {
	return &ActivityRetention{db: db}
}

// PurgeBefore hard-deletes up to limit rows created before cutoff and returns
// how many went.
func (r *ActivityRetention) PurgeBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.ActivityLog{}).
		Where("created_at < ?", cutoff).
		Order("id ASC").Limit(limit).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	res := r.db.WithContext(ctx).Unscoped().Where("id IN ?", ids).Delete(&model.ActivityLog{})
	return res.RowsAffected, res.Error
}
