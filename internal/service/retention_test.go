package service

import (
	"context"
	"testing"
	"time"

	"leadtrail/internal/model"
	"leadtrail/internal/repository"
	"leadtrail/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetentionPurgesInBatches(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		old := &model.ActivityLog{HistoryBase: model.HistoryBase{Action: model.ActionCreated, CreatedAt: now.AddDate(0, 0, -40)}, Model: "Brand", ModelID: uint64(i + 1)}
		require.NoError(t, db.Create(old).Error)
	}
	fresh := &model.ActivityLog{HistoryBase: model.HistoryBase{Action: model.ActionCreated, CreatedAt: now.AddDate(0, 0, -1)}, Model: "Brand", ModelID: 99}
	require.NoError(t, db.Create(fresh).Error)

	w := NewRetentionWorker(nil, repository.NewActivityRetention(db), RetentionConfig{Days: 30, BatchSize: 2})
	n, err := w.Purge(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	var left []model.ActivityLog
	require.NoError(t, db.Unscoped().Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, uint64(99), left[0].ModelID)
}

func TestRetentionDisabled(t *testing.T) {
	db := testutil.NewDB(t)
	w := NewRetentionWorker(nil, repository.NewActivityRetention(db), RetentionConfig{})
	assert.False(t, w.Enabled())

	n, err := w.Purge(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	w.Run(context.Background())
}
