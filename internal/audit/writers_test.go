package audit

import (
	"context"
	"encoding/json"
	"testing"

	"leadtrail/internal/metrics"
	"leadtrail/internal/model"
	"leadtrail/internal/repository"
	"leadtrail/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createLead(t *testing.T, db *gorm.DB, r *Registry, actor *uint64, lead *model.Lead) {
	t.Helper()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lead).Error; err != nil {
			return err
		}
		r.Created(context.Background(), tx, actor, lead)
		return nil
	}))
}

func TestLeadHistoryWriterSnapshotsCurrentState(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewDefaultRegistry(db, metrics.NopHistoryObserver{})

	lead := &model.Lead{Name: "Acme", PriorityID: u64(2), CurrentAssignUser: u64(5)}
	createLead(t, db, r, u64(11), lead)

	var rows []model.LeadAssignHistory
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, lead.ID, rows[0].LeadID)
	assert.Equal(t, uint64(5), *rows[0].AssignUserID)
	assert.Equal(t, uint64(2), *rows[0].PriorityID)
	assert.Equal(t, uint64(11), *rows[0].CurrentUserID)
	assert.Nil(t, rows[0].LeadStatusID)
	assert.Nil(t, rows[0].CallStatusID)
	assert.Equal(t, model.ActionCreated, rows[0].Action)
}

func TestLeadHistoryWriterIgnoresUntrackedUpdates(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewDefaultRegistry(db, nil)

	lead := &model.Lead{Name: "Acme", PriorityID: u64(2)}
	createLead(t, db, r, nil, lead)

	renamed := *lead
	renamed.Name = "Acme Corp"
	reprioritized := renamed
	reprioritized.PriorityID = u64(1)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		ctx := context.Background()
		r.Updated(ctx, tx, nil, lead, &renamed)
		r.Updated(ctx, tx, nil, &renamed, &reprioritized)
		return nil
	}))

	var trail int64
	require.NoError(t, db.Model(&model.LeadAssignHistory{}).Count(&trail).Error)
	assert.Equal(t, int64(2), trail, "created + priority change")

	var activity int64
	require.NoError(t, db.Model(&model.ActivityLog{}).Where("model = ?", "Lead").Count(&activity).Error)
	assert.Equal(t, int64(3), activity)
}

func TestActivityWriterRecord(t *testing.T) {
	db := testutil.NewDB(t)
	w := NewActivityWriter(repository.NewActivityLogRepository(db))

	desc := "manual entry"
	entry, err := w.Record(context.Background(), nil, RecordInput{
		EntityType:  "Brand",
		EntityID:    3,
		ActorID:     u64(1),
		Action:      model.ActionUpdated,
		OldData:     map[string]any{"name": "Old"},
		NewData:     map[string]any{"name": "New"},
		Description: &desc,
	})
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.NotEmpty(t, entry.UUID)

	var stored model.ActivityLog
	require.NoError(t, db.First(&stored, entry.ID).Error)
	assert.Equal(t, "Brand", stored.Model)
	assert.Equal(t, uint64(3), stored.ModelID)
	assert.Equal(t, "Old", stored.OldData["name"])
	assert.Equal(t, "New", stored.NewData["name"])
	assert.Equal(t, desc, *stored.Description)
}

func TestActivityWriterDescribesForceDelete(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewDefaultRegistry(db, nil)

	perm := &model.Permission{Name: "lead.export"}
	require.NoError(t, db.Create(perm).Error)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		r.ForceDeleted(context.Background(), tx, nil, perm)
		return nil
	}))

	var entry model.ActivityLog
	require.NoError(t, db.Where("action = ?", model.ActionForceDeleted).First(&entry).Error)
	assert.Equal(t, "Permission #1 force deleted", *entry.Description)
	assert.Equal(t, "lead.export", entry.NewData["name"])
}

func TestActivityWriterKeepsMissingSideNull(t *testing.T) {
	db := testutil.NewDB(t)
	w := NewActivityWriter(repository.NewActivityLogRepository(db))

	entry, err := w.Record(context.Background(), nil, RecordInput{
		EntityType: "Brand",
		EntityID:   3,
		Action:     model.ActionCreated,
		NewData:    map[string]any{"name": "Nike", "agency_id": 7},
	})
	require.NoError(t, err)

	var stored model.ActivityLog
	require.NoError(t, db.First(&stored, entry.ID).Error)
	assert.Nil(t, stored.OldData)
	assert.Equal(t, json.Number("7"), stored.NewData["agency_id"])

	body, err := json.Marshal(stored)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"old_data":null`)
	assert.Contains(t, string(body), `"agency_id":7`)
}
