package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"leadtrail/internal/audit"
	"leadtrail/internal/model"
	"leadtrail/internal/repository"
	"leadtrail/internal/testutil"
	"leadtrail/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	logger.InitLogger("test")
}

func newService[T any, P model.Entity[T]](db *gorm.DB, search ...string) *EntityService[T, P] {
	return NewEntityService[T, P](db, repository.NewEntityRepository[T, P](db, search...), audit.NewDefaultRegistry(db, nil))
}

func activityFor(t *testing.T, db *gorm.DB, entityType string, id uint64) []model.ActivityLog {
	t.Helper()
	var rows []model.ActivityLog
	require.NoError(t, db.Where("model = ? AND model_id = ?", entityType, id).Order("id").Find(&rows).Error)
	return rows
}

// number is how activity payloads read numeric values back.
func number(v any) json.Number {
	return json.Number(fmt.Sprint(v))
}

func TestCreateRecordsActivity(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService[model.Agency](db)
	ctx := context.Background()

	agency := &model.Agency{Name: "Ogilvy"}
	require.NoError(t, svc.Create(ctx, testutil.Ptr[uint64](4), agency))

	rows := activityFor(t, db, "Agency", agency.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, model.ActionCreated, rows[0].Action)
	assert.Equal(t, uint64(4), *rows[0].UserID)
	assert.Equal(t, "Ogilvy", rows[0].NewData["name"])
	assert.Nil(t, rows[0].OldData)
	assert.Equal(t, "Agency #1 created", *rows[0].Description)
}

func TestUpdateNoopRecordsNothing(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService[model.Role](db)
	ctx := context.Background()

	role := &model.Role{Name: "manager", DisplayName: "Manager", Description: "Team lead"}
	require.NoError(t, svc.Create(ctx, nil, role))

	_, err := svc.Update(ctx, nil, role.ID, map[string]any{
		"name":         "manager",
		"display_name": "Manager",
		"description":  "Team lead",
	})
	require.NoError(t, err)

	assert.Len(t, activityFor(t, db, "Role", role.ID), 1)
}

func TestUpdateRecordsChangedFieldsOnly(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService[model.Brand](db)
	ctx := context.Background()

	brand := &model.Brand{Name: "Old", Description: "shoes"}
	require.NoError(t, svc.Create(ctx, nil, brand))

	updated, err := svc.Update(ctx, testutil.Ptr[uint64](2), brand.ID, map[string]any{"name": "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)

	rows := activityFor(t, db, "Brand", brand.ID)
	require.Len(t, rows, 2)
	assert.Equal(t, model.ActionUpdated, rows[1].Action)
	assert.Equal(t, map[string]any{"name": "Old"}, map[string]any(rows[1].OldData))
	assert.Equal(t, map[string]any{"name": "New"}, map[string]any(rows[1].NewData))
}

func TestUpdateRejectsInvalidFields(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService[model.Brand](db)
	ctx := context.Background()

	brand := &model.Brand{Name: "Nike"}
	require.NoError(t, svc.Create(ctx, nil, brand))

	for _, fields := range []map[string]any{
		{"id": 99},
		{"created_at": "2024-01-01T00:00:00Z"},
		{"unknown": 1},
		{"agency_id": "not-a-number"},
		{"status": model.StatusDeleted},
		{"status": 99},
	} {
		_, err := svc.Update(ctx, nil, brand.ID, fields)
		assert.ErrorIs(t, err, ErrInvalidField, "%v", fields)
	}

	_, err := svc.Update(ctx, nil, 404, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Update(ctx, nil, brand.ID, map[string]any{"status": model.StatusDeactivated})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeactivated, got.Status)
	assert.False(t, got.IsDeleted())
}

func TestUpdateKeepsLargeNumbers(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService[model.Brand](db)
	ctx := context.Background()

	brand := &model.Brand{Name: "Adidas"}
	require.NoError(t, svc.Create(ctx, nil, brand))

	got, err := svc.Update(ctx, nil, brand.ID, map[string]any{"agency_id": json.Number("9007199254740993")})
	require.NoError(t, err)
	require.NotNil(t, got.AgencyID)
	assert.Equal(t, uint64(9007199254740993), *got.AgencyID)
}

func TestUpdateCanClearNullableColumn(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService[model.Brand](db)
	ctx := context.Background()

	brand := &model.Brand{Name: "Nike", AgencyID: testutil.Ptr[uint64](3)}
	require.NoError(t, svc.Create(ctx, nil, brand))

	updated, err := svc.Update(ctx, nil, brand.ID, map[string]any{"agency_id": nil})
	require.NoError(t, err)
	assert.Nil(t, updated.AgencyID)

	rows := activityFor(t, db, "Brand", brand.ID)
	require.Len(t, rows, 2)
	assert.Equal(t, number(3), rows[1].OldData["agency_id"])
	assert.Nil(t, rows[1].NewData["agency_id"])
}

func TestDeleteThenRestore(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService[model.Industry](db)
	ctx := context.Background()

	industry := &model.Industry{Name: "FMCG"}
	require.NoError(t, svc.Create(ctx, nil, industry))

	require.NoError(t, svc.Delete(ctx, nil, industry.ID))
	assert.ErrorIs(t, svc.Delete(ctx, nil, industry.ID), ErrAlreadyDeleted)

	_, err := svc.Get(ctx, industry.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var trashed model.Industry
	require.NoError(t, db.Unscoped().First(&trashed, industry.ID).Error)
	assert.Equal(t, model.StatusDeleted, trashed.Status)

	restored, err := svc.Restore(ctx, nil, industry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, restored.Status)
	assert.False(t, restored.IsDeleted())

	_, err = svc.Restore(ctx, nil, industry.ID)
	assert.ErrorIs(t, err, ErrNotDeleted)

	rows := activityFor(t, db, "Industry", industry.ID)
	require.Len(t, rows, 3)
	assert.Equal(t, model.ActionDeleted, rows[1].Action)
	assert.Equal(t, "FMCG", rows[1].OldData["name"])
	assert.Equal(t, number(model.StatusActive), rows[1].OldData["status"])
	assert.Equal(t, model.ActionRestored, rows[2].Action)
	assert.Nil(t, rows[2].OldData)
	assert.Nil(t, rows[2].NewData)
}

func TestForceDeleteRecordsFullAttributes(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService[model.Permission](db)
	ctx := context.Background()

	perm := &model.Permission{Name: "lead.export", DisplayName: "Export leads", Description: "CSV"}
	require.NoError(t, svc.Create(ctx, nil, perm))
	require.NoError(t, svc.ForceDelete(ctx, nil, perm.ID))

	var count int64
	require.NoError(t, db.Unscoped().Model(&model.Permission{}).Where("id = ?", perm.ID).Count(&count).Error)
	assert.Zero(t, count)

	rows := activityFor(t, db, "Permission", perm.ID)
	require.Len(t, rows, 2)
	last := rows[1]
	assert.Equal(t, model.ActionForceDeleted, last.Action)
	assert.Equal(t, "lead.export", last.NewData["name"])
	assert.Equal(t, "Export leads", last.NewData["display_name"])
	assert.Equal(t, "CSV", last.NewData["description"])
	assert.Equal(t, number(perm.ID), last.NewData["id"])
}

func TestMutationsLockTheRowFirst(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService[model.Brand](db)
	ctx := context.Background()
	locks := testutil.CountLockingReads(t, db)

	brand := &model.Brand{Name: "Reebok"}
	require.NoError(t, svc.Create(ctx, nil, brand))
	assert.Zero(t, locks.Load())

	_, err := svc.Update(ctx, nil, brand.ID, map[string]any{"name": "Reebok Intl"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), locks.Load())

	require.NoError(t, svc.Delete(ctx, nil, brand.ID))
	assert.Equal(t, int64(2), locks.Load())

	_, err = svc.Update(ctx, nil, brand.ID, map[string]any{"name": "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Restore(ctx, nil, brand.ID)
	require.NoError(t, err)
	require.NoError(t, svc.ForceDelete(ctx, nil, brand.ID))
	assert.Equal(t, int64(5), locks.Load())

	rows := activityFor(t, db, "Brand", brand.ID)
	require.Len(t, rows, 5)
	assert.Equal(t, map[string]any{"name": "Reebok"}, map[string]any(rows[1].OldData))
}

func TestHistoryFailureDoesNotRollBackMutation(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService[model.Brand](db)
	ctx := context.Background()

	require.NoError(t, db.Migrator().DropTable(&model.ActivityLog{}))

	brand := &model.Brand{Name: "Puma"}
	require.NoError(t, svc.Create(ctx, nil, brand))

	var stored model.Brand
	require.NoError(t, db.First(&stored, brand.ID).Error)
	assert.Equal(t, "Puma", stored.Name)

	updated, err := svc.Update(ctx, nil, brand.ID, map[string]any{"name": "Puma AG"})
	require.NoError(t, err)
	assert.Equal(t, "Puma AG", updated.Name)
}

func TestCreateFromFields(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService[model.Meeting](db)
	ctx := context.Background()

	meeting, err := svc.CreateFromFields(ctx, nil, map[string]any{
		"title":        "Kickoff",
		"lead_id":      7,
		"scheduled_at": "2026-03-01T10:00:00Z",
	})
	require.NoError(t, err)
	assert.NotZero(t, meeting.ID)
	assert.EqualValues(t, 7, *meeting.LeadID)

	_, err = svc.CreateFromFields(ctx, nil, map[string]any{"id": 1, "title": "x"})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestListSearchAndStatus(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService[model.Team](db, "name")
	ctx := context.Background()

	for _, name := range []string{"North", "South", "Northeast"} {
		require.NoError(t, svc.Create(ctx, nil, &model.Team{Name: name}))
	}

	page, err := svc.List(ctx, repository.ListQuery{Search: "north"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = svc.List(ctx, repository.ListQuery{Status: model.StatusDeactivated})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
