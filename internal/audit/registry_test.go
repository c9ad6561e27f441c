package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"leadtrail/internal/model"
	"leadtrail/internal/testutil"
	"leadtrail/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	logger.InitLogger("test")
}

type recorder struct {
	name    string
	err     error
	panics  bool
	changes []Change
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Intercept(_ context.Context, _ *gorm.DB, ch Change) error {
	r.changes = append(r.changes, ch)
	if r.panics {
		panic("boom")
	}
	return r.err
}

type countingObserver struct {
	mu       sync.Mutex
	writes   map[string]int
	failures map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{writes: map[string]int{}, failures: map[string]int{}}
}

func (o *countingObserver) RecordWrite(target, action string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writes[target+"/"+action]++
}

func (o *countingObserver) RecordFailure(target, action string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures[target+"/"+action]++
}

func inTx(t *testing.T, db *gorm.DB, fn func(tx *gorm.DB)) {
	t.Helper()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		fn(tx)
		return nil
	}))
}

func TestRegistryCreated(t *testing.T) {
	db := testutil.NewDB(t)
	rec := &recorder{name: "rec"}
	obs := newCountingObserver()
	r := NewRegistry(nil, obs)
	r.Register("Brand", rec)

	brand := &model.Brand{Base: model.Base{ID: 3}, Name: "Nike"}
	inTx(t, db, func(tx *gorm.DB) { r.Created(context.Background(), tx, u64(9), brand) })

	require.Len(t, rec.changes, 1)
	ch := rec.changes[0]
	assert.Equal(t, "Brand", ch.EntityType)
	assert.Equal(t, uint64(3), ch.EntityID)
	assert.Equal(t, model.ActionCreated, ch.Action)
	assert.Equal(t, uint64(9), *ch.ActorID)
	assert.Nil(t, ch.Old)
	assert.Equal(t, "Nike", ch.New["name"])
	assert.Equal(t, 1, obs.writes["rec/created"])
}

func TestRegistryUpdatedSuppressesNoop(t *testing.T) {
	db := testutil.NewDB(t)
	rec := &recorder{name: "rec"}
	r := NewRegistry(nil, nil)
	r.Register("Role", rec)

	before := &model.Role{Base: model.Base{ID: 1}, Name: "admin", DisplayName: "Admin"}
	after := *before
	inTx(t, db, func(tx *gorm.DB) { r.Updated(context.Background(), tx, nil, before, &after) })

	assert.Empty(t, rec.changes)
}

func TestRegistryUpdatedCarriesDiff(t *testing.T) {
	db := testutil.NewDB(t)
	rec := &recorder{name: "rec"}
	r := NewRegistry(nil, nil)
	r.Register("Brand", rec)

	before := &model.Brand{Base: model.Base{ID: 1}, Name: "Old", Description: "same"}
	after := *before
	after.Name = "New"
	inTx(t, db, func(tx *gorm.DB) { r.Updated(context.Background(), tx, nil, before, &after) })

	require.Len(t, rec.changes, 1)
	assert.Equal(t, map[string]any{"name": "Old"}, rec.changes[0].Old)
	assert.Equal(t, map[string]any{"name": "New"}, rec.changes[0].New)
	assert.Nil(t, rec.changes[0].ActorID)
}

func TestRegistryDeletePayloads(t *testing.T) {
	db := testutil.NewDB(t)
	rec := &recorder{name: "rec"}
	r := NewRegistry(nil, nil)
	r.Register("Permission", rec)

	p := &model.Permission{Base: model.Base{ID: 4}, Name: "lead.view"}
	inTx(t, db, func(tx *gorm.DB) {
		ctx := context.Background()
		r.Deleted(ctx, tx, nil, p)
		r.Restored(ctx, tx, nil, p)
		r.ForceDeleted(ctx, tx, nil, p)
	})

	require.Len(t, rec.changes, 3)
	assert.Equal(t, model.ActionDeleted, rec.changes[0].Action)
	assert.Equal(t, "lead.view", rec.changes[0].Old["name"])
	assert.Nil(t, rec.changes[0].New)

	assert.Equal(t, model.ActionRestored, rec.changes[1].Action)
	assert.Nil(t, rec.changes[1].Old)
	assert.Nil(t, rec.changes[1].New)

	assert.Equal(t, model.ActionForceDeleted, rec.changes[2].Action)
	assert.Equal(t, "lead.view", rec.changes[2].New["name"])
}

func TestRegistryIsolatesFailures(t *testing.T) {
	db := testutil.NewDB(t)
	failing := &recorder{name: "failing", err: errors.New("insert rejected")}
	panicking := &recorder{name: "panicking", panics: true}
	skipping := &recorder{name: "skipping", err: ErrSkip}
	ok := &recorder{name: "ok"}
	obs := newCountingObserver()
	r := NewRegistry(nil, obs)
	r.Register("Team", failing, panicking, skipping, ok)

	inTx(t, db, func(tx *gorm.DB) {
		r.Created(context.Background(), tx, nil, &model.Team{Base: model.Base{ID: 1}, Name: "A"})
	})

	assert.Len(t, ok.changes, 1)
	assert.Equal(t, 1, obs.failures["failing/created"])
	assert.Equal(t, 1, obs.failures["panicking/created"])
	assert.Zero(t, obs.writes["skipping/created"])
	assert.Zero(t, obs.failures["skipping/created"])
	assert.Equal(t, 1, obs.writes["ok/created"])
}

type anonymous struct {
	Name string
}

func TestRegistrySnapshotFailureCountsPerTable(t *testing.T) {
	db := testutil.NewDB(t)
	rec := &recorder{name: "rec"}
	obs := newCountingObserver()
	r := NewRegistry(nil, obs)
	r.Register("anonymous", rec)

	inTx(t, db, func(tx *gorm.DB) {
		r.Created(context.Background(), tx, nil, &anonymous{Name: "x"})
	})

	assert.Empty(t, rec.changes)
	assert.Equal(t, 1, obs.failures["rec/created"])
}

func TestRegistryIgnoresUnwatchedTypes(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewRegistry(nil, nil)
	r.RegisterEntities([]any{&model.Brand{}}, &recorder{name: "rec"})

	assert.True(t, r.Watched("Brand"))
	assert.False(t, r.Watched("Team"))
	inTx(t, db, func(tx *gorm.DB) {
		r.Created(context.Background(), tx, nil, &model.Team{Base: model.Base{ID: 1}})
	})
}
