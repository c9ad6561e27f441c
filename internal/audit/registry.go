package audit

import (
	"context"
	"errors"
	"fmt"

	"leadtrail/internal/metrics"
	"leadtrail/internal/model"
	"leadtrail/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrSkip is returned by an interceptor that has nothing to record for a change.
var ErrSkip = errors.New("history skipped")

// Change describes one lifecycle transition of a watched entity.
type Change struct {
	EntityType string
	EntityID   uint64
	Action     string
	ActorID    *uint64
	// Entity is the post-mutation state, or the pre-delete state for deletions.
	Entity any
	Old    map[string]any
	New    map[string]any
}

// Touches reports whether an update changed any of the given columns.
// Non-update changes always touch.
func (c Change) Touches(columns ...string) bool {
	if c.Action != model.ActionUpdated {
		return true
	}
	for _, col := range columns {
		if _, ok := c.New[col]; ok {
			return true
		}
	}
	return false
}

// Interceptor receives changes for the entity types it is registered on.
// The tx handle is scoped to a savepoint; returning an error rolls back only
// what the interceptor wrote.
type Interceptor interface {
	Name() string
	Intercept(ctx context.Context, tx *gorm.DB, ch Change) error
}

type identified interface {
	GetID() uint64
}

// Registry maps entity type names to their interceptors and is the single
// entry point the mutation path calls after each write.
type Registry struct {
	interceptors map[string][]Interceptor
	snapshots    *Snapshotter
	observer     metrics.HistoryObserver
}

func NewRegistry(snapshots *Snapshotter, observer metrics.HistoryObserver) *Registry {
	if snapshots == nil {
		snapshots = NewSnapshotter(nil)
	}
	if observer == nil {
		observer = metrics.NopHistoryObserver{}
	}
	return &Registry{
		interceptors: make(map[string][]Interceptor),
		snapshots:    snapshots,
		observer:     observer,
	}
}

// Register attaches interceptors to an entity type. Call it at start-up only.
func (r *Registry) Register(entityType string, interceptors ...Interceptor) {
	r.interceptors[entityType] = append(r.interceptors[entityType], interceptors...)
}

// RegisterEntities attaches the same interceptors to every entity's type.
func (r *Registry) RegisterEntities(entities []any, interceptors ...Interceptor) {
	for _, e := range entities {
		r.Register(TypeName(e), interceptors...)
	}
}

// Watched reports whether any interceptor is registered for entityType.
func (r *Registry) Watched(entityType string) bool {
	return len(r.interceptors[entityType]) > 0
}

func (r *Registry) Created(ctx context.Context, tx *gorm.DB, actorID *uint64, entity any) {
	r.dispatch(ctx, tx, model.ActionCreated, actorID, nil, entity)
}

// Updated diffs before and after; nothing is dispatched when no tracked
// column changed.
func (r *Registry) Updated(ctx context.Context, tx *gorm.DB, actorID *uint64, before, after any) {
	r.dispatch(ctx, tx, model.ActionUpdated, actorID, before, after)
}

// Deleted takes the entity as it was before the soft delete.
func (r *Registry) Deleted(ctx context.Context, tx *gorm.DB, actorID *uint64, entity any) {
	r.dispatch(ctx, tx, model.ActionDeleted, actorID, entity, nil)
}

func (r *Registry) Restored(ctx context.Context, tx *gorm.DB, actorID *uint64, entity any) {
	r.dispatch(ctx, tx, model.ActionRestored, actorID, nil, entity)
}

func (r *Registry) ForceDeleted(ctx context.Context, tx *gorm.DB, actorID *uint64, entity any) {
	r.dispatch(ctx, tx, model.ActionForceDeleted, actorID, entity, nil)
}

func (r *Registry) dispatch(ctx context.Context, tx *gorm.DB, action string, actorID *uint64, before, after any) {
	subject := after
	if subject == nil {
		subject = before
	}
	entityType := TypeName(subject)
	interceptors := r.interceptors[entityType]
	if len(interceptors) == 0 {
		return
	}

	fields := []zap.Field{zap.String("entity_type", entityType), zap.String("action", action)}
	if id, ok := subject.(identified); ok {
		fields = append(fields, zap.Uint64("entity_id", id.GetID()))
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("history snapshot panicked", append(fields, zap.Any("panic", rec))...)
			r.failAll(interceptors, action)
		}
	}()

	ch, err := r.compose(ctx, entityType, action, actorID, before, after)
	if err != nil {
		logger.Error("history snapshot failed", append(fields, zap.Error(err))...)
		r.failAll(interceptors, action)
		return
	}
	if action == model.ActionUpdated && len(ch.New) == 0 {
		logger.Debug("history skipped, no tracked changes", fields...)
		return
	}

	for _, ic := range interceptors {
		r.run(ctx, tx, ic, ch, fields)
	}
}

// failAll counts a failed snapshot against every table it would have fed.
func (r *Registry) failAll(interceptors []Interceptor, action string) {
	for _, ic := range interceptors {
		r.observer.RecordFailure(ic.Name(), action)
	}
}

func (r *Registry) compose(ctx context.Context, entityType, action string, actorID *uint64, before, after any) (Change, error) {
	ch := Change{EntityType: entityType, Action: action, ActorID: actorID}

	switch action {
	case model.ActionCreated:
		attrs, err := r.snapshots.Attributes(ctx, after)
		if err != nil {
			return ch, err
		}
		ch.Entity, ch.New = after, attrs
	case model.ActionUpdated:
		oldAttrs, err := r.snapshots.Attributes(ctx, before)
		if err != nil {
			return ch, err
		}
		newAttrs, err := r.snapshots.Attributes(ctx, after)
		if err != nil {
			return ch, err
		}
		ch.Entity = after
		ch.Old, ch.New = Diff(oldAttrs, newAttrs)
	case model.ActionDeleted:
		attrs, err := r.snapshots.Attributes(ctx, before)
		if err != nil {
			return ch, err
		}
		ch.Entity, ch.Old = before, attrs
	case model.ActionRestored:
		ch.Entity = after
	case model.ActionForceDeleted:
		attrs, err := r.snapshots.Attributes(ctx, before)
		if err != nil {
			return ch, err
		}
		ch.Entity, ch.New = before, attrs
	default:
		return ch, fmt.Errorf("unknown action %q", action)
	}

	id, ok := ch.Entity.(identified)
	if !ok {
		return ch, fmt.Errorf("%s has no numeric identity", entityType)
	}
	ch.EntityID = id.GetID()
	return ch, nil
}

func (r *Registry) run(ctx context.Context, tx *gorm.DB, ic Interceptor, ch Change, fields []zap.Field) {
	fields = append(fields, zap.String("interceptor", ic.Name()))
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("history interceptor panicked", append(fields, zap.Any("panic", rec))...)
			r.observer.RecordFailure(ic.Name(), ch.Action)
		}
	}()

	err := tx.Transaction(func(htx *gorm.DB) error {
		return ic.Intercept(ctx, htx, ch)
	})
	if errors.Is(err, ErrSkip) {
		return
	}
	if err != nil {
		logger.Error("history write failed", append(fields, zap.Error(err))...)
		r.observer.RecordFailure(ic.Name(), ch.Action)
		return
	}
	r.observer.RecordWrite(ic.Name(), ch.Action)
}
