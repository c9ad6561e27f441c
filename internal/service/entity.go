package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"leadtrail/internal/audit"
	"leadtrail/internal/model"
	"leadtrail/internal/repository"
	"leadtrail/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var protectedColumns = map[string]bool{
	"id":         true,
	"uuid":       true,
	"created_at": true,
	"updated_at": true,
	"deleted_at": true,
}

// EntityService runs the audited mutation path for one watched entity type.
// Every mutation and its history hooks share a single transaction.
type EntityService[T any, P model.Entity[T]] struct {
	db       *gorm.DB
	repo     repository.EntityInterface[T, P]
	registry *audit.Registry
	schema   *schema.Schema
}

func NewEntityService[T any, P model.Entity[T]](db *gorm.DB, repo repository.EntityInterface[T, P], registry *audit.Registry) *EntityService[T, P] {
	sch, err := schema.Parse(P(new(T)), &sync.Map{}, db.NamingStrategy)
	if err != nil {
		// Models are static; a parse failure is a programming error.
		panic(fmt.Sprintf("parse schema of %T: %v", new(T), err))
	}
	if !registry.Watched(sch.Name) {
		logger.Warn("entity type has no history interceptors", zap.String("entity_type", sch.Name))
	}
	return &EntityService[T, P]{db: db, repo: repo, registry: registry, schema: sch}
}

func (s *EntityService[T, P]) Get(ctx context.Context, id uint64) (P, error) {
	return s.repo.Get(ctx, id)
}

func (s *EntityService[T, P]) List(ctx context.Context, q repository.ListQuery) (*repository.Page[T], error) {
	return s.repo.List(ctx, q)
}

func (s *EntityService[T, P]) Create(ctx context.Context, actorID *uint64, entity P) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, entity); err != nil {
			logger.Error("failed to create entity",
				zap.String("entity_type", s.schema.Name),
				zap.String("operator", GetOperator(ctx)),
				zap.Error(err))
			return err
		}
		s.registry.Created(ctx, tx, actorID, entity)
		return nil
	})
}

// CreateFromFields builds the entity from request fields, as accepted by
// Update, and creates it.
func (s *EntityService[T, P]) CreateFromFields(ctx context.Context, actorID *uint64, fields map[string]any) (P, error) {
	entity, _, err := s.decode(ctx, fields, func(f *schema.Field) bool { return f.Creatable })
	if err != nil {
		return nil, err
	}
	if err := s.Create(ctx, actorID, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// Update applies the given fields and returns the fresh row. Unknown or
// protected fields are rejected with ErrInvalidField. The row is locked for
// the whole transaction so the recorded diff is exactly this update's.
func (s *EntityService[T, P]) Update(ctx context.Context, actorID *uint64, id uint64, fields map[string]any) (P, error) {
	_, columns, err := s.decode(ctx, fields, func(f *schema.Field) bool { return f.Updatable })
	if err != nil {
		return nil, err
	}

	var updated P
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		// The lock keeps concurrent writers out of the before/after window.
		before, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if before.IsDeleted() {
			return ErrNotFound
		}
		if len(columns) > 0 {
			if err := repo.UpdateColumns(ctx, id, columns); err != nil {
				logger.Error("failed to update entity",
					zap.String("entity_type", s.schema.Name),
					zap.Uint64("id", id),
					zap.String("operator", GetOperator(ctx)),
					zap.Error(err))
				return err
			}
		}
		after, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		s.registry.Updated(ctx, tx, actorID, before, after)
		updated = after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes the entity.
func (s *EntityService[T, P]) Delete(ctx context.Context, actorID *uint64, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entity, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if entity.IsDeleted() {
			return ErrAlreadyDeleted
		}
		prev := *entity
		if err := repo.SoftDelete(ctx, entity); err != nil {
			return err
		}
		s.registry.Deleted(ctx, tx, actorID, P(&prev))
		return nil
	})
}

func (s *EntityService[T, P]) Restore(ctx context.Context, actorID *uint64, id uint64) (P, error) {
	var restored P
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entity, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !entity.IsDeleted() {
			return ErrNotDeleted
		}
		if err := repo.Restore(ctx, entity); err != nil {
			return err
		}
		if restored, err = repo.Get(ctx, id); err != nil {
			return err
		}
		s.registry.Restored(ctx, tx, actorID, restored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

// ForceDelete removes the row permanently; soft-deleted rows qualify too.
func (s *EntityService[T, P]) ForceDelete(ctx context.Context, actorID *uint64, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entity, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		prev := *entity
		if err := repo.ForceDelete(ctx, entity); err != nil {
			return err
		}
		s.registry.ForceDeleted(ctx, tx, actorID, P(&prev))
		return nil
	})
}

// decode runs the request fields through the model so every column value
// carries its Go type.
func (s *EntityService[T, P]) decode(ctx context.Context, fields map[string]any, writable func(*schema.Field) bool) (P, map[string]any, error) {
	decoded := P(new(T))
	if len(fields) == 0 {
		return decoded, nil, nil
	}
	targets := make([]*schema.Field, 0, len(fields))
	for key := range fields {
		f := s.schema.FieldsByDBName[key]
		if f == nil || protectedColumns[f.DBName] || f.Tag.Get("json") == "-" || !writable(f) {
			return nil, nil, fmt.Errorf("%w: %s", ErrInvalidField, key)
		}
		targets = append(targets, f)
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if err := json.Unmarshal(raw, decoded); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, nil, fmt.Errorf("%w: %s", ErrInvalidField, typeErr.Field)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidField, err)
	}

	rv := reflect.ValueOf(decoded)
	columns := make(map[string]any, len(targets))
	for _, f := range targets {
		v, _ := f.ValueOf(ctx, rv)
		// Soft delete and restore own StatusDeleted.
		if f.DBName == "status" && v != model.StatusActive && v != model.StatusDeactivated {
			return nil, nil, fmt.Errorf("%w: status", ErrInvalidField)
		}
		columns[f.DBName] = v
	}
	return decoded, columns, nil
}
