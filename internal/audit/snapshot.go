package audit

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"gorm.io/gorm/schema"
)

var untracked = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"deleted_at": true,
}

// Snapshotter turns an entity into a column -> value map using its gorm schema.
type Snapshotter struct {
	cache *sync.Map
	namer schema.Namer
}

func NewSnapshotter(namer schema.Namer) *Snapshotter {
	if namer == nil {
		namer = schema.NamingStrategy{}
	}
	return &Snapshotter{cache: &sync.Map{}, namer: namer}
}

// TypeName is the entity type identifier used as the registration key and
// stored in activity_logs.model.
func TypeName(entity any) string {
	t := reflect.TypeOf(entity)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// Attributes returns the tracked columns of entity. Timestamps and fields
// tagged `audit:"-"` are left out; pointer values are dereferenced.
func (s *Snapshotter) Attributes(ctx context.Context, entity any) (map[string]any, error) {
	if entity == nil {
		return nil, fmt.Errorf("snapshot of nil entity")
	}
	sch, err := schema.Parse(entity, s.cache, s.namer)
	if err != nil {
		return nil, fmt.Errorf("parse schema of %s: %w", TypeName(entity), err)
	}

	rv := reflect.ValueOf(entity)
	attrs := make(map[string]any, len(sch.Fields))
	for _, f := range sch.Fields {
		if f.DBName == "" || untracked[f.DBName] || f.Tag.Get("audit") == "-" {
			continue
		}
		v, _ := f.ValueOf(ctx, rv)
		attrs[f.DBName] = deref(v)
	}
	return attrs, nil
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// Diff keeps only the keys whose values differ between before and after.
// Both results are empty when nothing changed.
func Diff(before, after map[string]any) (map[string]any, map[string]any) {
	oldVals := map[string]any{}
	newVals := map[string]any{}
	for k, nv := range after {
		ov, ok := before[k]
		if ok && equal(ov, nv) {
			continue
		}
		oldVals[k] = ov
		newVals[k] = nv
	}
	for k, ov := range before {
		if _, ok := after[k]; !ok {
			oldVals[k] = ov
			newVals[k] = nil
		}
	}
	return oldVals, newVals
}

func equal(a, b any) bool {
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok && bok {
		return at.Equal(bt)
	}
	return reflect.DeepEqual(a, b)
}
