package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive      = 1
	StatusDeactivated = 2
	StatusDeleted     = 15
)

// Base carries the identity, status and timestamp columns shared by every
// watched entity.
type Base struct {
	ID        uint64         `json:"id" gorm:"primaryKey"`
	UUID      string         `json:"uuid" gorm:"size:36;uniqueIndex"`
	Status    int            `json:"status" gorm:"default:1;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *Base) GetID() uint64 { return b.ID }

func (b *Base) IsDeleted() bool { return b.DeletedAt.Valid }

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == "" {
		b.UUID = uuid.NewString()
	}
	if b.Status == 0 {
		b.Status = StatusActive
	}
	return nil
}

// Entity is the constraint satisfied by pointers to watched entity structs.
type Entity[T any] interface {
	*T
	GetID() uint64
	IsDeleted() bool
}
