package repository

import (
	"context"
	"errors"

	"leadtrail/internal/model"

	"gorm.io/gorm"
)

// UserRepository serves the lookups auth needs beyond plain CRUD.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindActiveByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND status = ?", email, model.StatusActive).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// RoleName resolves the user's role for token claims; users without a role
// get an empty name.
func (r *UserRepository) RoleName(ctx context.Context, user *model.User) (string, error) {
	if user.RoleID == nil {
		return "", nil
	}
	var role model.Role
	err := r.db.WithContext(ctx).Select("name").First(&role, *user.RoleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return role.Name, err
}
