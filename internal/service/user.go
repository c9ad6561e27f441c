package service

import (
	"context"
	"fmt"

	"leadtrail/internal/dto/req"
	"leadtrail/internal/model"

	"golang.org/x/crypto/bcrypt"
)

type UserEntityService = EntityService[model.User, *model.User]

// UserService hashes passwords before handing users to the audited path.
// The password column is create-only and never reaches the activity log.
type UserService struct {
	*UserEntityService
}

func NewUserService(entities *UserEntityService) *UserService {
	return &UserService{UserEntityService: entities}
}

func (s *UserService) Register(ctx context.Context, actorID *uint64, r req.CreateUserRequest) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Name:          r.Name,
		Email:         r.Email,
		Password:      string(hash),
		RoleID:        r.RoleID,
		DepartmentID:  r.DepartmentID,
		DesignationID: r.DesignationID,
		TeamID:        r.TeamID,
	}
	if err := s.Create(ctx, actorID, user); err != nil {
		return nil, err
	}
	return user, nil
}
