package service

import (
	"errors"

	"leadtrail/internal/repository"
)

var (
	ErrNotFound       = repository.ErrNotFound
	ErrDuplicate      = repository.ErrDuplicate
	ErrAlreadyDeleted = errors.New("record already deleted")
	ErrNotDeleted     = errors.New("record is not deleted")
	ErrInvalidField   = errors.New("invalid field")
)
