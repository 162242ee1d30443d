package access

import "errors"

var (
	ErrNotFound        = errors.New("access: not found")
	ErrInvalidInput    = errors.New("access: invalid input")
	ErrExpiredProof    = errors.New("access: engagement proof expired")
	ErrDuplicateSecret = errors.New("access: token secret already exists")
)
