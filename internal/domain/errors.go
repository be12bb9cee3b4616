package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound               = errors.New("URL not found")
	ErrCollision              = errors.New("key already in use")
	ErrKeyGenerationExhausted = errors.New("failed to generate a unique key")
	ErrForbidden              = errors.New("not allowed by current plan")
	ErrQuotaExceeded          = errors.New("monthly usage limit exceeded")
	ErrUnauthorized           = errors.New("invalid credentials")
	ErrEmailTaken             = errors.New("email already registered")
	ErrInvalidExpiration      = errors.New("expiration must be in the future")
	ErrInvalidInput           = errors.New("invalid input")
)

// CollisionError reports a uniqueness violation on a links column.
type CollisionError struct {
	Constraint string
}

func (e *CollisionError) Error() string {
	return "unique constraint violated: " + e.Constraint
}

func (e *CollisionError) Is(target error) bool {
	return target == ErrCollision
}

// OnSecret reports whether the violated constraint guards the secret key.
func (e *CollisionError) OnSecret() bool {
	return strings.Contains(e.Constraint, "secret")
}
