package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicateJob      = errors.New("duplicate job")
)

const validationPrefix = "validation:"

// ValidationError builds a non-retryable validation failure. The
// "validation:" prefix is the classification contract shared with the
// pipeline's failure taxonomy.
func ValidationError(reason string) error {
	return fmt.Errorf("%s%s", validationPrefix, reason)
}

// IsValidationError reports whether err is a validation failure.
func IsValidationError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), validationPrefix)
}
