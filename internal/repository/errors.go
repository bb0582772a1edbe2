package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the referenced task or user is absent.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned when input violates a store constraint.
	ErrValidation = errors.New("validation failed")
	// ErrUnavailable wraps any failure of the underlying database.
	ErrUnavailable = errors.New("store unavailable")
)

// classify maps a gorm error onto the store's error kinds.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
