package services

import (
	"errors"
	"fmt"
	"strings"

	"tracker/internal/repositories"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned when a timer write kept losing to concurrent writers.
	ErrConflict = errors.New("conflict")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// storeErr maps repository errors into the service vocabulary.
func storeErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func requireTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", validationf("title is required")
	}
	return t, nil
}
