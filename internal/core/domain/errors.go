package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmptyText         = errors.New("no readable text")
	ErrDuplicate         = errors.New("duplicate record")
	ErrRecordNotFound    = errors.New("record not found")
	ErrStoreUnavailable  = errors.New("record store unavailable")
	ErrIndexUnavailable  = errors.New("search index unavailable")
	ErrSearchUnavailable = errors.New("search unavailable")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
