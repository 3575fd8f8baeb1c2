package service

import (
	"errors"

	"essay-hub/internal/domain"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// repoError passes nil and domain errors through and wraps anything else as
// internal.
func repoError(message string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	return domain.NewInternalError(message, err)
}

func pageLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
