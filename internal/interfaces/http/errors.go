package http

import (
	"errors"

	"github.com/openbooks/backend/internal/infrastructure/persistence"
)

// isNotFound reports whether the error chain carries a missing-document error
func isNotFound(err error) bool {
	return errors.Is(err, persistence.ErrNotFound)
}
