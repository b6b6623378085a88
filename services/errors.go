package services

import (
	"github.com/pkg/errors"
)

// Error taxonomy surfaced to callers. Store read/write failures are wrapped
// with context and propagate as-is; these sentinels cover the conditions the
// HTTP layer maps to distinct responses.
var (
	// ErrNotAuthenticated means no user identity is available for the operation.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNoDoctorAvailable means the user directory holds no admin-role account.
	ErrNoDoctorAvailable = errors.New("no doctor account available")

	// ErrNotFound means a referenced result, conversation or user is absent.
	ErrNotFound = errors.New("record not found")
)
