// Package repository defines error values shared across the data
// access layer. Sentinel errors let handlers translate storage
// outcomes into HTTP responses without string matching: a guarded
// state-machine update that touches zero rows surfaces ErrConflict,
// a lookup that finds nothing surfaces the entity's not-found error.
package repository

import "errors"

// ErrConflict is returned when a guarded update cannot proceed
// because the row is no longer in the expected state, such as
// approving a visitor that is not pending or checking out a visitor
// who already left. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller attempts an operation on
// a resource they may not act on. Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrVisitorNotFound is returned when no visitor row matches the
// requested identifier.
var ErrVisitorNotFound = errors.New("visitor not found")

// ErrBusNotFound is returned when no bus entry matches the requested
// identifier.
var ErrBusNotFound = errors.New("bus entry not found")

// ErrAuthorityNotFound is returned when no active authority matches
// the requested identifier.
var ErrAuthorityNotFound = errors.New("authority not found")

// ErrUsernameExists is returned when creating a user whose username
// is already taken.
var ErrUsernameExists = errors.New("username already exists")
