package domain

import "errors"

// ErrNoActionSubmitted is returned when a request carries no action key.
var ErrNoActionSubmitted = errors.New("no action submitted")

// ErrActionNotFound is returned when the submitted action is not in the trigger table.
var ErrActionNotFound = errors.New("action not found")

// ErrActionNotAllowed is returned when the action exists but its condition is false.
var ErrActionNotAllowed = errors.New("action not allowed")

// ErrStepOutOfRange is returned when a wizard step index falls outside [1, N].
var ErrStepOutOfRange = errors.New("step out of range")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")
