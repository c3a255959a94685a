package service

import "errors"

// ErrInvalidTransition is returned when a lifecycle operation is applied to
// a roll whose current status does not permit it. The state machine is
// monotonic: there is no way to move a roll backward.
var ErrInvalidTransition = errors.New("invalid roll status transition")

// ErrInvalidBranch is returned when the development branch out of the
// finished state is neither lab nor self.
var ErrInvalidBranch = errors.New("invalid development branch")

// ErrValidation is returned when operation input fails validation before any
// write is attempted.
var ErrValidation = errors.New("invalid input")
