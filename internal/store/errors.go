// Package store implements CRUD over the SQLite-backed entity tables. Error
// sentinels defined here let the service and web layers distinguish failure
// classes without string matching.
package store

import "errors"

// ErrNotFound is returned when an operation targets a row that does not
// exist (or exists but is filtered out by user scoping).
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when a write references a row owned by a
// different user. Cross-user references are never permitted.
var ErrForbidden = errors.New("row owned by another user")

// ErrConflict is returned when a delete cannot proceed because dependent
// rows still reference the target, such as a film stock with rolls.
var ErrConflict = errors.New("dependent rows exist")

// ErrNoStock is returned when a roll is created against a film stock whose
// quantity on hand is zero.
var ErrNoStock = errors.New("film stock quantity exhausted")
