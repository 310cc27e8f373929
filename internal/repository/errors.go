// Package repository defines data access for the catalog (matches, seats)
// and the request ledger.  Sentinel errors declared here let higher layers
// distinguish failure scenarios without inspecting driver errors: handlers
// translate ErrMatchNotFound into 404, ErrSeatTaken into a stage-2
// contention failure, and so on.
package repository

import "errors"

// ErrMatchNotFound is returned when a match lookup yields no rows.
var ErrMatchNotFound = errors.New("match not found")

// ErrRequestNotFound is returned when a ledger request lookup yields no rows.
var ErrRequestNotFound = errors.New("request not found")

// ErrSeatTaken is returned by the reserve check-and-set when the seat's
// status was no longer available at commit time.
var ErrSeatTaken = errors.New("seat already taken")

// ErrInvalidTransition is returned by ledger check-in/out updates when the
// request is not in a status that permits the transition (e.g. check-out
// before check-in).
var ErrInvalidTransition = errors.New("invalid status transition")
