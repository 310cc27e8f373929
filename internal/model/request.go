package model

import "time"

// Ledger statuses for a reservation request.  The history of these is
// append-only; Request.LatestStatus mirrors the most recent entry.
const (
	RequestWaiting    = "waiting"
	RequestSelecting  = "selecting"
	RequestDone       = "done"
	RequestAbandoned  = "abandoned"
	RequestCheckedIn  = "checked_in"
	RequestCheckedOut = "checked_out"
)

// Request is a submitted reservation request as recorded by the ledger.
// The ledger assigns the RequestID; the core only appends status updates
// and never reads it on the concurrency-critical path.
//
// Fields:
//  RequestID    – opaque unique identifier (UUID).
//  Requester    – client-supplied requester name.
//  MatchID      – match being reserved.
//  Category     – ticket category of the request.
//  SeatID       – catalog seat granted on success (nullable until then).
//  LatestStatus – most recent status (see constants above).
//  CreatedAt    – submission timestamp.
//  UpdatedAt    – last status change timestamp.
type Request struct {
	RequestID    string    // requests.request_id
	Requester    string    // requests.requester
	MatchID      uint64    // requests.match_id
	Category     string    // requests.category
	SeatID       *uint64   // requests.seat_id (nullable)
	LatestStatus string    // requests.latest_status
	CreatedAt    time.Time // requests.created_at
	UpdatedAt    time.Time // requests.updated_at
}

// RequestStatus is one entry in a request's status history.  Entries are
// inserted whenever the request transitions and are used for the wait and
// check-in duration statistics.
//
// Fields:
//  ID        – primary key identifier.
//  RequestID – request the entry belongs to.
//  Status    – status recorded at this point in time.
//  CreatedAt – when the transition happened.
type RequestStatus struct {
	ID        uint64    // request_status.id
	RequestID string    // request_status.request_id
	Status    string    // request_status.status
	CreatedAt time.Time // request_status.created_at
}
