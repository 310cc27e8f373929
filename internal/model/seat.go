package model

import "time"

// Catalog seat statuses.  A seat moves from available to reserved exactly
// once; there is no transition back within the core (cancellations are a
// catalog-side concern).
const (
	SeatAvailable = "available"
	SeatReserved  = "reserved"
)

// Seat is one physical seat in the catalog inventory.  Seats belong to a
// match and a ticket category; the ordering of seats within a
// (match, category) pair is by ascending ID and is what the seat map
// overlay relies on.
//
// Fields:
//  ID        – primary key identifier.
//  MatchID   – match this seat belongs to.
//  Category  – ticket category (Standard, Premium, VIP).
//  Name      – catalog display name, e.g. "VIP-3".
//  Status    – current status (available, reserved).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Seat struct {
	ID        uint64    // seats.id
	MatchID   uint64    // seats.match_id
	Category  string    // seats.category
	Name      string    // seats.name
	Status    string    // seats.status
	CreatedAt time.Time // seats.created_at
	UpdatedAt time.Time // seats.updated_at
}
