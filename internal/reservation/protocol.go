package reservation

import "github.com/iliyamo/match-ticketing/internal/seatmap"

// Outbound event payloads pushed to room subscribers.  The stage numbering
// mirrors the client protocol: stage 1 is the seat map on entry, stage 2
// the selection outcome, stage 3 the live seat-status broadcast.

// Stage-2 failure reasons.
const (
	ReasonSeatTaken   = "seat_taken"
	ReasonNotAdmitted = "not_admitted"
	ReasonUnknownSlot = "unknown_slot"
	ReasonDuplicate   = "duplicate_request"
	ReasonTransient   = "transient"
)

// Registered acknowledges a successful queue registration.
type Registered struct {
	Type     string `json:"type"` // "registered"
	MatchID  uint64 `json:"match_id"`
	Category string `json:"category"`
}

// Queued tells a waiting requester its 1-based position behind the
// currently admitted requester.
type Queued struct {
	Type     string `json:"type"` // "queued"
	Position int    `json:"position"`
}

// StartSelection is the stage-1 event: the requester has been admitted and
// receives the room's current seat map.
type StartSelection struct {
	Stage   string         `json:"stage"` // "1"
	Type    string         `json:"type"`  // "start_selection"
	SeatMap []seatmap.Slot `json:"seat_map"`
}

// SelectionResult is the stage-2 event: the outcome of a seat pick.
type SelectionResult struct {
	Stage      string `json:"stage"`  // "2"
	Status     string `json:"status"` // "success" | "failure"
	Reason     string `json:"reason,omitempty"`
	SeatSlotID string `json:"seat_slot_id,omitempty"`
}

// SlotDelta is one changed slot in a stage-3 broadcast.
type SlotDelta struct {
	SlotID string         `json:"slot_id"`
	Status seatmap.Status `json:"status"`
}

// SeatUpdate is the stage-3 event: the minimal delta applied to the room's
// seat table, pushed to every subscriber so maps stay live without polling.
type SeatUpdate struct {
	Stage string      `json:"stage"` // "3"
	Type  string      `json:"type"`  // "seat_update"
	Delta []SlotDelta `json:"delta"`
}

// ErrorNotice reports a protocol violation or a transient collaborator
// failure outside the stage-2 reply path.  The connection stays open.
type ErrorNotice struct {
	Type   string `json:"type"` // "error"
	Reason string `json:"reason"`
}
