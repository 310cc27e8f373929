// Package queue defines the statistics feed exchanged over the message
// broker.  Delivery is best-effort: the dashboard is a display surface and
// losing an event never affects reservation correctness.
package queue

// Event kinds carried on the stats queue.
const (
	EventQueueUpdate   = "queue_update"
	EventCheckinUpdate = "checkin_update"
)

// StatsEvent is the envelope published for every statistics change.  Only
// the fields relevant to the Kind are populated.
type StatsEvent struct {
	Kind     string `json:"kind"`
	MatchID  uint64 `json:"match_id"`
	Category string `json:"category,omitempty"`

	// queue_update
	WaitingCount   int     `json:"waiting_count"`
	AvgWaitSeconds float64 `json:"avg_wait_seconds"`

	// checkin_update
	CheckedInCount     int     `json:"checked_in_count"`
	AvgCheckinDuration float64 `json:"avg_checkin_duration"`

	EmittedAt string `json:"emitted_at"`
}
