// Package reservation implements the per-room reservation coordinator: a
// single goroutine per (match, category) room that owns the admission FIFO
// and the seat-status table, serialises every mutation, and broadcasts
// committed deltas to all room subscribers.  Rooms never share state, so
// independent rooms run fully in parallel and a failing collaborator only
// ever stalls its own room.
package reservation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/match-ticketing/internal/model"
	"github.com/iliyamo/match-ticketing/internal/queue"
	"github.com/iliyamo/match-ticketing/internal/seatmap"
)

// RoomKey identifies one independent admission/seat domain.
type RoomKey struct {
	MatchID  uint64
	Category seatmap.Category
}

func (k RoomKey) String() string {
	return fmt.Sprintf("%d/%s", k.MatchID, k.Category)
}

// SeatStore is the catalog collaborator: the ordered seat inventory of a
// room plus the single write the core performs, the reserve check-and-set.
type SeatStore interface {
	ListByMatchAndCategory(ctx context.Context, matchID uint64, category string) ([]model.Seat, error)
	Reserve(ctx context.Context, seatID uint64) error
}

// Ledger is the request-ledger collaborator.  It is an append/update log
// off the concurrency-critical path; rooms report transitions to it but
// never consult it to make decisions.
type Ledger interface {
	UpdateStatus(ctx context.Context, requestID, status string, seatID *uint64) error
}

// StatsSink receives queue statistics events.  Delivery is best-effort.
type StatsSink interface {
	Publish(ctx context.Context, ev queue.StatsEvent) error
}

// Sender delivers one outbound event to a subscriber connection.  The hub's
// clients implement it with a buffered channel so room actors never block
// on a slow consumer.
type Sender interface {
	Send(v interface{}) error
}

// Config carries the tunables every room is created with.
type Config struct {
	// AdmissionTimeout bounds how long an admitted-but-idle requester may
	// hold the room before being treated as abandoned.
	AdmissionTimeout time.Duration
	// WaitWindow is the number of recent admissions contributing to the
	// average-wait statistic.
	WaitWindow int
	// RetryAttempts and RetryBase shape the bounded backoff used for
	// collaborator calls (catalog load, ledger writes, reserve CAS).
	RetryAttempts int
	RetryBase     time.Duration
}

func (c Config) withDefaults() Config {
	if c.AdmissionTimeout <= 0 {
		c.AdmissionTimeout = 90 * time.Second
	}
	if c.WaitWindow <= 0 {
		c.WaitWindow = 50
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 100 * time.Millisecond
	}
	return c
}

// Coordinator is the registry of room actors.  Rooms are created lazily on
// first reference and live until Shutdown; a concluded match's rooms are
// reclaimed with the process.
type Coordinator struct {
	seats  SeatStore
	ledger Ledger
	stats  StatsSink // may be nil
	cfg    Config

	mu    sync.Mutex
	rooms map[RoomKey]*Room
}

// NewCoordinator builds a registry over the given collaborators.  stats may
// be nil, in which case no statistics are emitted.
func NewCoordinator(seats SeatStore, ledger Ledger, stats StatsSink, cfg Config) *Coordinator {
	return &Coordinator{
		seats:  seats,
		ledger: ledger,
		stats:  stats,
		cfg:    cfg.withDefaults(),
		rooms:  make(map[RoomKey]*Room),
	}
}

// Room returns the actor for a key, creating and starting it on first
// reference.  Creation loads the room's catalog inventory (with bounded
// retry); a failure here is surfaced to the caller as a transient error and
// nothing is registered.
func (c *Coordinator) Room(ctx context.Context, key RoomKey) (*Room, error) {
	c.mu.Lock()
	if r, ok := c.rooms[key]; ok {
		c.mu.Unlock()
		return r, nil
	}
	c.mu.Unlock()

	// Load outside the registry lock so one room's slow catalog cannot
	// stall lookups of other rooms.
	seats, err := loadSeats(ctx, c.seats, key, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("load catalog for room %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.rooms[key]; ok {
		return r, nil
	}
	r := newRoom(key, seats, c.seats, c.ledger, c.stats, c.cfg)
	c.rooms[key] = r
	go r.run()
	return r, nil
}

// Lookup returns an already-running room, or nil.  Used by the check-in
// path, which must not create rooms as a side effect.
func (c *Coordinator) Lookup(key RoomKey) *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms[key]
}

// Shutdown stops every room actor and waits for them to drain.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	rooms := make([]*Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		rooms = append(rooms, r)
	}
	c.rooms = make(map[RoomKey]*Room)
	c.mu.Unlock()
	for _, r := range rooms {
		r.Stop()
	}
}

func loadSeats(ctx context.Context, store SeatStore, key RoomKey, cfg Config) ([]model.Seat, error) {
	var seats []model.Seat
	err := withRetry(cfg, func() error {
		var e error
		seats, e = store.ListByMatchAndCategory(ctx, key.MatchID, string(key.Category))
		return e
	})
	return seats, err
}

// withRetry runs op up to cfg.RetryAttempts times with doubling backoff.
func withRetry(cfg Config, op func() error) error {
	backoff := cfg.RetryBase
	var err error
	for attempt := 0; attempt < cfg.RetryAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt < cfg.RetryAttempts-1 {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return err
}
