// Package admission implements the fair admission queue for one room: a
// strict FIFO of reservation requests of which at most one is admitted into
// the seat-selection phase at any instant.
//
// A Queue is not safe for concurrent use.  It is owned exclusively by its
// room's coordinator, which serialises every call; keeping the structure
// lock-free makes the FIFO and single-admission invariants trivial to
// reason about and to test.
package admission

import (
	"errors"
	"time"
)

// TicketState is the lifecycle state of an admission ticket.
type TicketState string

const (
	StateWaiting  TicketState = "waiting"
	StateAdmitted TicketState = "admitted"
	StateFinished TicketState = "finished"
)

// Errors reported by the queue.  Duplicate registration and operations on
// unknown tickets are protocol violations; the caller replies and keeps
// the connection open.
var (
	ErrDuplicate      = errors.New("request already registered")
	ErrTicketNotFound = errors.New("admission ticket not found")
)

// Ticket is one requester's position in the queue.
type Ticket struct {
	RequestID  string
	Requester  string
	State      TicketState
	EnqueuedAt time.Time
	AdmittedAt time.Time
}

// Queue is the FIFO admission structure for a single room.  Tickets enter
// via Register, leave via Finish or Abandon, and the head ticket is the
// only one ever in StateAdmitted.
type Queue struct {
	tickets []*Ticket // FIFO order; tickets[0] is admitted when non-empty
	byID    map[string]*Ticket

	waits      []time.Duration // recent wait samples, ring of waitWindow
	waitCursor int
	waitCount  int
	waitWindow int

	now func() time.Time
}

// DefaultWaitWindow is how many recent admissions contribute to the
// average-wait statistic.
const DefaultWaitWindow = 50

// New returns an empty queue keeping wait statistics over the last window
// admissions.  A window below 1 falls back to DefaultWaitWindow.
func New(window int) *Queue {
	if window < 1 {
		window = DefaultWaitWindow
	}
	return &Queue{
		byID:       make(map[string]*Ticket),
		waits:      make([]time.Duration, window),
		waitWindow: window,
		now:        time.Now,
	}
}

// Register appends a new ticket to the FIFO.  When the room has no admitted
// requester the ticket is admitted immediately and the second return value
// is true; otherwise the ticket waits.  Registering the same request twice
// is rejected with ErrDuplicate.
func (q *Queue) Register(requestID, requester string) (*Ticket, bool, error) {
	if _, ok := q.byID[requestID]; ok {
		return nil, false, ErrDuplicate
	}
	t := &Ticket{
		RequestID:  requestID,
		Requester:  requester,
		State:      StateWaiting,
		EnqueuedAt: q.now(),
	}
	q.tickets = append(q.tickets, t)
	q.byID[requestID] = t
	if len(q.tickets) == 1 {
		q.admit(t)
		return t, true, nil
	}
	return t, false, nil
}

// Finish marks the request's ticket finished, removes it, and admits the
// next waiting ticket in FIFO order if one exists.  The admitted successor
// (if any) is returned so the caller can notify it.
func (q *Queue) Finish(requestID string) (*Ticket, error) {
	t, ok := q.byID[requestID]
	if !ok {
		return nil, ErrTicketNotFound
	}
	t.State = StateFinished
	delete(q.byID, requestID)
	q.remove(t)
	if len(q.tickets) > 0 && q.tickets[0].State == StateWaiting {
		q.admit(q.tickets[0])
		return q.tickets[0], nil
	}
	return nil, nil
}

// Abandon has the same queue effect as Finish but is used when the
// requester disconnected or timed out: the ticket is removed without a
// success confirmation so a dead client can never block the room.
// Abandoning a waiting ticket simply removes it from the FIFO.
func (q *Queue) Abandon(requestID string) (*Ticket, error) {
	return q.Finish(requestID)
}

// Admitted returns the currently admitted ticket, or nil.
func (q *Queue) Admitted() *Ticket {
	if len(q.tickets) > 0 && q.tickets[0].State == StateAdmitted {
		return q.tickets[0]
	}
	return nil
}

// IsAdmitted reports whether the given request holds the room's admission
// slot right now.
func (q *Queue) IsAdmitted(requestID string) bool {
	a := q.Admitted()
	return a != nil && a.RequestID == requestID
}

// WaitingCount returns the number of tickets in StateWaiting.
func (q *Queue) WaitingCount() int {
	n := len(q.tickets)
	if q.Admitted() != nil {
		n--
	}
	return n
}

// Position returns the 1-based queue position of a waiting request (the
// admitted requester is position 0).  Unknown requests return -1.
func (q *Queue) Position(requestID string) int {
	for i, t := range q.tickets {
		if t.RequestID == requestID {
			return i
		}
	}
	return -1
}

// AvgWait returns the mean admitted-minus-enqueued duration over the
// bounded recent history, or zero when nothing was admitted yet.
func (q *Queue) AvgWait() time.Duration {
	if q.waitCount == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < q.waitCount; i++ {
		sum += q.waits[i]
	}
	return sum / time.Duration(q.waitCount)
}

// Len returns the total number of live tickets (admitted + waiting).
func (q *Queue) Len() int { return len(q.tickets) }

func (q *Queue) admit(t *Ticket) {
	t.State = StateAdmitted
	t.AdmittedAt = q.now()
	q.recordWait(t.AdmittedAt.Sub(t.EnqueuedAt))
}

func (q *Queue) recordWait(d time.Duration) {
	q.waits[q.waitCursor] = d
	q.waitCursor = (q.waitCursor + 1) % q.waitWindow
	if q.waitCount < q.waitWindow {
		q.waitCount++
	}
}

func (q *Queue) remove(t *Ticket) {
	for i, cur := range q.tickets {
		if cur == t {
			q.tickets = append(q.tickets[:i], q.tickets[i+1:]...)
			return
		}
	}
}
