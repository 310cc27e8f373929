package reservation

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/match-ticketing/internal/admission"
	"github.com/iliyamo/match-ticketing/internal/model"
	"github.com/iliyamo/match-ticketing/internal/queue"
	"github.com/iliyamo/match-ticketing/internal/repository"
	"github.com/iliyamo/match-ticketing/internal/seatmap"
)

// Room is the actor owning one (match, category) domain: its admission
// FIFO, its seat-status table and its subscriber set.  All mutations go
// through the command channel and are applied by the single run goroutine,
// so no locks guard the state and ordering within the room is total:
// admissions are strictly FIFO and broadcasts are delivered in commit
// order.
type Room struct {
	Key RoomKey

	cmds chan command
	done chan struct{}

	seats  SeatStore
	ledger Ledger
	stats  StatsSink
	cfg    Config

	// state below is owned by the run goroutine
	fifo       *admission.Queue
	slots      []seatmap.Slot
	slotIdx    map[string]int // slot_id -> index into slots
	seatIdx    map[uint64]int // catalog seat id -> index into slots
	sessions   map[string]*session
	watchers   map[Sender]struct{}
	timeoutSeq uint64

	ledgerCh chan ledgerUpdate
	statsCh  chan queue.StatsEvent
}

// session is one registered requester's connection within the room.
type session struct {
	requestID string
	requester string
	send      Sender
}

type ledgerUpdate struct {
	requestID string
	status    string
	seatID    *uint64
}

// Actor commands.  Each carries exactly what the handler needs; the run
// loop dispatches on the concrete type.
type command interface{}

type registerCmd struct {
	send      Sender
	requestID string
	requester string
}

type watchCmd struct{ send Sender }

type selectCmd struct {
	send      Sender
	requestID string
	slotID    string
}

type finishCmd struct{ requestID string }

type leaveCmd struct{ send Sender }

type timeoutCmd struct {
	requestID string
	seq       uint64
}

type seatStatusCmd struct {
	seatID uint64
	status seatmap.Status
}

func newRoom(key RoomKey, catalog []model.Seat, seats SeatStore, ledger Ledger, stats StatsSink, cfg Config) *Room {
	base := seatmap.Generate(key.Category)
	slots := seatmap.Overlay(base, catalog)
	r := &Room{
		Key:      key,
		cmds:     make(chan command, 128),
		done:     make(chan struct{}),
		seats:    seats,
		ledger:   ledger,
		stats:    stats,
		cfg:      cfg,
		fifo:     admission.New(cfg.WaitWindow),
		slots:    slots,
		slotIdx:  make(map[string]int, len(slots)),
		seatIdx:  make(map[uint64]int, len(catalog)),
		sessions: make(map[string]*session),
		watchers: make(map[Sender]struct{}),
		ledgerCh: make(chan ledgerUpdate, 64),
		statsCh:  make(chan queue.StatsEvent, 64),
	}
	for i, s := range slots {
		r.slotIdx[s.SlotID] = i
		if s.SeatID != 0 {
			r.seatIdx[s.SeatID] = i
		}
	}
	go r.ledgerWriter()
	go r.statsWriter()
	return r
}

// Register subscribes the connection to the room and appends the request to
// the admission FIFO.  Admission (immediate or later) is pushed to the
// sender as a stage-1 event.
func (r *Room) Register(send Sender, requestID, requester string) {
	r.post(registerCmd{send: send, requestID: requestID, requester: requester})
}

// Watch subscribes a broadcast-only connection: it receives stage-3 deltas
// but never enters the queue.
func (r *Room) Watch(send Sender) {
	r.post(watchCmd{send: send})
}

// Select submits a seat pick on behalf of a requester.  The outcome is
// pushed to the sender as a stage-2 event.
func (r *Room) Select(send Sender, requestID, slotID string) {
	r.post(selectCmd{send: send, requestID: requestID, slotID: slotID})
}

// Finish releases the requester's admission slot after a confirmed
// success, advancing the FIFO.
func (r *Room) Finish(requestID string) {
	r.post(finishCmd{requestID: requestID})
}

// Leave unsubscribes a connection.  If it held a live admission ticket the
// ticket is abandoned so a dead client never blocks the room.
func (r *Room) Leave(send Sender) {
	r.post(leaveCmd{send: send})
}

// ApplySeatStatus records an externally committed status change (check-in
// or check-out) on the room's seat table and broadcasts the delta.
func (r *Room) ApplySeatStatus(seatID uint64, status seatmap.Status) {
	r.post(seatStatusCmd{seatID: seatID, status: status})
}

// Stop terminates the actor.  Pending commands are dropped; in-flight
// ledger updates are drained.
func (r *Room) Stop() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

func (r *Room) post(c command) {
	select {
	case r.cmds <- c:
	case <-r.done:
	}
}

func (r *Room) run() {
	for {
		select {
		case <-r.done:
			close(r.ledgerCh)
			close(r.statsCh)
			return
		case c := <-r.cmds:
			r.dispatch(c)
		}
	}
}

func (r *Room) dispatch(c command) {
	switch cmd := c.(type) {
	case registerCmd:
		r.handleRegister(cmd)
	case watchCmd:
		r.watchers[cmd.send] = struct{}{}
	case selectCmd:
		r.handleSelect(cmd)
	case finishCmd:
		r.handleFinish(cmd.requestID, false)
	case leaveCmd:
		r.handleLeave(cmd.send)
	case timeoutCmd:
		r.handleTimeout(cmd)
	case seatStatusCmd:
		r.handleSeatStatus(cmd)
	}
}

func (r *Room) handleRegister(cmd registerCmd) {
	ticket, admitted, err := r.fifo.Register(cmd.requestID, cmd.requester)
	if err != nil {
		r.trySend(cmd.send, ErrorNotice{Type: "error", Reason: ReasonDuplicate})
		return
	}
	r.sessions[cmd.requestID] = &session{
		requestID: cmd.requestID,
		requester: cmd.requester,
		send:      cmd.send,
	}
	r.trySend(cmd.send, Registered{Type: "registered", MatchID: r.Key.MatchID, Category: string(r.Key.Category)})
	if admitted {
		r.startSelection(ticket)
	} else {
		r.trySend(cmd.send, Queued{Type: "queued", Position: r.fifo.Position(cmd.requestID)})
	}
	r.pushQueueStats()
}

// startSelection is the stage-1 entry: the admitted requester gets the
// room's current seat map and the admission timeout starts ticking.
func (r *Room) startSelection(ticket *admission.Ticket) {
	sess, ok := r.sessions[ticket.RequestID]
	if !ok {
		// Connection vanished between enqueue and admission; treat as
		// abandoned and advance.
		r.handleFinish(ticket.RequestID, true)
		return
	}
	r.recordLedger(ticket.RequestID, model.RequestSelecting, nil)
	r.trySend(sess.send, StartSelection{Stage: "1", Type: "start_selection", SeatMap: r.snapshot()})
	r.armTimeout(ticket.RequestID)
}

func (r *Room) handleSelect(cmd selectCmd) {
	if !r.fifo.IsAdmitted(cmd.requestID) {
		r.trySend(cmd.send, SelectionResult{Stage: "2", Status: "failure", Reason: ReasonNotAdmitted})
		return
	}
	idx, ok := r.slotIdx[cmd.slotID]
	if !ok || !r.slots[idx].Eligible || r.slots[idx].SeatID == 0 {
		r.reject(cmd, ReasonUnknownSlot)
		return
	}
	slot := r.slots[idx]
	if slot.Status != seatmap.StatusAvailable {
		r.reject(cmd, ReasonSeatTaken)
		return
	}

	// Commit: check-and-set against the catalog.  The actor already
	// guarantees exclusivity within the room, so a lost CAS means a
	// duplicate or replayed submission.
	var reserveErr error
	_ = withRetry(r.cfg, func() error {
		reserveErr = r.seats.Reserve(context.Background(), slot.SeatID)
		if reserveErr == nil || errors.Is(reserveErr, repository.ErrSeatTaken) {
			return nil // settled, stop retrying
		}
		return reserveErr
	})
	if errors.Is(reserveErr, repository.ErrSeatTaken) {
		r.reject(cmd, ReasonSeatTaken)
		return
	}
	if reserveErr != nil {
		// Collaborator unavailable: surface as transient, keep the
		// admission so the requester is not penalised.
		log.Printf("room %s: reserve seat %d failed: %v", r.Key, slot.SeatID, reserveErr)
		r.reject(cmd, ReasonTransient)
		return
	}

	r.slots[idx].Status = seatmap.StatusReserved
	seatID := slot.SeatID
	r.recordLedger(cmd.requestID, model.RequestDone, &seatID)
	r.trySend(cmd.send, SelectionResult{Stage: "2", Status: "success", SeatSlotID: slot.SlotID})
	r.broadcast(SeatUpdate{Stage: "3", Type: "seat_update", Delta: []SlotDelta{{SlotID: slot.SlotID, Status: seatmap.StatusReserved}}})

	// The successful requester's admission ends; waiting for the client's
	// own finish signal would let a crashed client hold the room.
	r.handleFinish(cmd.requestID, false)
}

// reject replies a stage-2 failure and returns the requester to stage 1
// with a refreshed seat map.  The admission slot is kept and the timeout
// window restarts, so a rejected pick never strands the requester nor
// starves the room.
func (r *Room) reject(cmd selectCmd, reason string) {
	r.trySend(cmd.send, SelectionResult{Stage: "2", Status: "failure", Reason: reason})
	r.trySend(cmd.send, StartSelection{Stage: "1", Type: "start_selection", SeatMap: r.snapshot()})
	r.armTimeout(cmd.requestID)
}

// handleFinish removes the ticket (finished or abandoned), records the
// ledger transition and admits the next requester in FIFO order.
func (r *Room) handleFinish(requestID string, abandoned bool) {
	next, err := r.fifo.Finish(requestID)
	if err != nil {
		return // unknown ticket: stale finish, nothing to do
	}
	r.timeoutSeq++ // invalidate any armed timeout for the leaver
	delete(r.sessions, requestID)
	if abandoned {
		r.recordLedger(requestID, model.RequestAbandoned, nil)
	}
	if next != nil {
		r.startSelection(next)
	}
	r.pushQueueStats()
}

func (r *Room) handleLeave(send Sender) {
	delete(r.watchers, send)
	for id, sess := range r.sessions {
		if sess.send == send {
			r.handleFinish(id, true)
			return
		}
	}
}

func (r *Room) handleTimeout(cmd timeoutCmd) {
	if cmd.seq != r.timeoutSeq || !r.fifo.IsAdmitted(cmd.requestID) {
		return // stale timer
	}
	log.Printf("room %s: admission timeout for request %s", r.Key, cmd.requestID)
	r.handleFinish(cmd.requestID, true)
}

func (r *Room) handleSeatStatus(cmd seatStatusCmd) {
	idx, ok := r.seatIdx[cmd.seatID]
	if !ok || r.slots[idx].Status == cmd.status {
		return
	}
	r.slots[idx].Status = cmd.status
	r.broadcast(SeatUpdate{Stage: "3", Type: "seat_update", Delta: []SlotDelta{{SlotID: r.slots[idx].SlotID, Status: cmd.status}}})
}

// armTimeout schedules abandonment of the currently admitted requester.
// Each arming bumps the sequence so earlier timers become no-ops.
func (r *Room) armTimeout(requestID string) {
	if r.cfg.AdmissionTimeout <= 0 {
		return
	}
	r.timeoutSeq++
	seq := r.timeoutSeq
	time.AfterFunc(r.cfg.AdmissionTimeout, func() {
		r.post(timeoutCmd{requestID: requestID, seq: seq})
	})
}

// snapshot deep-copies the seat table for marshalling outside the actor.
func (r *Room) snapshot() []seatmap.Slot {
	out := make([]seatmap.Slot, len(r.slots))
	copy(out, r.slots)
	return out
}

func (r *Room) broadcast(v interface{}) {
	for _, sess := range r.sessions {
		r.trySend(sess.send, v)
	}
	for w := range r.watchers {
		r.trySend(w, v)
	}
}

// trySend pushes an event to one subscriber.  A send error means the
// connection's buffer overflowed or it is closing; the hub will follow up
// with Leave, so the error is only logged here.
func (r *Room) trySend(s Sender, v interface{}) {
	if err := s.Send(v); err != nil {
		log.Printf("room %s: dropping event for slow subscriber: %v", r.Key, err)
	}
}

// recordLedger queues a status transition for the ledger writer.  The
// ledger is off the critical path: the actor never blocks on it, ordering
// per room is preserved by the single writer goroutine.
func (r *Room) recordLedger(requestID, status string, seatID *uint64) {
	select {
	case r.ledgerCh <- ledgerUpdate{requestID: requestID, status: status, seatID: seatID}:
	default:
		log.Printf("room %s: ledger queue full, dropping %s for %s", r.Key, status, requestID)
	}
}

func (r *Room) pushQueueStats() {
	if r.stats == nil {
		return
	}
	ev := queue.StatsEvent{
		Kind:           queue.EventQueueUpdate,
		MatchID:        r.Key.MatchID,
		Category:       string(r.Key.Category),
		WaitingCount:   r.fifo.WaitingCount(),
		AvgWaitSeconds: r.fifo.AvgWait().Seconds(),
	}
	select {
	case r.statsCh <- ev:
	default: // best-effort by contract
	}
}

// ledgerWriter drains status transitions sequentially with bounded retry.
// A ledger outage therefore delays history entries but never reservations.
func (r *Room) ledgerWriter() {
	for u := range r.ledgerCh {
		u := u
		err := withRetry(r.cfg, func() error {
			return r.ledger.UpdateStatus(context.Background(), u.requestID, u.status, u.seatID)
		})
		if err != nil {
			log.Printf("room %s: ledger update %s for %s failed: %v", r.Key, u.status, u.requestID, err)
		}
	}
}

func (r *Room) statsWriter() {
	for ev := range r.statsCh {
		_ = r.stats.Publish(context.Background(), ev)
	}
}
