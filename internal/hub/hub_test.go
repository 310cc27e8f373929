package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/match-ticketing/internal/model"
	"github.com/iliyamo/match-ticketing/internal/reservation"
)

type stubSeats struct{}

func (stubSeats) ListByMatchAndCategory(ctx context.Context, matchID uint64, category string) ([]model.Seat, error) {
	return []model.Seat{{ID: 1, Name: "VIP-A", Status: model.SeatAvailable}}, nil
}

func (stubSeats) Reserve(ctx context.Context, seatID uint64) error { return nil }

type stubLedger struct{}

func (stubLedger) UpdateStatus(ctx context.Context, requestID, status string, seatID *uint64) error {
	return nil
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	coord := reservation.NewCoordinator(stubSeats{}, stubLedger{}, nil, reservation.Config{})
	t.Cleanup(coord.Shutdown)
	return New(coord)
}

// nextEvent decodes the client's next queued outbound frame.
func nextEvent(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-c.out:
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &m))
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound frame")
		return nil
	}
}

func TestUnknownActionReturnsError(t *testing.T) {
	h := newTestHub(t)
	c := newClient(h, nil)

	h.handleMessage(c, []byte(`{"action":"dance"}`))
	ev := nextEvent(t, c)
	assert.Equal(t, "error", ev["type"])
	assert.Equal(t, "unknown_action", ev["reason"])
}

func TestMalformedFrameReturnsError(t *testing.T) {
	h := newTestHub(t)
	c := newClient(h, nil)

	h.handleMessage(c, []byte(`{`))
	ev := nextEvent(t, c)
	assert.Equal(t, "error", ev["type"])
	assert.Equal(t, "bad_message", ev["reason"])
}

func TestRegisterFlowOverEnvelope(t *testing.T) {
	h := newTestHub(t)
	c := newClient(h, nil)

	h.handleMessage(c, []byte(`{"action":"register","request_id":"req-1","requester":"alice","match_id":7,"category":"VIP"}`))

	ev := nextEvent(t, c)
	assert.Equal(t, "registered", ev["type"])
	ev = nextEvent(t, c)
	assert.Equal(t, "start_selection", ev["type"])
	assert.Equal(t, "1", ev["stage"])
	assert.Equal(t, stateWaiting, c.state)
}

func TestRegisterRejectsBadCategory(t *testing.T) {
	h := newTestHub(t)
	c := newClient(h, nil)

	h.handleMessage(c, []byte(`{"action":"register","request_id":"req-1","requester":"alice","match_id":7,"category":"courtside"}`))
	ev := nextEvent(t, c)
	assert.Equal(t, "unknown_category", ev["reason"])
	assert.Equal(t, stateIdle, c.state)
}

func TestRegisterRequiresIdentity(t *testing.T) {
	h := newTestHub(t)
	c := newClient(h, nil)

	h.handleMessage(c, []byte(`{"action":"register","match_id":7,"category":"VIP"}`))
	ev := nextEvent(t, c)
	assert.Equal(t, "bad_message", ev["reason"])
}

func TestSecondRegisterOnSameSocketRejected(t *testing.T) {
	h := newTestHub(t)
	c := newClient(h, nil)

	h.handleMessage(c, []byte(`{"action":"register","request_id":"req-1","requester":"alice","match_id":7,"category":"VIP"}`))
	nextEvent(t, c) // registered
	nextEvent(t, c) // stage 1

	h.handleMessage(c, []byte(`{"action":"register","request_id":"req-2","requester":"alice","match_id":7,"category":"VIP"}`))
	ev := nextEvent(t, c)
	assert.Equal(t, "already_registered", ev["reason"])
}

func TestSelectBeforeRegisterRejected(t *testing.T) {
	h := newTestHub(t)
	c := newClient(h, nil)

	h.handleMessage(c, []byte(`{"action":"select","seat_slot_id":"top-3-0"}`))
	ev := nextEvent(t, c)
	assert.Equal(t, "not_registered", ev["reason"])
}

func TestWatchIsIdempotentPerRoom(t *testing.T) {
	h := newTestHub(t)
	c := newClient(h, nil)

	h.handleMessage(c, []byte(`{"action":"watch","match_id":7,"category":"VIP"}`))
	h.handleMessage(c, []byte(`{"action":"watch","match_id":7,"category":"VIP"}`))
	assert.Len(t, c.watching, 1)
}
