package admission

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterFirstIsAdmitted(t *testing.T) {
	q := New(0)
	tk, admitted, err := q.Register("r1", "alice")
	require.NoError(t, err)
	assert.True(t, admitted)
	assert.Equal(t, StateAdmitted, tk.State)
	assert.True(t, q.IsAdmitted("r1"))
	assert.Equal(t, 0, q.WaitingCount())
}

func TestFIFOOrder(t *testing.T) {
	q := New(0)
	q.Register("r1", "alice")
	q.Register("r2", "bob")
	q.Register("r3", "carol")

	assert.True(t, q.IsAdmitted("r1"))
	assert.Equal(t, 1, q.Position("r2"))
	assert.Equal(t, 2, q.Position("r3"))
	assert.Equal(t, 2, q.WaitingCount())

	next, err := q.Finish("r1")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "r2", next.RequestID)
	assert.True(t, q.IsAdmitted("r2"))

	next, err = q.Finish("r2")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "r3", next.RequestID)

	next, err = q.Finish("r3")
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, 0, q.Len())
}

func TestSingleAdmittedInvariant(t *testing.T) {
	q := New(0)
	for i := 0; i < 20; i++ {
		q.Register(fmt.Sprintf("r%d", i), "u")
	}
	for q.Len() > 0 {
		admitted := 0
		for _, id := range liveIDs(q) {
			if q.IsAdmitted(id) {
				admitted++
			}
		}
		assert.Equal(t, 1, admitted)
		cur := q.Admitted()
		require.NotNil(t, cur)
		q.Finish(cur.RequestID)
	}
}

func liveIDs(q *Queue) []string {
	ids := make([]string, 0, len(q.tickets))
	for _, t := range q.tickets {
		ids = append(ids, t.RequestID)
	}
	return ids
}

func TestDuplicateRegister(t *testing.T) {
	q := New(0)
	_, _, err := q.Register("r1", "alice")
	require.NoError(t, err)
	_, _, err = q.Register("r1", "alice")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestAbandonWaitingRemovesWithoutAdvancing(t *testing.T) {
	q := New(0)
	q.Register("r1", "alice")
	q.Register("r2", "bob")
	q.Register("r3", "carol")

	// A waiter leaving must not disturb the admitted head.
	next, err := q.Abandon("r2")
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.True(t, q.IsAdmitted("r1"))
	assert.Equal(t, 1, q.Position("r3"))
}

func TestAbandonAdmittedAdvances(t *testing.T) {
	q := New(0)
	q.Register("r1", "alice")
	q.Register("r2", "bob")

	next, err := q.Abandon("r1")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "r2", next.RequestID)
	assert.True(t, q.IsAdmitted("r2"))
}

func TestFinishUnknownTicket(t *testing.T) {
	q := New(0)
	_, err := q.Finish("nope")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestPositionUnknown(t *testing.T) {
	q := New(0)
	assert.Equal(t, -1, q.Position("ghost"))
}

func TestAvgWaitWindow(t *testing.T) {
	q := New(2)
	clock := time.Unix(0, 0)
	q.now = func() time.Time { return clock }

	// Admissions waited 0s, 10s, 20s; with window 2 only the last two count.
	q.Register("r1", "u") // admitted at once, wait 0
	q.Register("r2", "u")
	q.Register("r3", "u")

	clock = clock.Add(10 * time.Second)
	q.Finish("r1") // r2 admitted after 10s
	clock = clock.Add(10 * time.Second)
	q.Finish("r2") // r3 admitted after 20s

	assert.Equal(t, 15*time.Second, q.AvgWait())
}

func TestAvgWaitEmpty(t *testing.T) {
	q := New(0)
	assert.Equal(t, time.Duration(0), q.AvgWait())
}
