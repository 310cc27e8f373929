package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/match-ticketing/internal/model"
)

func TestCreateAssignsRequestID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRequestRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO requests \(request_id, requester, match_id, category, latest_status\)`).
		WithArgs(sqlmock.AnyArg(), "alice", 7, "VIP", model.RequestWaiting).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO request_status \(request_id, status\)`).
		WithArgs(sqlmock.AnyArg(), model.RequestWaiting).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	req := &model.Request{Requester: "alice", MatchID: 7, Category: "VIP"}
	require.NoError(t, repo.Create(context.Background(), req))
	assert.NotEmpty(t, req.RequestID)
	assert.Equal(t, model.RequestWaiting, req.LatestStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckOutBeforeCheckInRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRequestRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT latest_status FROM requests WHERE request_id = \? FOR UPDATE`).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{"latest_status"}).AddRow(model.RequestDone))
	mock.ExpectRollback()

	err = repo.CheckOut(context.Background(), "req-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckinStatsPairsLatestCheckin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRequestRepo(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM requests WHERE match_id = \? AND latest_status = \?`).
		WithArgs(7, model.RequestCheckedIn).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(3))

	// The average must correlate each check-out with only its most recent
	// prior check-in, so repeated gate cycles contribute one pair each.
	mock.ExpectQuery(`ci\.created_at = \(SELECT MAX\(prev\.created_at\)`).
		WithArgs(model.RequestCheckedIn, 7, model.RequestCheckedOut, model.RequestCheckedIn).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(42.5))

	count, avg, err := repo.CheckinStats(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 42.5, avg)
	assert.NoError(t, mock.ExpectationsWereMet())
}
