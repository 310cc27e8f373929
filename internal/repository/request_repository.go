package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/match-ticketing/internal/model"
)

// RequestRepo provides access to the request ledger: the requests table and
// its append-only request_status history.  The ledger sits outside the
// concurrency-critical path: rooms call it to record transitions, never to
// decide them.
type RequestRepo struct {
	db *sql.DB
}

// NewRequestRepo constructs a RequestRepo with the given DB handle.
func NewRequestRepo(db *sql.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

// Create persists a new reservation request and its initial "waiting"
// history entry in one transaction.  A fresh UUID is assigned when the
// caller did not provide one; on success req.RequestID is populated.
func (r *RequestRepo) Create(ctx context.Context, req *model.Request) error {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.LatestStatus == "" {
		req.LatestStatus = model.RequestWaiting
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const ins = `INSERT INTO requests (request_id, requester, match_id, category, latest_status)
	             VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins, req.RequestID, req.Requester, req.MatchID, req.Category, req.LatestStatus); err != nil {
		return err
	}
	const hist = `INSERT INTO request_status (request_id, status) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, hist, req.RequestID, req.LatestStatus); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID retrieves a ledger request by its identifier.
func (r *RequestRepo) GetByID(ctx context.Context, requestID string) (*model.Request, error) {
	const q = `SELECT request_id, requester, match_id, category, seat_id, latest_status, created_at, updated_at
	           FROM requests WHERE request_id = ?`
	var req model.Request
	var seatID sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, requestID).
		Scan(&req.RequestID, &req.Requester, &req.MatchID, &req.Category, &seatID, &req.LatestStatus, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if seatID.Valid {
		v := uint64(seatID.Int64)
		req.SeatID = &v
	}
	return &req, nil
}

// UpdateStatus records a status transition: the request row is updated and
// a history entry appended, atomically.  When seatID is non-nil the granted
// seat is recorded as well (used by the "done" transition).
func (r *RequestRepo) UpdateStatus(ctx context.Context, requestID, status string, seatID *uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := updateStatusTx(ctx, tx, requestID, status, seatID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CheckIn transitions a completed ("done") request to checked_in.  Any
// other current status yields ErrInvalidTransition.
func (r *RequestRepo) CheckIn(ctx context.Context, requestID string) error {
	return r.guardedTransition(ctx, requestID, model.RequestDone, model.RequestCheckedIn)
}

// CheckOut transitions a checked_in request to checked_out.
func (r *RequestRepo) CheckOut(ctx context.Context, requestID string) error {
	return r.guardedTransition(ctx, requestID, model.RequestCheckedIn, model.RequestCheckedOut)
}

// guardedTransition moves a request from one expected status to the next
// inside a transaction, locking the row so concurrent check-in/out calls
// cannot both succeed.
func (r *RequestRepo) guardedTransition(ctx context.Context, requestID, from, to string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var current string
	const sel = `SELECT latest_status FROM requests WHERE request_id = ? FOR UPDATE`
	if err := tx.QueryRowContext(ctx, sel, requestID).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRequestNotFound
		}
		return err
	}
	if current != from {
		return ErrInvalidTransition
	}
	if err := updateStatusTx(ctx, tx, requestID, to, nil); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func updateStatusTx(ctx context.Context, tx *sql.Tx, requestID, status string, seatID *uint64) error {
	var res sql.Result
	var err error
	if seatID != nil {
		const q = `UPDATE requests SET latest_status = ?, seat_id = ?, updated_at = CURRENT_TIMESTAMP WHERE request_id = ?`
		res, err = tx.ExecContext(ctx, q, status, *seatID, requestID)
	} else {
		const q = `UPDATE requests SET latest_status = ?, updated_at = CURRENT_TIMESTAMP WHERE request_id = ?`
		res, err = tx.ExecContext(ctx, q, status, requestID)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op update;
		// verify existence before reporting not found.
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM requests WHERE request_id = ?`, requestID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRequestNotFound
			}
			return err
		}
	}
	const hist = `INSERT INTO request_status (request_id, status) VALUES (?, ?)`
	_, err = tx.ExecContext(ctx, hist, requestID, status)
	return err
}

// CheckinStats aggregates check-in activity for one match: how many
// requests are currently checked in, and the mean seconds between a
// check-in and its matching check-out over completed visits.
func (r *RequestRepo) CheckinStats(ctx context.Context, matchID uint64) (checkedIn int, avgDurationSec float64, err error) {
	const countQ = `SELECT COUNT(*) FROM requests WHERE match_id = ? AND latest_status = ?`
	if err = r.db.QueryRowContext(ctx, countQ, matchID, model.RequestCheckedIn).Scan(&checkedIn); err != nil {
		return 0, 0, err
	}
	// Pair each check-out with the most recent preceding check-in of the
	// same request and average the gap.  The MAX subquery keeps exactly one
	// check-in per check-out, so repeated gate cycles of one request do not
	// skew the average.
	const avgQ = `SELECT COALESCE(AVG(TIMESTAMPDIFF(SECOND, ci.created_at, co.created_at)), 0)
	              FROM request_status co
	              JOIN requests rq ON rq.request_id = co.request_id
	              JOIN request_status ci ON ci.request_id = co.request_id AND ci.status = ?
	              WHERE rq.match_id = ? AND co.status = ?
	                AND ci.created_at = (SELECT MAX(prev.created_at)
	                                     FROM request_status prev
	                                     WHERE prev.request_id = co.request_id
	                                       AND prev.status = ?
	                                       AND prev.created_at <= co.created_at)`
	if err = r.db.QueryRowContext(ctx, avgQ,
		model.RequestCheckedIn, matchID, model.RequestCheckedOut, model.RequestCheckedIn).Scan(&avgDurationSec); err != nil {
		return 0, 0, err
	}
	return checkedIn, avgDurationSec, nil
}
