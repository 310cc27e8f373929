package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/match-ticketing/internal/model"
)

// SeatRepo provides access to the seats catalog.  The core reads seat
// inventory through ListByMatchAndCategory and writes exactly one kind of
// update: the reserve check-and-set performed when a room commits a pick.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// ListByMatchAndCategory retrieves all catalog seats of one (match,
// category) pair ordered by id.  The ordering matters: the seat map
// overlay assigns the Nth seat to the Nth eligible slot, so it must be
// stable across calls.
func (r *SeatRepo) ListByMatchAndCategory(ctx context.Context, matchID uint64, category string) ([]model.Seat, error) {
	const q = `SELECT id, match_id, category, name, status, created_at, updated_at
	           FROM seats
	           WHERE match_id = ? AND category = ?
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, matchID, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.MatchID, &s.Category, &s.Name, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Reserve transitions a seat from available to reserved as a single atomic
// check-and-set.  The room actor already guarantees only one admitted
// requester submits at a time, so a failed update here means a duplicate or
// replayed submission; it is reported as ErrSeatTaken.
func (r *SeatRepo) Reserve(ctx context.Context, seatID uint64) error {
	const q = `UPDATE seats
	           SET status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, model.SeatReserved, seatID, model.SeatAvailable)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSeatTaken
	}
	return nil
}
