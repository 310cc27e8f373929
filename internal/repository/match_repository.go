package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/match-ticketing/internal/model"
)

// MatchRepo provides read access to the matches catalog.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo constructs a MatchRepo with the given DB handle.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// ListAll retrieves all matches ordered by kickoff time.
func (r *MatchRepo) ListAll(ctx context.Context) ([]model.Match, error) {
	const q = `SELECT id, home_team, away_team, kickoff_at, total_seats, created_at
	           FROM matches
	           ORDER BY kickoff_at`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.ID, &m.HomeTeam, &m.AwayTeam, &m.KickoffAt, &m.TotalSeats, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a match by its id.
func (r *MatchRepo) GetByID(ctx context.Context, id uint64) (*model.Match, error) {
	const q = `SELECT id, home_team, away_team, kickoff_at, total_seats, created_at
	           FROM matches WHERE id = ?`
	var m model.Match
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&m.ID, &m.HomeTeam, &m.AwayTeam, &m.KickoffAt, &m.TotalSeats, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}
