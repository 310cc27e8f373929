package model

import "time"

// Match describes a scheduled fixture for which seats can be
// reserved.  Matches are read-only from the core's point of view:
// they are created and maintained by the catalog collaborator.
//
// Fields:
//  ID          – primary key identifier.
//  HomeTeam    – display name of the home side.
//  AwayTeam    – display name of the away side.
//  KickoffAt   – when the match starts.
//  TotalSeats  – number of catalog seats across all categories.
//  CreatedAt   – creation timestamp.
type Match struct {
	ID         uint64    // matches.id
	HomeTeam   string    // matches.home_team
	AwayTeam   string    // matches.away_team
	KickoffAt  time.Time // matches.kickoff_at
	TotalSeats uint32    // matches.total_seats
	CreatedAt  time.Time // matches.created_at
}
