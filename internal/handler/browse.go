// Package handler exposes the HTTP endpoints of the ticketing service.
// This file defines the public browse API: matches, categories and composed
// seat maps. These routes require no authentication and are safe to cache.

package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/match-ticketing/internal/repository"
    "github.com/iliyamo/match-ticketing/internal/seatmap"
)

// BrowseHandler aggregates the repositories needed for read-only browsing.
type BrowseHandler struct {
    MatchRepo *repository.MatchRepo // provides access to match data
    SeatRepo  *repository.SeatRepo  // provides access to catalog seats
}

// BrowseMatch represents a match in list responses.
type BrowseMatch struct {
    ID         uint64    `json:"id"`
    HomeTeam   string    `json:"home_team"`
    AwayTeam   string    `json:"away_team"`
    KickoffAt  time.Time `json:"kickoff_at"`
    TotalSeats uint32    `json:"total_seats"`
}

// GetMatches returns all matches ordered by kickoff time.  Response JSON
// contains an "items" array of BrowseMatch.
func (h *BrowseHandler) GetMatches(c echo.Context) error {
    ctx := c.Request().Context()
    matches, err := h.MatchRepo.ListAll(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]BrowseMatch, 0, len(matches))
    for _, m := range matches {
        out = append(out, BrowseMatch{
            ID:         m.ID,
            HomeTeam:   m.HomeTeam,
            AwayTeam:   m.AwayTeam,
            KickoffAt:  m.KickoffAt,
            TotalSeats: m.TotalSeats,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetCategories lists the seat categories a requester can queue for.
func (h *BrowseHandler) GetCategories(c echo.Context) error {
    out := make([]string, 0, len(seatmap.Categories))
    for _, cat := range seatmap.Categories {
        out = append(out, string(cat))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetSeatMap returns the composed seat map of one match and category: the
// full generated layout with catalog seats overlaid on the eligible slots.
// This is a point-in-time read; live status flows over the WebSocket.
func (h *BrowseHandler) GetSeatMap(c echo.Context) error {
    ctx := c.Request().Context()
    matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid match id"})
    }
    cat, ok := seatmap.ParseCategory(c.Param("category"))
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
    }
    if _, err := h.MatchRepo.GetByID(ctx, matchID); err != nil {
        if errors.Is(err, repository.ErrMatchNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "match not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    seats, err := h.SeatRepo.ListByMatchAndCategory(ctx, matchID, string(cat))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    slots := seatmap.Overlay(seatmap.Generate(cat), seats)
    return c.JSON(http.StatusOK, echo.Map{
        "match_id": matchID,
        "category": cat,
        "seat_map": slots,
    })
}
