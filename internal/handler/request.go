// This file defines the request ledger endpoints: creating a reservation
// request ahead of joining a room, and the stadium-gate check-in/check-out
// flow after a seat was granted.

package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/match-ticketing/internal/model"
    "github.com/iliyamo/match-ticketing/internal/queue"
    "github.com/iliyamo/match-ticketing/internal/repository"
    "github.com/iliyamo/match-ticketing/internal/reservation"
    "github.com/iliyamo/match-ticketing/internal/seatmap"
)

// RequestHandler serves the ledger lifecycle around the live reservation
// flow.  Stats is optional; when nil check-in events are not published.
type RequestHandler struct {
    RequestRepo *repository.RequestRepo
    MatchRepo   *repository.MatchRepo
    Coordinator *reservation.Coordinator
    Stats       reservation.StatsSink
}

// createRequestInput is the body of POST /v1/requests.
type createRequestInput struct {
    Requester string `json:"requester"`
    MatchID   uint64 `json:"match_id"`
    Category  string `json:"category"`
}

// CreateRequest registers a new reservation request in the ledger and
// returns its identifier.  The client presents this id when registering on
// the WebSocket; the request starts in the "waiting" status.
func (h *RequestHandler) CreateRequest(c echo.Context) error {
    ctx := c.Request().Context()
    var in createRequestInput
    if err := c.Bind(&in); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if in.Requester == "" || in.MatchID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "requester and match_id are required"})
    }
    cat, ok := seatmap.ParseCategory(in.Category)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
    }
    if _, err := h.MatchRepo.GetByID(ctx, in.MatchID); err != nil {
        if errors.Is(err, repository.ErrMatchNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "match not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    req := &model.Request{
        Requester: in.Requester,
        MatchID:   in.MatchID,
        Category:  string(cat),
    }
    if err := h.RequestRepo.Create(ctx, req); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"request_id": req.RequestID})
}

// requestView is the public shape of one ledger request.
type requestView struct {
    RequestID    string    `json:"request_id"`
    Requester    string    `json:"requester"`
    MatchID      uint64    `json:"match_id"`
    Category     string    `json:"category"`
    SeatID       *uint64   `json:"seat_id,omitempty"`
    LatestStatus string    `json:"latest_status"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}

// GetRequest returns the current ledger state of one request.
func (h *RequestHandler) GetRequest(c echo.Context) error {
    ctx := c.Request().Context()
    req, err := h.RequestRepo.GetByID(ctx, c.Param("id"))
    if err != nil {
        if errors.Is(err, repository.ErrRequestNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, requestView{
        RequestID:    req.RequestID,
        Requester:    req.Requester,
        MatchID:      req.MatchID,
        Category:     req.Category,
        SeatID:       req.SeatID,
        LatestStatus: req.LatestStatus,
        CreatedAt:    req.CreatedAt,
        UpdatedAt:    req.UpdatedAt,
    })
}

// CheckIn marks a granted request as arrived at the stadium.  Only "done"
// requests may check in; the granted seat flips to "held" on the live map
// and subscribers see a stage-3 update.
func (h *RequestHandler) CheckIn(c echo.Context) error {
    return h.transition(c, seatmap.StatusHeld, h.RequestRepo.CheckIn)
}

// CheckOut marks a checked-in request as having left.  Checking out before
// checking in is rejected; the seat returns to "reserved" on the live map.
func (h *RequestHandler) CheckOut(c echo.Context) error {
    return h.transition(c, seatmap.StatusReserved, h.RequestRepo.CheckOut)
}

func (h *RequestHandler) transition(c echo.Context, status seatmap.Status, move func(context.Context, string) error) error {
    ctx := c.Request().Context()
    requestID := c.Param("id")
    req, err := h.RequestRepo.GetByID(ctx, requestID)
    if err != nil {
        if errors.Is(err, repository.ErrRequestNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if err := move(ctx, requestID); err != nil {
        if errors.Is(err, repository.ErrInvalidTransition) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
        }
        if errors.Is(err, repository.ErrRequestNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    h.reflectSeat(req, status)
    h.publishCheckinStats(req.MatchID)
    return c.JSON(http.StatusOK, echo.Map{"request_id": requestID, "status": statusName(status)})
}

// reflectSeat pushes the committed gate transition onto the live seat map
// of the request's room, if that room is currently open.
func (h *RequestHandler) reflectSeat(req *model.Request, status seatmap.Status) {
    if req.SeatID == nil {
        return
    }
    cat, ok := seatmap.ParseCategory(req.Category)
    if !ok {
        return
    }
    key := reservation.RoomKey{MatchID: req.MatchID, Category: cat}
    if room := h.Coordinator.Lookup(key); room != nil {
        room.ApplySeatStatus(*req.SeatID, status)
    }
}

func (h *RequestHandler) publishCheckinStats(matchID uint64) {
    if h.Stats == nil {
        return
    }
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    count, avg, err := h.RequestRepo.CheckinStats(ctx, matchID)
    if err != nil {
        log.Printf("checkin stats for match %d: %v", matchID, err)
        return
    }
    ev := queue.StatsEvent{
        Kind:               queue.EventCheckinUpdate,
        MatchID:            matchID,
        CheckedInCount:     count,
        AvgCheckinDuration: avg,
    }
    if err := h.Stats.Publish(ctx, ev); err != nil {
        log.Printf("publish checkin stats for match %d: %v", matchID, err)
    }
}

func statusName(s seatmap.Status) string {
    if s == seatmap.StatusHeld {
        return model.RequestCheckedIn
    }
    return model.RequestCheckedOut
}
