package handler

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/match-ticketing/internal/hub"
)

// WS upgrades the connection and hands it to the hub.  All reservation
// actions (register, watch, select, finish) travel over this socket.
func WS(h *hub.Hub) echo.HandlerFunc {
    return func(c echo.Context) error {
        return h.ServeWS(c.Response(), c.Request())
    }
}
