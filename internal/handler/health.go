package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health reports liveness for load balancers and uptime probes.  The
// ticketing service is healthy as soon as it serves HTTP: MySQL, Redis and
// the stats broker are collaborators the server degrades around, so none
// of them is probed here.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
