package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/match-ticketing/internal/handler" // import the handlers that implement business logic
	"github.com/iliyamo/match-ticketing/internal/hub"     // import the WebSocket hub behind the /ws endpoint
)

// RegisterRoutes registers routes that do not belong to any feature group.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterBrowse registers the unauthenticated read-only endpoints: match
// listings, the available categories and composed seat maps.  These are the
// routes worth fronting with the response cache, so the rate-limit and
// cache middleware are applied here rather than globally: the /ws upgrade
// must not pass through a response-capturing writer.
func RegisterBrowse(e *echo.Echo, b *handler.BrowseHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	// Expose the list of all matches ordered by kickoff time.
	g.GET("/matches", b.GetMatches)
	// List the seat categories a requester can queue for.
	g.GET("/categories", b.GetCategories)
	// Point-in-time composed seat map of one match and category.  Live
	// updates flow over the WebSocket instead.
	g.GET("/matches/:id/seats/:category", b.GetSeatMap)
}

// RegisterRequests registers the request ledger endpoints: creating a
// reservation request before joining a room, inspecting it, and the
// stadium-gate check-in and check-out transitions.
func RegisterRequests(e *echo.Echo, r *handler.RequestHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1/requests", mw...)
	// Create a new ledger request; the returned request_id is presented on
	// the WebSocket when registering for a room.
	g.POST("", r.CreateRequest)
	// Inspect the ledger state of one request.
	g.GET("/:id", r.GetRequest)
	// Gate transitions.  Check-in requires a granted ("done") request and
	// check-out requires a prior check-in; violations return 409.
	g.POST("/:id/checkin", r.CheckIn)
	g.POST("/:id/checkout", r.CheckOut)
}

// RegisterReservation mounts the WebSocket endpoint carrying the live
// reservation protocol (register, queued, the three stages and watch).
func RegisterReservation(e *echo.Echo, h *hub.Hub) {
	e.GET("/ws", handler.WS(h))
}
