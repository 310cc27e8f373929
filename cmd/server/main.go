package main // Entry point package

import (
	"context"   // context for graceful shutdown deadlines
	"log"       // Logging library
	"os"        // os for signal channel
	"os/signal" // signal notifications
	"syscall"   // SIGTERM constant
	"time"      // shutdown timeout

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/match-ticketing/internal/config"      // Internal config loader
	"github.com/iliyamo/match-ticketing/internal/database"    // MySQL connector
	"github.com/iliyamo/match-ticketing/internal/handler"     // HTTP handlers
	"github.com/iliyamo/match-ticketing/internal/hub"         // WebSocket hub
	"github.com/iliyamo/match-ticketing/internal/middleware"  // rate limit + cache middleware
	"github.com/iliyamo/match-ticketing/internal/queue"       // stats publisher/consumer
	"github.com/iliyamo/match-ticketing/internal/repository"  // data access layer
	"github.com/iliyamo/match-ticketing/internal/reservation" // room coordinator
	"github.com/iliyamo/match-ticketing/internal/router"      // route registration
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	matchRepo := repository.NewMatchRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	requestRepo := repository.NewRequestRepo(db)

	// Stats events are best-effort; without a broker URL nothing publishes.
	var stats reservation.StatsSink
	if cfg.RabbitURL != "" {
		stats = queue.NewPublisher()
		go func() {
			if err := queue.StartStatsConsumer(); err != nil {
				log.Printf("stats consumer stopped: %v", err)
			}
		}()
	}

	coord := reservation.NewCoordinator(seatRepo, requestRepo, stats, reservation.Config{
		AdmissionTimeout: cfg.AdmissionTimeout,
		WaitWindow:       cfg.WaitWindow,
	})
	defer coord.Shutdown()
	wsHub := hub.New(coord)

	e := echo.New()

	// Redis-backed rate limiting and browse caching degrade to no-ops when
	// Redis is unreachable at startup.  Both stay off the /ws route: the
	// upgrade needs the raw connection.
	rdb := config.NewRedisClient()
	var browseMW, requestMW []echo.MiddlewareFunc
	if rlCfg := config.LoadRateLimitConfig(); rlCfg.Enabled && rdb != nil {
		rl := middleware.NewTokenBucket(rlCfg, rdb)
		browseMW = append(browseMW, rl)
		requestMW = append(requestMW, rl)
	}
	if cCfg := config.LoadCacheConfig(); cCfg.Enabled && rdb != nil {
		browseMW = append(browseMW, middleware.NewRedisCache(cCfg, rdb))
	}

	router.RegisterRoutes(e)
	router.RegisterBrowse(e, &handler.BrowseHandler{MatchRepo: matchRepo, SeatRepo: seatRepo}, browseMW...)
	router.RegisterRequests(e, &handler.RequestHandler{
		RequestRepo: requestRepo,
		MatchRepo:   matchRepo,
		Coordinator: coord,
		Stats:       stats,
	}, requestMW...)
	router.RegisterReservation(e, wsHub)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	// Block until interrupted, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
