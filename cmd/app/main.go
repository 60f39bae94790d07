package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/net/netutil"
	"gorm.io/gorm"

	"okurmen-backend/cmd/app/internal/controller"
	"okurmen-backend/internal/config"
	"okurmen-backend/internal/db"
	"okurmen-backend/internal/model"
	"okurmen-backend/internal/repository"
	"okurmen-backend/internal/service"
	"okurmen-backend/pkg/middleware"
	"okurmen-backend/utilities"
)

const shutdownTimeout = 10 * time.Second

func main() {
	started := time.Now()
	printStartUpBanner()

	// Load XML configuration from file.
	cfg, err := config.LoadConfig("config.xml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := utilities.SetupLogging(cfg.Logging); err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer utilities.CloseLogging()

	// Initialize DB using the loaded config.
	gdb, err := db.InitDBFromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.Ping(pingCtx, gdb)
	cancel()
	if err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if cfg.DB.Initialize {
		if err := db.Migrate(gdb); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		if err := db.SeedSettings(gdb); err != nil {
			log.Fatalf("failed to seed settings: %v", err)
		}
	}

	bus := utilities.GlobalEventBus
	subscribeAudit(bus)

	r, err := newEngine(cfg)
	if err != nil {
		log.Fatalf("failed to configure router: %v", err)
	}
	controller.RegisterRoutes(r, buildServices(cfg, gdb, bus, started))

	addr := fmt.Sprintf("%s:%d", cfg.Context.Host, cfg.Context.Port)
	if err := serve(addr, r, cfg.Context.MaxConnections); err != nil {
		utilities.Error("server stopped: %v", err)
	}
	bus.Wait()
	utilities.Info("shutdown complete")
}

// newEngine builds the gin engine with the global middleware chain. Only
// configured proxies may set the client address through X-Forwarded-For.
func newEngine(cfg *config.APIConfig) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Proxies()); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery(), gin.LoggerWithWriter(utilities.AccessWriter()), middleware.RequestIDMiddleware())
	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}
	r.Use(cors.New(corsConfig(cfg)))
	return r, nil
}

func buildServices(cfg *config.APIConfig, gdb *gorm.DB, bus *utilities.EventBus, started time.Time) controller.Services {
	// Create repositories.
	userRepo := repository.NewUserRepository(gdb)
	adminRepo := repository.NewAdminRepository(gdb)
	questionRepo := repository.NewQuestionRepository(gdb)
	settingsRepo := repository.NewSettingsRepository(gdb)
	resultRepo := repository.NewResultRepository(gdb)
	sessionRepo := repository.NewSessionRepository(gdb)
	statsRepo := repository.NewStatsRepository(gdb)

	// Create services.
	strict := cfg.Authentication.StrictTiming
	tokens := utilities.NewTokenService(cfg.JWTSecret, time.Duration(cfg.Authentication.TokenValidDays)*24*time.Hour)
	resultService := service.NewResultService(resultRepo, questionRepo, userRepo)

	return controller.Services{
		Auth:      service.NewAuthService(userRepo, adminRepo, tokens, bus),
		User:      service.NewUserService(userRepo),
		Test:      service.NewTestService(questionRepo, settingsRepo, sessionRepo, strict),
		Scoring:   service.NewScoringService(questionRepo, settingsRepo, resultRepo, sessionRepo, bus, strict),
		Result:    resultService,
		Report:    service.NewReportService(resultService, userRepo, cfg.Report.FontPath),
		Question:  service.NewQuestionService(questionRepo, cfg.Uploads.MaxImageBytes),
		Settings:  service.NewSettingsService(settingsRepo),
		Dashboard: service.NewDashboardService(statsRepo, resultRepo, userRepo),

		Tokens:        tokens,
		LoginLimiter:  middleware.NewRateLimiter(cfg.Authentication.LoginRatePerMin, cfg.Authentication.LoginBurst),
		Health:        controller.NewHealthController(func(ctx context.Context) error { return db.Ping(ctx, gdb) }, started),
		MaxImageBytes: cfg.Uploads.MaxImageBytes,
	}
}

// subscribeAudit writes an audit line for every stored result and
// registration.
func subscribeAudit(bus *utilities.EventBus) {
	bus.Subscribe(utilities.EventResultCreated, func(data interface{}) {
		if r, ok := data.(model.Result); ok {
			utilities.Info("audit: result %s user=%s level=%s percentage=%d tier=%s",
				r.ID, r.UserID, r.Level, r.Percentage, r.Tier)
		}
	})
	bus.Subscribe(utilities.EventUserCreated, func(data interface{}) {
		if u, ok := data.(model.User); ok {
			utilities.Info("audit: user %s registered", u.ID)
		}
	})
}

func corsConfig(cfg *config.APIConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	origins := cfg.Origins()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

// serve runs the HTTP server until SIGINT or SIGTERM, then drains open
// requests.
func serve(addr string, handler http.Handler, maxConns int) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if maxConns > 0 {
		ln = netutil.LimitListener(ln, maxConns)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		utilities.Info("listening on %s", addr)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	utilities.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("OKURMEN", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("OKURMEN API (v%s)\n\n", "1.0.0-PlacementTest")
}
