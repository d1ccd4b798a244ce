package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/auth"
	authPostgres "github.com/mzavatta/effort-tracking/internal/auth/postgres"
	"github.com/mzavatta/effort-tracking/internal/availability"
	availabilityPostgres "github.com/mzavatta/effort-tracking/internal/availability/postgres"
	"github.com/mzavatta/effort-tracking/internal/catalog"
	catalogPostgres "github.com/mzavatta/effort-tracking/internal/catalog/postgres"
	"github.com/mzavatta/effort-tracking/internal/core/events"
	"github.com/mzavatta/effort-tracking/internal/ledger"
	ledgerPostgres "github.com/mzavatta/effort-tracking/internal/ledger/postgres"
	"github.com/mzavatta/effort-tracking/internal/timesheet"
	timesheetPostgres "github.com/mzavatta/effort-tracking/internal/timesheet/postgres"
	"github.com/mzavatta/effort-tracking/internal/transport/rest"
	"github.com/mzavatta/effort-tracking/internal/user"
	userPostgres "github.com/mzavatta/effort-tracking/internal/user/postgres"
	"github.com/mzavatta/effort-tracking/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := deps.Config.Server.Addr()
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	lg := deps.Logger

	tokenGen := auth.NewJWTTokenGenerator(deps.Config.Security.JWTSecret, deps.Config.Security.AccessTokenDuration)
	authRepo := authPostgres.NewAuthRepository(deps.GormDB)
	authService := auth.NewService(authRepo, tokenGen, lg)
	authHandler := auth.NewHandler(authService)

	userRepo := userPostgres.NewUserRepository(deps.GormDB)
	userService := user.NewService(userRepo, deps.Config.Security.BCryptCost, lg)
	userHandler := user.NewHandler(userService)

	catalogRepo := catalogPostgres.NewCatalogRepository(deps.GormDB)
	catalogService := catalog.NewService(catalogRepo, lg)
	catalogHandler := catalog.NewHandler(catalogService)

	bus := events.NewEventBus(lg)
	registerAuditSubscribers(bus, lg)

	ledgerRepo := ledgerPostgres.NewLedgerRepository(deps.GormDB)
	ledgerService := ledger.NewService(ledgerRepo, bus, lg)
	ledgerHandler := ledger.NewHandler(ledgerService)

	timesheetRepo := timesheetPostgres.NewTimesheetRepository(deps.DB, lg)
	timesheetService := timesheet.NewService(timesheetRepo, lg)
	timesheetHandler := timesheet.NewHandler(timesheetService, userService, catalogService)

	availabilityRepo := availabilityPostgres.NewAvailabilityRepository(deps.GormDB)
	availabilityService := availability.NewService(availabilityRepo, lg)
	availabilityHandler := availability.NewHandler(availabilityService)

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		authHandler,
		userHandler,
		catalogHandler,
		ledgerHandler,
		timesheetHandler,
		availabilityHandler,
		lg,
	)
}

// registerAuditSubscribers keeps a structured trail of every counter
// mutation next to the request logs.
func registerAuditSubscribers(bus *events.EventBus, lg *slog.Logger) {
	bus.Subscribe(events.EventTypeCounterAdjusted, func(ctx context.Context, event events.Event) error {
		lg.Info("effort counter adjusted",
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	})
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.App.Environment)
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
		Logger: lg,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the already-open pgx connection so both
// access paths share one pool. TranslateError turns driver errors into
// gorm's portable sentinels.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{
		TranslateError: true,
	})
}
