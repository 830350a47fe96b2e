package app

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/volare/internal/airiq"
	"github.com/ternarybob/volare/internal/common"
	"github.com/ternarybob/volare/internal/handlers"
	"github.com/ternarybob/volare/internal/interfaces"
	"github.com/ternarybob/volare/internal/services/booking"
	"github.com/ternarybob/volare/internal/services/maintenance"
	"github.com/ternarybob/volare/internal/services/pdf"
	"github.com/ternarybob/volare/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// AirIQ client (owns the session manager)
	AirIQClient *airiq.Client

	// Business services
	BookingService     interfaces.BookingService
	PDFService         interfaces.PDFService
	MaintenanceService *maintenance.Service

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	SearchHandler  *handlers.SearchHandler
	BookingHandler *handlers.BookingHandler
	SessionHandler *handlers.SessionHandler
	PageHandler    *handlers.PageHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize the AirIQ client before dependent services
	if err := app.initAirIQ(); err != nil {
		return nil, fmt.Errorf("failed to initialize AirIQ client: %w", err)
	}

	// Initialize services
	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	// Log initialization summary
	logger.Info().
		Str("base_url", cfg.AirIQ.BaseURL).
		Str("agent_id", cfg.AirIQ.AgentID).
		Bool("session_persist", cfg.Session.Persist).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initAirIQ builds the AirIQ client from configuration. Construction never
// contacts the provider; logins happen lazily on the first API call.
func (a *App) initAirIQ() error {
	cfg := a.Config

	creds := airiq.Credentials{
		AgentID:  cfg.AirIQ.AgentID,
		Username: cfg.AirIQ.Username,
		Password: cfg.AirIQ.Password,
	}

	opts := []airiq.ClientOption{
		airiq.WithBaseURL(cfg.AirIQ.BaseURL),
		airiq.WithLogger(a.Logger),
		airiq.WithAuthScheme(airiq.ParseAuthScheme(cfg.AirIQ.AuthScheme)),
		airiq.WithTimeouts(
			common.DurationOrDefault(cfg.AirIQ.LoginTimeout, airiq.DefaultLoginTimeout),
			common.DurationOrDefault(cfg.AirIQ.SearchTimeout, airiq.DefaultSearchTimeout),
			common.DurationOrDefault(cfg.AirIQ.BookingTimeout, airiq.DefaultBookingTimeout),
		),
		airiq.WithRateLimit(cfg.AirIQ.RateLimit),
		airiq.WithDailyLoginLimit(cfg.Session.DailyLoginLimit),
	}

	if cfg.Session.TokenTTL != "" {
		opts = append(opts, airiq.WithTokenTTL(common.DurationOrDefault(cfg.Session.TokenTTL, 0)))
	}

	if cfg.Session.Persist {
		opts = append(opts, airiq.WithSessionStore(a.StorageManager.SessionStorage()))
	}

	client, err := airiq.NewClient(creds, opts...)
	if err != nil {
		return err
	}
	a.AirIQClient = client

	// An out-of-band token from config replaces the login flow entirely
	if cfg.AirIQ.OverrideToken != "" {
		client.Session().SetToken(cfg.AirIQ.OverrideToken, time.Time{})
		a.Logger.Info().Msg("Override token installed from config")
	}

	a.Logger.Debug().
		Str("auth_scheme", string(airiq.ParseAuthScheme(cfg.AirIQ.AuthScheme))).
		Int("daily_login_limit", cfg.Session.DailyLoginLimit).
		Msg("AirIQ client initialized")

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	a.BookingService = booking.NewService(a.AirIQClient, a.StorageManager.BookingStorage(), a.Logger)
	a.Logger.Debug().Msg("Booking service initialized")

	a.PDFService = pdf.NewService(a.Logger)
	a.Logger.Debug().Msg("PDF service initialized")

	if a.Config.Maintenance.Enabled {
		a.MaintenanceService = maintenance.NewService(a.StorageManager, a.Logger)
		if err := a.MaintenanceService.Start(a.Config.Maintenance.Schedule); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to start maintenance service")
		}
	} else {
		a.Logger.Debug().Msg("Maintenance service disabled")
	}

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler()

	a.SearchHandler = handlers.NewSearchHandler(a.BookingService, a.Logger)

	a.BookingHandler = handlers.NewBookingHandler(a.BookingService, a.PDFService, a.Logger)

	a.SessionHandler = handlers.NewSessionHandler(a.AirIQClient.Session(), a.Logger)

	// Initialize page handler for serving HTML templates
	a.PageHandler = handlers.NewPageHandler(a.Logger, a.Config.Logging.ClientDebug)

	a.Logger.Debug().Msg("HTTP handlers initialized")

	return nil
}

// Close closes all application resources
func (a *App) Close() error {
	// Stop maintenance service
	if a.MaintenanceService != nil {
		if err := a.MaintenanceService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop maintenance service")
		}
	}

	// Close storage
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
