package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/teamboard/teamboard-api/internal/config"
	"github.com/teamboard/teamboard-api/internal/handlers"
	"github.com/teamboard/teamboard-api/internal/middleware"
	"github.com/teamboard/teamboard-api/internal/migration"
	"github.com/teamboard/teamboard-api/internal/notification"
	"github.com/teamboard/teamboard-api/internal/repository"
	"github.com/teamboard/teamboard-api/internal/routes"
	"github.com/teamboard/teamboard-api/internal/team"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config        *config.Config
	db            *sql.DB
	logger        zerolog.Logger
	notifications notification.Service
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	gooseAdapter := migration.NewGooseAdapter(logger)
	goose.SetLogger(gooseAdapter)

	// Load configuration.
	cfg := config.Load()

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	migration.RunMigrations(cfg.DatabaseURL, logger)

	// Initialize notification service with optional side channels.
	notificationRepo := repository.NewNotificationRepository(db)
	pushNotifier := notification.NewPushNotifier(cfg.Push, logger)
	emailNotifier, err := notification.NewEmailNotifier(cfg.Email, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("email notifier disabled")
		emailNotifier = nil
	}
	var notifiers []notification.Notifier
	notifiers = append(notifiers, pushNotifier)
	if emailNotifier != nil {
		notifiers = append(notifiers, emailNotifier)
	}
	notificationService := notification.NewService(notificationRepo, logger, notifiers...)

	// Create the application instance.
	app := &application{
		config:        cfg,
		db:            db,
		logger:        logger,
		notifications: notificationService,
	}

	// Initialize the HTTP router and middleware.
	router := app.initRouter(logger)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{"http://localhost:3000"}),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, logger)

	logger.Info().Msg("Application terminated.")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter(logger zerolog.Logger) http.Handler {
	// Repositories
	teamRepo := repository.NewTeamRepository(app.db)
	memberRepo := repository.NewMemberRepository(app.db)
	invitationRepo := repository.NewInvitationRepository(app.db)
	userRepo := repository.NewUserRepository(app.db)
	txManager := repository.NewTxManager(app.db)

	// Mailer for invitation emails
	inviteMailer, err := notification.NewSMTPInviteMailer(app.config.Email)
	if err != nil {
		logger.Warn().Err(err).Msg("invite mailer disabled")
		inviteMailer = nil
	}

	// Lifecycle engine
	var mailer notification.InviteMailer
	if inviteMailer != nil {
		mailer = inviteMailer
	}
	engine := team.NewEngine(
		teamRepo,
		memberRepo,
		invitationRepo,
		userRepo,
		txManager,
		app.notifications,
		mailer,
		app.config.Email.InviteURLTemplate,
		logger,
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(app.db, app.config, logger)
	teamHandler := handlers.NewTeamHandler(teamRepo, memberRepo, engine, logger)
	inviteHandler := handlers.NewInviteHandler(engine, logger)
	memberHandler := handlers.NewMemberHandler(engine, logger)
	notificationHandler := handlers.NewNotificationHandler(app.notifications, logger)

	return routes.NewRouter(authHandler, teamHandler, inviteHandler, memberHandler, notificationHandler)
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}
}
