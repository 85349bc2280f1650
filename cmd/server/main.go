package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"fleet/internal/app"
	"fleet/internal/auth"
	"fleet/internal/config"
	"fleet/internal/handler"
	"fleet/internal/mq"
	internalRedis "fleet/internal/redis"
	"fleet/internal/repository/postgres"
	"fleet/internal/service"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the booking API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(config.Load())
		},
	}

	root := &cobra.Command{
		Use:          "server",
		Short:        "Fleet booking marketplace",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, newMigrateCmd(), newAdminCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			db, err := app.NewDatabase(ctx, cfg.Database, nil)
			if err != nil {
				return err
			}
			defer db.Close()

			return app.Migrate(ctx, db)
		},
	}
}

func newAdminCmd() *cobra.Command {
	var name, email, phone, password string

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := app.NewDatabase(ctx, cfg.Database, nil)
			if err != nil {
				return err
			}
			defer db.Close()

			store := postgres.NewStore(db)
			authService := service.NewAuthService(
				store.Repositories(),
				store,
				auth.NewPasswordHasher(cfg.Auth.BcryptCost),
				auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
			)

			user, err := authService.CreateAdmin(ctx, service.RegisterRequest{
				Name:     name,
				Email:    email,
				Phone:    phone,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin created: %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "Administrator", "display name")
	create.Flags().StringVar(&email, "email", "", "login email")
	create.Flags().StringVar(&phone, "phone", "", "contact phone")
	create.Flags().StringVar(&password, "password", "", "login password")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	admin := &cobra.Command{
		Use:   "admin",
		Short: "Operator account management",
	}
	admin.AddCommand(create)
	return admin
}

func runServer(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic goes first so the database and Redis clients can be instrumented.
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		var err error
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			slog.Warn("new relic disabled", slog.String("error", err.Error()))
			nrApp = nil
		} else {
			slog.Info("new relic enabled", slog.String("app", cfg.NewRelic.AppName))
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("connected to postgres")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	slog.Info("connected to redis")

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer dialCancel()
	publisher, err := newPublisher(dialCtx, cfg.AMQP)
	if err != nil {
		return err
	}
	defer publisher.Close()

	server := wireServer(db, redisClient, publisher, nrApp, cfg)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	slog.Info("server exited")
	return nil
}

// newPublisher dials RabbitMQ when configured and otherwise logs events.
func newPublisher(ctx context.Context, cfg config.AMQPConfig) (mq.Publisher, error) {
	if cfg.URL == "" {
		return mq.NewLogPublisher(slog.Default()), nil
	}
	publisher, err := mq.DialPublisher(ctx, cfg.URL, cfg.Exchange)
	if err != nil {
		return nil, err
	}
	slog.Info("publishing events to rabbitmq", slog.String("exchange", cfg.Exchange))
	return publisher, nil
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, publisher mq.Publisher, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	lockStore := internalRedis.NewLockStore(redisClient)
	responseCache := internalRedis.NewResponseCache(redisClient)

	store := postgres.NewStore(db)
	repos := store.Repositories()

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	notificationService := service.NewNotificationService(publisher)

	authService := service.NewAuthService(repos, store, auth.NewPasswordHasher(cfg.Auth.BcryptCost), tokens)
	tripService := service.NewTripService(repos.Trips)
	driverService := service.NewDriverService(repos.Drivers, repos.Dealers)
	bookingService := service.NewBookingService(repos, store, service.BookingOptions{
		Rates:             cfg.Pricing,
		StrictTransitions: cfg.Booking.StrictTransitions,
	}, notificationService)
	paymentService := service.NewPaymentService(repos, store, service.NewMockPSP(), notificationService)
	payoutService := service.NewPayoutService(repos, store, lockStore, notificationService)
	statsService := service.NewStatsService(repos)

	router := app.NewRouter(app.RouterDeps{
		AuthHandler:    handler.NewAuthHandler(authService),
		TripHandler:    handler.NewTripHandler(tripService),
		DriverHandler:  handler.NewDriverHandler(driverService),
		DealerHandler:  handler.NewDealerHandler(driverService),
		BookingHandler: handler.NewBookingHandler(bookingService),
		PaymentHandler: handler.NewPaymentHandler(paymentService),
		PayoutHandler:  handler.NewPayoutHandler(payoutService),
		StatsHandler:   handler.NewStatsHandler(statsService),
		Tokens:         tokens,
		Responses:      responseCache,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		NewRelicApp:    nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
