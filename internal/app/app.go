package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lfmartins/legalflow/internal/domain"
	"github.com/lfmartins/legalflow/internal/gateway"
	"github.com/lfmartins/legalflow/internal/mailer"
	"github.com/lfmartins/legalflow/internal/meeting"
	"github.com/lfmartins/legalflow/internal/reconciler"
	"github.com/lfmartins/legalflow/internal/repository"
	"github.com/lfmartins/legalflow/internal/stream"
	appvalidator "github.com/lfmartins/legalflow/internal/validator"
	"github.com/lfmartins/legalflow/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var (
	version = vcs.Version()
)

type application struct {
	config    config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate

	paymentRepo domain.PaymentRepository
	bookingRepo domain.BookingRepository

	gatewayClient gatewayAPI
	registry      *stream.Registry
	notifier      *stream.Notifier
	reconciler    reconcileService
	streamConfig  stream.Config
}

// reconcileService is what the webhook receiver needs from the
// reconciliation engine.
type reconcileService interface {
	Reconcile(ctx context.Context, event gateway.WebhookEvent) error
}

// gatewayAPI is the slice of the gateway client the status handler consumes.
type gatewayAPI interface {
	GetPayment(ctx context.Context, paymentID string) (*gateway.PaymentStatusResult, error)
}

type config struct {
	port int
	env  string
	db   struct {
		dsn          string
		maxOpenConns int
		maxIdleTime  time.Duration
		automigrate  bool
	}
	redis struct {
		url          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  time.Duration
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	gateway struct {
		webhookToken string
		apiKey       string
		baseUrl      string
	}
	google struct {
		credentialsFile string
		calendarId      string
		timezone        string
	}
	stream struct {
		heartbeatInterval time.Duration
		sessionTimeout    time.Duration
	}
	reconcile struct {
		maxAttempts int
		retryDelay  time.Duration
	}
	otelCollectorUrl string
}

func Run() error {
	var cfg config

	flag.IntVar(&cfg.port, "port", 3000, "server port")
	flag.StringVar(&cfg.env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.db.dsn, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.db.maxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")
	flag.BoolVar(&cfg.db.automigrate, "db-automigrate", false, "Run pending schema migrations on startup")

	flag.StringVar(&cfg.redis.url, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.redis.maxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.redis.maxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.redis.maxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.smtp.host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", "LegalFlow <no-reply@legalflow.app>", "SMTP sender")

	flag.StringVar(&cfg.gateway.webhookToken, "gateway-webhook-token", "", "Shared secret expected on gateway webhooks")
	flag.StringVar(&cfg.gateway.apiKey, "gateway-api-key", "", "Gateway API key for the status-query API")
	flag.StringVar(&cfg.gateway.baseUrl, "gateway-base-url", "https://api.asaas.com/v3", "Gateway API base URL")

	flag.StringVar(&cfg.google.credentialsFile, "google-credentials-file", "", "Google service account credentials file")
	flag.StringVar(&cfg.google.calendarId, "google-calendar-id", "primary", "Calendar used for provisioned meetings")
	flag.StringVar(&cfg.google.timezone, "google-timezone", "America/Sao_Paulo", "Timezone for provisioned meetings")

	flag.DurationVar(&cfg.stream.heartbeatInterval, "stream-heartbeat-interval", 30*time.Second, "Stream keep-alive interval")
	flag.DurationVar(&cfg.stream.sessionTimeout, "stream-session-timeout", 5*time.Minute, "Stream session hard ceiling")

	flag.IntVar(&cfg.reconcile.maxAttempts, "reconcile-max-attempts", 3, "Record lookup attempts before degrading to a keyed update")
	flag.DurationVar(&cfg.reconcile.retryDelay, "reconcile-retry-delay", 1500*time.Millisecond, "Delay between record lookup attempts")

	flag.StringVar(&cfg.otelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	validator := appvalidator.NewValidator()

	db, err := newDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.db.automigrate {
		err = runMigrations(cfg.db.dsn)
		if err != nil {
			return err
		}
	}

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	meetingProvider, err := newMeetingProvider(cfg, logger)
	if err != nil {
		return err
	}

	paymentRepo := repository.NewPostgresPaymentRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)

	smtpMailer := mailer.NewSMTPMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)

	registry := stream.NewRegistry()
	notifier := stream.NewNotifier(registry, logger)

	engine := reconciler.New(
		paymentRepo,
		bookingRepo,
		meetingProvider,
		notifier,
		smtpMailer,
		logger,
		reconciler.RetryPolicy{
			MaxAttempts: cfg.reconcile.maxAttempts,
			Delay:       cfg.reconcile.retryDelay,
		},
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		redis:         redisClient,
		validator:     validator,
		paymentRepo:   paymentRepo,
		bookingRepo:   bookingRepo,
		gatewayClient: gateway.NewClient(cfg.gateway.baseUrl, cfg.gateway.apiKey),
		registry:      registry,
		notifier:      notifier,
		reconciler:    engine,
		streamConfig: stream.Config{
			HeartbeatInterval: cfg.stream.heartbeatInterval,
			SessionTimeout:    cfg.stream.sessionTimeout,
		},
	}

	shutdownTelemetry, err := app.initTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	return app.run()
}

func newMeetingProvider(cfg config, logger *slog.Logger) (domain.MeetingProvider, error) {
	if cfg.google.credentialsFile == "" {
		logger.Warn("no Google credentials configured, meeting provisioning disabled")
		return meeting.Unconfigured{}, nil
	}

	service, err := calendar.NewService(
		context.Background(),
		option.WithCredentialsFile(cfg.google.credentialsFile),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, err
	}

	return meeting.NewGoogleMeetProvider(service, cfg.google.calendarId, cfg.google.timezone), nil
}

func newRedisClient(cfg config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.redis.url,
		MaxIdleConns:    cfg.redis.maxIdleConns,
		MaxActiveConns:  cfg.redis.maxOpenConns,
		ConnMaxIdleTime: cfg.redis.maxIdleTime,
	})

	err := redisotel.InstrumentTracing(rdb)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func newDatabasePool(cfg config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.db.maxIdleTime
	config.MaxConns = int32(cfg.db.maxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func runMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func (app *application) run() error {
	srv := &http.Server{
		Addr:        fmt.Sprintf("0.0.0.0:%d", app.config.port),
		Handler:     app.routes(),
		IdleTimeout: time.Minute,
		ReadTimeout: 5 * time.Second,
		// No write timeout: the payment-status stream holds its response
		// open for the whole session.
		WriteTimeout: 0,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("legalflow-api", otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)

	r.Get("/health", app.GetHealth)

	r.Route("/webhook", func(r chi.Router) {
		r.Post("/", app.GatewayWebhookHandler)
	})

	r.Post("/payments", app.CreatePaymentHandler)

	r.Route("/payment-status/{paymentId}", func(r chi.Router) {
		r.Use(app.streamCORS)
		r.Get("/", app.PaymentStatusHandler)
		r.Get("/stream", app.PaymentStatusStreamHandler)
	})

	return r
}
