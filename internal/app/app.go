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
	"strconv"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"

	"github.com/cinefilo/booking-flow/internal/domain"
	"github.com/cinefilo/booking-flow/internal/gateway"
	"github.com/cinefilo/booking-flow/internal/mailer"
	appvalidator "github.com/cinefilo/booking-flow/internal/validator"
	"github.com/cinefilo/booking-flow/internal/vcs"
)

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager

	showtimes domain.ShowtimeGateway
	bookings  domain.BookingGateway
	listings  domain.ListingGateway

	flows   *FlowStore
	catalog *CatalogCache
}

type Config struct {
	Port int
	Env  string

	Upstream struct {
		BaseUrl string
		Timeout time.Duration
	}
	Redis struct {
		Url          string
		MaxOpenConns int
		MaxIdleConns int
		MaxIdleTime  time.Duration
	}
	Smtp struct {
		Host     string
		Port     int
		Username string
		Password string
		Sender   string
	}
	Flow struct {
		Ttl           time.Duration
		SweepInterval time.Duration
	}
	Catalog struct {
		CacheTtl        time.Duration
		RefreshInterval time.Duration
	}

	OtelCollectorUrl string
}

func Run() error {
	// A .env file is optional; deployments may pass everything via flags
	// or real environment variables.
	_ = godotenv.Load()

	var cfg Config

	flag.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	flag.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.Upstream.BaseUrl, "upstream-url", envString("TICKETING_API_URL", ""), "Ticketing API base URL")
	flag.DurationVar(&cfg.Upstream.Timeout, "upstream-timeout", 10*time.Second, "Ticketing API request timeout")

	flag.StringVar(&cfg.Redis.Url, "redis-url", envString("REDIS_URL", ""), "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.Smtp.Host, "smtp-host", envString("SMTP_HOST", "sandbox.smtp.mailtrap.io"), "SMTP host")
	flag.IntVar(&cfg.Smtp.Port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	flag.StringVar(&cfg.Smtp.Username, "smtp-username", envString("SMTP_USERNAME", ""), "SMTP username")
	flag.StringVar(&cfg.Smtp.Password, "smtp-password", envString("SMTP_PASSWORD", ""), "SMTP password")
	flag.StringVar(&cfg.Smtp.Sender, "smtp-sender", "CineFilo <no-reply@cinefilo.example.com>", "SMTP sender")

	flag.DurationVar(&cfg.Flow.Ttl, "flow-ttl", 20*time.Minute, "Idle time before an unfinished booking flow is dropped")
	flag.DurationVar(&cfg.Flow.SweepInterval, "flow-sweep-interval", time.Minute, "How often expired booking flows are swept")

	flag.DurationVar(&cfg.Catalog.CacheTtl, "catalog-cache-ttl", 5*time.Minute, "Movie and cinema listing cache TTL")
	flag.DurationVar(&cfg.Catalog.RefreshInterval, "catalog-refresh-interval", 60*time.Second, "Movie and cinema listing refresh interval")

	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector URL")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	upstream := gateway.NewClient(cfg.Upstream.BaseUrl, cfg.Upstream.Timeout, logger)

	app := &Application{
		config:         cfg,
		logger:         logger,
		redis:          redisClient,
		validator:      appvalidator.NewValidator(),
		mailer:         mailer.NewSMTPMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.Sender),
		sessionManager: newSessionManager(redisClient),
		showtimes:      upstream,
		bookings:       upstream,
		listings:       upstream,
		flows:          NewFlowStore(cfg.Flow.Ttl),
	}
	app.catalog = NewCatalogCache(redisClient, upstream, logger, cfg.Catalog.CacheTtl)

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	return app.run()
}

func newSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func newRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Url,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}
	if err := redisotel.InstrumentMetrics(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	// Background loops stop when the server begins shutting down.
	loopCtx, cancelLoops := context.WithCancel(context.Background())
	defer cancelLoops()

	go app.flows.Sweep(loopCtx, app.config.Flow.SweepInterval)
	go app.catalog.RefreshLoop(loopCtx, app.config.Catalog.RefreshInterval)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		cancelLoops()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

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

func (app *Application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("booking-flow-api", otelchi.WithChiRoutes(r)))
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestSession)

	r.Get("/health", app.GetHealth)
	r.Get("/movies", app.GetMoviesHandler)
	r.Get("/cinemas", app.GetCinemasHandler)
	r.Get("/bookings/{reference}", app.GetBookingHandler)

	r.Route("/showtimes/{showtimeId}", func(r chi.Router) {
		r.Get("/seats", app.GetSeatMapHandler)

		r.Route("/booking-session", func(r chi.Router) {
			r.Post("/", app.CreateBookingSessionHandler)
			r.Get("/", app.GetBookingSessionHandler)
			r.Delete("/", app.DeleteBookingSessionHandler)

			r.Post("/quantity", app.SetQuantityHandler)
			r.Post("/seats", app.SelectSeatsHandler)
			r.Post("/customer", app.SetCustomerInfoHandler)
			r.Post("/payment", app.SubmitPaymentHandler)
			r.Post("/back", app.BackHandler)
		})
	})

	return r
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return n
}
