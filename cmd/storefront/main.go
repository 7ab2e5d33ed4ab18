package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	svccfg "github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/idempotency"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "storefront order API and its background workers",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before reading the environment"},
		},
		Before: func(c *cli.Context) error {
			if err := godotenv.Load(c.String("env-file")); err != nil {
				log.Printf("warning: could not load %s: %v", c.String("env-file"), err)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Usage: "run schema migrations before serving"},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:   "notify-worker",
				Usage:  "consume order confirmations from Kafka and mail them",
				Action: notifyWorker,
			},
			{
				Name:  "create-admin",
				Usage: "create an admin account or promote an existing user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", EnvVars: []string{"ADMIN_PASSWORD"}, Required: true},
				},
				Action: createAdmin,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger(cfg svccfg.ServiceConfig) *slog.Logger {
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	return logger
}

func openRepo(ctx context.Context, cfg svccfg.ServiceConfig) (*repo.GormRepo, error) {
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := pkgdb.Open(openCtx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return &repo.GormRepo{DB: db}, nil
}

type closingNotifier interface {
	notify.Notifier
	Close() error
}

func newNotifier(cfg svccfg.ServiceConfig) (closingNotifier, error) {
	switch cfg.NotifyTransport {
	case svccfg.NotifyKafka:
		return notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaOrderTopic), nil
	case svccfg.NotifyRabbitMQ:
		return notify.NewRabbitNotifier(cfg.RabbitURL, cfg.RabbitExchange)
	default:
		return nopCloser{notify.LogNotifier{}}, nil
	}
}

type nopCloser struct{ notify.Notifier }

func (nopCloser) Close() error { return nil }

func serve(c *cli.Context) error {
	cfg := svccfg.Load()
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := pkgdb.Close(r.DB); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}()

	if c.Bool("migrate") || cfg.AutoMigrate {
		if err := r.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return fmt.Errorf("notifier: %w", err)
	}
	defer notifier.Close()

	m := metrics.NewServerMetrics(prometheus.DefaultRegisterer, "api")

	orders := &service.OrderService{
		Repo:          r,
		Notifier:      notifier,
		NotifyTimeout: cfg.NotifyTimeout,
		Created:       m.OrdersCreated,
	}
	orderHTTP := &httpserver.OrderHTTP{Svc: orders}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		}
		orderHTTP.Idempotency = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(echomw.Secure())

	httpserver.Register(e, &httpserver.Deps{
		OrderHandler:   orderHTTP,
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r}},
		ContactHandler: &httpserver.ContactHTTP{Svc: &service.ContactService{Repo: r}},
		AuthHandler: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:      r,
			JWTSecret: cfg.JWTAccessSecret,
			AccessTTL: cfg.JWTAccessTTL,
		}},
		JWTSecret:      cfg.JWTAccessSecret,
		SecureCookies:  cfg.SecureCookies,
		Ready:          r.Ping,
		Metrics:        m,
		MetricsHandler: metrics.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	orders.Wait()

	logger.Info("stopped")
	return nil
}

func migrate(c *cli.Context) error {
	cfg := svccfg.Load()
	logger := newLogger(cfg)

	r, err := openRepo(c.Context, cfg)
	if err != nil {
		return err
	}
	defer pkgdb.Close(r.DB)

	if err := r.Migrate(c.Context); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("migrated")
	return nil
}

func notifyWorker(c *cli.Context) error {
	cfg := svccfg.FromEnv()
	pkgconfig.MustNonEmpty(pkgconfig.JoinCSV(cfg.KafkaBrokers), "KAFKA_BROKERS")
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	reader := notify.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaOrderTopic, cfg.KafkaGroupID)
	w := notify.NewWorker(reader, notify.LogMailer{})

	logger.Info("notify_worker_started", "topic", cfg.KafkaOrderTopic, "group", cfg.KafkaGroupID)
	return w.Run(ctx)
}

func createAdmin(c *cli.Context) error {
	cfg := svccfg.Load()
	logger := newLogger(cfg)

	r, err := openRepo(c.Context, cfg)
	if err != nil {
		return err
	}
	defer pkgdb.Close(r.DB)

	auth := &service.AuthService{Repo: r, JWTSecret: cfg.JWTAccessSecret, AccessTTL: cfg.JWTAccessTTL}
	u, err := auth.CreateAdmin(c.Context, transport.RegisterRequest{
		Username: c.String("username"),
		Email:    c.String("email"),
		Password: c.String("password"),
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Info("admin_ready", "user_id", u.ID, "username", u.Username)
	return nil
}
