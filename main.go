package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calendar-booking/api"
	"calendar-booking/booking"
	"calendar-booking/config"
	"calendar-booking/database"
	"calendar-booking/event"
	"calendar-booking/notify"
	"calendar-booking/sweeper"
	"calendar-booking/telemetry"
	"calendar-booking/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath, ".env")
	if err != nil {
		panic("load config: " + err.Error())
	}

	logger, err := telemetry.NewLogger(cfg.Service, cfg.LogLevel)
	if err != nil {
		panic("new logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Service,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	mp, err := telemetry.SetupMetrics(ctx, telemetry.MetricsConfig{
		Enabled:     cfg.Metrics.Enabled,
		ServiceName: cfg.Service,
		Endpoint:    cfg.Metrics.Endpoint,
		Interval:    cfg.Metrics.Interval,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown", zap.Error(err))
		}
	}()

	logger.Info("attempting to connect to database", zap.String("driver", cfg.DB.Driver))
	db, err := database.Connect(cfg.DB.Driver, cfg.DB.DSN, cfg.DB.MaxIdleConns)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("successfully connected to database")

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	policy, err := cfg.OverlapPolicy()
	if err != nil {
		return err
	}

	locker, closeLocker, err := newLocker(cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	notifier, closeNotifier := newNotifier(cfg, logger)
	defer closeNotifier()

	service := api.NewAPI(db,
		api.WithLogger(logger),
		api.WithMetrics(telemetry.NewMetrics(mp, logger)),
		api.WithNotifier(notifier),
		api.WithLocker(locker),
		api.WithOverlapPolicy(policy),
		api.WithAllowedOrigins(cfg.AllowedOrigins),
		api.WithDefaultSlotMinutes(cfg.Booking.DefaultSlotMinutes),
	)
	service.RegisterRoutes()

	if cfg.Sweeper.Schedule != "" {
		sw := sweeper.New(event.NewAccessor(db, user.NewAccessor(db)), cfg.Retention(), logger)
		if err := sw.Start(cfg.Sweeper.Schedule); err != nil {
			return err
		}
		defer func() { <-sw.Stop().Done() }()
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           service.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLocker(cfg *config.Config) (booking.Locker, func(), error) {
	if cfg.Booking.Lock != "redis" {
		return booking.NewLocalLocker(), func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opts)
	return booking.NewRedisLocker(rdb, cfg.Booking.LockTTL, ""), func() { _ = rdb.Close() }, nil
}

func newNotifier(cfg *config.Config, logger *zap.Logger) (notify.Notifier, func()) {
	switch cfg.Notifier {
	case "kafka":
		n := notify.NewKafkaNotifier(notify.SplitBrokers(cfg.Kafka.Brokers), cfg.Kafka.Topic)
		return n, func() {
			if err := n.Close(); err != nil {
				logger.Warn("close kafka writer", zap.Error(err))
			}
		}
	case "smtp":
		return notify.NewSMTPNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From), func() {}
	default:
		return notify.NewLogNotifier(logger), func() {}
	}
}
