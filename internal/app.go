package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"filesharing-api/config"
	"filesharing-api/internal/application/ports"
	"filesharing-api/internal/application/services"
	"filesharing-api/internal/infrastructure/db/postgres"
	fgRepo "filesharing-api/internal/infrastructure/db/postgres/filegroup"
	"filesharing-api/internal/infrastructure/jwt"
	"filesharing-api/internal/infrastructure/metrics"
	"filesharing-api/internal/infrastructure/mq"
	"filesharing-api/internal/infrastructure/supabase"
	"filesharing-api/internal/interface/api/rest"
	"filesharing-api/internal/interface/api/rest/middleware"
	"filesharing-api/pkg/rmqconsumer"
)

type App struct {
	logger     *zap.Logger
	cfg        config.Config
	db         *pgxpool.Pool
	blobs      ports.BlobStore
	httpSrv    *http.Server
	router     *gin.Engine
	mCounter   *prometheus.CounterVec
	mq         ports.RabbitMQ
	mqConsumer ports.RMQConsumer
	shares     ports.ShareService
	sweeper    *services.Sweeper
}

func NewApp(ctx context.Context) (*App, error) {
	// logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}
	defer logger.Sync()

	// config
	if err = godotenv.Load(".env"); err != nil {
		logger.Fatal("error loading .env file", zap.Error(err))
	}
	cfg := config.Load()

	// metrics
	mCounter := metrics.NewCounter()

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogGin(logger, mCounter))

	// httpServer
	httpSrv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: r,
	}

	// db
	dbDsn, err := cfg.DBDSN()
	if err != nil {
		logger.Fatal("DB config error", zap.Error(err))
	}
	dbPool, err := postgres.New(ctx, logger, dbDsn, cfg.App.Name)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// blob storage
	blobs, err := supabase.New(ctx, logger, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init blob storage", zap.Error(err))
	}

	app := &App{
		logger:   logger,
		cfg:      cfg,
		db:       dbPool,
		blobs:    blobs,
		httpSrv:  httpSrv,
		router:   r,
		mCounter: mCounter,
	}

	// expiry events (the sweep-only mode skips the broker entirely)
	if cfg.EventsEnabled() {
		rabbitDsn, err := cfg.AMQPDSN()
		if err != nil {
			logger.Fatal("RabbitMQ config error", zap.Error(err))
		}
		rbMQ := mq.New(cfg.MQ, logger)
		if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
			logger.Fatal("failed to connect to rabbitMQ", zap.Error(err))
		}
		if err = rbMQ.Init(); err != nil {
			logger.Fatal("failed init rabbitMQ", zap.Error(err))
		}
		app.mq = rbMQ
	}

	return app, nil
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.mq != nil && a.mq.GetConn() != nil {
		a.mq.GetConn().Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.cfg.App.Host+":"+a.cfg.App.Port))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	if a.mq != nil {
		g.Go(func() error {
			a.mq.PublisherWorker(ctx)
			return nil
		})
	}

	if a.mqConsumer != nil {
		g.Go(func() error {
			a.mqConsumer.DeliveryWorker(ctx)
			return nil
		})
	}

	// the sweep always runs: it is the safety net for missed expiry events
	g.Go(func() error {
		a.sweeper.Run(ctx)
		return nil
	})

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if a.httpSrv != nil {
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
			return err
		}
	}

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

func (a *App) InitControllers() {
	// repos
	fileGroupRepo := fgRepo.NewRepository(a.db)

	// expiry notifier strategy
	var notifier ports.ExpiryNotifier = mq.NopNotifier{}
	if a.mq != nil {
		notifier = a.mq
	}

	// services
	jwtService := jwt.New(a.cfg.App.JWTSecret)
	a.shares = services.NewShareService(a.blobs, fileGroupRepo, notifier, a.cfg.Limits, a.logger, a.mCounter)
	a.sweeper = services.NewSweeper(a.shares, a.cfg.Cleanup.SweepInterval, a.logger)

	// the consumer needs the share service, so it is wired here
	if a.mq != nil {
		rabbitDsn, err := a.cfg.AMQPDSN()
		if err != nil {
			a.logger.Fatal("RabbitMQ config error", zap.Error(err))
		}
		consumer := rmqconsumer.New(a.cfg.MQ, a.logger, a.shares)
		if err = consumer.Connect(rabbitDsn); err != nil {
			a.logger.Fatal("failed to connect rabbitMQ consumer", zap.Error(err))
		}
		if err = consumer.Init(); err != nil {
			a.logger.Fatal("failed to init rabbitMQ consumer", zap.Error(err))
		}
		a.mqConsumer = consumer
	}

	// controllers
	rest.NewShareController(a.router, a.shares, a.logger, a.cfg.App, a.cfg.Limits, jwtService)

	// ops
	a.router.GET(rest.RouteHealth, func(c *gin.Context) { c.Status(http.StatusOK) })
	a.router.GET(rest.RouteMetrics, gin.WrapH(promhttp.Handler()))
}

func (a *App) Logger() *zap.Logger { return a.logger }
