package main // hotel management API server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-management/internal/agent"
	"github.com/iliyamo/hotel-management/internal/config"
	"github.com/iliyamo/hotel-management/internal/database"
	"github.com/iliyamo/hotel-management/internal/handler"
	"github.com/iliyamo/hotel-management/internal/live"
	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/queue"
	"github.com/iliyamo/hotel-management/internal/repository"
	"github.com/iliyamo/hotel-management/internal/router"
	"github.com/iliyamo/hotel-management/internal/service"
	"github.com/iliyamo/hotel-management/internal/utils"
)

func main() {
	cfg := config.Load()
	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dialect, err := database.Open(cfg.DB)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db, dialect); err != nil {
			log.WithError(err).Fatal("migrate database")
		}
	}
	if cfg.DBSeed {
		if err := database.Seed(ctx, db); err != nil {
			log.WithError(err).Fatal("seed database")
		}
	}
	log.WithFields(logrus.Fields{"driver": dialect.Name(), "env": cfg.Env}).Info("database ready")

	rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
	if rdb != nil {
		defer rdb.Close()
	}

	hub := live.NewHub(log, allowOrigins(cfg.CORSOrigins))
	notifiers := []service.Notifier{hub}

	qcfg := config.LoadQueueConfig()
	if qcfg.Enabled {
		pub := queue.NewPublisher(qcfg.Publisher(), log)
		go pub.Run(ctx)
		notifiers = append(notifiers, pub)

		if qcfg.ConsumerEnabled {
			eventLog := queue.NewEventLog(cfg.EventLogPath)
			defer eventLog.Close()
			consumer := queue.NewConsumer(qcfg.URL, qcfg.Name, eventLog, log)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.WithError(err).Error("event consumer stopped")
				}
			}()
		}
	}

	x := repository.NewExecutor(db, dialect)
	svc := service.NewHotelService(x, service.WithLogger(log), service.WithNotifiers(notifiers...))

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: func() string { return uuid.NewString() }}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	router.Register(e, router.Deps{
		DB:        db,
		JWTSecret: cfg.JWTSecret,
		Auth:      handler.NewAuthHandler(cfg, repository.NewUserRepo(x), repository.NewTokenRepo(x), log),
		Hotel:     handler.NewHotelHandler(svc, log),
		Agent:     handler.NewAgentHandler(agent.NewDispatcher(svc), log),
		Live:      handler.NewLiveHandler(hub, log),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log),
	})

	go func() {
		addr := ":" + cfg.Port
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdown); err != nil {
		log.WithError(err).Error("shutdown")
	}
}

// allowOrigins builds the websocket origin check from the CORS list.
func allowOrigins(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
