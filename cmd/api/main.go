package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	amqpad "staybook/internal/adapters/amqp"
	"staybook/internal/adapters/auth"
	server "staybook/internal/adapters/http_server"
	"staybook/internal/adapters/observability"
	redisad "staybook/internal/adapters/redis"
	"staybook/internal/app"
	"staybook/internal/domain"
	"staybook/internal/shared"
	mysqlrepo "staybook/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		// sessions are checked against the revocation list in redis
		log.Fatal().Err(err).Msg("redis.Ping failed")
	}

	// deps
	repo := mysqlrepo.New(db)
	idp, err := auth.New(repo, cache, auth.Options{Secret: cfg.JWTSecret, SessionTTL: cfg.SessionTTL})
	if err != nil {
		log.Fatal().Err(err).Msg("identity provider init failed")
	}

	var publisher domain.EventPublisher
	if cfg.AMQPURL != "" {
		publisher = amqpad.New(cfg.AMQPURL)
		log.Info().Str("queue", amqpad.QueueBookingConfirmed).Msg("booking events enabled")
	}

	hotels := app.NewHotelService(repo, cache, cfg.CacheTTL, cfg.RequestTimeout)
	bookings := app.NewBookingService(repo, hotels, app.BookingOptions{
		Publisher: publisher,
		Timeout:   cfg.RequestTimeout,
		Workers:   cfg.LookupWorkers,
	})
	identity := app.NewIdentityService(idp, cfg.RequestTimeout)

	unsubscribe := identity.SetupAuthListener(func(u *domain.User) {
		if u == nil {
			log.Debug().Msg("session ended")
			return
		}
		log.Debug().Str("user_id", u.ID).Msg("session active")
	})
	defer unsubscribe()
	unobserve := idp.Subscribe(func(e domain.SessionEvent) { observability.ObserveSession(string(e.Type)) })
	defer unobserve()

	// http
	srv := server.New(15 * time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(server.NewHandlers(hotels, bookings, identity), server.RouteOptions{
		Sessions:  idp,
		AuthRPS:   cfg.AuthRateRPS,
		AuthBurst: cfg.AuthRateBurst,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
