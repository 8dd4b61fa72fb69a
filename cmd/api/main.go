package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/account"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/audit"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/balance"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/handler"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/ledger"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/notification"
	"github.com/tamasbrandstadter/account-ledger/cmd/api/source"
	"github.com/tamasbrandstadter/account-ledger/internal/cache"
	"github.com/tamasbrandstadter/account-ledger/internal/db"
	"github.com/tamasbrandstadter/account-ledger/internal/env"
	"github.com/tamasbrandstadter/account-ledger/internal/mq"
)

func main() {
	log.SetFormatter(&log.TextFormatter{TimestampFormat: time.RFC3339, FullTimestamp: true})

	envCfg, err := env.GetEnvCfg()
	if err != nil {
		log.Fatalf("error parsing env vars: %v", err)
	}
	if lvl, err := log.ParseLevel(envCfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if !ledger.Supported(envCfg.Currency) {
		log.Fatalf("unsupported currency %s", envCfg.Currency)
	}

	dbc, err := db.NewConnection(db.Config{
		User:     envCfg.DBUser,
		Pass:     envCfg.DBPass,
		Host:     envCfg.DBHost,
		Name:     envCfg.DBName,
		Port:     envCfg.DBPort,
		Attempts: envCfg.ConnectAttempts,
	})
	if err != nil {
		log.Errorf("error connecting to db: %v", err)
		return
	}

	defer func() {
		if err := dbc.Close(); err != nil {
			log.Errorf("error closing db: %v", err)
		}
	}()

	src, closeSource, err := balanceSource(envCfg, dbc)
	if err != nil {
		log.Errorf("error creating balance source: %v", err)
		return
	}
	defer closeSource()

	mqCfg := mq.Config{
		User:         envCfg.MQUser,
		Pass:         envCfg.MQPass,
		Host:         envCfg.MQHost,
		Port:         envCfg.MQPort,
		Concurrency:  envCfg.MQConcurrency,
		MaxReconnect: envCfg.ConnectAttempts,
	}
	conn, err := mq.NewConnection(mqCfg)
	if err != nil {
		log.Errorf("error connecting to mq: %v", err)
		return
	}

	defer func() {
		if err := conn.Close(); err != nil {
			log.Errorf("error closing mq connection: %v", err)
		}
	}()

	queues, err := conn.DeclareQueues(mqCfg.Concurrency)
	if err != nil {
		log.Errorf("error declaring queues: %v", err)
		return
	}
	if err = notification.DeclareExchange(conn.Channel); err != nil {
		log.Errorf("error declaring notification exchange: %v", err)
		return
	}

	l := ledger.New(envCfg.Currency, src)
	recorder := audit.Recorder{DB: dbc, Publisher: conn.Channel}

	tc := &balance.TransactionConsumer{
		Queues:      queues,
		Concurrency: mqCfg.Concurrency,
		Ledger:      l,
		Audit:       recorder,
	}
	if err = tc.StartConsume(conn.Channel); err != nil {
		log.Errorf("error starting consumers: %v", err)
		return
	}

	app := handler.NewApplication(l, recorder)
	app.SyncTimeout = envCfg.SyncTimeout

	server := http.Server{
		Addr:           fmt.Sprintf(":%d", envCfg.Port),
		Handler:        app,
		ReadTimeout:    envCfg.ReadTimeout,
		WriteTimeout:   envCfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infof("server started successfully, listening on %s", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Errorf("server failed: %v", err)
		return
	case sig := <-shutdown:
		log.Infof("received %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), envCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Warnf("shutdown: Graceful shutdown did not complete in %v : %v", envCfg.ShutdownTimeout, err)

		if err := server.Close(); err != nil {
			log.Warnf("shutdown: Error killing server : %v", err)
		}
	}
}

func balanceSource(cfg env.Cfg, dbc *sqlx.DB) (account.BalanceSource, func(), error) {
	noop := func() {}

	switch cfg.BalanceSource {
	case "none":
		return nil, noop, nil
	case "postgres":
		return source.Postgres{DB: dbc}, noop, nil
	}

	r, err := cache.NewConnection(cache.Config{
		Host: cfg.RedisHost,
		Pass: cfg.RedisPass,
		Port: cfg.RedisPort,
		TTL:  cfg.RedisTTL,
	})
	if err != nil {
		return nil, noop, err
	}

	closeCache := func() {
		if err := r.Close(); err != nil {
			log.Errorf("error closing redis: %v", err)
		}
	}

	if cfg.BalanceSource == "redis" {
		return source.Cache{Redis: r}, closeCache, nil
	}

	return source.CachedPostgres{
		Cache:    source.Cache{Redis: r},
		Postgres: source.Postgres{DB: dbc},
	}, closeCache, nil
}
