package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gorilla/mux"
	"github.com/urfave/cli"

	"github.com/carverauto/pulse/pkg/api"
	"github.com/carverauto/pulse/pkg/config"
	"github.com/carverauto/pulse/pkg/db"
	"github.com/carverauto/pulse/pkg/engine"
	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/lifecycle"
)

func loadConfig(c *cli.Context) (*engine.Config, error) {
	if err := config.LoadEnv(c.String("env")); err != nil {
		return nil, err
	}

	cfg, err := engine.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// openStore connects to redis when configured and falls back to an
// in-process store otherwise.
func openStore(ctx context.Context, cfg *engine.Config) (kv.Store, error) {
	if cfg.Redis == nil {
		log.Printf("No redis configured, keeping state in process")

		return kv.NewMemoryStore(), nil
	}

	client, err := kv.NewRedisClient(ctx, *cfg.Redis)
	if err != nil {
		return nil, err
	}

	return kv.NewRedisStore(client, cfg.Redis.Prefix), nil
}

func serve(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	defer closeLogged("store", store.Close)

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}

	defer closeLogged("database", database.Close)

	e, err := engine.New(cfg, store, database)
	if err != nil {
		return err
	}

	server := api.NewServer(api.Deps{
		State:        e.Machine(),
		Classifier:   e.Classifier(),
		Collector:    e.Collector(),
		Rules:        e.Rules(),
		Alerts:       e.Alerts(),
		Bus:          store,
		Healthy:      e.Healthy,
		RulesChanged: e.InvalidateRules,
		Middleware:   []mux.MiddlewareFunc{e.Middleware},
	})

	err = lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ServiceName: serviceName,
		HTTPAddr:    cfg.ListenAddr,
		GRPCAddr:    cfg.GRPCAddr,
		Service:     e,
		Handler:     server.Handler(),
		Healthy:     e.Healthy,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func closeLogged(what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Printf("Error closing %s: %v", what, err)
	}
}
