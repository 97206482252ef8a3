package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shreeshk9/group-trip-planner/internal/config"
	"github.com/shreeshk9/group-trip-planner/internal/consensus"
	"github.com/shreeshk9/group-trip-planner/internal/db"
	"github.com/shreeshk9/group-trip-planner/internal/narrative"
	"github.com/shreeshk9/group-trip-planner/internal/region"
	"github.com/shreeshk9/group-trip-planner/internal/server"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		log.Printf("postgres connection failed: %v", err)
	}

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, pg, rdb, signals, nil); err != nil {
		log.Printf("server exited with error: %v", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// loadPolicy overlays the optional policy file onto the defaults. A missing
// or unreadable file is logged and planning proceeds on defaults.
func loadPolicy(cfg config.Config) consensus.Policy {
	if cfg.PolicyPath == "" {
		return consensus.DefaultPolicy()
	}
	policy, err := consensus.LoadPolicyFromFile(cfg.PolicyPath)
	if err != nil {
		log.Printf("policy load failed, using defaults: %v", err)
	}
	return policy
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	regions := region.Load(cfg.RegionsPath)
	gen := narrative.NewHTTPGenerator(cfg.NarrativeURL, cfg.NarrativeAPIKey,
		time.Duration(cfg.NarrativeTimeoutMs)*time.Millisecond)

	var archive db.Querier
	if pg != nil {
		archive = pg
	}

	srv := server.NewServer(cfg, archive, rdb, regions, gen, loadPolicy(cfg))

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
