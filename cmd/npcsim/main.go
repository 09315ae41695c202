package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Rajchodisetti/npc-market/internal/adapters"
	"github.com/Rajchodisetti/npc-market/internal/config"
	"github.com/Rajchodisetti/npc-market/internal/cycle"
	"github.com/Rajchodisetti/npc-market/internal/observ"
	"github.com/Rajchodisetti/npc-market/internal/storage"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to yaml config (defaults apply when empty)")
		once       = flag.Bool("once", false, "run a single cycle and exit")
		workers    = flag.Int("workers", 0, "override executing-phase worker count")
	)
	flag.Parse()

	// .env overlay for secrets like the database DSN; absence is fine
	_ = godotenv.Load()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *workers > 0 {
		cfg.Cycle.Workers = *workers
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" && cfg.Storage.DSN == "" {
		cfg.Storage.DSN = dsn
	}

	prices := adapters.NewSimPriceSource(cfg.Sim.Seed, cfg.Sim.PriceRPS)

	var store storage.Store
	switch cfg.Storage.Driver {
	case "postgres":
		pg, err := storage.NewPostgres(cfg.Storage.DSN, cfg.Storage.MaxOpenConns,
			cfg.Storage.MaxIdleConns, time.Duration(cfg.Storage.ConnMaxLifetime)*time.Minute)
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		defer pg.Close()
		store = pg
	case "memory":
		mem := storage.NewMemory()
		seedSim(mem, prices, cfg.Sim)
		store = mem
	default:
		log.Fatalf("unknown storage driver %q", cfg.Storage.Driver)
	}

	runner := cycle.NewRunner(store, prices, adapters.NewSimEvaluator(), cycle.Config{
		Window:  time.Duration(cfg.Cycle.WindowHours) * time.Hour,
		Workers: cfg.Cycle.Workers,
		Seed:    cfg.Sim.Seed,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		runCycle(ctx, runner)
		return
	}

	interval := time.Duration(cfg.Cycle.IntervalSeconds) * time.Second
	observ.Log("npcsim_start", map[string]any{"interval_s": cfg.Cycle.IntervalSeconds, "workers": cfg.Cycle.Workers})
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runCycle(ctx, runner)
	for {
		select {
		case <-ctx.Done():
			observ.Log("npcsim_stop", nil)
			return
		case <-ticker.C:
			prices.Step(0, 0.02)
			runCycle(ctx, runner)
		}
	}
}

func runCycle(ctx context.Context, runner *cycle.Runner) {
	summary, err := runner.Run(ctx)
	if err != nil {
		observ.Log("cycle_error", map[string]any{"error": err.Error()})
	}
	b, _ := json.Marshal(summary)
	fmt.Println(string(b))
}
