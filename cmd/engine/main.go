package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/aresgrid/ares-engine/internal/api"
	"github.com/aresgrid/ares-engine/internal/db"
	"github.com/aresgrid/ares-engine/internal/engine"
	"github.com/aresgrid/ares-engine/internal/grid"
)

// listenAddr is the observer broadcast endpoint. Observers are local
// dashboards; the engine never listens beyond loopback.
const listenAddr = "127.0.0.1:3820"

type options struct {
	dbUser     string
	dbPassword string
	dbHost     string
	dbName     string

	noKillDrops bool
	debug       bool
	radius      int32
	regen       bool
	seed        int64
}

func main() {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "ares-engine <max_bots> <max_valuables>",
		Short: "Tick-driven multi-agent simulation on a hexagonal maze",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			maxBots, err := strconv.Atoi(args[0])
			if err != nil || maxBots < 0 {
				return fmt.Errorf("could not parse max_bots %q", args[0])
			}
			maxValuables, err := strconv.Atoi(args[1])
			if err != nil || maxValuables < 0 {
				return fmt.Errorf("could not parse max_valuables %q", args[1])
			}
			return run(opts, maxBots, maxValuables)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.dbUser, "user", "u", getEnvOrDefault("ARES_DB_USER", "ares"), "Database username")
	flags.StringVarP(&opts.dbPassword, "password", "p", getEnvOrDefault("ARES_DB_PASSWORD", "ares"), "Database password")
	flags.StringVarP(&opts.dbHost, "hostname", "o", getEnvOrDefault("ARES_DB_HOST", "localhost"), "Database hostname")
	flags.StringVarP(&opts.dbName, "dbname", "n", getEnvOrDefault("ARES_DB_NAME", "ares"), "Database name")
	flags.BoolVar(&opts.noKillDrops, "no_kill_drops", false, "Dead robots leave no valuables behind")
	flags.BoolVar(&opts.debug, "debug", false, "Wait for enter between ticks")
	flags.Int32Var(&opts.radius, "radius", 20, "Maze radius used when generating a new grid")
	flags.BoolVar(&opts.regen, "regen", false, "Discard the stored grid and generate a fresh maze")
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed (0 uses the clock)")

	if err := cmd.Execute(); err != nil {
		log.Printf("FATAL: %v", err)
		os.Exit(1)
	}
}

func run(opts *options, maxBots, maxValuables int) error {
	log.Println("Starting ARES simulation engine...")

	store, err := db.Connect(opts.dbUser, opts.dbPassword, opts.dbHost, opts.dbName)
	if err != nil {
		return fmt.Errorf("store connect failed: %w", err)
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		return fmt.Errorf("schema init failed: %w", err)
	}

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	world, err := loadOrGenerateGrid(store, opts, rng)
	if err != nil {
		return err
	}

	hub := api.NewHub()
	go hub.Run()

	eng := engine.New(engine.Config{
		MaxBots:      maxBots,
		MaxValuables: maxValuables,
		NoKillDrops:  opts.noKillDrops,
		Debug:        opts.debug,
		TickInterval: time.Second,
		Seed:         seed,
	}, world, store, hub)

	rehydrate(eng, store, world, rng)

	router := api.SetupRouter(eng, hub)
	go func() {
		log.Printf("[Engine] observers may connect on ws://%s/listen", listenAddr)
		if err := router.Run(listenAddr); err != nil {
			log.Printf("[Engine] observer endpoint failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng.Run(ctx)
	log.Println("Shutdown complete.")
	return nil
}

// loadOrGenerateGrid prefers the stored maze; an empty store (or
// --regen) carves a fresh one and persists it.
func loadOrGenerateGrid(store *db.PostgresStore, opts *options, rng *rand.Rand) (*grid.Grid, error) {
	if !opts.regen {
		world, count, err := store.LoadGrid()
		if err != nil {
			return nil, fmt.Errorf("grid load failed: %w", err)
		}
		if count > 0 {
			log.Printf("[Engine] rehydrated grid with %d cells", count)
			return world, nil
		}
	}

	log.Printf("[Engine] generating a radius-%d maze", opts.radius)
	world, err := grid.Generate(opts.radius, rng)
	if err != nil {
		return nil, fmt.Errorf("maze generation failed: %w", err)
	}
	if err := store.SaveGrid(world); err != nil {
		log.Printf("[Engine] failed to persist the new maze: %v", err)
	}
	return world, nil
}

// rehydrate adopts the robots and valuables persisted by a prior run.
func rehydrate(eng *engine.Engine, store *db.PostgresStore, world *grid.Grid, rng *rand.Rand) {
	robots, err := store.LoadRobots(world, rng)
	if err != nil {
		log.Printf("[Engine] robot rehydration failed, starting empty: %v", err)
	}
	for _, r := range robots {
		eng.AdoptRobot(r)
	}

	valuables, err := store.LoadValuables()
	if err != nil {
		log.Printf("[Engine] valuable rehydration failed, starting empty: %v", err)
	}
	for _, v := range valuables {
		eng.AdoptValuable(v)
	}

	if len(robots) > 0 || len(valuables) > 0 {
		log.Printf("[Engine] rehydrated %d robots and %d valuables", len(robots), len(valuables))
	}
}

// getEnvOrDefault returns the env var value, or fallback when it is
// unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
