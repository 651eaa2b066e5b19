// Package main provides the smite-stats command: a small harvesting and
// query tool built on the Smite API client.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/gamestats/smite-stats/internal/harvester"
	"github.com/gamestats/smite-stats/pkg/audit"
	"github.com/gamestats/smite-stats/pkg/config"
	"github.com/gamestats/smite-stats/pkg/database/migrate"
	"github.com/gamestats/smite-stats/pkg/matchstore"
	pgstore "github.com/gamestats/smite-stats/pkg/matchstore/postgres"
	"github.com/gamestats/smite-stats/pkg/smite"
	"github.com/gamestats/smite-stats/pkg/smite/sessionfile"
)

const version = "1.0.0"

const dateLayout = "2006-01-02"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	queue       int
	date        string
	hour        int
	matchID     int64
	gods        bool
	dataUsed    bool
	recent      int
	showVersion bool
}

func parseFlags() options {
	opts := options{}
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.IntVar(&opts.queue, "queue", 0, "Queue id to harvest (overrides config)")
	flag.StringVar(&opts.date, "date", "", "Date to harvest, YYYY-MM-DD (default today, UTC)")
	flag.IntVar(&opts.hour, "hour", -1, "Hour to harvest, -1 for the whole day")
	flag.Int64Var(&opts.matchID, "match", 0, "Fetch and print one match instead of harvesting")
	flag.BoolVar(&opts.gods, "gods", false, "Print static god data and exit")
	flag.BoolVar(&opts.dataUsed, "data-used", false, "Print API usage accounting and exit")
	flag.IntVar(&opts.recent, "recent", 0, "Print the N most recently archived matches and exit")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	flag.Parse()
	return opts
}

func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

func run() error {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("smite-stats version %s\n", version)
		return nil
	}

	if opts.configPath == "" {
		return fmt.Errorf("-config is required")
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx := setupSignalHandler()

	sessions := sessionfile.New(cfg.API.SessionFile)
	sess, err := sessions.Load()
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	client := smite.New(cfg.API.DevID, cfg.API.AuthKey,
		smite.WithEndpoint(cfg.API.Endpoint),
		smite.WithSession(sess),
		smite.WithLogger(logger),
		smite.WithUsageLog(audit.NewSlogLogger(logger)),
	)
	defer persistSession(client, sessions, logger)

	switch {
	case opts.matchID != 0:
		return printMatch(ctx, client, opts.matchID)
	case opts.gods:
		return printGods(ctx, client)
	case opts.dataUsed:
		return printDataUsed(ctx, client)
	case opts.recent > 0:
		return printRecent(ctx, cfg, opts.recent)
	default:
		return harvest(ctx, client, cfg, opts, logger)
	}
}

// persistSession saves the current session so the next run can reuse the
// remaining validity window instead of burning a createsession call.
func persistSession(client *smite.Client, sessions *sessionfile.Store, logger *slog.Logger) {
	sess := client.Session()
	if !sess.Active(time.Now()) {
		return
	}
	if err := sessions.Save(sess); err != nil {
		logger.Error("persisting session", "error", err)
	}
}

func printMatch(ctx context.Context, client *smite.Client, matchID int64) error {
	match, err := client.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(match, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding match: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func printGods(ctx context.Context, client *smite.Client) error {
	gods, err := client.GetGods(ctx, smite.DefaultLanguageCode)
	if err != nil {
		return err
	}
	fmt.Println(string(gods))
	return nil
}

func printDataUsed(ctx context.Context, client *smite.Client) error {
	usage, err := client.GetDataUsed(ctx)
	if err != nil {
		return err
	}
	fmt.Println(usage)
	return nil
}

func printRecent(ctx context.Context, cfg *config.Config, limit int) error {
	if !cfg.Database.Enabled {
		return fmt.Errorf("-recent requires a configured database")
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	matches, err := store.RecentMatches(ctx, limit)
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Printf("%d\t%d players\tarchived %s\n",
			m.ID, m.PlayerCount, m.ArchivedAt.Format(time.RFC3339))
	}
	return nil
}

func harvest(ctx context.Context, client *smite.Client, cfg *config.Config, opts options, logger *slog.Logger) error {
	queue := opts.queue
	if queue == 0 {
		queue = cfg.Harvest.Queue
	}
	if queue == 0 {
		return fmt.Errorf("no queue configured; set -queue or harvest.queue")
	}

	date := time.Now().UTC()
	if opts.date != "" {
		var err error
		date, err = time.Parse(dateLayout, opts.date)
		if err != nil {
			return fmt.Errorf("parsing -date: %w", err)
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	h := harvester.New(client, store, logger)

	var res harvester.Result
	if opts.hour >= 0 {
		res, err = h.HarvestHour(ctx, queue, date, opts.hour)
	} else {
		res, err = h.HarvestDay(ctx, queue, date, cfg.Harvest.Hours)
	}
	if err != nil {
		return err
	}

	fmt.Printf("listed %d, archived %d, failed %d\n", res.Listed, res.Archived, res.Failed)
	return nil
}

// openStore opens the configured match archive, running migrations first,
// or a no-op store when no database is configured.
func openStore(cfg *config.Config) (matchstore.Store, error) {
	if !cfg.Database.Enabled {
		return matchstore.NoopStore{}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	if err := migrate.Run(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return pgstore.New(db), nil
}
