package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/studiosite/studiosite-backend/pkg/config"
	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "index command: up|status|validate")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for index operations")
	flag.Parse()

	// validate needs neither config nor a connection
	if *cmd == "validate" {
		if err := db.ValidateIndexPlan(); err != nil {
			fmt.Fprintf(os.Stderr, "index plan validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("index plan validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"cmd":      *cmd,
		"database": cfg.Mongo.Database,
	})
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	dbClient, err := db.New(ctx, cfg.Mongo, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		_ = dbClient.Close(context.Background())
	}()

	logg.Info(ctx, "migrate ready")

	switch *cmd {
	case "up":
		if err := dbClient.EnsureIndexes(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "ensuring indexes failed: %v\n", err)
			os.Exit(1)
		}
		logg.Info(ctx, "indexes ensured")

	case "status":
		reports, err := dbClient.IndexStatus(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "index status failed: %v\n", err)
			os.Exit(1)
		}
		missing := printStatus(reports)
		if missing > 0 {
			os.Exit(2)
		}

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}

// printStatus writes one line per collection and returns the number of missing indexes.
func printStatus(reports []db.IndexReport) int {
	missing := 0
	for _, r := range reports {
		missing += len(r.Missing)
		fmt.Printf("%-22s present=[%s] missing=[%s]", r.Collection, strings.Join(r.Present, ","), strings.Join(r.Missing, ","))
		if len(r.Extra) > 0 {
			fmt.Printf(" extra=[%s]", strings.Join(r.Extra, ","))
		}
		fmt.Println()
	}
	return missing
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
