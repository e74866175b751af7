package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", "", "migrations directory on disk (default: migrations embedded in the binary)")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate work on files only and need no config.
	switch *cmd {
	case "create":
		target := *dir
		if target == "" {
			target = migrate.DefaultDir
		}
		if *name == "" {
			exitf("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(target, *name)
		if err != nil {
			exitf("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateFS(migrate.Source(*dir)); err != nil {
			exitf("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      logger.ParseFormat(cfg.App.LogFormat),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "close database", err)
		}
	}()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	runner, err := migrate.NewRunner(sqlDB, migrate.Source(*dir))
	requireResource(ctx, logg, "migration source", err)

	if err := run(ctx, logg, runner, *cmd, *version); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		dbClient.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, logg *logger.Logger, runner *migrate.Runner, cmd, version string) error {
	switch cmd {
	case "up":
		applied, err := runner.Up(ctx)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "applied", applied), "migrate.up.complete")
	case "down":
		if err := runner.Down(ctx); err != nil {
			return err
		}
		logg.Info(ctx, "migrate.down.complete")
	case "status":
		rows, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(rows)
	case "version":
		if err := runner.MigrateTo(ctx, version); err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "version", version), "migrate.version.complete")
	default:
		return fmt.Errorf("unknown -cmd value %q", cmd)
	}
	return nil
}

func printStatus(rows []migrate.Status) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tAPPLIED AT\tMIGRATION")
	for _, row := range rows {
		applied := "pending"
		if row.Applied {
			applied = row.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", row.Version, applied, row.Path)
	}
	_ = w.Flush()
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
