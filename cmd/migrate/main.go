package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/streamflix-backend/pkg/config"
	"github.com/angelmondragon/streamflix-backend/pkg/db"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
	"github.com/angelmondragon/streamflix-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	fs.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migrations directory; the default reads the embedded set except for create")
	fs.StringVar(&opts.name, "name", "", "migration name (for create)")
	fs.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = execute(ctx, opts, os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

// execute handles the filesystem-only commands before touching config, so
// create and validate work without a database.
func execute(ctx context.Context, opts options, out io.Writer) error {
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Fprintln(out, "created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return fmt.Errorf("validate migrations: %w", err)
		}
		fmt.Fprintln(out, "migration validation passed")
		return nil
	case "version":
		if opts.version == "" {
			return errors.New("missing -version for version command")
		}
	case "up", "down", "status":
	default:
		return fmt.Errorf("unknown -cmd value: %s", opts.cmd)
	}
	return applyToDatabase(ctx, opts, out)
}

func applyToDatabase(ctx context.Context, opts options, out io.Writer) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DB.IsSQLite() {
		return errors.New("goose migrations target postgres; sqlite schemas are auto-migrated by the api in dev")
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": opts.cmd, "dir": opts.dir})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if cerr := dbClient.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	sqlDB, err := dbClient.SQLDB()
	if err != nil {
		return err
	}

	logg.Info(ctx, "migrate.start")
	if opts.cmd == "version" {
		err = migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version, out)
	} else {
		err = migrate.Run(ctx, sqlDB, opts.dir, opts.cmd, out)
	}
	if err != nil {
		logg.Error(ctx, "migrate.failed", err)
		return err
	}
	logg.Info(ctx, "migrate.done")
	return nil
}
