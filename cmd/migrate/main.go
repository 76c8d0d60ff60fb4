package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/pricing/backend/internal/infrastructure/config"
	"github.com/pricing/backend/internal/infrastructure/logger"
	"github.com/pricing/backend/internal/infrastructure/migration"
)

func main() {
	var (
		migrationsPath = flag.String("path", "migrations", "path to migration files")
		command        = flag.String("command", "up", "migration command: up, down, steps, version, force, create")
		steps          = flag.Int("steps", 1, "number of steps for the steps command")
		name           = flag.String("name", "", "migration name for the create command")
	)
	flag.Parse()

	log, err := logger.NewForEnvironment(os.Getenv("PRICING_APP_ENV"))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	// create does not need a database connection
	if *command == "create" {
		if *name == "" {
			log.Fatal("create requires -name")
		}
		file, err := migration.CreateMigration(*migrationsPath, *name, "")
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		fmt.Printf("Created migration %s\n", file.Name)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	migrator, err := migration.NewFromURL(cfg.Database.DSN(), *migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Error("Error closing migrator", zap.Error(err))
		}
	}()

	switch *command {
	case "up":
		if err := migrator.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}
	case "down":
		if err := migrator.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}
	case "steps":
		if err := migrator.Steps(*steps); err != nil {
			log.Fatal("Migration steps failed", zap.Error(err), zap.Int("steps", *steps))
		}
	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			log.Fatal("Failed to read migration version", zap.Error(err))
		}
		fmt.Printf("version: %d dirty: %t\n", version, dirty)
	case "force":
		if flag.NArg() < 1 {
			log.Fatal("force requires a version argument")
		}
		version, err := strconv.Atoi(flag.Arg(0))
		if err != nil {
			log.Fatal("Invalid version argument", zap.Error(err))
		}
		if err := migrator.Force(version); err != nil {
			log.Fatal("Migration force failed", zap.Error(err))
		}
	default:
		log.Fatal("Unknown command", zap.String("command", *command))
	}

	log.Info("Migration command completed", zap.String("command", *command))
}
