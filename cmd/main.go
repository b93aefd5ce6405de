package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/s/lms/internal/catalog"
	"github.com/s/lms/internal/config"
	"github.com/s/lms/internal/console"
	"github.com/s/lms/internal/database"
	"github.com/s/lms/internal/fixtures"
	"github.com/s/lms/internal/identity"
	"github.com/s/lms/internal/logging"
)

func main() {
	flags := gnuflag.NewFlagSet("lms", gnuflag.ExitOnError)
	seedDB := flags.Bool("seed-db", false, "write the fixture set to LMS_FIXTURES_DSN before loading it back")
	flags.Parse(true, os.Args[1:])

	// ---------------------------
	// 1. Configuration (.env, then environment)
	// ---------------------------
	cfg := config.Load()

	// ---------------------------
	// 2. Logging
	// ---------------------------
	logger := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	// ---------------------------
	// 3. Fixtures (file or embedded, optionally via the fixture database)
	// ---------------------------
	set, err := loadFixtures(cfg, *seedDB)
	if err != nil {
		logger.Error("loading fixtures failed", "error", err)
		os.Exit(1)
	}
	logger.Info("fixtures loaded", "users", len(set.Users), "courses", len(set.Courses), "enrollments", len(set.Enrollments))

	// ---------------------------
	// 4. Stores
	// ---------------------------
	ident, err := identity.NewStore(identity.Config{
		Logger:            logger,
		DemoPassword:      cfg.DemoPassword,
		MinPasswordLength: cfg.MinPasswordLength,
	}, set.Users)
	if err != nil {
		logger.Error("identity store", "error", err)
		os.Exit(1)
	}
	cat, err := catalog.NewStore(catalog.Config{Logger: logger}, ident, catalog.Seed{
		Courses:     set.Courses,
		Enrollments: set.Enrollments,
	})
	if err != nil {
		logger.Error("catalog store", "error", err)
		os.Exit(1)
	}

	// ---------------------------
	// 5. Console
	// ---------------------------
	sh := console.New(console.Config{Logger: logger, Out: os.Stdout, Prompt: "lms> "}, ident, cat)
	fmt.Println("Course platform shell. Type 'help' for commands, 'quit' to leave.")
	if err := sh.Run(context.Background(), os.Stdin); err != nil {
		logger.Error("console stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixtures(cfg *config.Config, seedDB bool) (fixtures.Set, error) {
	var (
		set fixtures.Set
		err error
	)
	if cfg.FixturesPath != "" {
		set, err = fixtures.Load(cfg.FixturesPath)
	} else {
		set, err = fixtures.Default()
	}
	if err != nil {
		return fixtures.Set{}, errors.Trace(err)
	}

	if cfg.FixturesDSN == "" {
		if seedDB {
			return fixtures.Set{}, errors.NotValidf("--seed-db without LMS_FIXTURES_DSN")
		}
		return set, nil
	}

	db, err := database.Connect(cfg.FixturesDSN)
	if err != nil {
		return fixtures.Set{}, errors.Trace(err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.AutoMigrate(db); err != nil {
		return fixtures.Set{}, errors.Annotate(err, "migrating fixture tables")
	}
	if seedDB {
		if err := database.Seed(db, set); err != nil {
			return fixtures.Set{}, errors.Annotate(err, "seeding fixture database")
		}
		slog.Info("fixture database seeded")
	}

	loaded, err := database.LoadFixtures(db)
	if err != nil {
		return fixtures.Set{}, errors.Trace(err)
	}
	if len(loaded.Users) == 0 {
		slog.Warn("fixture database is empty; run with --seed-db to populate it")
	}
	return loaded, nil
}
