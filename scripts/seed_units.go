package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"innbook/internal/config"
	"innbook/internal/database"
	"innbook/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type UnitsConfig struct {
	Units []models.Unit `yaml:"units"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		unitsPath = flag.String("units", "configs/config.yaml", "path to yaml with a units list")
		dbPath    = flag.String("db", "./data/innbook.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*unitsPath)
	if err != nil {
		return fmt.Errorf("read units: %w", err)
	}
	var cfg UnitsConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse units: %w", err)
	}
	if len(cfg.Units) == 0 {
		return fmt.Errorf("no units in yaml")
	}
	if err = config.ValidateUnits(cfg.Units); err != nil {
		return fmt.Errorf("validate units: %w", err)
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	skipped := 0
	for _, unit := range cfg.Units {
		_, err = db.GetUnitByName(ctx, unit.Name)
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, database.ErrUnitNotFound) {
			return fmt.Errorf("get %s: %w", unit.Name, err)
		}
		unit.IsActive = true
		if err = db.CreateUnit(ctx, &unit); err != nil {
			return fmt.Errorf("create %s: %w", unit.Name, err)
		}
		created++
	}

	fmt.Printf("done: created=%d skipped=%d\n", created, skipped)
	return nil
}
