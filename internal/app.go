// Package internal wires the storefront application together
package internal

import (
	"fmt"

	"github.com/karloscodes/cartridge"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/jobs"
)

// Application wraps cartridge.Application with storefront-specific components
type Application struct {
	*cartridge.Application
	DBManager *database.DBManager // exposes MigrateDatabase to the binary
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	return NewAppWithRoutes(config.GetConfig(), MountAppRoutes)
}

// NewAppWithRoutes creates a new application with custom route mounting function
func NewAppWithRoutes(cfg *config.Config, routeMount func(*cartridge.Server)) (*Application, error) {
	logger := cartridge.NewLogger(cfg, nil)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Dashboards are computed on demand; the only background work is WAL upkeep
	scheduler := jobs.NewScheduler(dbManager, logger, cfg.CheckpointInterval())

	app, err := cartridge.NewApplication(cartridge.ApplicationOptions{
		Config:            cfg,
		Logger:            logger,
		DBManager:         dbManager,
		RouteMountFunc:    routeMount,
		BackgroundWorkers: []cartridge.BackgroundWorker{scheduler},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return &Application{
		Application: app,
		DBManager:   dbManager,
	}, nil
}
