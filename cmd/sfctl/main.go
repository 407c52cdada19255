// main.go - Admin control tool for the storefront
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"storefront/internal"
	"storefront/internal/events"
	"storefront/internal/hours"
	"storefront/internal/seeder"
	"storefront/internal/vendors"
)

const (
	defaultShutdownTimeout = 30 * time.Second
)

// Command defines the interface for all command implementations
type Command interface {
	// Name returns the command name
	Name() string
	// Description returns the command description
	Description() string
	// Execute runs the command with the given app and args
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

// The set of available commands
var commands = []Command{
	&CreateVendorCommand{},
	&SetHoursCommand{},
	&ShowHoursCommand{},
	&ImportVendorsCommand{},
	&MigrateCommand{},
	&SeedCommand{},
	&StatusCommand{},
	&HelpCommand{},
}

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating cleanup...", sig)
		cancel()
	}()

	cmdName, args := parseArgs()

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	app, err := internal.NewApp()
	if err != nil {
		log.Printf("Warning: Failed to initialize app: %v", err)
		log.Println("Proceeding with limited functionality...")
	}

	err = cmd.Execute(ctx, app, args)

	if app != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		if shutdownErr := app.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Printf("Warning: Cleanup error: %v", shutdownErr)
		}
		cancelShutdown()
	}

	if err != nil {
		log.Fatalf("Command failed: %v", err)
	}

	log.Printf("Command %s completed successfully", cmd.Name())
}

// CreateVendorCommand registers a new storefront tenant
type CreateVendorCommand struct{}

func (c *CreateVendorCommand) Name() string        { return "create-vendor" }
func (c *CreateVendorCommand) Description() string { return "Creates a vendor: create-vendor <tenant-id> [name]" }

func (c *CreateVendorCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s <tenant-id> [name]", c.Name())
	}
	if app == nil {
		return fmt.Errorf("app initialization failed, cannot connect to database")
	}

	vendor := &vendors.Vendor{TenantID: args[0]}
	if len(args) >= 2 {
		vendor.Name = args[1]
	}

	db := app.DBManager.GetConnection()
	if _, err := vendors.GetVendorByTenant(db, vendor.TenantID); err == nil {
		log.Printf("Vendor %s already exists", vendor.TenantID)
		return nil
	} else if !errors.Is(err, vendors.ErrVendorNotFound) {
		return err
	}

	if err := vendors.CreateVendor(db, slog.Default(), vendor); err != nil {
		return fmt.Errorf("failed to create vendor: %w", err)
	}
	log.Printf("Vendor %s created", vendor.TenantID)
	return nil
}

// SetHoursCommand stores an operating hours document for a vendor
type SetHoursCommand struct{}

func (c *SetHoursCommand) Name() string { return "set-hours" }
func (c *SetHoursCommand) Description() string {
	return "Stores operating hours: set-hours <tenant-id> [json | @file] (reads stdin when omitted)"
}

func (c *SetHoursCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s <tenant-id> [json | @file]", c.Name())
	}
	if app == nil {
		return fmt.Errorf("app initialization failed, cannot connect to database")
	}

	document, err := readHoursDocument(args[1:])
	if err != nil {
		return err
	}
	if !json.Valid(document) {
		return fmt.Errorf("operating hours must be a JSON document")
	}

	db := app.DBManager.GetConnection()
	if err := vendors.UpdateOperatingHours(db, slog.Default(), args[0], document); err != nil {
		return err
	}

	_, defaulted := hours.NormalizeWithReport(hours.ParseRaw(document))
	if len(defaulted) > 0 {
		log.Printf("Days falling back to default hours: %v", defaulted)
	}
	return nil
}

// readHoursDocument takes the document from the argument, an @file, or stdin.
func readHoursDocument(args []string) ([]byte, error) {
	if len(args) > 0 {
		if len(args[0]) > 1 && args[0][0] == '@' {
			data, err := os.ReadFile(args[0][1:])
			if err != nil {
				return nil, fmt.Errorf("failed to read hours file: %w", err)
			}
			return data, nil
		}
		return []byte(args[0]), nil
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("Paste the operating hours JSON, then press Ctrl-D:")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read hours from stdin: %w", err)
	}
	return data, nil
}

// ImportVendorsCommand provisions vendors from a YAML manifest
type ImportVendorsCommand struct{}

func (c *ImportVendorsCommand) Name() string { return "import-vendors" }
func (c *ImportVendorsCommand) Description() string {
	return "Creates or updates vendors from a YAML manifest: import-vendors <file.yaml>"
}

func (c *ImportVendorsCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s <file.yaml>", c.Name())
	}
	if app == nil {
		return fmt.Errorf("app initialization failed, cannot connect to database")
	}

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	manifest, err := vendors.LoadManifest(file)
	if err != nil {
		return err
	}

	result, err := vendors.ImportManifest(app.DBManager.GetConnection(), slog.Default(), manifest)
	if err != nil {
		return err
	}

	log.Printf("Created %d vendors %v, updated hours of %d %v",
		len(result.Created), result.Created, len(result.Updated), result.Updated)
	return nil
}

// ShowHoursCommand prints the normalized weekly schedule of a vendor
type ShowHoursCommand struct{}

func (c *ShowHoursCommand) Name() string        { return "show-hours" }
func (c *ShowHoursCommand) Description() string { return "Shows normalized hours: show-hours <tenant-id>" }

func (c *ShowHoursCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s <tenant-id>", c.Name())
	}
	if app == nil {
		return fmt.Errorf("app initialization failed, cannot connect to database")
	}

	vendor, err := vendors.GetVendorByTenant(app.DBManager.GetConnection(), args[0])
	if err != nil {
		return err
	}

	schedule := hours.NormalizeJSON(vendor.OperatingHoursDocument())
	fmt.Printf("Operating hours for %s:\n", vendor.Name)
	for _, day := range hours.Days {
		fmt.Printf("  %-10s %s\n", day, hours.FormatDayRange(schedule[day]))
	}
	return nil
}

// StatusCommand implements a command to check the system status
type StatusCommand struct{}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Description() string { return "Shows the current system status" }

func (c *StatusCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if app == nil {
		return fmt.Errorf("cannot check status: app initialization failed")
	}

	db := app.DBManager.GetConnection()

	var vendorCount, eventCount int64
	if err := db.Model(&vendors.Vendor{}).Count(&vendorCount).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if err := db.Model(&events.Record{}).Count(&eventCount).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	log.Println("System Status:")
	log.Println("- Database: Connected")
	log.Printf("- Vendors: %d", vendorCount)
	log.Printf("- Events: %d", eventCount)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB: %w", err)
	}

	log.Printf("- Max Open Connections: %d", sqlDB.Stats().MaxOpenConnections)
	log.Printf("- Open Connections: %d", sqlDB.Stats().OpenConnections)
	log.Printf("- In Use: %d", sqlDB.Stats().InUse)
	log.Printf("- Idle: %d", sqlDB.Stats().Idle)

	return nil
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Shows usage information" }

func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	printUsage()
	return nil
}

// MigrateCommand runs database migrations
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string        { return "migrate" }
func (c *MigrateCommand) Description() string { return "Runs database migrations" }

func (c *MigrateCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if app == nil {
		return fmt.Errorf("app initialization failed, cannot run migrations")
	}

	log.Println("Running database migrations...")
	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations completed successfully")
	return nil
}

// SeedCommand populates the DB with demo storefront traffic
type SeedCommand struct{}

func (c *SeedCommand) Name() string        { return "seed" }
func (c *SeedCommand) Description() string { return "Seeds the database with sample data" }

func (c *SeedCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	flags := flag.NewFlagSet("seed", flag.ContinueOnError)
	eventCount := flags.Int("events", 10000, "number of events to generate per vendor")
	days := flags.Int("days", 30, "number of days to spread events over")
	tenant := flags.String("tenant", "", "specific vendor to seed (seeds the demo vendors if empty)")
	seed := flags.Uint64("seed", 0, "random seed for reproducible data (random if zero)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if app == nil {
		return fmt.Errorf("unable to initialise app")
	}

	se := seeder.NewSeeder(app.DBManager, slog.Default(), *eventCount)
	se.Days = *days
	if *seed != 0 {
		se.WithSeed(*seed)
	}

	now := time.Now().UTC()
	if *tenant != "" {
		_, err := se.SeedVendor(ctx, *tenant, now)
		return err
	}
	return se.Run(ctx, now)
}

// parseArgs parses the command name and arguments
func parseArgs() (string, []string) {
	args := flag.Args()
	if len(args) == 0 {
		return "help", []string{}
	}
	return args[0], args[1:]
}

// findCommand finds a command by name
func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: sfctl [command] [args...]")
	fmt.Println("Available commands:")

	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}
}

// showUsageAndExit shows usage information and exits
func showUsageAndExit() {
	printUsage()
	os.Exit(1)
}
