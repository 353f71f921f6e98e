package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/sop/pkg/application/services"
	"github.com/vsinha/sop/pkg/domain/entities"
	"github.com/vsinha/sop/pkg/infrastructure/logging"
	"github.com/vsinha/sop/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/sop/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/sop/pkg/interfaces/cli/output"
)

// Config holds configuration for the plan command
type Config struct {
	ProductLine   string
	PlanningMonth string
	ViewMode      string
	ScenarioDir   string
	DemandFile    string
	DevicesFile   string
	OutputDir     string
	Format        string
	ConfigFile    string
	Analyze       bool
	Verbose       bool
	Help          bool
}

// PlanCommand derives and renders a capacity plan for one scenario
type PlanCommand struct {
	config Config
	now    func() time.Time
}

// NewPlanCommand creates a new plan command with the given configuration
func NewPlanCommand(config Config) *PlanCommand {
	return &PlanCommand{
		config: config,
		now:    time.Now,
	}
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	cfg, err := loadConfig(c.config.ConfigFile)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if c.config.Verbose {
		level = "debug"
	}
	logger := logging.New(logging.Options{Level: level, Format: cfg.Logging.Format})

	line, month, err := resolveContext(c.config.ProductLine, c.config.PlanningMonth, cfg, c.now())
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	viewMode := entities.Stacked
	if c.config.ViewMode != "" {
		if viewMode, err = entities.ParseViewMode(c.config.ViewMode); err != nil {
			return fmt.Errorf("validation error: %w", err)
		}
	}

	files, err := c.resolveInputFiles()
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	if c.config.Verbose {
		c.printHeader(line, month, files)
	}

	store := services.NewScenarioStore(memory.NewScenarioRepository(), services.WithStoreLogger(logger))
	key := entities.NewScenarioKey(line, month)
	if err := c.importScenario(store, key, files); err != nil {
		return err
	}

	narrator, err := newNarrator(ctx, cfg.Narration, logger)
	if err != nil {
		return fmt.Errorf("failed to set up narration: %w", err)
	}

	session, err := services.NewPlannerSession(store, narrator,
		services.WithLogger(logger),
		services.WithDefaultContext(line, month),
	)
	if err != nil {
		return fmt.Errorf("failed to open scenario %s: %w", key, err)
	}
	session.SetViewMode(viewMode)

	startTime := time.Now()
	plan, err := session.Plan()
	if err != nil {
		return fmt.Errorf("error deriving plan: %w", err)
	}
	if c.config.Verbose {
		fmt.Printf("✅ Plan derived in %v\n\n", time.Since(startTime))
	}

	report := output.Report{Plan: plan}
	if c.config.Analyze {
		if c.config.Verbose {
			fmt.Println("🤖 Requesting capacity risk analysis...")
		}
		result, err := session.Analyze(ctx)
		if err != nil {
			return fmt.Errorf("error requesting analysis: %w", err)
		}
		report.Narration = &result
	}

	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	}
	if err := output.Generate(report, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	return nil
}

// importScenario saves the CSV inputs as the scenario's cached demand and device plans
func (c *PlanCommand) importScenario(store *services.ScenarioStore, key entities.ScenarioKey, files map[string]string) error {
	loader := csv.NewLoader()

	if path := files["Demand"]; path != "" {
		series, err := loader.LoadDemand(path)
		if err != nil {
			return fmt.Errorf("error loading demand: %w", err)
		}
		if err := store.SaveDemand(key, series); err != nil {
			return err
		}
		if c.config.Verbose {
			fmt.Printf("  Demand months: %d\n", len(series))
		}
	}

	if path := files["Devices"]; path != "" {
		configs, err := loader.LoadDeviceConfigs(path)
		if err != nil {
			return fmt.Errorf("error loading devices: %w", err)
		}
		if err := store.SaveConfigs(key, configs); err != nil {
			return err
		}
		if c.config.Verbose {
			fmt.Printf("  Device plans: %d months\n", len(configs))
		}
	}

	return nil
}

// resolveInputFiles determines the optional CSV inputs. Inside a scenario
// directory, absent files fall back to the generated baseline.
func (c *PlanCommand) resolveInputFiles() (map[string]string, error) {
	files := map[string]string{
		"Demand":  c.config.DemandFile,
		"Devices": c.config.DevicesFile,
	}

	if c.config.ScenarioDir != "" {
		for name, base := range map[string]string{"Demand": "demand.csv", "Devices": "devices.csv"} {
			if files[name] != "" {
				continue
			}
			path := filepath.Join(c.config.ScenarioDir, base)
			if _, err := os.Stat(path); err == nil {
				files[name] = path
			}
		}
	}

	for name, path := range files {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	return files, nil
}

// printHeader prints the command header information
func (c *PlanCommand) printHeader(line entities.ProductLine, month entities.PlanningMonth, files map[string]string) {
	fmt.Printf("🚀 S&OP Capacity Planner\n")
	fmt.Printf("Scenario: %s\n", entities.NewScenarioKey(line, month))
	for _, name := range []string{"Demand", "Devices"} {
		source := files[name]
		if source == "" {
			source = "(generated baseline)"
		}
		fmt.Printf("  %s: %s\n", name, source)
	}
	fmt.Printf("Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Printf("Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Println()
}

// showHelp displays the help message
func (c *PlanCommand) showHelp() {
	fmt.Printf(`S&OP Capacity Planner - rolling 4-month capacity vs. demand for discrete manufacturing

USAGE:
    sop -product <line> -month YYYY-MM        # Generated baseline for a scenario
    sop -scenario <directory>                 # Use demand.csv / devices.csv from a directory
    sop -demand <file> -devices <file>        # Use individual CSV files

OPTIONS:
    -product <line>     Product line: standard, performance, premium, industrial
    -month <YYYY-MM>    Planning month (default: config or current month)
    -view <mode>        Gap view: stacked (orders + backlog) or split (orders only)
    -scenario <dir>     Directory containing demand.csv and/or devices.csv
    -demand <file>      Path to demand CSV file
    -devices <file>     Path to devices CSV file
    -output <dir>       Output directory for results (optional)
    -format <fmt>       Output format: text, json, csv (default: text)
    -analyze            Request an AI capacity risk analysis (needs GEMINI_API_KEY)
    -config <file>      Config file (default: $SOP_CONFIG_FILE or config/config.yaml)
    -verbose            Enable verbose output
    -help               Show this help message

CSV FILE FORMATS:

demand.csv:
    month,value,back_order
    Jan N,45000,5000
    Feb N+1,47579,1000

devices.csv:
    month,id,name,shifts,maintenance_days,overtime_days,base_capacity
    Jan N,1,Stamping Press 01,3,0,2,280

EXAMPLES:
    # Standard series baseline for January 2024
    sop -product standard -month 2024-01

    # Orders-only gap with analysis
    sop -product premium -month 2024-09 -view split -analyze

    # Export CSV
    sop -scenario scenarios/peak_season -format csv -output results/
`)
}
