package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vsinha/sop/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		productLine   = flag.String("product", "", "Product line: standard, performance, premium, industrial")
		planningMonth = flag.String("month", "", "Planning month (YYYY-MM)")
		viewMode      = flag.String("view", "stacked", "Gap view: stacked or split")
		scenarioDir   = flag.String(
			"scenario",
			"",
			"Path to scenario directory containing demand.csv and devices.csv",
		)
		demandFile  = flag.String("demand", "", "Path to demand CSV file")
		devicesFile = flag.String("devices", "", "Path to devices CSV file")
		outputDir   = flag.String("output", "", "Output directory for results (optional)")
		format      = flag.String("format", "text", "Output format: text, json, csv")
		analyze     = flag.Bool("analyze", false, "Request an AI capacity risk analysis")
		configFile  = flag.String("config", "", "Path to YAML config file")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
		help        = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	// Create command configuration
	config := commands.Config{
		ProductLine:   *productLine,
		PlanningMonth: *planningMonth,
		ViewMode:      *viewMode,
		ScenarioDir:   *scenarioDir,
		DemandFile:    *demandFile,
		DevicesFile:   *devicesFile,
		OutputDir:     *outputDir,
		Format:        *format,
		ConfigFile:    *configFile,
		Analyze:       *analyze,
		Verbose:       *verbose,
		Help:          *help,
	}

	// Create and execute command
	cmd := commands.NewPlanCommand(config)
	ctx := context.Background()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
