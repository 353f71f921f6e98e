package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vsinha/sop/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// Writer receives stdout output; nil means os.Stdout
	Writer io.Writer
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// Report is everything a planning run renders
type Report struct {
	Plan      dto.PlanResult       `json:"plan"`
	Narration *dto.NarrationResult `json:"narration,omitempty"`
}

// Generate creates output in the specified format
func Generate(report Report, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(report, config)
	case "json":
		return generateJSONOutput(report, config)
	case "csv":
		return generateCSVOutput(report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput prints the KPI cards and chart table, and saves a copy when an output directory is set
func generateTextOutput(report Report, config Config) error {
	text := RenderText(report)
	fmt.Fprint(config.writer(), text)

	if config.OutputDir != "" {
		if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		filename := filepath.Join(config.OutputDir, "sop_plan.txt")
		if err := os.WriteFile(filename, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write text file: %w", err)
		}
		if config.Verbose {
			fmt.Fprintf(config.writer(), "💾 Results saved to: %s\n", filename)
		}
	}

	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(report Report, config Config) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.writer(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "sop_plan.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 JSON results saved to: %s\n", filename)
	}

	return nil
}

// generateCSVOutput writes the chart series and KPIs as CSV files
func generateCSVOutput(report Report, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	chartFile := filepath.Join(config.OutputDir, "capacity_chart.csv")
	if err := writeChartCSV(report.Plan, chartFile); err != nil {
		return fmt.Errorf("failed to write chart CSV: %w", err)
	}

	kpiFile := filepath.Join(config.OutputDir, "kpi.csv")
	if err := writeKPICSV(report.Plan, kpiFile); err != nil {
		return fmt.Errorf("failed to write KPI CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 CSV results saved to:\n")
		fmt.Fprintf(config.writer(), "  Chart: %s\n", chartFile)
		fmt.Fprintf(config.writer(), "  KPIs: %s\n", kpiFile)
	}

	return nil
}

func writeCSV(filename string, records [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return file.Sync()
}

func writeChartCSV(plan dto.PlanResult, filename string) error {
	records := [][]string{{
		"month", "theoretical_max", "actual_capacity", "capacity_ot0", "capacity_ot2", "capacity_ot4",
		"demand", "backlog", "total_requirement", "unused_capacity", "gap",
	}}
	for i, p := range plan.Chart {
		var gap int64
		if i < len(plan.MonthlyGaps) {
			gap = int64(plan.MonthlyGaps[i])
		}
		records = append(records, []string{
			p.Month,
			itoa(int64(p.TheoreticalMax)),
			itoa(int64(p.ActualCapacity)),
			itoa(int64(p.CapacityOT0)),
			itoa(int64(p.CapacityOT2)),
			itoa(int64(p.CapacityOT4)),
			itoa(int64(p.Demand)),
			itoa(int64(p.Backlog)),
			itoa(int64(p.TotalRequirement)),
			itoa(int64(p.UnusedCapacity)),
			itoa(gap),
		})
	}
	return writeCSV(filename, records)
}

func writeKPICSV(plan dto.PlanResult, filename string) error {
	k := plan.KPI
	records := [][]string{
		{"scenario", "view_mode", "annual_target", "current_order_volume", "total_backlog", "capacity_gap", "utilization_rate"},
		{
			string(plan.Key),
			string(plan.ViewMode),
			itoa(int64(k.AnnualTarget)),
			itoa(int64(k.CurrentOrderVolume)),
			itoa(int64(k.TotalBacklog)),
			itoa(int64(k.CapacityGap)),
			strconv.FormatFloat(k.UtilizationRate, 'f', 2, 64),
		},
	}
	return writeCSV(filename, records)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
