package entities

import "fmt"

// ChartDataPoint is the derived capacity and demand picture of one month.
// It is never edited directly; it is recomputed whenever its inputs change.
type ChartDataPoint struct {
	Month            string   `json:"month"`
	TheoreticalMax   Quantity `json:"theoreticalMax"`
	ActualCapacity   Quantity `json:"actualCapacity"`
	CapacityOT0      Quantity `json:"capacityOT0"`
	CapacityOT2      Quantity `json:"capacityOT2"`
	CapacityOT4      Quantity `json:"capacityOT4"`
	Demand           Quantity `json:"demand"`
	Backlog          Quantity `json:"backlog"`
	TotalRequirement Quantity `json:"totalRequirement"`
	UnusedCapacity   Quantity `json:"unusedCapacity"`
}

// KPI aggregates a full derived series
type KPI struct {
	AnnualTarget       Quantity `json:"annualTarget"`
	CurrentOrderVolume Quantity `json:"currentOrderVolume"`
	TotalBacklog       Quantity `json:"totalBacklog"`
	CapacityGap        Quantity `json:"capacityGap"`
	UtilizationRate    float64  `json:"utilizationRate"`
}

// ViewMode selects how backlog participates in the capacity gap
type ViewMode string

const (
	// Stacked counts backlog as demand pressure
	Stacked ViewMode = "stacked"
	// Split ignores backlog in the gap
	Split ViewMode = "split"
)

// ParseViewMode validates a view mode string
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case Stacked, Split:
		return ViewMode(s), nil
	default:
		return Stacked, fmt.Errorf("invalid view mode %q (expected stacked or split)", s)
	}
}

// GapLabel returns the display title of the capacity gap KPI
func (v ViewMode) GapLabel() string {
	if v == Split {
		return "Capacity Gap (Orders Only)"
	}
	return "Capacity Gap (Total)"
}
