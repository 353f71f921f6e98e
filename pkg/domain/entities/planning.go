package entities

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPlanningMonth is returned for planning months not in YYYY-MM form
var ErrInvalidPlanningMonth = errors.New("invalid planning month")

const planningMonthLayout = "2006-01"

// PlanningMonth is the calendar month a rolling forecast window starts at
type PlanningMonth struct {
	Year  int
	Month time.Month
}

// NewPlanningMonth returns the planning month containing t
func NewPlanningMonth(t time.Time) PlanningMonth {
	return PlanningMonth{Year: t.Year(), Month: t.Month()}
}

// ParsePlanningMonth parses a YYYY-MM string
func ParsePlanningMonth(s string) (PlanningMonth, error) {
	t, err := time.Parse(planningMonthLayout, s)
	if err != nil {
		return PlanningMonth{}, fmt.Errorf("%w: %q (expected YYYY-MM)", ErrInvalidPlanningMonth, s)
	}
	return NewPlanningMonth(t), nil
}

// String formats the month as YYYY-MM
func (m PlanningMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalText encodes the month as YYYY-MM
func (m PlanningMonth) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a YYYY-MM month
func (m *PlanningMonth) UnmarshalText(text []byte) error {
	parsed, err := ParsePlanningMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ScenarioKey identifies one independently cached demand series and device configuration map
type ScenarioKey string

// NewScenarioKey formats the (product line, planning month) pair
func NewScenarioKey(line ProductLine, month PlanningMonth) ScenarioKey {
	return ScenarioKey(line.String() + "-" + month.String())
}

// Parse splits the key back into its product line and planning month
func (k ScenarioKey) Parse() (ProductLine, PlanningMonth, error) {
	s := string(k)
	if len(s) < len(planningMonthLayout)+2 || s[len(s)-len(planningMonthLayout)-1] != '-' {
		return 0, PlanningMonth{}, fmt.Errorf("malformed scenario key %q", s)
	}
	split := len(s) - len(planningMonthLayout)
	line, err := ParseProductLine(s[:split-1])
	if err != nil {
		return 0, PlanningMonth{}, err
	}
	month, err := ParsePlanningMonth(s[split:])
	if err != nil {
		return 0, PlanningMonth{}, err
	}
	return line, month, nil
}
