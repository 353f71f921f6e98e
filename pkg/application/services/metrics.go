package services

// MetricsRecorder receives planner activity counters. Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	ScenarioSaved(kind string)
	NarrationCompleted(outcome string)
}

// Save kinds reported to MetricsRecorder.ScenarioSaved
const (
	SaveKindDemand  = "demand"
	SaveKindConfigs = "configs"
)

type noopMetrics struct{}

func (noopMetrics) ScenarioSaved(string)      {}
func (noopMetrics) NarrationCompleted(string) {}
