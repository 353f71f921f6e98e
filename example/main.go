package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/vsinha/sop/pkg/application/dto"
	"github.com/vsinha/sop/pkg/application/services"
	"github.com/vsinha/sop/pkg/domain/entities"
	"github.com/vsinha/sop/pkg/infrastructure/repositories/memory"
)

func main() {
	store := services.NewScenarioStore(memory.NewScenarioRepository())
	month := entities.PlanningMonth{Year: 2025, Month: time.November}

	// Narration is not needed for a what-if; a nil generator never calls out
	narrator := services.NewNarrationService(nil, zerolog.Nop())
	session, err := services.NewPlannerSession(store, narrator,
		services.WithDefaultContext(entities.Premium, month),
	)
	if err != nil {
		fmt.Printf("❌ Failed to open scenario: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("🏭 What-if for %s\n\n", entities.NewScenarioKey(entities.Premium, month))

	baseline, err := session.Plan()
	if err != nil {
		fmt.Printf("❌ Plan failed: %v\n", err)
		os.Exit(1)
	}
	printPlan("Baseline", baseline)

	// Push every device of the first month to the overtime ceiling
	devices, err := session.SimulationDevices()
	if err != nil {
		fmt.Printf("❌ Failed to read devices: %v\n", err)
		os.Exit(1)
	}
	for _, device := range devices {
		if _, err := session.UpdateDevice(device.ID, services.DeviceOvertimeDays, fmt.Sprint(entities.MaxOvertimeDays)); err != nil {
			fmt.Printf("❌ Update failed: %v\n", err)
			os.Exit(1)
		}
	}

	simulated, err := session.Plan()
	if err != nil {
		fmt.Printf("❌ Plan failed: %v\n", err)
		os.Exit(1)
	}
	printPlan(fmt.Sprintf("Max overtime in %s", simulated.Chart[0].Month), simulated)

	fmt.Printf("📈 First-month gap moved by %+d units\n",
		int64(simulated.MonthlyGaps[0]-baseline.MonthlyGaps[0]))
}

func printPlan(title string, plan dto.PlanResult) {
	fmt.Printf("📊 %s\n", title)
	for i, point := range plan.Chart {
		fmt.Printf("  %-8s capacity %8d  requirement %8d  gap %+8d\n",
			point.Month, int64(point.ActualCapacity), int64(point.TotalRequirement), int64(plan.MonthlyGaps[i]))
	}
	fmt.Printf("  %s: %+d  utilization %.1f%%\n\n", plan.GapLabel, int64(plan.KPI.CapacityGap), plan.KPI.UtilizationRate)
}
