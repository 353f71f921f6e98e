package services

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/sop/pkg/domain/entities"
)

const (
	// StandardWorkingDays is the scheduled working days per month before overtime and maintenance
	StandardWorkingDays = 22
	// MaxTheoreticalDays is the calendar ceiling used for theoretical capacity
	MaxTheoreticalDays = 30
	// TheoreticalShifts is the shift count assumed by theoretical capacity
	TheoreticalShifts = 3
)

// BenchmarkOvertimeDays are the fixed overtime scenarios reported alongside the simulation
var BenchmarkOvertimeDays = [3]int{0, 2, 4}

var (
	plannedUtilization = decimal.RequireFromString("0.75")
	annualizationRatio = decimal.NewFromInt(3)
)

// EffectiveDays returns the working days of a device for the given overtime,
// floored at zero when maintenance exceeds the available days
func EffectiveDays(device entities.DeviceConfig, overtimeDays int) int {
	days := StandardWorkingDays + overtimeDays - device.MaintenanceDays
	if days < 0 {
		return 0
	}
	return days
}

func scheduledCapacity(device entities.DeviceConfig, overtimeDays int) entities.Quantity {
	days := EffectiveDays(device, overtimeDays)
	return entities.Quantity(days*device.Shifts) * device.BaseCapacity
}

// DeriveChartPoint computes one month's capacities and requirement from its
// forecast and the devices planned for that month. An empty device list
// yields zero capacity.
func DeriveChartPoint(forecast entities.DemandForecast, devices []entities.DeviceConfig) entities.ChartDataPoint {
	point := entities.ChartDataPoint{
		Month:            forecast.Month,
		Demand:           forecast.Value,
		Backlog:          forecast.BackOrder,
		TotalRequirement: forecast.TotalRequirement(),
	}

	for _, device := range devices {
		point.TheoreticalMax += entities.Quantity(TheoreticalShifts*MaxTheoreticalDays) * device.BaseCapacity
		point.ActualCapacity += scheduledCapacity(device, device.OvertimeDays)
		point.CapacityOT0 += scheduledCapacity(device, BenchmarkOvertimeDays[0])
		point.CapacityOT2 += scheduledCapacity(device, BenchmarkOvertimeDays[1])
		point.CapacityOT4 += scheduledCapacity(device, BenchmarkOvertimeDays[2])
	}

	point.UnusedCapacity = entities.MaxQuantity(0, point.TheoreticalMax-point.ActualCapacity)
	return point
}

// MonthlyGap is the capacity surplus (positive) or shortage (negative) of a
// single month. Stacked mode counts backlog as demand; split mode ignores it.
func MonthlyGap(point entities.ChartDataPoint, mode entities.ViewMode) entities.Quantity {
	if mode == entities.Split {
		return point.ActualCapacity - point.Demand
	}
	return point.ActualCapacity - point.TotalRequirement
}

// DeriveKPIs aggregates a derived series. An empty series yields the zero KPI.
func DeriveKPIs(series []entities.ChartDataPoint, mode entities.ViewMode) entities.KPI {
	var kpi entities.KPI
	if len(series) == 0 {
		return kpi
	}

	var theoreticalTotal entities.Quantity
	var utilization float64
	for _, point := range series {
		theoreticalTotal += point.TheoreticalMax
		kpi.CurrentOrderVolume += point.Demand
		kpi.TotalBacklog += point.Backlog
		kpi.CapacityGap += MonthlyGap(point, mode)

		denominator := point.TheoreticalMax
		if denominator == 0 {
			denominator = 1
		}
		utilization += float64(point.ActualCapacity) / float64(denominator)
	}

	// Projects the window's ceiling at 75% planned utilization, then x3 to annualize
	// a 4-month window. Heuristic kept for compatibility with existing reports.
	target := decimal.NewFromInt(int64(theoreticalTotal)).Mul(plannedUtilization).Floor().Mul(annualizationRatio)
	kpi.AnnualTarget = entities.Quantity(target.IntPart())
	kpi.UtilizationRate = utilization / float64(len(series)) * 100

	return kpi
}

// Derive computes the chart series and KPIs for a demand series and its
// per-month device configurations. Months absent from configs derive with no
// devices; use DeriveFor to fall back to a product line's defaults instead.
func Derive(series []entities.DemandForecast, configs entities.DeviceConfigMap, mode entities.ViewMode) ([]entities.ChartDataPoint, entities.KPI) {
	chart := make([]entities.ChartDataPoint, 0, len(series))
	for _, forecast := range series {
		chart = append(chart, DeriveChartPoint(forecast, configs[forecast.Month]))
	}
	return chart, DeriveKPIs(chart, mode)
}

// DeriveFor is Derive with missing months filled from the line's default devices
func DeriveFor(line entities.ProductLine, series []entities.DemandForecast, configs entities.DeviceConfigMap, mode entities.ViewMode) ([]entities.ChartDataPoint, entities.KPI) {
	filled := make(entities.DeviceConfigMap, len(series))
	for _, forecast := range series {
		if devices, ok := configs[forecast.Month]; ok {
			filled[forecast.Month] = devices
			continue
		}
		filled[forecast.Month] = DefaultDevices(line)
	}
	return Derive(series, filled, mode)
}
