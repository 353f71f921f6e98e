package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vsinha/sop/pkg/domain/entities"
)

// ForecastWindowMonths is the length of the rolling planning window
const ForecastWindowMonths = 4

const (
	peakSeasonFactor    = 1.25
	offSeasonFactor     = 0.95
	noiseAmplitude      = 0.1
	noiseFrequency      = 132.1
	openingBacklogRatio = 0.1
)

type masterDemand struct {
	value     entities.Quantity
	backOrder entities.Quantity
}

// standardMasterData is the hand-authored Standard line history, by calendar month
var standardMasterData = map[time.Month]masterDemand{
	time.January:   {45000, 5000},
	time.February:  {47579, 1000},
	time.March:     {48614, 12000},
	time.April:     {39684, 4000},
	time.May:       {42500, 2000},
	time.June:      {46100, 1500},
	time.July:      {44000, 3000},
	time.August:    {41500, 2500},
	time.September: {49000, 5000},
	time.October:   {51200, 1200},
	time.November:  {45800, 3200},
	time.December:  {39000, 4500},
}

type deviceTemplate struct {
	id              int
	name            string
	shifts          int
	maintenanceDays int
	overtimeDays    int
	baseCapacity    float64
}

var defaultDeviceTemplates = []deviceTemplate{
	{1, "Stamping Press 01", 2, 1, 0, 250},
	{2, "Heat Treatment Unit", 3, 0, 0, 280},
	{3, "Assembly Line 01", 2, 1, 2, 220},
}

// standardConfigOverrides are the Standard line's planned operating
// strategies for the first four calendar months.
var standardConfigOverrides = map[time.Month][]entities.DeviceConfig{
	// high utilization
	time.January: {
		{ID: 1, Name: "Stamping Press 01", Shifts: 3, MaintenanceDays: 0, OvertimeDays: 2, BaseCapacity: 280},
		{ID: 2, Name: "Heat Treatment Unit", Shifts: 3, MaintenanceDays: 0, OvertimeDays: 2, BaseCapacity: 250},
		{ID: 3, Name: "Assembly Line 01", Shifts: 3, MaintenanceDays: 0, OvertimeDays: 2, BaseCapacity: 250},
	},
	// maintenance heavy
	time.February: {
		{ID: 1, Name: "Stamping Press 01", Shifts: 3, MaintenanceDays: 2, OvertimeDays: 0, BaseCapacity: 250},
		{ID: 2, Name: "Heat Treatment Unit", Shifts: 3, MaintenanceDays: 2, OvertimeDays: 0, BaseCapacity: 280},
		{ID: 3, Name: "Assembly Line 01", Shifts: 3, MaintenanceDays: 2, OvertimeDays: 0, BaseCapacity: 220},
	},
	// peak push
	time.March: {
		{ID: 1, Name: "Stamping Press 01", Shifts: 3, MaintenanceDays: 1, OvertimeDays: 2, BaseCapacity: 300},
		{ID: 2, Name: "Heat Treatment Unit", Shifts: 3, MaintenanceDays: 1, OvertimeDays: 2, BaseCapacity: 300},
		{ID: 3, Name: "Assembly Line 01", Shifts: 3, MaintenanceDays: 1, OvertimeDays: 2, BaseCapacity: 250},
	},
	// scale down
	time.April: {
		{ID: 1, Name: "Stamping Press 01", Shifts: 2, MaintenanceDays: 1, OvertimeDays: 0, BaseCapacity: 250},
		{ID: 2, Name: "Heat Treatment Unit", Shifts: 3, MaintenanceDays: 0, OvertimeDays: 0, BaseCapacity: 280},
		{ID: 3, Name: "Assembly Line 01", Shifts: 2, MaintenanceDays: 1, OvertimeDays: 2, BaseCapacity: 220},
	},
}

// MonthLabel formats the label of the month at offset within the window: "Jan N", "Feb N+1", ...
func MonthLabel(month time.Month, offset int) string {
	abbrev := month.String()[:3]
	if offset == 0 {
		return abbrev + " N"
	}
	return fmt.Sprintf("%s N+%d", abbrev, offset)
}

// CalendarMonthOf recovers the calendar month from a forecast label
func CalendarMonthOf(label string) (time.Month, bool) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(fields[0], m.String()[:3]) {
			return m, true
		}
	}
	return 0, false
}

// WindowMonth returns the calendar month offset months after start, wrapping at December
func WindowMonth(start time.Month, offset int) time.Month {
	return time.Month((int(start)-1+offset)%12 + 1)
}

// SeasonalNoise is the deterministic pseudo-noise factor for a 0-based calendar month index
func SeasonalNoise(monthIndex int) float64 {
	return 1 + math.Sin(float64(monthIndex)*noiseFrequency)*noiseAmplitude
}

func seasonalFactor(month time.Month) float64 {
	switch month {
	case time.September, time.October, time.November:
		return peakSeasonFactor
	default:
		return offSeasonFactor
	}
}

// GenerateDemand produces the baseline 4-month demand series starting at startMonth
func GenerateDemand(line entities.ProductLine, startMonth time.Month) []entities.DemandForecast {
	profile := line.Profile()
	series := make([]entities.DemandForecast, 0, ForecastWindowMonths)

	for i := 0; i < ForecastWindowMonths; i++ {
		month := WindowMonth(startMonth, i)
		forecast := entities.DemandForecast{Month: MonthLabel(month, i)}

		if profile.HasMasterData {
			master := standardMasterData[month]
			forecast.Value = master.value
			forecast.BackOrder = master.backOrder
		} else {
			monthIndex := int(month) - 1
			load := float64(profile.BaseLoad) * seasonalFactor(month) * SeasonalNoise(monthIndex)
			forecast.Value = entities.Quantity(math.Floor(load))
			if i == 0 {
				forecast.BackOrder = entities.Quantity(math.Floor(float64(profile.BaseLoad) * openingBacklogRatio))
			}
		}

		series = append(series, forecast)
	}

	return series
}

// DefaultDevices returns the synthesized 3-device plan for a product line,
// with base capacity scaled by the line's difficulty factor
func DefaultDevices(line entities.ProductLine) []entities.DeviceConfig {
	factor := line.Profile().DifficultyFactor
	devices := make([]entities.DeviceConfig, 0, len(defaultDeviceTemplates))
	for _, tpl := range defaultDeviceTemplates {
		devices = append(devices, entities.DeviceConfig{
			ID:              tpl.id,
			Name:            tpl.name,
			Shifts:          tpl.shifts,
			MaintenanceDays: tpl.maintenanceDays,
			OvertimeDays:    tpl.overtimeDays,
			BaseCapacity:    entities.Quantity(math.Floor(tpl.baseCapacity * factor)),
		})
	}
	return devices
}

// DevicesForMonth returns the baseline plan of one forecast month
func DevicesForMonth(line entities.ProductLine, label string) []entities.DeviceConfig {
	if line.Profile().HasMasterData {
		if month, ok := CalendarMonthOf(label); ok {
			if override, exists := standardConfigOverrides[month]; exists {
				return entities.CloneDevices(override)
			}
		}
	}
	return DefaultDevices(line)
}

// GenerateDeviceConfigs builds the baseline configuration map for every month of a series
func GenerateDeviceConfigs(line entities.ProductLine, series []entities.DemandForecast) entities.DeviceConfigMap {
	configs := make(entities.DeviceConfigMap, len(series))
	for _, forecast := range series {
		configs[forecast.Month] = DevicesForMonth(line, forecast.Month)
	}
	return configs
}
