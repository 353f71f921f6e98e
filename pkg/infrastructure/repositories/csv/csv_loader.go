package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vsinha/sop/pkg/domain/entities"
)

var (
	demandHeader = []string{"month", "value", "back_order"}
	deviceHeader = []string{"month", "id", "name", "shifts", "maintenance_days", "overtime_days", "base_capacity"}
)

// Loader handles loading planning scenarios from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDemand loads a demand series from a CSV file. Row order is the series order.
func (l *Loader) LoadDemand(filename string) ([]entities.DemandForecast, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open demand file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadDemand(file)
}

// ReadDemand parses a demand series from r
func (l *Loader) ReadDemand(r io.Reader) ([]entities.DemandForecast, error) {
	records, err := readRecords(r, "demand", demandHeader)
	if err != nil {
		return nil, err
	}

	series := make([]entities.DemandForecast, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, record := range records {
		forecast, err := parseDemand(record)
		if err != nil {
			return nil, fmt.Errorf("demand CSV row %d: %w", i+2, err)
		}
		if seen[forecast.Month] {
			return nil, fmt.Errorf("demand CSV row %d: duplicate month %q", i+2, forecast.Month)
		}
		seen[forecast.Month] = true
		series = append(series, forecast)
	}

	return series, nil
}

// LoadDeviceConfigs loads per-month device plans from a CSV file. Values
// outside the device limits are clamped.
func (l *Loader) LoadDeviceConfigs(filename string) (entities.DeviceConfigMap, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open devices file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadDeviceConfigs(file)
}

// ReadDeviceConfigs parses per-month device plans from r
func (l *Loader) ReadDeviceConfigs(r io.Reader) (entities.DeviceConfigMap, error) {
	records, err := readRecords(r, "devices", deviceHeader)
	if err != nil {
		return nil, err
	}

	configs := make(entities.DeviceConfigMap)
	for i, record := range records {
		month, device, err := parseDevice(record)
		if err != nil {
			return nil, fmt.Errorf("devices CSV row %d: %w", i+2, err)
		}
		for _, existing := range configs[month] {
			if existing.ID == device.ID {
				return nil, fmt.Errorf("devices CSV row %d: duplicate device %d in %q", i+2, device.ID, month)
			}
		}
		configs[month] = append(configs[month], device.Clamp())
	}

	return configs, nil
}

func readRecords(r io.Reader, kind string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseDemand(record []string) (entities.DemandForecast, error) {
	month := strings.TrimSpace(record[0])
	if month == "" {
		return entities.DemandForecast{}, fmt.Errorf("month is required")
	}

	value, err := parseQuantity(record[1], "value")
	if err != nil {
		return entities.DemandForecast{}, err
	}

	backOrder, err := parseQuantity(record[2], "back_order")
	if err != nil {
		return entities.DemandForecast{}, err
	}

	return entities.DemandForecast{
		Month:     month,
		Value:     value,
		BackOrder: backOrder,
	}, nil
}

func parseDevice(record []string) (string, entities.DeviceConfig, error) {
	month := strings.TrimSpace(record[0])
	if month == "" {
		return "", entities.DeviceConfig{}, fmt.Errorf("month is required")
	}

	id, err := strconv.Atoi(strings.TrimSpace(record[1]))
	if err != nil {
		return "", entities.DeviceConfig{}, fmt.Errorf("invalid id: %s", record[1])
	}

	ints := make([]int, 3)
	for i, col := range []string{"shifts", "maintenance_days", "overtime_days"} {
		v, err := strconv.Atoi(strings.TrimSpace(record[3+i]))
		if err != nil {
			return "", entities.DeviceConfig{}, fmt.Errorf("invalid %s: %s", col, record[3+i])
		}
		ints[i] = v
	}

	baseCapacity, err := parseQuantity(record[6], "base_capacity")
	if err != nil {
		return "", entities.DeviceConfig{}, err
	}

	return month, entities.DeviceConfig{
		ID:              id,
		Name:            strings.TrimSpace(record[2]),
		Shifts:          ints[0],
		MaintenanceDays: ints[1],
		OvertimeDays:    ints[2],
		BaseCapacity:    baseCapacity,
	}, nil
}

func parseQuantity(s, column string) (entities.Quantity, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", column, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must be non-negative: %d", column, v)
	}
	return entities.Quantity(v), nil
}
