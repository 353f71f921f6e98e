package services

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/vsinha/sop/pkg/domain/entities"
)

// ForecastField names an editable column of the demand editor
type ForecastField string

const (
	ForecastValue     ForecastField = "value"
	ForecastBackOrder ForecastField = "backOrder"
)

// ParseForecastField validates a demand editor column name
func ParseForecastField(s string) (ForecastField, error) {
	switch ForecastField(s) {
	case ForecastValue, ForecastBackOrder:
		return ForecastField(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
}

// DeviceField names an editable parameter of a device row
type DeviceField string

const (
	DeviceShifts          DeviceField = "shifts"
	DeviceMaintenanceDays DeviceField = "maintenanceDays"
	DeviceOvertimeDays    DeviceField = "overtimeDays"
	DeviceBaseCapacity    DeviceField = "baseCapacity"
)

// ParseDeviceField validates a device parameter name
func ParseDeviceField(s string) (DeviceField, error) {
	switch DeviceField(s) {
	case DeviceShifts, DeviceMaintenanceDays, DeviceOvertimeDays, DeviceBaseCapacity:
		return DeviceField(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
}

// leadingInteger parses the optional sign and decimal digits at the start
// of s, ignoring anything after them ("12abc" is 12, "3.9" is 3).
func leadingInteger(raw string) (int64, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseForecastValue parses a demand cell. Input without a leading integer
// is rejected so the edit can be dropped; negatives clamp to 0.
func ParseForecastValue(raw string) (entities.Quantity, bool) {
	v, ok := leadingInteger(raw)
	if !ok {
		return 0, false
	}
	if v < 0 {
		v = 0
	}
	return entities.Quantity(v), true
}

// ParseDeviceValue parses a device parameter. Unparsable input is 0;
// range limits are applied later by DeviceConfig.Clamp.
func ParseDeviceValue(raw string) int {
	v, ok := leadingInteger(raw)
	if !ok {
		return 0
	}
	return int(v)
}

// applyDeviceField sets one parameter of a device and clamps the result
func applyDeviceField(device entities.DeviceConfig, field DeviceField, value int) entities.DeviceConfig {
	switch field {
	case DeviceShifts:
		device.Shifts = value
	case DeviceMaintenanceDays:
		device.MaintenanceDays = value
	case DeviceOvertimeDays:
		device.OvertimeDays = value
	case DeviceBaseCapacity:
		device.BaseCapacity = entities.Quantity(value)
	}
	return device.Clamp()
}
