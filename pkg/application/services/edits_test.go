package services

import (
	"errors"
	"testing"

	"github.com/vsinha/sop/pkg/domain/entities"
)

func TestParseForecastValue(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    entities.Quantity
		applied bool
	}{
		{"plain", "45000", 45000, true},
		{"leading whitespace", "  120", 120, true},
		{"trailing garbage", "12abc", 12, true},
		{"decimal truncates", "3.9", 3, true},
		{"negative clamps", "-50", 0, true},
		{"explicit plus", "+7", 7, true},
		{"empty", "", 0, false},
		{"letters", "abc", 0, false},
		{"sign only", "-", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseForecastValue(tt.raw)
			if ok != tt.applied {
				t.Errorf("Expected applied=%v, got %v", tt.applied, ok)
			}
			if got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestParseDeviceValue(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"2", 2},
		{"", 0},
		{"abc", 0},
		{"8x", 8},
		{"-4", -4},
	}

	for _, tt := range tests {
		if got := ParseDeviceValue(tt.raw); got != tt.want {
			t.Errorf("ParseDeviceValue(%q): expected %d, got %d", tt.raw, tt.want, got)
		}
	}
}

func TestParseFields(t *testing.T) {
	if f, err := ParseDeviceField("overtimeDays"); err != nil || f != DeviceOvertimeDays {
		t.Errorf("Expected overtimeDays, got %q (%v)", f, err)
	}
	if _, err := ParseDeviceField("name"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got %v", err)
	}
	if f, err := ParseForecastField("backOrder"); err != nil || f != ForecastBackOrder {
		t.Errorf("Expected backOrder, got %q (%v)", f, err)
	}
	if _, err := ParseForecastField("month"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got %v", err)
	}
}

func TestApplyDeviceField_Clamps(t *testing.T) {
	base := entities.DeviceConfig{ID: 1, Shifts: 2, MaintenanceDays: 1, OvertimeDays: 0, BaseCapacity: 250}

	tests := []struct {
		field DeviceField
		value int
		check func(entities.DeviceConfig) bool
	}{
		{DeviceShifts, 5, func(d entities.DeviceConfig) bool { return d.Shifts == entities.MaxShifts }},
		{DeviceMaintenanceDays, 45, func(d entities.DeviceConfig) bool { return d.MaintenanceDays == entities.MaxMaintenanceDays }},
		{DeviceOvertimeDays, 12, func(d entities.DeviceConfig) bool { return d.OvertimeDays == entities.MaxOvertimeDays }},
		{DeviceBaseCapacity, -10, func(d entities.DeviceConfig) bool { return d.BaseCapacity == 0 }},
		{DeviceShifts, -1, func(d entities.DeviceConfig) bool { return d.Shifts == 0 }},
	}

	for _, tt := range tests {
		got := applyDeviceField(base, tt.field, tt.value)
		if !tt.check(got) {
			t.Errorf("%s=%d: unexpected clamped device %+v", tt.field, tt.value, got)
		}
	}
}
