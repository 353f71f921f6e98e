package entities

import "testing"

func TestDeviceConfig_Clamp(t *testing.T) {
	testCases := []struct {
		name     string
		input    DeviceConfig
		expected DeviceConfig
	}{
		{
			"within range unchanged",
			DeviceConfig{ID: 1, Shifts: 2, MaintenanceDays: 1, OvertimeDays: 2, BaseCapacity: 250},
			DeviceConfig{ID: 1, Shifts: 2, MaintenanceDays: 1, OvertimeDays: 2, BaseCapacity: 250},
		},
		{
			"upper bounds",
			DeviceConfig{ID: 2, Shifts: 5, MaintenanceDays: 45, OvertimeDays: 12, BaseCapacity: 100},
			DeviceConfig{ID: 2, Shifts: 3, MaintenanceDays: 30, OvertimeDays: 8, BaseCapacity: 100},
		},
		{
			"negatives floor at zero",
			DeviceConfig{ID: 3, Shifts: -1, MaintenanceDays: -2, OvertimeDays: -3, BaseCapacity: -50},
			DeviceConfig{ID: 3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.input.Clamp(); got != tc.expected {
				t.Errorf("Expected %+v, got %+v", tc.expected, got)
			}
		})
	}
}

func TestDeviceConfigMap_CloneIsDeep(t *testing.T) {
	original := DeviceConfigMap{
		"Jan N": {{ID: 1, Name: "Press", Shifts: 2, BaseCapacity: 250}},
	}

	clone := original.Clone()
	clone["Jan N"][0].Shifts = 3
	clone["Feb N+1"] = nil

	if original["Jan N"][0].Shifts != 2 {
		t.Errorf("Expected original shifts to stay 2, got %d", original["Jan N"][0].Shifts)
	}
	if _, exists := original["Feb N+1"]; exists {
		t.Error("Expected original map to be unaffected by new keys on the clone")
	}
}

func TestDemandForecast_TotalRequirement(t *testing.T) {
	d := DemandForecast{Month: "Mar N", Value: 48614, BackOrder: 12000}
	if d.TotalRequirement() != 60614 {
		t.Errorf("Expected 60614, got %d", d.TotalRequirement())
	}
}

func TestParseViewMode(t *testing.T) {
	if mode, err := ParseViewMode("split"); err != nil || mode != Split {
		t.Errorf("Expected split, got %v (%v)", mode, err)
	}
	if _, err := ParseViewMode("grouped"); err == nil {
		t.Error("Expected error for unknown view mode")
	}
	if Split.GapLabel() != "Capacity Gap (Orders Only)" {
		t.Errorf("Unexpected split gap label %q", Split.GapLabel())
	}
	if Stacked.GapLabel() != "Capacity Gap (Total)" {
		t.Errorf("Unexpected stacked gap label %q", Stacked.GapLabel())
	}
}
