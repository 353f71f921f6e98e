package entities

// Device parameter bounds
const (
	MaxShifts          = 3
	MaxMaintenanceDays = 30
	MaxOvertimeDays    = 8
)

// DeviceConfig is one production resource's operating plan for a single planning month
type DeviceConfig struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Shifts          int      `json:"shifts"`
	MaintenanceDays int      `json:"maintenanceDays"`
	OvertimeDays    int      `json:"overtimeDays"`
	BaseCapacity    Quantity `json:"baseCapacity"` // units per shift-day
}

// Clamp returns a copy with every numeric field limited to its valid range
func (d DeviceConfig) Clamp() DeviceConfig {
	d.Shifts = clampInt(d.Shifts, 0, MaxShifts)
	d.MaintenanceDays = clampInt(d.MaintenanceDays, 0, MaxMaintenanceDays)
	d.OvertimeDays = clampInt(d.OvertimeDays, 0, MaxOvertimeDays)
	if d.BaseCapacity < 0 {
		d.BaseCapacity = 0
	}
	return d
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CloneDevices returns an independent copy of a device list
func CloneDevices(devices []DeviceConfig) []DeviceConfig {
	if devices == nil {
		return nil
	}
	out := make([]DeviceConfig, len(devices))
	copy(out, devices)
	return out
}

// DeviceConfigMap maps a forecast month label to the devices planned for it
type DeviceConfigMap map[string][]DeviceConfig

// Clone returns a deep copy of the map
func (m DeviceConfigMap) Clone() DeviceConfigMap {
	if m == nil {
		return nil
	}
	out := make(DeviceConfigMap, len(m))
	for month, devices := range m {
		out[month] = CloneDevices(devices)
	}
	return out
}
