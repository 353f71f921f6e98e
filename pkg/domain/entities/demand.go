package entities

// DemandForecast is one planning month of a demand series
type DemandForecast struct {
	// Month is both the display label and the lookup key into the
	// device configuration map; it is unique within a series.
	Month     string   `json:"month"`
	Value     Quantity `json:"value"`
	BackOrder Quantity `json:"backOrder"`
}

// TotalRequirement is new orders plus carried-over backlog
func (d DemandForecast) TotalRequirement() Quantity {
	return d.Value + d.BackOrder
}

// CloneDemand returns an independent copy of a demand series
func CloneDemand(series []DemandForecast) []DemandForecast {
	if series == nil {
		return nil
	}
	out := make([]DemandForecast, len(series))
	copy(out, series)
	return out
}
