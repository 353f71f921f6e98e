package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProductLine is returned when user input names no known product line
var ErrUnknownProductLine = errors.New("unknown product line")

// ProductLine identifies one of the plant's product families.
// The set is closed: values outside the declared constants are a programming error.
type ProductLine int

const (
	Standard ProductLine = iota
	Performance
	Premium
	Industrial
)

// ProductLineProfile holds the per-line parameters consulted by baseline generation
type ProductLineProfile struct {
	Label            string
	ShortName        string
	BaseLoad         Quantity
	DifficultyFactor float64
	// HasMasterData marks lines whose baseline comes from hand-authored
	// history instead of the seasonal model.
	HasMasterData bool
}

var productLineProfiles = [...]ProductLineProfile{
	Standard: {
		Label:            "Standard Series",
		ShortName:        "standard",
		BaseLoad:         40000,
		DifficultyFactor: 1.0,
		HasMasterData:    true,
	},
	Performance: {
		Label:            "Performance Series",
		ShortName:        "performance",
		BaseLoad:         32000,
		DifficultyFactor: 0.7,
	},
	Premium: {
		Label:            "Premium Series",
		ShortName:        "premium",
		BaseLoad:         40000,
		DifficultyFactor: 1.0,
	},
	Industrial: {
		Label:            "Industrial Heavy-Duty",
		ShortName:        "industrial",
		BaseLoad:         25000,
		DifficultyFactor: 0.5,
	},
}

// ProductLines returns every product line in display order
func ProductLines() []ProductLine {
	return []ProductLine{Standard, Performance, Premium, Industrial}
}

// Profile returns the generation parameters for the line. It panics for
// values outside the enumeration.
func (p ProductLine) Profile() ProductLineProfile {
	if p < Standard || p > Industrial {
		panic(fmt.Sprintf("entities: invalid product line %d", int(p)))
	}
	return productLineProfiles[p]
}

// String returns the display label of the product line
func (p ProductLine) String() string {
	return p.Profile().Label
}

// MarshalText encodes the product line as its display label
func (p ProductLine) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a display label or short name
func (p *ProductLine) UnmarshalText(text []byte) error {
	parsed, err := ParseProductLine(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseProductLine accepts either the display label or the short name, case-insensitively
func ParseProductLine(s string) (ProductLine, error) {
	needle := strings.TrimSpace(s)
	for _, line := range ProductLines() {
		profile := line.Profile()
		if strings.EqualFold(needle, profile.Label) || strings.EqualFold(needle, profile.ShortName) {
			return line, nil
		}
	}
	return Standard, fmt.Errorf("%w: %q", ErrUnknownProductLine, s)
}
