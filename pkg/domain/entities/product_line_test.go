package entities

import (
	"errors"
	"testing"
)

func TestParseProductLine(t *testing.T) {
	testCases := []struct {
		input    string
		expected ProductLine
	}{
		{"Standard Series", Standard},
		{"standard", Standard},
		{"PERFORMANCE", Performance},
		{"Premium Series", Premium},
		{" Industrial Heavy-Duty ", Industrial},
		{"industrial", Industrial},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			line, err := ParseProductLine(tc.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if line != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, line)
			}
		})
	}
}

func TestParseProductLine_Unknown(t *testing.T) {
	_, err := ParseProductLine("Titanium Series")
	if !errors.Is(err, ErrUnknownProductLine) {
		t.Errorf("Expected ErrUnknownProductLine, got %v", err)
	}
}

func TestProductLineProfiles(t *testing.T) {
	if Performance.Profile().DifficultyFactor != 0.7 {
		t.Errorf("Expected Performance difficulty 0.7, got %v", Performance.Profile().DifficultyFactor)
	}
	if Industrial.Profile().DifficultyFactor != 0.5 {
		t.Errorf("Expected Industrial difficulty 0.5, got %v", Industrial.Profile().DifficultyFactor)
	}
	if Premium.Profile().DifficultyFactor != 1.0 {
		t.Errorf("Expected Premium difficulty 1.0, got %v", Premium.Profile().DifficultyFactor)
	}
	if !Standard.Profile().HasMasterData {
		t.Error("Expected Standard to carry master data")
	}
	if Industrial.Profile().BaseLoad != 25000 {
		t.Errorf("Expected Industrial base load 25000, got %d", Industrial.Profile().BaseLoad)
	}
}

func TestProductLine_InvalidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for out-of-range product line")
		}
	}()
	_ = ProductLine(42).String()
}

func TestProductLine_TextRoundTrip(t *testing.T) {
	text, err := Industrial.MarshalText()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(text) != "Industrial Heavy-Duty" {
		t.Errorf("Expected label 'Industrial Heavy-Duty', got %s", text)
	}

	var line ProductLine
	if err := line.UnmarshalText(text); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if line != Industrial {
		t.Errorf("Expected Industrial, got %v", line)
	}
}
