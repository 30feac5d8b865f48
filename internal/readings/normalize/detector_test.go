package normalize

import (
	"errors"
	"testing"

	readings "supermetrics-cloud/internal/readings/domain"
)

func TestDetectByBrand(t *testing.T) {
	detector := NewFamilyDetector()
	cases := []struct {
		brand  string
		family readings.Family
	}{
		{"Apple", readings.FamilyAppleHeart},
		{"BMW", readings.FamilyBMWFuel},
		{"nest", readings.FamilyNestThermostat},
		{"FITBIT", readings.FamilyFitbitHeart},
		{"Garmin", readings.FamilyGarminOxygen},
	}
	for _, tc := range cases {
		family, err := detector.Detect(map[string]any{"brand": tc.brand})
		if err != nil {
			t.Fatalf("detect %q: %v", tc.brand, err)
		}
		if family != tc.family {
			t.Fatalf("expected %s for %q, got %s", tc.family, tc.brand, family)
		}
	}
}

func TestDetectFallsBackToManufacturer(t *testing.T) {
	detector := NewFamilyDetector()
	family, err := detector.Detect(map[string]any{"manufacturer": "Honeywell"})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if family != readings.FamilyHoneywellThermostat {
		t.Fatalf("expected %s, got %s", readings.FamilyHoneywellThermostat, family)
	}
}

func TestDetectBrandTakesPrecedence(t *testing.T) {
	detector := NewFamilyDetector()
	family, err := detector.Detect(map[string]any{"brand": "Ford", "manufacturer": "BMW"})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if family != readings.FamilyFordFuel {
		t.Fatalf("expected %s, got %s", readings.FamilyFordFuel, family)
	}
}

func TestDetectMissingIdentifier(t *testing.T) {
	detector := NewFamilyDetector()
	for _, payload := range []map[string]any{
		{},
		{"brand": ""},
		{"manufacturer": ""},
		{"brand": 42},
		{"device_id": "x-1"},
	} {
		if _, err := detector.Detect(payload); !errors.Is(err, readings.ErrUnknownDevice) {
			t.Fatalf("expected ErrUnknownDevice for %v, got %v", payload, err)
		}
	}
}

func TestDetectUnrecognizedBrand(t *testing.T) {
	detector := NewFamilyDetector()
	if _, err := detector.Detect(map[string]any{"brand": "Tesla"}); !errors.Is(err, readings.ErrUnknownDevice) {
		t.Fatalf("expected ErrUnknownDevice, got %v", err)
	}
	// exact equality only, no partial matching
	if _, err := detector.Detect(map[string]any{"brand": "BMW Group"}); !errors.Is(err, readings.ErrUnknownDevice) {
		t.Fatalf("expected ErrUnknownDevice for partial match, got %v", err)
	}
}
