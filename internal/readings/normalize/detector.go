package normalize

import (
	"fmt"
	"strings"

	readings "supermetrics-cloud/internal/readings/domain"
)

const (
	fieldBrand        = "brand"
	fieldManufacturer = "manufacturer"
)

// FamilyDetector resolves a device family from an untyped inbound payload.
// Detection is brand-keyed, not shape-keyed: two families with identical JSON
// but different brands resolve differently, and a payload without a brand or
// manufacturer field cannot be detected at all.
type FamilyDetector struct {
	brands map[string]readings.Family
}

// NewFamilyDetector constructs a detector with the fixed brand table.
func NewFamilyDetector() *FamilyDetector {
	return &FamilyDetector{
		brands: map[string]readings.Family{
			"APPLE":     readings.FamilyAppleHeart,
			"BMW":       readings.FamilyBMWFuel,
			"NEST":      readings.FamilyNestThermostat,
			"FORD":      readings.FamilyFordFuel,
			"FITBIT":    readings.FamilyFitbitHeart,
			"HONEYWELL": readings.FamilyHoneywellThermostat,
			"GARMIN":    readings.FamilyGarminOxygen,
		},
	}
}

// Detect resolves the family key from the payload's brand field, falling back
// to manufacturer. Matching is case-insensitive and exact; anything else is
// ErrUnknownDevice.
func (d *FamilyDetector) Detect(payload map[string]any) (readings.Family, error) {
	identifier := stringField(payload, fieldBrand)
	if identifier == "" {
		identifier = stringField(payload, fieldManufacturer)
	}
	if identifier == "" {
		return "", fmt.Errorf("%w: payload has no brand or manufacturer", readings.ErrUnknownDevice)
	}
	family, ok := d.brands[strings.ToUpper(identifier)]
	if !ok {
		return "", fmt.Errorf("%w: unrecognized brand %q", readings.ErrUnknownDevice, identifier)
	}
	return family, nil
}

func stringField(payload map[string]any, key string) string {
	value, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return s
}
