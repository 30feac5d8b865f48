package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	readings "supermetrics-cloud/internal/readings/domain"
)

// Normalizer turns a raw brand-specific payload into a canonical Reading.
// Timestamps are converted from the source instant to calendar time in the
// configured location.
type Normalizer struct {
	detector *FamilyDetector
	registry *SchemaRegistry
	loc      *time.Location
}

// NewNormalizer constructs a Normalizer. A nil location defaults to the
// process's local time zone.
func NewNormalizer(detector *FamilyDetector, registry *SchemaRegistry, loc *time.Location) (*Normalizer, error) {
	if detector == nil {
		return nil, errors.New("normalizer: nil detector")
	}
	if registry == nil {
		return nil, errors.New("normalizer: nil registry")
	}
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{detector: detector, registry: registry, loc: loc}, nil
}

// Normalize detects the payload's family, decodes it strictly into the
// family's typed request and maps that into a canonical Reading. Decode
// failures of a detected family are caller errors (ErrMalformedPayload),
// never technical ones.
func (n *Normalizer) Normalize(raw []byte) (*readings.Reading, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", readings.ErrMalformedPayload, err)
	}

	family, err := n.detector.Detect(payload)
	if err != nil {
		return nil, err
	}

	request, err := n.registry.New(family)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, request); err != nil {
		return nil, fmt.Errorf("%w: %v", readings.ErrMalformedPayload, err)
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	return n.mapToReading(request)
}

// mapToReading dispatches on the concrete decoded type. Every registered
// schema must have an arm here; a missing arm is an internal invariant
// violation surfaced as ErrNoReadingMapping.
func (n *Normalizer) mapToReading(request readings.ReadingRequest) (*readings.Reading, error) {
	switch r := request.(type) {
	case *readings.AppleHeartReadingRequest:
		return n.newReading(r.ID, r.CollectedAt, float64(*r.BPM), readings.UnitBPM, r), nil
	case *readings.FitbitHeartReadingRequest:
		return n.newReading(r.DeviceID, r.Timestamp, float64(*r.HeartRate), readings.UnitBPM, r), nil
	case *readings.GarminBloodOxygenReadingRequest:
		return n.newReading(r.DeviceID, r.Timestamp, float64(*r.BloodOxygenLevel), readings.UnitPercent, r), nil
	case *readings.BMWFuelReadingRequest:
		return n.newReading(r.DeviceID, r.Timestamp, float64(*r.FuelLevelPercent), readings.UnitPercent, r), nil
	case *readings.FordFuelReadingRequest:
		value := *r.FuelLiters / *r.TankCapacityLiters * 100
		return n.newReading(r.VehicleID, r.Time, value, readings.UnitPercent, r), nil
	case *readings.NestThermostatReadingRequest:
		return n.newReading(r.DeviceID, r.Timestamp, *r.AmbientTemperature, readings.UnitCelsius, r), nil
	case *readings.HoneywellThermostatReadingRequest:
		return n.newReading(r.ID, r.Time, *r.TempCurrent, readings.UnitCelsius, r), nil
	default:
		return nil, fmt.Errorf("%w: %T", readings.ErrNoReadingMapping, request)
	}
}

func (n *Normalizer) newReading(deviceID string, ts time.Time, value float64, unit string, source readings.ReadingRequest) *readings.Reading {
	return &readings.Reading{
		DeviceID:      deviceID,
		Timestamp:     ts.In(n.loc),
		Value:         value,
		Unit:          unit,
		DeviceReading: source,
	}
}
