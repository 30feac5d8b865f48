package normalize

import (
	"errors"
	"math"
	"testing"
	"time"

	readings "supermetrics-cloud/internal/readings/domain"
)

// Tests pin a fixed zone so instant-to-calendar conversion is deterministic.
func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	n, err := NewNormalizer(NewFamilyDetector(), NewSchemaRegistry(), loc)
	if err != nil {
		t.Fatalf("new normalizer: %v", err)
	}
	return n
}

func TestNormalizePerFamily(t *testing.T) {
	n := newTestNormalizer(t)
	cases := []struct {
		name     string
		payload  string
		deviceID string
		value    float64
		unit     string
	}{
		{
			name:     "apple heart",
			payload:  `{"id":"apple-1","brand":"Apple","collected_at":"2024-01-01T12:00:00Z","bpm":72,"activity":"Running"}`,
			deviceID: "apple-1",
			value:    72,
			unit:     "bpm",
		},
		{
			name:     "fitbit heart",
			payload:  `{"device_id":"fitbit-1","brand":"Fitbit","type":"Charge 5","timestamp":"2024-01-01T12:00:00Z","heartRate":65,"state":"Resting"}`,
			deviceID: "fitbit-1",
			value:    65,
			unit:     "bpm",
		},
		{
			name:     "garmin oxygen",
			payload:  `{"device_id":"garmin-1","brand":"Garmin","timestamp":"2024-01-01T12:00:00Z","bloodOxygenLevel":95,"state":"Resting"}`,
			deviceID: "garmin-1",
			value:    95,
			unit:     "%",
		},
		{
			name:     "bmw fuel",
			payload:  `{"brand":"BMW","device_id":"bmw-1","fuel_level_percent":75,"range_km":450,"timestamp":"2024-01-01T00:00:00Z"}`,
			deviceID: "bmw-1",
			value:    75,
			unit:     "%",
		},
		{
			name:     "ford fuel derives percent from liters",
			payload:  `{"brand":"Ford","vehicleId":"ford-1","fuelLiters":30.0,"tankCapacityLiters":60.0,"remainingRangeKm":300,"time":"2024-01-01T00:00:00Z"}`,
			deviceID: "ford-1",
			value:    50,
			unit:     "%",
		},
		{
			name:     "nest thermostat",
			payload:  `{"device_id":"nest-1","brand":"Nest","type":"Thermostat","timestamp":"2024-01-01T12:00:00Z","ambient_temperature_c":22.5,"target_temperature_c":23.0}`,
			deviceID: "nest-1",
			value:    22.5,
			unit:     "C",
		},
		{
			name:     "honeywell thermostat via manufacturer",
			payload:  `{"id":"honeywell-1","manufacturer":"Honeywell","category":"Thermostat","time":"2024-01-01T12:00:00Z","tempCurrent":21.5,"tempTarget":22.0}`,
			deviceID: "honeywell-1",
			value:    21.5,
			unit:     "C",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reading, err := n.Normalize([]byte(tc.payload))
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if reading.DeviceID != tc.deviceID {
				t.Fatalf("expected device id %q, got %q", tc.deviceID, reading.DeviceID)
			}
			if math.Abs(reading.Value-tc.value) > 1e-9 {
				t.Fatalf("expected value %v, got %v", tc.value, reading.Value)
			}
			if reading.Unit != tc.unit {
				t.Fatalf("expected unit %q, got %q", tc.unit, reading.Unit)
			}
			if reading.DeviceReading == nil {
				t.Fatal("expected original request retained on reading")
			}
		})
	}
}

func TestNormalizeConvertsInstantToConfiguredZone(t *testing.T) {
	n := newTestNormalizer(t)
	payload := `{"brand":"BMW","device_id":"bmw-1","fuel_level_percent":75,"timestamp":"2024-01-01T00:00:00Z"}`
	reading, err := n.Normalize([]byte(payload))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	// Europe/Rome is UTC+1 in January.
	if got := reading.Timestamp.Format("2006-01-02T15:04:05"); got != "2024-01-01T01:00:00" {
		t.Fatalf("expected local calendar time 2024-01-01T01:00:00, got %s", got)
	}
	if reading.Timestamp.Location().String() != "Europe/Rome" {
		t.Fatalf("expected Europe/Rome location, got %s", reading.Timestamp.Location())
	}
}

func TestNormalizeRetainsOriginalRequest(t *testing.T) {
	n := newTestNormalizer(t)
	payload := `{"brand":"Ford","vehicleId":"ford-1","fuelLiters":30.0,"tankCapacityLiters":60.0,"time":"2024-01-01T00:00:00Z"}`
	reading, err := n.Normalize([]byte(payload))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	ford, ok := reading.DeviceReading.(*readings.FordFuelReadingRequest)
	if !ok {
		t.Fatalf("expected FordFuelReadingRequest, got %T", reading.DeviceReading)
	}
	if *ford.FuelLiters != 30.0 || *ford.TankCapacityLiters != 60.0 {
		t.Fatalf("unexpected retained request: %+v", ford)
	}
}

func TestNormalizeUnknownDevice(t *testing.T) {
	n := newTestNormalizer(t)
	for _, payload := range []string{
		`{"device_id":"x-1","timestamp":"2024-01-01T00:00:00Z"}`,
		`{"brand":"Tesla","device_id":"x-1"}`,
	} {
		if _, err := n.Normalize([]byte(payload)); !errors.Is(err, readings.ErrUnknownDevice) {
			t.Fatalf("expected ErrUnknownDevice for %s, got %v", payload, err)
		}
	}
}

func TestNormalizeMalformedPayload(t *testing.T) {
	n := newTestNormalizer(t)
	cases := []struct {
		name    string
		payload string
	}{
		{"not json", `not json at all`},
		{"missing measurement", `{"brand":"BMW","device_id":"bmw-1","timestamp":"2024-01-01T00:00:00Z"}`},
		{"missing timestamp", `{"brand":"BMW","device_id":"bmw-1","fuel_level_percent":75}`},
		{"missing device id", `{"brand":"BMW","fuel_level_percent":75,"timestamp":"2024-01-01T00:00:00Z"}`},
		{"mistyped measurement", `{"brand":"BMW","device_id":"bmw-1","fuel_level_percent":"full","timestamp":"2024-01-01T00:00:00Z"}`},
		{"missing tank capacity", `{"brand":"Ford","vehicleId":"ford-1","fuelLiters":30.0,"time":"2024-01-01T00:00:00Z"}`},
		{"zero tank capacity", `{"brand":"Ford","vehicleId":"ford-1","fuelLiters":30.0,"tankCapacityLiters":0,"time":"2024-01-01T00:00:00Z"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := n.Normalize([]byte(tc.payload)); !errors.Is(err, readings.ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}

func TestRegistryUnknownFamily(t *testing.T) {
	registry := NewSchemaRegistry()
	if _, err := registry.New("tesla-battery"); !errors.Is(err, readings.ErrUnknownFamily) {
		t.Fatalf("expected ErrUnknownFamily, got %v", err)
	}
	if families := registry.Families(); len(families) != 7 {
		t.Fatalf("expected 7 registered families, got %d", len(families))
	}
}
