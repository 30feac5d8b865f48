package readings

import (
	"fmt"
	"time"
)

// Family identifies one supported device-payload schema.
type Family string

const (
	FamilyAppleHeart          Family = "apple-heart"
	FamilyBMWFuel             Family = "bmw-fuel"
	FamilyNestThermostat      Family = "nest-thermostat"
	FamilyFordFuel            Family = "ford-fuel"
	FamilyFitbitHeart         Family = "fitbit-heart"
	FamilyHoneywellThermostat Family = "honeywell-thermostat"
	FamilyGarminOxygen        Family = "garmin-oxygen"
)

// ReadingRequest is the closed set of per-family inbound payload shapes.
// Measurement fields the canonical mapping consumes are pointer-typed so a
// missing field is distinguishable from a zero value; auxiliary fields stay
// optional.
type ReadingRequest interface {
	readingRequest()
	// Validate reports ErrMalformedPayload when a required field is absent.
	Validate() error
}

// AppleHeartReadingRequest carries Apple heart rate readings.
type AppleHeartReadingRequest struct {
	ID          string    `json:"id"`
	Brand       string    `json:"brand"`
	CollectedAt time.Time `json:"collected_at"`
	BPM         *int      `json:"bpm"`
	Activity    string    `json:"activity,omitempty"`
}

func (AppleHeartReadingRequest) readingRequest() {}

func (r AppleHeartReadingRequest) Validate() error {
	if r.ID == "" {
		return missingField("id")
	}
	if r.CollectedAt.IsZero() {
		return missingField("collected_at")
	}
	if r.BPM == nil {
		return missingField("bpm")
	}
	return nil
}

// BMWFuelReadingRequest carries BMW fuel level readings.
type BMWFuelReadingRequest struct {
	DeviceID         string    `json:"device_id"`
	Brand            string    `json:"brand"`
	Type             string    `json:"type,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	FuelLevelPercent *int      `json:"fuel_level_percent"`
	RangeKM          *int      `json:"range_km,omitempty"`
}

func (BMWFuelReadingRequest) readingRequest() {}

func (r BMWFuelReadingRequest) Validate() error {
	if r.DeviceID == "" {
		return missingField("device_id")
	}
	if r.Timestamp.IsZero() {
		return missingField("timestamp")
	}
	if r.FuelLevelPercent == nil {
		return missingField("fuel_level_percent")
	}
	return nil
}

// FitbitHeartReadingRequest carries Fitbit heart rate readings.
type FitbitHeartReadingRequest struct {
	DeviceID  string    `json:"device_id"`
	Brand     string    `json:"brand"`
	Type      string    `json:"type,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	HeartRate *int      `json:"heartRate"`
	State     string    `json:"state,omitempty"`
}

func (FitbitHeartReadingRequest) readingRequest() {}

func (r FitbitHeartReadingRequest) Validate() error {
	if r.DeviceID == "" {
		return missingField("device_id")
	}
	if r.Timestamp.IsZero() {
		return missingField("timestamp")
	}
	if r.HeartRate == nil {
		return missingField("heartRate")
	}
	return nil
}

// FordFuelReadingRequest carries Ford fuel readings measured in liters.
type FordFuelReadingRequest struct {
	VehicleID          string    `json:"vehicleId"`
	Manufacturer       string    `json:"manufacturer"`
	SensorType         string    `json:"sensorType,omitempty"`
	Time               time.Time `json:"time"`
	FuelLiters         *float64  `json:"fuelLiters"`
	TankCapacityLiters *float64  `json:"tankCapacityLiters"`
	RemainingRangeKM   *int      `json:"remainingRangeKm,omitempty"`
}

func (FordFuelReadingRequest) readingRequest() {}

func (r FordFuelReadingRequest) Validate() error {
	if r.VehicleID == "" {
		return missingField("vehicleId")
	}
	if r.Time.IsZero() {
		return missingField("time")
	}
	if r.FuelLiters == nil {
		return missingField("fuelLiters")
	}
	if r.TankCapacityLiters == nil {
		return missingField("tankCapacityLiters")
	}
	if *r.TankCapacityLiters <= 0 {
		return fmt.Errorf("%w: tankCapacityLiters must be positive", ErrMalformedPayload)
	}
	return nil
}

// HoneywellThermostatReadingRequest carries Honeywell thermostat readings.
type HoneywellThermostatReadingRequest struct {
	ID           string    `json:"id"`
	Manufacturer string    `json:"manufacturer"`
	Category     string    `json:"category,omitempty"`
	Time         time.Time `json:"time"`
	TempCurrent  *float64  `json:"tempCurrent"`
	TempTarget   *float64  `json:"tempTarget,omitempty"`
}

func (HoneywellThermostatReadingRequest) readingRequest() {}

func (r HoneywellThermostatReadingRequest) Validate() error {
	if r.ID == "" {
		return missingField("id")
	}
	if r.Time.IsZero() {
		return missingField("time")
	}
	if r.TempCurrent == nil {
		return missingField("tempCurrent")
	}
	return nil
}

// NestThermostatReadingRequest carries Nest thermostat readings.
type NestThermostatReadingRequest struct {
	DeviceID           string    `json:"device_id"`
	Brand              string    `json:"brand"`
	Type               string    `json:"type,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	AmbientTemperature *float64  `json:"ambient_temperature_c"`
	TargetTemperature  *float64  `json:"target_temperature_c,omitempty"`
}

func (NestThermostatReadingRequest) readingRequest() {}

func (r NestThermostatReadingRequest) Validate() error {
	if r.DeviceID == "" {
		return missingField("device_id")
	}
	if r.Timestamp.IsZero() {
		return missingField("timestamp")
	}
	if r.AmbientTemperature == nil {
		return missingField("ambient_temperature_c")
	}
	return nil
}

// GarminBloodOxygenReadingRequest carries Garmin blood oxygen readings.
type GarminBloodOxygenReadingRequest struct {
	DeviceID         string    `json:"device_id"`
	Brand            string    `json:"brand"`
	Timestamp        time.Time `json:"timestamp"`
	BloodOxygenLevel *int      `json:"bloodOxygenLevel"`
	State            string    `json:"state,omitempty"`
}

func (GarminBloodOxygenReadingRequest) readingRequest() {}

func (r GarminBloodOxygenReadingRequest) Validate() error {
	if r.DeviceID == "" {
		return missingField("device_id")
	}
	if r.Timestamp.IsZero() {
		return missingField("timestamp")
	}
	if r.BloodOxygenLevel == nil {
		return missingField("bloodOxygenLevel")
	}
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing field %q", ErrMalformedPayload, name)
}
