package application

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	readings "supermetrics-cloud/internal/readings/domain"
)

const (
	heartRateBase   = 75
	heartRateSpread = 15

	oxygenMin = 90
	oxygenMax = 100

	tankCapacityLiters = 60.0
	fuelPercentMin     = 10.0
	fuelPercentMax     = 90.0

	tempBase         = 22.0
	tempSpread       = 5.0
	tempTargetBase   = 21.0
	tempTargetSpread = 2.0
)

// Generator produces raw payloads in each family's native wire shape.
type Generator struct {
	rand *rand.Rand

	mu          sync.Mutex
	fuelPercent map[string]float64
}

// NewGenerator constructs a Generator.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rand:        rand.New(rand.NewSource(seed)),
		fuelPercent: map[string]float64{},
	}
}

// Generate builds one raw payload for a fleet device at the given instant.
func (g *Generator) Generate(device FleetDevice, now time.Time) ([]byte, error) {
	family, ok := familyForBrand(device.Brand)
	if !ok {
		return nil, fmt.Errorf("simulator: unsupported brand %q", device.Brand)
	}

	ts := now.UTC().Format(time.RFC3339)
	var payload map[string]any
	switch family {
	case readings.FamilyAppleHeart:
		payload = map[string]any{
			"id":           device.ID,
			"brand":        device.Brand,
			"collected_at": ts,
			"bpm":          g.heartRate(),
			"activity":     "resting",
		}
	case readings.FamilyFitbitHeart:
		payload = map[string]any{
			"device_id": device.ID,
			"brand":     device.Brand,
			"type":      "heart-rate",
			"timestamp": ts,
			"heartRate": g.heartRate(),
			"state":     "active",
		}
	case readings.FamilyGarminOxygen:
		payload = map[string]any{
			"device_id":        device.ID,
			"brand":            device.Brand,
			"timestamp":        ts,
			"bloodOxygenLevel": oxygenMin + g.rand.Intn(oxygenMax-oxygenMin+1),
			"state":            "rest",
		}
	case readings.FamilyBMWFuel:
		percent := g.nextFuelPercent(device.ID)
		payload = map[string]any{
			"device_id":          device.ID,
			"brand":              device.Brand,
			"type":               "fuel-level",
			"timestamp":          ts,
			"fuel_level_percent": int(percent),
			"range_km":           int(percent * 6),
		}
	case readings.FamilyFordFuel:
		percent := g.nextFuelPercent(device.ID)
		payload = map[string]any{
			"vehicleId":          device.ID,
			"manufacturer":       device.Brand,
			"sensorType":         "fuel",
			"time":               ts,
			"fuelLiters":         percent / 100 * tankCapacityLiters,
			"tankCapacityLiters": tankCapacityLiters,
			"remainingRangeKm":   int(percent * 6),
		}
	case readings.FamilyNestThermostat:
		payload = map[string]any{
			"device_id":             device.ID,
			"brand":                 device.Brand,
			"type":                  "thermostat",
			"timestamp":             ts,
			"ambient_temperature_c": g.temperature(tempBase, tempSpread),
			"target_temperature_c":  g.temperature(tempTargetBase, tempTargetSpread),
		}
	case readings.FamilyHoneywellThermostat:
		payload = map[string]any{
			"id":           device.ID,
			"manufacturer": device.Brand,
			"category":     "thermostat",
			"time":         ts,
			"tempCurrent":  g.temperature(tempBase, tempSpread),
			"tempTarget":   g.temperature(tempTargetBase, tempTargetSpread),
		}
	}
	return json.Marshal(payload)
}

func (g *Generator) heartRate() int {
	return heartRateBase - heartRateSpread + g.rand.Intn(2*heartRateSpread+1)
}

func (g *Generator) temperature(base, spread float64) float64 {
	value := base + (g.rand.Float64()*2-1)*spread
	return float64(int(value*10)) / 10
}

// nextFuelPercent walks a per-device fuel level down and refuels when it
// drains below the lower bound.
func (g *Generator) nextFuelPercent(deviceID string) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	percent, ok := g.fuelPercent[deviceID]
	if !ok {
		percent = fuelPercentMax
	}
	percent -= g.rand.Float64() * 4
	if percent < fuelPercentMin {
		percent = fuelPercentMax
	}
	g.fuelPercent[deviceID] = percent
	return percent
}

func familyForBrand(brand string) (readings.Family, bool) {
	switch strings.ToUpper(brand) {
	case "APPLE":
		return readings.FamilyAppleHeart, true
	case "FITBIT":
		return readings.FamilyFitbitHeart, true
	case "GARMIN":
		return readings.FamilyGarminOxygen, true
	case "BMW":
		return readings.FamilyBMWFuel, true
	case "FORD":
		return readings.FamilyFordFuel, true
	case "NEST":
		return readings.FamilyNestThermostat, true
	case "HONEYWELL":
		return readings.FamilyHoneywellThermostat, true
	default:
		return "", false
	}
}
