package application

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	devices "supermetrics-cloud/internal/devices/domain"
)

// FleetDevice describes one simulated device.
type FleetDevice struct {
	ID           string             `yaml:"id"`
	Name         string             `yaml:"name"`
	Brand        string             `yaml:"brand"`
	SerialNumber string             `yaml:"serial_number"`
	Type         devices.DeviceType `yaml:"type"`
	Zone         string             `yaml:"zone"`
}

// Config defines simulator configuration.
type Config struct {
	IntervalSeconds int           `yaml:"interval_seconds"`
	Fleet           []FleetDevice `yaml:"fleet"`
}

// Interval returns the emission interval.
func (c Config) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

// LoadConfig loads simulator config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		IntervalSeconds: getenvIntDefault("SIMULATOR_INTERVAL_SECONDS", 5),
	}

	if path := os.Getenv("SIMULATOR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if len(cfg.Fleet) == 0 {
		cfg.Fleet = DefaultFleet()
	}
	for _, device := range cfg.Fleet {
		if device.ID == "" || device.Brand == "" {
			return cfg, errors.New("simulator: fleet device requires id and brand")
		}
	}
	return cfg, nil
}

// DefaultFleet returns one simulated device per supported payload family.
func DefaultFleet() []FleetDevice {
	return []FleetDevice{
		{ID: "sim-apple-1", Name: "Sim Apple Watch", Brand: "Apple", SerialNumber: "SIM-AP-1", Type: devices.TypeHeartRateMonitor, Zone: "sim"},
		{ID: "sim-fitbit-1", Name: "Sim Fitbit Charge", Brand: "Fitbit", SerialNumber: "SIM-FB-1", Type: devices.TypeHeartRateMonitor, Zone: "sim"},
		{ID: "sim-garmin-1", Name: "Sim Garmin Pulse", Brand: "Garmin", SerialNumber: "SIM-GA-1", Type: devices.TypeOxygenLevelMonitor, Zone: "sim"},
		{ID: "sim-bmw-1", Name: "Sim BMW 320d", Brand: "BMW", SerialNumber: "SIM-BM-1", Type: devices.TypeFuelConsumptionSensor, Zone: "sim"},
		{ID: "sim-ford-1", Name: "Sim Ford Focus", Brand: "Ford", SerialNumber: "SIM-FO-1", Type: devices.TypeFuelConsumptionSensor, Zone: "sim"},
		{ID: "sim-nest-1", Name: "Sim Nest Thermostat", Brand: "Nest", SerialNumber: "SIM-NE-1", Type: devices.TypeTemperatureSensor, Zone: "sim"},
		{ID: "sim-honeywell-1", Name: "Sim Honeywell T6", Brand: "Honeywell", SerialNumber: "SIM-HO-1", Type: devices.TypeTemperatureSensor, Zone: "sim"},
	}
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
