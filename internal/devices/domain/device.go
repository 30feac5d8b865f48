package devices

import (
	"context"
	"strings"
)

// Device represents a registered IoT device.
type Device struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Brand        string     `json:"brand"`
	SerialNumber string     `json:"serialNumber"`
	Type         DeviceType `json:"type"`
	Zone         string     `json:"zone"`
	Active       bool       `json:"active"`
}

// DeviceType is a closed enumeration of supported device types.
type DeviceType string

const (
	TypeHeartRateMonitor      DeviceType = "heart-rate-monitor"
	TypeOxygenLevelMonitor    DeviceType = "oxygen-level-monitor"
	TypeTemperatureSensor     DeviceType = "temperature-sensor"
	TypeFuelConsumptionSensor DeviceType = "fuel-consumption-sensor"
)

// Category groups device types for coarse filtering.
type Category string

const (
	CategoryHealth        Category = "health"
	CategoryEnvironmental Category = "environmental"
	CategoryVehicle       Category = "vehicle"
)

// Validate checks required device fields.
func (d *Device) Validate() error {
	if d == nil {
		return ErrNilDevice
	}
	if d.Name == "" {
		return ErrEmptyName
	}
	if _, ok := NormalizeType(string(d.Type)); !ok {
		return ErrInvalidDeviceType
	}
	return nil
}

// NormalizeType validates a device type string, ignoring case.
func NormalizeType(value string) (DeviceType, bool) {
	switch DeviceType(strings.ToLower(value)) {
	case TypeHeartRateMonitor, TypeOxygenLevelMonitor, TypeTemperatureSensor, TypeFuelConsumptionSensor:
		return DeviceType(strings.ToLower(value)), true
	default:
		return "", false
	}
}

// NormalizeCategory validates a category string, ignoring case.
func NormalizeCategory(value string) (Category, bool) {
	switch Category(strings.ToLower(value)) {
	case CategoryHealth, CategoryEnvironmental, CategoryVehicle:
		return Category(strings.ToLower(value)), true
	default:
		return "", false
	}
}

// Category returns the category a device type belongs to.
func (t DeviceType) Category() Category {
	switch t {
	case TypeHeartRateMonitor, TypeOxygenLevelMonitor:
		return CategoryHealth
	case TypeTemperatureSensor:
		return CategoryEnvironmental
	case TypeFuelConsumptionSensor:
		return CategoryVehicle
	default:
		return ""
	}
}

// TypesByCategory resolves a category into its fixed set of device types.
func TypesByCategory(category Category) []DeviceType {
	var result []DeviceType
	for _, t := range []DeviceType{
		TypeHeartRateMonitor,
		TypeOxygenLevelMonitor,
		TypeTemperatureSensor,
		TypeFuelConsumptionSensor,
	} {
		if t.Category() == category {
			result = append(result, t)
		}
	}
	return result
}

// DeviceFilter restricts a directory lookup. Empty slices mean no
// restriction on that axis; Zone is an exact string match when non-empty.
type DeviceFilter struct {
	Types []DeviceType
	IDs   []string
	Zone  string
}

// DeviceRepository persists and queries devices.
type DeviceRepository interface {
	Get(ctx context.Context, id string) (*Device, error)
	FindActiveByFilter(ctx context.Context, filter DeviceFilter) ([]Device, error)
	List(ctx context.Context) ([]Device, error)
	ListActive(ctx context.Context) ([]Device, error)
	Save(ctx context.Context, device *Device) error
}
