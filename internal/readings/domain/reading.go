package readings

import (
	"context"
	"time"
)

// Reading is the canonical record every device family maps into. Value and
// unit are always set together by the family mapping; DeviceReading keeps the
// original typed request for audit.
type Reading struct {
	ID            string         `json:"id"`
	DeviceID      string         `json:"deviceId"`
	Timestamp     time.Time      `json:"timestamp"`
	Value         float64        `json:"value"`
	Unit          string         `json:"unit"`
	DeviceReading ReadingRequest `json:"deviceReading"`
}

// Units produced by the family mappings.
const (
	UnitBPM     = "bpm"
	UnitPercent = "%"
	UnitCelsius = "C"
)

// DeviceStats is one grouped statistics row from the store.
type DeviceStats struct {
	DeviceID string
	AvgValue float64
	MaxValue float64
	MinValue float64
	Count    int64
}

// AggregationResult is a statistics row enriched with the device name.
type AggregationResult struct {
	DeviceID   string  `json:"deviceId"`
	DeviceName string  `json:"deviceName"`
	AvgValue   float64 `json:"avgValue"`
	MaxValue   float64 `json:"maxValue"`
	MinValue   float64 `json:"minValue"`
	Count      int64   `json:"count"`
}

// ReadingRepository persists canonical readings and answers grouped
// statistical queries. The time range is inclusive at both ends.
type ReadingRepository interface {
	Save(ctx context.Context, reading *Reading) error
	AggregateByDevice(ctx context.Context, deviceIDs []string, start, end time.Time) ([]DeviceStats, error)
}
