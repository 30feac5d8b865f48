package readings

import "errors"

var (
	// ErrUnknownDevice is returned when the payload carries no recognizable
	// brand or manufacturer.
	ErrUnknownDevice = errors.New("readings: unknown device")
	// ErrMalformedPayload is returned when the payload does not satisfy the
	// detected family's required fields or types.
	ErrMalformedPayload = errors.New("readings: malformed payload")
	// ErrDeviceNotRegistered is returned when a normalized reading references
	// a device id absent from the directory.
	ErrDeviceNotRegistered = errors.New("readings: device not registered")
	// ErrNoDevicesFound is returned when an aggregation filter matches zero
	// active devices.
	ErrNoDevicesFound = errors.New("readings: no devices found")
	// ErrNoReadingMapping is returned when a decoded request type has no
	// canonical mapping. This is an internal invariant violation, not a
	// caller error.
	ErrNoReadingMapping = errors.New("readings: no mapping for request type")
	// ErrUnknownFamily is returned when a family key has no registered schema.
	ErrUnknownFamily = errors.New("readings: unknown family key")
	// ErrNilReading is returned when a nil reading is persisted.
	ErrNilReading = errors.New("readings: nil reading")
)
