package devices

import "errors"

var (
	// ErrNilDevice is returned when a nil device is saved.
	ErrNilDevice = errors.New("devices: nil device")
	// ErrEmptyName is returned when a device has no name.
	ErrEmptyName = errors.New("devices: empty name")
	// ErrInvalidDeviceType is returned when the device type is unsupported.
	ErrInvalidDeviceType = errors.New("devices: invalid device type")
	// ErrInvalidCategory is returned when the category is unsupported.
	ErrInvalidCategory = errors.New("devices: invalid category")
	// ErrDeviceNotFound is returned when a device cannot be found.
	ErrDeviceNotFound = errors.New("devices: not found")
)
