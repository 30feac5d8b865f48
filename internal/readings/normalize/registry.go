package normalize

import (
	"fmt"

	readings "supermetrics-cloud/internal/readings/domain"
)

// SchemaRegistry maps family keys to their payload shapes. The registry is
// closed and built once at startup; adding a device family means one entry
// here plus one mapping arm in the normalizer.
type SchemaRegistry struct {
	factories map[readings.Family]func() readings.ReadingRequest
}

// NewSchemaRegistry constructs the registry with every supported family.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{
		factories: map[readings.Family]func() readings.ReadingRequest{
			readings.FamilyAppleHeart:          func() readings.ReadingRequest { return &readings.AppleHeartReadingRequest{} },
			readings.FamilyBMWFuel:             func() readings.ReadingRequest { return &readings.BMWFuelReadingRequest{} },
			readings.FamilyNestThermostat:      func() readings.ReadingRequest { return &readings.NestThermostatReadingRequest{} },
			readings.FamilyFordFuel:            func() readings.ReadingRequest { return &readings.FordFuelReadingRequest{} },
			readings.FamilyFitbitHeart:         func() readings.ReadingRequest { return &readings.FitbitHeartReadingRequest{} },
			readings.FamilyHoneywellThermostat: func() readings.ReadingRequest { return &readings.HoneywellThermostatReadingRequest{} },
			readings.FamilyGarminOxygen:        func() readings.ReadingRequest { return &readings.GarminBloodOxygenReadingRequest{} },
		},
	}
}

// New returns an empty request of the family's shape. Unknown keys are a
// caller error.
func (r *SchemaRegistry) New(family readings.Family) (readings.ReadingRequest, error) {
	factory, ok := r.factories[family]
	if !ok {
		return nil, fmt.Errorf("%w: %q", readings.ErrUnknownFamily, family)
	}
	return factory(), nil
}

// Families lists the registered family keys.
func (r *SchemaRegistry) Families() []readings.Family {
	result := make([]readings.Family, 0, len(r.factories))
	for family := range r.factories {
		result = append(result, family)
	}
	return result
}
