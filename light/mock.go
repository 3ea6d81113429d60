package light

import (
	"context"
)

// Reader is what sample consumers need from a light sensor.
type Reader interface {
	ReadMeasurement(ctx context.Context) (Measurement, error)
}

var _ Reader = &APDS9306{}
var _ Reader = &MockReader{}

// MeasurementBehaviorFunc produces a measurement or an error.
type MeasurementBehaviorFunc func(ctx context.Context) (Measurement, error)

// MockReader is a Reader that needs no hardware. Every call to
// ReadMeasurement runs the behavior function.
//
//	// Static value
//	r := NewMockReader(func(ctx context.Context) (Measurement, error) {
//		return Measurement{ALS: 1200, Clear: 1500}, nil
//	})
//
//	// Error simulation
//	r := NewMockReader(func(ctx context.Context) (Measurement, error) {
//		return Measurement{}, fmt.Errorf("sensor malfunction")
//	})
type MockReader struct {
	behavior MeasurementBehaviorFunc
}

func NewMockReader(behavior MeasurementBehaviorFunc) *MockReader {
	return &MockReader{behavior: behavior}
}

func (m *MockReader) ReadMeasurement(ctx context.Context) (Measurement, error) {
	return m.behavior(ctx)
}
