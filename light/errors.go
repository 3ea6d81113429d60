package light

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceNotFound = errors.New("apds9306: device not found")
	ErrInvalidConfig  = errors.New("apds9306: invalid configuration")
	// ErrNotReady is not returned by the driver itself; it is meant for
	// callers that give up waiting on IsDataReady.
	ErrNotReady = errors.New("apds9306: data not ready")
)

// BusError wraps a failure reported by the bus. The bus error is kept as is.
type BusError struct {
	Op       string
	Register Register
	Err      error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("apds9306: %s %s (%#02x): %v", e.Op, e.Register, byte(e.Register), e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// IsBusError reports whether err came from the transport.
func IsBusError(err error) bool {
	var be *BusError
	return errors.As(err, &be)
}

// PartIDError is returned when PART_ID does not match the requested variant.
type PartIDError struct {
	Variant Variant
	Got     byte
}

func (e *PartIDError) Error() string {
	return fmt.Sprintf("apds9306: unexpected part id %#02x for %s (expected %#02x)", e.Got, e.Variant, e.Variant.PartID())
}

func (e *PartIDError) Is(target error) bool {
	return target == ErrDeviceNotFound
}
