package i2c

import (
	"context"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/mklimuk/als"
)

var _ als.I2CBus = &GenericBus{}
var _ als.RegisterBus = &GenericBus{}

// GenericBus is a host I2C bus (e.g. /dev/i2c-1) opened through periph.
type GenericBus struct {
	bus i2c.BusCloser
}

func NewGenericBus(dev string) (*GenericBus, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("periph driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus: %w", err)
	}
	return newGenericBus(bus), nil
}

func newGenericBus(bus i2c.BusCloser) *GenericBus {
	return &GenericBus{bus: bus}
}

// SetSpeed changes the bus clock, if the host driver allows it.
func (b *GenericBus) SetSpeed(f physic.Frequency) error {
	err := b.bus.SetSpeed(f)
	if err != nil {
		return fmt.Errorf("could not set i2c bus speed to %s: %w", f, err)
	}
	return nil
}

// ReadFromAddr is a plain read transaction. The APDS-9306 returns data from
// the register its pointer was last set to.
func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	return b.tx(ctx, address, nil, buffer, "read from %#x", address)
}

func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	return b.tx(ctx, address, buffer, nil, "write to %#x", address)
}

// ReadRegister writes the register pointer and reads back with a repeated start.
func (b *GenericBus) ReadRegister(ctx context.Context, address, register byte, buffer []byte) error {
	return b.tx(ctx, address, []byte{register}, buffer, "read register %#x of %#x", register, address)
}

func (b *GenericBus) WriteRegister(ctx context.Context, address, register byte, data []byte) error {
	out := append([]byte{register}, data...)
	return b.tx(ctx, address, out, nil, "write register %#x of %#x", register, address)
}

// tx runs one periph transaction. periph transfers are not cancellable, so
// the context is only checked before the bus is touched.
func (b *GenericBus) tx(ctx context.Context, address byte, w, r []byte, format string, args ...any) error {
	err := ctx.Err()
	if err == nil {
		err = b.bus.Tx(uint16(address), w, r)
	}
	if err != nil {
		return fmt.Errorf("could not %s: %w", fmt.Sprintf(format, args...), err)
	}
	return nil
}

func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}
