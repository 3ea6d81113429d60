package als

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// I2CBus performs raw transfers to an addressed device.
type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// RegisterReader reads len(buffer) bytes starting at register.
type RegisterReader interface {
	ReadRegister(ctx context.Context, address, register byte, buffer []byte) error
}

// RegisterWriter writes data starting at register.
type RegisterWriter interface {
	WriteRegister(ctx context.Context, address, register byte, data []byte) error
}

// RegisterBus is the capability register based drivers depend on.
type RegisterBus interface {
	RegisterReader
	RegisterWriter
}

var _ RegisterBus = &PointerBus{}

// PointerBus turns a raw I2CBus into a RegisterBus. Reads are performed as a
// register pointer write followed by a separate read transfer, which is what
// bridges without repeated start support can do.
type PointerBus struct {
	bus I2CBus
}

func NewPointerBus(bus I2CBus) *PointerBus {
	return &PointerBus{bus: bus}
}

func (p *PointerBus) ReadRegister(ctx context.Context, address, register byte, buffer []byte) error {
	err := p.bus.WriteToAddr(ctx, address, []byte{register})
	if err != nil {
		return fmt.Errorf("could not set register pointer %#x: %w", register, err)
	}
	err = p.bus.ReadFromAddr(ctx, address, buffer)
	if err != nil {
		return fmt.Errorf("could not read register %#x: %w", register, err)
	}
	return nil
}

func (p *PointerBus) WriteRegister(ctx context.Context, address, register byte, data []byte) error {
	out := make([]byte, 0, len(data)+1)
	out = append(out, register)
	out = append(out, data...)
	err := p.bus.WriteToAddr(ctx, address, out)
	if err != nil {
		return fmt.Errorf("could not write register %#x: %w", register, err)
	}
	return nil
}

// Release hands the underlying bus back (some bridges keep it claimed).
func (p *PointerBus) Release(ctx context.Context) error {
	return p.bus.Release(ctx)
}
