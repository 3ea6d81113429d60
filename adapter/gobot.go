package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/als"
)

var _ als.RegisterBus = &Gobot{}

// Gobot serves register access through any gobot platform adaptor
// (NanoPi, Raspberry Pi, Tinker Board...). Connections are opened lazily,
// one per device address.
type Gobot struct {
	mx        sync.Mutex
	connector i2c.Connector
	bus       int
	conns     map[byte]i2c.Connection
}

// NewGobot uses the adaptor's default bus when bus is negative.
func NewGobot(connector i2c.Connector, bus int) *Gobot {
	if bus < 0 {
		bus = connector.DefaultI2cBus()
	}
	return &Gobot{
		connector: connector,
		bus:       bus,
		conns:     make(map[byte]i2c.Connection),
	}
}

func (g *Gobot) connection(address byte) (i2c.Connection, error) {
	if c, ok := g.conns[address]; ok {
		return c, nil
	}
	c, err := g.connector.GetI2cConnection(int(address), g.bus)
	if err != nil {
		return nil, fmt.Errorf("could not get i2c connection to %x on bus %d: %w", address, g.bus, err)
	}
	g.conns[address] = c
	return c, nil
}

func (g *Gobot) ReadRegister(ctx context.Context, address, register byte, buffer []byte) error {
	g.mx.Lock()
	defer g.mx.Unlock()
	c, err := g.connection(address)
	if err != nil {
		return err
	}
	if len(buffer) == 1 {
		v, err := c.ReadByteData(register)
		if err != nil {
			return fmt.Errorf("could not read register %#x of %x: %w", register, address, err)
		}
		buffer[0] = v
		return nil
	}
	err = c.ReadBlockData(register, buffer)
	if err != nil {
		return fmt.Errorf("could not read registers from %#x of %x: %w", register, address, err)
	}
	return nil
}

func (g *Gobot) WriteRegister(ctx context.Context, address, register byte, data []byte) error {
	g.mx.Lock()
	defer g.mx.Unlock()
	c, err := g.connection(address)
	if err != nil {
		return err
	}
	if len(data) == 1 {
		err = c.WriteByteData(register, data[0])
	} else {
		err = c.WriteBlockData(register, data)
	}
	if err != nil {
		return fmt.Errorf("could not write register %#x of %x: %w", register, address, err)
	}
	return nil
}

// Close closes every connection opened so far.
func (g *Gobot) Close() error {
	g.mx.Lock()
	defer g.mx.Unlock()
	var errs []error
	for addr, c := range g.conns {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("could not close connection to %x: %w", addr, err))
		}
		delete(g.conns, addr)
	}
	return errors.Join(errs...)
}
