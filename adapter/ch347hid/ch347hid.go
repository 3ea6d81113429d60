//go:build ch347

// Package ch347hid drives a WCH CH347 USB bridge in HID mode through the
// system hidapi. It is kept behind the ch347 build tag so that binaries
// without it link only the hidapi copy bundled with karalabe/hid.
package ch347hid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/serfreeman1337/go-ch347"
	"github.com/sstallion/go-hid"

	"github.com/mklimuk/als"
	"github.com/mklimuk/als/adapter"
)

// interface 0 is the UART, interface 1 carries SPI+I2C+GPIO
const i2cInterface = 1

const readTimeout = time.Second

var _ als.I2CBus = &Bridge{}
var _ als.RegisterBus = &Bridge{}

// timeoutDevice bounds reads so a lost response does not block forever and
// retries reads interrupted by a signal.
type timeoutDevice struct {
	*hid.Device
}

func (d *timeoutDevice) Read(p []byte) (n int, err error) {
	for {
		n, err = d.Device.ReadWithTimeout(p, readTimeout)
		if err == nil || err.Error() != "Interrupted system call" {
			return
		}
	}
}

// Bridge does write-then-read with a repeated start, so unlike the MCP2221
// it serves registers directly. go-ch347 serialises the exchanges.
type Bridge struct {
	dev *hid.Device
	io  *ch347.IO
}

func devicePath() (string, error) {
	var path string
	err := hid.Enumerate(adapter.CH347VendorID, adapter.CH347ProductID, func(info *hid.DeviceInfo) error {
		if info.InterfaceNbr == i2cInterface && path == "" {
			path = info.Path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("could not enumerate hid devices: %w", err)
	}
	if path == "" {
		return "", errors.New("CH347 device not found")
	}
	return path, nil
}

// Open opens the first CH347 I2C interface at 100kHz.
func Open() (*Bridge, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("could not init hidapi: %w", err)
	}
	path, err := devicePath()
	if err != nil {
		return nil, err
	}
	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("error opening device %s: %w", path, err)
	}
	b := &Bridge{dev: dev, io: &ch347.IO{Dev: &timeoutDevice{dev}}}
	err = b.io.SetI2C(ch347.I2CMode1)
	if err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("could not configure i2c: %w", err)
	}
	slog.Debug("ch347 opened", "path", path)
	return b, nil
}

func (b *Bridge) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	return b.tx(ctx, address, nil, buffer)
}

func (b *Bridge) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	return b.tx(ctx, address, buffer, nil)
}

func (b *Bridge) ReadRegister(ctx context.Context, address, register byte, buffer []byte) error {
	return b.tx(ctx, address, []byte{register}, buffer)
}

func (b *Bridge) WriteRegister(ctx context.Context, address, register byte, data []byte) error {
	return b.tx(ctx, address, append([]byte{register}, data...), nil)
}

func (b *Bridge) tx(ctx context.Context, address byte, w, r []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.io.I2C(uint16(address), w, r)
	if err != nil {
		return fmt.Errorf("ch347 transfer to %x failed: %w", address, err)
	}
	return nil
}

func (b *Bridge) Release(ctx context.Context) error {
	return nil
}

func (b *Bridge) Close() error {
	return b.dev.Close()
}
