package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/als"
	"github.com/mklimuk/als/adapter"
	"github.com/mklimuk/als/cmd/als/console"
	"github.com/mklimuk/als/i2c"
	"github.com/mklimuk/als/light"
)

func deviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "adapter",
			Aliases: []string{"a"},
			Usage:   "bus adapter: mcp2221, ch347, generic or nanopi",
			EnvVars: []string{"ALS_ADAPTER"},
		},
		&cli.StringFlag{
			Name:    "device",
			Usage:   "i2c device for the generic adapter",
			EnvVars: []string{"ALS_DEVICE"},
		},
		&cli.IntFlag{
			Name:  "bus",
			Usage: "i2c bus number for gobot adapters (-1 picks the board default)",
		},
		&cli.StringFlag{
			Name:    "variant",
			Usage:   "sensor variant: apds9306 or apds9306-065",
			EnvVars: []string{"ALS_VARIANT"},
		},
		&cli.UintFlag{
			Name:  "addr",
			Usage: "7-bit i2c address of the sensor",
		},
	}
}

func alsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "resolution", Aliases: []string{"r"}, Usage: "ADC resolution in bits (20, 19, 18, 17, 16, 13)"},
		&cli.StringFlag{Name: "rate", Usage: "measurement rate (25ms .. 2s)"},
		&cli.StringFlag{Name: "gain", Aliases: []string{"g"}, Usage: "analog gain (1, 3, 6, 9, 18)"},
	}
}

// openCH347 is replaced when the binary is built with the ch347 tag.
var openCH347 = func() (als.RegisterBus, func() error, error) {
	return nil, nil, fmt.Errorf("%w: ch347 support not compiled in (build with -tags ch347)", light.ErrInvalidConfig)
}

// openBus returns the register bus for the configured adapter and a function
// releasing whatever the adapter holds.
func openBus(ctx context.Context, cfg config) (als.RegisterBus, func() error, error) {
	switch cfg.Adapter {
	case adapterMCP2221:
		a := adapter.NewMCP2221()
		err := a.Init(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		return als.NewPointerBus(a), func() error { return nil }, nil
	case adapterCH347:
		return openCH347()
	case adapterGeneric:
		b, err := i2c.NewGenericBus(cfg.Device)
		if err != nil {
			return nil, nil, err
		}
		err = b.SetSpeed(400 * physic.KiloHertz)
		if err != nil {
			slog.Warn("could not set bus speed, using bus default", "device", cfg.Device, "error", err)
		}
		return b, b.Close, nil
	case adapterNanoPi:
		npi := nanopi.NewNeoAdaptor()
		err := npi.I2cBusAdaptor.Connect()
		if err != nil {
			return nil, nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		g := adapter.NewGobot(npi, cfg.Bus)
		return g, func() error {
			return errors.Join(g.Close(), npi.I2cBusAdaptor.Finalize())
		}, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown adapter %q", light.ErrInvalidConfig, cfg.Adapter)
}

// openSensor resolves the configuration, opens the bus and identifies the
// sensor. The returned function must be called when done.
func openSensor(c *cli.Context) (*light.APDS9306, config, func(), error) {
	noop := func() {}
	cfg, err := resolveConfig(c)
	if err != nil {
		return nil, cfg, noop, exitError(err, "configuration error")
	}
	variant, err := cfg.variant()
	if err != nil {
		return nil, cfg, noop, exitError(err, "configuration error")
	}
	addr, err := cfg.address()
	if err != nil {
		return nil, cfg, noop, exitError(err, "configuration error")
	}
	bus, closeBus, err := openBus(c.Context, cfg)
	if err != nil {
		return nil, cfg, noop, exitError(err, "could not open %s adapter", cfg.Adapter)
	}
	done := func() {
		if err := closeBus(); err != nil {
			slog.Warn("adapter close error", "adapter", cfg.Adapter, "error", err)
		}
	}
	slog.Debug("adapter ready", "adapter", cfg.Adapter, "variant", variant, "address", fmt.Sprintf("%#x", addr))
	sensor, err := light.NewAPDS9306(c.Context, bus, variant, light.WithAddress(addr))
	if err != nil {
		done()
		return nil, cfg, noop, exitError(err, "sensor identification failed")
	}
	return sensor, cfg, done, nil
}

// exitError maps driver errors to process exit codes.
func exitError(err error, msg string, args ...interface{}) cli.ExitCoder {
	code := console.CodeFailure
	switch {
	case errors.Is(err, light.ErrDeviceNotFound):
		code = console.CodeNotFound
	case errors.Is(err, light.ErrNotReady):
		code = console.CodeNotReady
	}
	return console.Exit(code, "%s: %s", fmt.Sprintf(msg, args...), console.Red(err))
}
