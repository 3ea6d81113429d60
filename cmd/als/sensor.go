package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/als/cmd/als/console"
	"github.com/mklimuk/als/light"
)

var probeCmd = cli.Command{
	Name:  "probe",
	Usage: "identify the sensor and print its state",
	Flags: deviceFlags(),
	Action: func(c *cli.Context) error {
		sensor, _, done, err := openSensor(c)
		if err != nil {
			return err
		}
		defer done()
		console.PInfof(console.PictoChip, "%s found at %s", console.Green(sensor.Variant()), console.White(fmt.Sprintf("%#x", sensor.Address())))
		status, err := sensor.ReadStatus(c.Context)
		if err != nil {
			return exitError(err, "could not read status")
		}
		printStatus(status)
		cfg, err := sensor.ReadConfig(c.Context)
		if err != nil {
			return exitError(err, "could not read configuration")
		}
		printConfig(cfg)
		return nil
	},
}

var resetCmd = cli.Command{
	Name:  "reset",
	Usage: "software reset the sensor",
	Flags: append(deviceFlags(), &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "do not ask for confirmation",
	}),
	Action: func(c *cli.Context) error {
		if !c.Bool("yes") {
			ok, err := console.Confirm("reset the sensor to power-on defaults?")
			if err != nil {
				return console.Exit(console.CodeAborted, "prompt error: %s", console.Red(err))
			}
			if !ok {
				return console.Exit(console.CodeAborted, "%s reset aborted", console.PictoStop)
			}
		}
		sensor, _, done, err := openSensor(c)
		if err != nil {
			return err
		}
		defer done()
		err = sensor.Reset(c.Context)
		if err != nil {
			return exitError(err, "reset failed")
		}
		console.Infof("reset command sent")
		return nil
	},
}

var configureCmd = cli.Command{
	Name:  "configure",
	Usage: "write resolution, measurement rate and gain",
	Flags: append(deviceFlags(), alsFlags()...),
	Action: func(c *cli.Context) error {
		sensor, cfg, done, err := openSensor(c)
		if err != nil {
			return err
		}
		defer done()
		sc, err := cfg.sensorConfig()
		if err != nil {
			return exitError(err, "configuration error")
		}
		err = sensor.Configure(c.Context, sc)
		if err != nil {
			return exitError(err, "configure failed")
		}
		printConfig(sensor.Config())
		return nil
	},
}

var enableCmd = cli.Command{
	Name:  "enable",
	Usage: "start ALS conversions",
	Flags: deviceFlags(),
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, sensor *light.APDS9306) error {
			err := sensor.Enable(ctx)
			if err != nil {
				return exitError(err, "enable failed")
			}
			console.Infof("sensor %s", console.Green("enabled"))
			return nil
		})
	},
}

var disableCmd = cli.Command{
	Name:  "disable",
	Usage: "put the sensor in standby",
	Flags: deviceFlags(),
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, sensor *light.APDS9306) error {
			err := sensor.Disable(ctx)
			if err != nil {
				return exitError(err, "disable failed")
			}
			console.Infof("sensor %s", console.Yellow("disabled"))
			return nil
		})
	},
}

var statusCmd = cli.Command{
	Name:  "status",
	Usage: "read MAIN_STATUS",
	Flags: deviceFlags(),
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, sensor *light.APDS9306) error {
			status, err := sensor.ReadStatus(ctx)
			if err != nil {
				return exitError(err, "could not read status")
			}
			printStatus(status)
			return nil
		})
	},
}

var readCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Usage:   "configure, enable and take one reading",
	Flags: append(append(deviceFlags(), alsFlags()...),
		&cli.BoolFlag{Name: "clear", Usage: "read the clear channel too"},
		&cli.DurationFlag{Name: "timeout", Usage: "how long to wait for data (defaults to three measurement periods)"},
	),
	Action: func(c *cli.Context) error {
		sensor, cfg, done, err := openSensor(c)
		if err != nil {
			return err
		}
		defer done()
		sc, err := cfg.sensorConfig()
		if err != nil {
			return exitError(err, "configuration error")
		}
		err = sensor.Configure(c.Context, sc)
		if err != nil {
			return exitError(err, "configure failed")
		}
		err = sensor.Enable(c.Context)
		if err != nil {
			return exitError(err, "enable failed")
		}
		timeout := c.Duration("timeout")
		if timeout <= 0 {
			timeout = 3 * samplePeriod(sc)
		}
		err = waitReady(c.Context, sensor, sc.MeasurementRate.Duration(), timeout)
		if err != nil {
			return exitError(err, "no data")
		}
		if c.Bool("clear") {
			m, err := sensor.ReadMeasurement(c.Context)
			if err != nil {
				return exitError(err, "read failed")
			}
			console.PInfof(console.PictoBulb, "als %s clear %s", console.White(m.ALS), console.White(m.Clear))
			return nil
		}
		v, err := sensor.ReadData(c.Context)
		if err != nil {
			return exitError(err, "read failed")
		}
		console.PInfof(console.PictoBulb, "als %s", console.White(v))
		return nil
	},
}

var interruptCmd = cli.Command{
	Name:    "interrupt",
	Aliases: []string{"int"},
	Usage:   "configure the interrupt logic",
	Flags: append(deviceFlags(),
		&cli.StringFlag{Name: "source", Usage: "channel compared against thresholds: als or clear"},
		&cli.StringFlag{Name: "mode", Usage: "threshold or variation"},
		&cli.BoolFlag{Name: "enable", Usage: "enable the interrupt output"},
		&cli.UintFlag{Name: "persistence", Usage: "consecutive out of range conversions before asserting (0-15)"},
		&cli.UintFlag{Name: "upper", Usage: "upper threshold (20-bit)"},
		&cli.UintFlag{Name: "lower", Usage: "lower threshold (20-bit)"},
		&cli.IntFlag{Name: "variance", Usage: "variation threshold in counts (8..1024, powers of two)"},
	),
	Action: func(c *cli.Context) error {
		sensor, cfg, done, err := openSensor(c)
		if err != nil {
			return err
		}
		defer done()
		ic, err := cfg.interruptConfig()
		if err != nil {
			return exitError(err, "configuration error")
		}
		err = sensor.ConfigureInterrupt(c.Context, ic)
		if err != nil {
			return exitError(err, "interrupt configuration failed")
		}
		ic = sensor.InterruptConfig()
		console.Field("source", ic.Source)
		console.Field("mode", ic.Mode)
		console.Field("enabled", console.Flag(ic.Enabled))
		console.Field("persistence", ic.Persistence)
		console.Field("upper threshold", ic.UpperThreshold)
		console.Field("lower threshold", ic.LowerThreshold)
		console.Field("variance", ic.VarianceThreshold)
		return nil
	},
}

func withSensor(c *cli.Context, fn func(ctx context.Context, sensor *light.APDS9306) error) error {
	sensor, _, done, err := openSensor(c)
	if err != nil {
		return err
	}
	defer done()
	return fn(c.Context, sensor)
}

func printStatus(s light.Status) {
	console.Field("power on", console.Flag(s.PowerOn))
	console.Field("interrupt", console.Flag(s.Interrupt))
	console.Field("data ready", console.Flag(s.DataReady))
}

func printConfig(c light.Config) {
	console.Field("resolution", console.White(c.Resolution))
	console.Field("conversion time", c.Resolution.ConversionTime())
	console.Field("measurement rate", console.White(c.MeasurementRate))
	console.Field("gain", console.White(c.Gain))
}

// samplePeriod is how often a fresh sample lands in ALS_DATA. The sensor
// cannot sample faster than one conversion.
func samplePeriod(c light.Config) time.Duration {
	return max(c.MeasurementRate.Duration(), c.Resolution.ConversionTime())
}

type readyChecker interface {
	IsDataReady(ctx context.Context) (bool, error)
}

// waitReady polls the data status bit every period until it is set or the
// timeout passes, in which case it returns light.ErrNotReady. A status read
// cut short by the timeout counts as not ready, not as a bus failure.
func waitReady(parent context.Context, sensor readyChecker, period, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	notReady := func() error {
		if parent.Err() != nil {
			return parent.Err()
		}
		return fmt.Errorf("%w after %s", light.ErrNotReady, timeout)
	}
	for {
		ready, err := sensor.IsDataReady(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return notReady()
			}
			return err
		}
		if ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return notReady()
		case <-ticker.C:
		}
	}
}
