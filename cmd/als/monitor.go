package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/als/cmd/als/console"
	"github.com/mklimuk/als/light"
	"github.com/mklimuk/als/store"
)

var monitorCmd = cli.Command{
	Name:    "monitor",
	Aliases: []string{"mon"},
	Usage:   "read the sensor periodically, optionally logging samples to sqlite",
	Flags: append(append(deviceFlags(), alsFlags()...),
		&cli.DurationFlag{Name: "interval", Aliases: []string{"i"}, Value: time.Second, Usage: "time between samples"},
		&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "stop after this many samples (0 runs until interrupted)"},
		&cli.StringFlag{Name: "db", Usage: "sqlite file to append samples to"},
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
		defer func() {
			// the run context may be cancelled already
			if err := sensor.Disable(context.Background()); err != nil {
				slog.Warn("could not put sensor in standby", "error", err)
			}
		}()

		interval := max(c.Duration("interval"), samplePeriod(sc))
		sink := printSample
		if path := c.String("db"); path != "" {
			db, err := store.OpenSQLite(c.Context, path)
			if err != nil {
				return exitError(err, "could not open sample database")
			}
			defer func() { _ = db.Close() }()
			console.PInfof(console.PictoDisk, "logging samples to %s", console.White(path))
			sink = func(ctx context.Context, s store.Sample) error {
				printSample(ctx, s)
				_, err := db.Save(ctx, s)
				return err
			}
		}
		m := monitor{
			reader:   sensor,
			variant:  sensor.Variant(),
			config:   sc,
			interval: interval,
			count:    c.Int("count"),
			sink:     sink,
		}
		err = m.run(c.Context)
		if err != nil && !errors.Is(err, context.Canceled) {
			return exitError(err, "monitor stopped")
		}
		return nil
	},
}

// monitor takes a reading every interval and hands it to the sink. Read
// errors are logged and the sample skipped; sink errors stop the loop.
type monitor struct {
	reader   light.Reader
	variant  light.Variant
	config   light.Config
	interval time.Duration
	count    int
	sink     func(ctx context.Context, s store.Sample) error
	now      func() time.Time
}

func (m monitor) run(ctx context.Context) error {
	now := m.now
	if now == nil {
		now = time.Now
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	taken := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		meas, err := m.reader.ReadMeasurement(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("sample read failed", "error", err)
			continue
		}
		err = m.sink(ctx, store.Sample{
			TakenAt:     now(),
			Variant:     m.variant.String(),
			Config:      m.config,
			Measurement: meas,
		})
		if err != nil {
			return err
		}
		taken++
		if m.count > 0 && taken >= m.count {
			return nil
		}
	}
}

func printSample(ctx context.Context, s store.Sample) error {
	console.PInfof(console.PictoClock, "%s als %s clear %s",
		s.TakenAt.Format(time.TimeOnly), console.White(s.ALS), console.White(s.Clear))
	return nil
}
