package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/als/light"
)

const (
	adapterMCP2221 = "mcp2221"
	adapterCH347   = "ch347"
	adapterGeneric = "generic"
	adapterNanoPi  = "nanopi"
)

type alsConfig struct {
	Resolution string `yaml:"resolution"`
	Rate       string `yaml:"rate"`
	Gain       string `yaml:"gain"`
}

type interruptConfig struct {
	Source      string `yaml:"source"`
	Mode        string `yaml:"mode"`
	Enabled     bool   `yaml:"enabled"`
	Persistence uint   `yaml:"persistence"`
	Upper       uint   `yaml:"upper"`
	Lower       uint   `yaml:"lower"`
	Variance    int    `yaml:"variance"`
}

// config is the file layout; flags are merged on top of it.
type config struct {
	Adapter   string          `yaml:"adapter"`
	Device    string          `yaml:"device"`
	Bus       int             `yaml:"bus"`
	Variant   string          `yaml:"variant"`
	Address   int             `yaml:"address"`
	ALS       alsConfig       `yaml:"als"`
	Interrupt interruptConfig `yaml:"interrupt"`
}

func defaultConfig() config {
	sensor := light.DefaultConfig()
	irq := light.DefaultInterruptConfig()
	return config{
		Adapter: adapterMCP2221,
		Device:  "/dev/i2c-1",
		Bus:     -1,
		Variant: "apds9306",
		Address: light.APDS9306Addr,
		ALS: alsConfig{
			Resolution: fmt.Sprint(sensor.Resolution.Bits()),
			Rate:       sensor.MeasurementRate.String(),
			Gain:       fmt.Sprint(sensor.Gain.Multiplier()),
		},
		Interrupt: interruptConfig{
			Source:      irq.Source.String(),
			Mode:        irq.Mode.String(),
			Enabled:     irq.Enabled,
			Persistence: uint(irq.Persistence),
			Upper:       uint(irq.UpperThreshold),
			Lower:       uint(irq.LowerThreshold),
			Variance:    irq.VarianceThreshold.Counts(),
		},
	}
}

// loadConfig reads the YAML file over the defaults. A missing file is not an
// error when the path was not given explicitly.
func loadConfig(path string, explicit bool) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("could not read config file %s: %w", path, err)
	}
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// flagSetter is the part of cli.Context the merge needs.
type flagSetter interface {
	IsSet(name string) bool
	String(name string) string
	Int(name string) int
	Uint(name string) uint
	Bool(name string) bool
}

var _ flagSetter = &cli.Context{}

// applyFlags overrides file values with flags given on the command line or
// through the environment.
func (c *config) applyFlags(f flagSetter) {
	setString := func(name string, dst *string) {
		if f.IsSet(name) {
			*dst = f.String(name)
		}
	}
	setString("adapter", &c.Adapter)
	setString("device", &c.Device)
	setString("variant", &c.Variant)
	if f.IsSet("bus") {
		c.Bus = f.Int("bus")
	}
	if f.IsSet("addr") {
		c.Address = int(f.Uint("addr"))
	}
	setString("resolution", &c.ALS.Resolution)
	setString("rate", &c.ALS.Rate)
	setString("gain", &c.ALS.Gain)
	setString("source", &c.Interrupt.Source)
	setString("mode", &c.Interrupt.Mode)
	if f.IsSet("enable") {
		c.Interrupt.Enabled = f.Bool("enable")
	}
	if f.IsSet("persistence") {
		c.Interrupt.Persistence = f.Uint("persistence")
	}
	if f.IsSet("upper") {
		c.Interrupt.Upper = f.Uint("upper")
	}
	if f.IsSet("lower") {
		c.Interrupt.Lower = f.Uint("lower")
	}
	if f.IsSet("variance") {
		c.Interrupt.Variance = f.Int("variance")
	}
}

func (c config) variant() (light.Variant, error) {
	return light.ParseVariant(c.Variant)
}

func (c config) address() (byte, error) {
	if c.Address <= 0 || c.Address > 0x7F {
		return 0, fmt.Errorf("%w: i2c address %#x out of 7-bit range", light.ErrInvalidConfig, c.Address)
	}
	return byte(c.Address), nil
}

func (c config) sensorConfig() (light.Config, error) {
	var out light.Config
	var err error
	out.Resolution, err = light.ParseResolution(c.ALS.Resolution)
	if err != nil {
		return out, err
	}
	out.MeasurementRate, err = light.ParseMeasurementRate(c.ALS.Rate)
	if err != nil {
		return out, err
	}
	out.Gain, err = light.ParseGain(c.ALS.Gain)
	if err != nil {
		return out, err
	}
	return out, nil
}

func (c config) interruptConfig() (light.InterruptConfig, error) {
	out := light.InterruptConfig{
		Enabled:        c.Interrupt.Enabled,
		UpperThreshold: uint32(c.Interrupt.Upper),
		LowerThreshold: uint32(c.Interrupt.Lower),
	}
	if c.Interrupt.Persistence > 15 {
		return out, fmt.Errorf("%w: persistence %d above 15", light.ErrInvalidConfig, c.Interrupt.Persistence)
	}
	out.Persistence = uint8(c.Interrupt.Persistence)
	var err error
	out.Source, err = light.ParseInterruptSource(c.Interrupt.Source)
	if err != nil {
		return out, err
	}
	out.Mode, err = light.ParseInterruptMode(c.Interrupt.Mode)
	if err != nil {
		return out, err
	}
	out.VarianceThreshold, err = light.ParseVarianceThreshold(fmt.Sprint(c.Interrupt.Variance))
	if err != nil {
		return out, err
	}
	return out, out.Validate()
}

// resolveConfig loads the file named by the global --config flag and merges
// the command's flags.
func resolveConfig(c *cli.Context) (config, error) {
	cfg, err := loadConfig(c.String("config"), c.IsSet("config"))
	if err != nil {
		return cfg, err
	}
	cfg.applyFlags(c)
	return cfg, nil
}

var configCmd = cli.Command{
	Name:  "config",
	Usage: "inspect the effective configuration",
	Subcommands: cli.Commands{
		&configShowCmd,
	},
}

var configShowCmd = cli.Command{
	Name:  "show",
	Usage: "print the configuration after merging file, environment and flags",
	Flags: append(deviceFlags(), alsFlags()...),
	Action: func(c *cli.Context) error {
		cfg, err := resolveConfig(c)
		if err != nil {
			return exitError(err, "configuration error")
		}
		return printYAML(c, cfg)
	},
}
