package light

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Resolution is the ADC bit width. Values are the datasheet codes.
type Resolution byte

const (
	Resolution20Bit Resolution = 0b000 // 400ms conversion
	Resolution19Bit Resolution = 0b001 // 200ms conversion
	Resolution18Bit Resolution = 0b010 // 100ms conversion (default)
	Resolution17Bit Resolution = 0b011 // 50ms conversion
	Resolution16Bit Resolution = 0b100 // 25ms conversion
	Resolution13Bit Resolution = 0b101 // 3.125ms conversion
)

var resolutions = []struct {
	res  Resolution
	bits int
	conv time.Duration
}{
	{Resolution20Bit, 20, 400 * time.Millisecond},
	{Resolution19Bit, 19, 200 * time.Millisecond},
	{Resolution18Bit, 18, 100 * time.Millisecond},
	{Resolution17Bit, 17, 50 * time.Millisecond},
	{Resolution16Bit, 16, 25 * time.Millisecond},
	{Resolution13Bit, 13, 3125 * time.Microsecond},
}

// Resolutions lists every defined resolution code.
func Resolutions() []Resolution {
	out := make([]Resolution, 0, len(resolutions))
	for _, r := range resolutions {
		out = append(out, r.res)
	}
	return out
}

func (r Resolution) Valid() bool {
	return r <= Resolution13Bit
}

// Bits returns the bit width, 0 for undefined codes.
func (r Resolution) Bits() int {
	if !r.Valid() {
		return 0
	}
	return resolutions[r].bits
}

// ConversionTime is how long a single conversion takes at this resolution.
func (r Resolution) ConversionTime() time.Duration {
	if !r.Valid() {
		return 0
	}
	return resolutions[r].conv
}

func (r Resolution) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Resolution(%d)", byte(r))
	}
	return fmt.Sprintf("%d-bit", r.Bits())
}

// ParseResolution accepts "18", "18bit" or "18-bit".
func ParseResolution(s string) (Resolution, error) {
	s = strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "bit"), "-")
	bits, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: resolution %q", ErrInvalidConfig, s)
	}
	for _, r := range resolutions {
		if r.bits == bits {
			return r.res, nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported resolution %d-bit", ErrInvalidConfig, bits)
}

// MeasurementRate is the interval between conversions. Values are the datasheet codes.
type MeasurementRate byte

const (
	Rate25ms   MeasurementRate = 0b000
	Rate50ms   MeasurementRate = 0b001
	Rate100ms  MeasurementRate = 0b010 // default
	Rate200ms  MeasurementRate = 0b011
	Rate500ms  MeasurementRate = 0b100
	Rate1000ms MeasurementRate = 0b101
	Rate2000ms MeasurementRate = 0b110
)

var rates = []time.Duration{
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
	500 * time.Millisecond,
	1000 * time.Millisecond,
	2000 * time.Millisecond,
}

// MeasurementRates lists every defined rate code.
func MeasurementRates() []MeasurementRate {
	out := make([]MeasurementRate, 0, len(rates))
	for i := range rates {
		out = append(out, MeasurementRate(i))
	}
	return out
}

func (m MeasurementRate) Valid() bool {
	return m <= Rate2000ms
}

func (m MeasurementRate) Duration() time.Duration {
	if !m.Valid() {
		return 0
	}
	return rates[m]
}

func (m MeasurementRate) String() string {
	if !m.Valid() {
		return fmt.Sprintf("MeasurementRate(%d)", byte(m))
	}
	return fmt.Sprintf("%dms", m.Duration().Milliseconds())
}

// ParseMeasurementRate accepts a Go duration ("100ms", "1s") or a bare number of milliseconds.
func ParseMeasurementRate(s string) (MeasurementRate, error) {
	s = strings.TrimSpace(s)
	d, err := time.ParseDuration(s)
	if err != nil {
		ms, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, fmt.Errorf("%w: measurement rate %q", ErrInvalidConfig, s)
		}
		d = time.Duration(ms) * time.Millisecond
	}
	for i, r := range rates {
		if r == d {
			return MeasurementRate(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported measurement rate %s", ErrInvalidConfig, d)
}

// Gain is the analog gain. Values are the datasheet codes.
type Gain byte

const (
	Gain1  Gain = 0b000
	Gain3  Gain = 0b001 // default
	Gain6  Gain = 0b010
	Gain9  Gain = 0b011
	Gain18 Gain = 0b100
)

var gains = []int{1, 3, 6, 9, 18}

// Gains lists every defined gain code.
func Gains() []Gain {
	out := make([]Gain, 0, len(gains))
	for i := range gains {
		out = append(out, Gain(i))
	}
	return out
}

func (g Gain) Valid() bool {
	return g <= Gain18
}

func (g Gain) Multiplier() int {
	if !g.Valid() {
		return 0
	}
	return gains[g]
}

func (g Gain) String() string {
	if !g.Valid() {
		return fmt.Sprintf("Gain(%d)", byte(g))
	}
	return fmt.Sprintf("x%d", g.Multiplier())
}

// ParseGain accepts "3", "x3" or "3x".
func ParseGain(s string) (Gain, error) {
	s = strings.Trim(strings.ToLower(strings.TrimSpace(s)), "x")
	m, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: gain %q", ErrInvalidConfig, s)
	}
	for i, g := range gains {
		if g == m {
			return Gain(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported gain x%d", ErrInvalidConfig, m)
}

// Config bundles the ALS measurement settings.
type Config struct {
	Resolution      Resolution
	MeasurementRate MeasurementRate
	Gain            Gain
}

// DefaultConfig matches the power-on register state.
func DefaultConfig() Config {
	return Config{
		Resolution:      Resolution18Bit,
		MeasurementRate: Rate100ms,
		Gain:            Gain3,
	}
}

func (c Config) Validate() error {
	if !c.Resolution.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.Resolution)
	}
	if !c.MeasurementRate.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.MeasurementRate)
	}
	if !c.Gain.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.Gain)
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("%s, %s, %s", c.Resolution, c.MeasurementRate, c.Gain)
}

// EncodeMeasRate packs resolution and rate into the ALS_MEAS_RATE value.
func EncodeMeasRate(res Resolution, rate MeasurementRate) byte {
	return (byte(res)<<measRateResolutionShift)&measRateResolutionMask | byte(rate)&measRateRateMask
}

// DecodeMeasRate is the inverse of EncodeMeasRate.
func DecodeMeasRate(value byte) (Resolution, MeasurementRate, error) {
	res := Resolution((value & measRateResolutionMask) >> measRateResolutionShift)
	rate := MeasurementRate(value & measRateRateMask)
	if !res.Valid() || !rate.Valid() {
		return 0, 0, fmt.Errorf("%w: ALS_MEAS_RATE %#02x", ErrInvalidConfig, value)
	}
	return res, rate, nil
}

func EncodeGain(g Gain) byte {
	return byte(g) & gainMask
}

func DecodeGain(value byte) (Gain, error) {
	g := Gain(value & gainMask)
	if !g.Valid() {
		return 0, fmt.Errorf("%w: ALS_GAIN %#02x", ErrInvalidConfig, value)
	}
	return g, nil
}
