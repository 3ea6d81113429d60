package light

import (
	"fmt"
	"strconv"
	"strings"
)

type InterruptSource byte

const (
	InterruptSourceClear InterruptSource = 0b00
	InterruptSourceALS   InterruptSource = 0b01 // default
)

func (s InterruptSource) String() string {
	switch s {
	case InterruptSourceClear:
		return "clear"
	case InterruptSourceALS:
		return "als"
	default:
		return fmt.Sprintf("InterruptSource(%d)", byte(s))
	}
}

func ParseInterruptSource(s string) (InterruptSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clear":
		return InterruptSourceClear, nil
	case "als":
		return InterruptSourceALS, nil
	}
	return 0, fmt.Errorf("%w: interrupt source %q", ErrInvalidConfig, s)
}

type InterruptMode byte

const (
	InterruptModeThreshold InterruptMode = 0 // default
	InterruptModeVariation InterruptMode = 1
)

func (m InterruptMode) String() string {
	switch m {
	case InterruptModeThreshold:
		return "threshold"
	case InterruptModeVariation:
		return "variation"
	default:
		return fmt.Sprintf("InterruptMode(%d)", byte(m))
	}
}

func ParseInterruptMode(s string) (InterruptMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "threshold":
		return InterruptModeThreshold, nil
	case "variation", "variance":
		return InterruptModeVariation, nil
	}
	return 0, fmt.Errorf("%w: interrupt mode %q", ErrInvalidConfig, s)
}

// VarianceThreshold is the count difference between two consecutive
// conversions that triggers a variation interrupt.
type VarianceThreshold byte

const (
	Variance8    VarianceThreshold = 0b000
	Variance16   VarianceThreshold = 0b001
	Variance32   VarianceThreshold = 0b010
	Variance64   VarianceThreshold = 0b011
	Variance128  VarianceThreshold = 0b100
	Variance256  VarianceThreshold = 0b101
	Variance512  VarianceThreshold = 0b110
	Variance1024 VarianceThreshold = 0b111
)

func (v VarianceThreshold) Valid() bool {
	return v <= Variance1024
}

// Counts returns the threshold in ADC counts.
func (v VarianceThreshold) Counts() int {
	if !v.Valid() {
		return 0
	}
	return 8 << v
}

func (v VarianceThreshold) String() string {
	if !v.Valid() {
		return fmt.Sprintf("VarianceThreshold(%d)", byte(v))
	}
	return strconv.Itoa(v.Counts())
}

func ParseVarianceThreshold(s string) (VarianceThreshold, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: variance threshold %q", ErrInvalidConfig, s)
	}
	for v := Variance8; v <= Variance1024; v++ {
		if v.Counts() == n {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported variance threshold %d", ErrInvalidConfig, n)
}

// InterruptConfig drives the INT pin logic.
type InterruptConfig struct {
	Source  InterruptSource
	Mode    InterruptMode
	Enabled bool
	// Persistence is the number of consecutive out of range conversions
	// before the interrupt asserts. Clamped to 15.
	Persistence uint8
	// Thresholds are 20-bit values; upper bits are dropped.
	UpperThreshold    uint32
	LowerThreshold    uint32
	VarianceThreshold VarianceThreshold
}

func DefaultInterruptConfig() InterruptConfig {
	return InterruptConfig{
		Source:            InterruptSourceALS,
		Mode:              InterruptModeThreshold,
		UpperThreshold:    dataMask,
		VarianceThreshold: Variance8,
	}
}

func (c InterruptConfig) Validate() error {
	if c.Source != InterruptSourceClear && c.Source != InterruptSourceALS {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.Source)
	}
	if c.Mode != InterruptModeThreshold && c.Mode != InterruptModeVariation {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.Mode)
	}
	if !c.VarianceThreshold.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.VarianceThreshold)
	}
	return nil
}

func encodeIntCfg(c InterruptConfig) byte {
	v := (byte(c.Source) << intCfgSourceShift) & intCfgSourceMask
	if c.Mode == InterruptModeVariation {
		v |= intCfgVarMode
	}
	if c.Enabled {
		v |= intCfgEnable
	}
	return v
}

func encodePersistence(p uint8) byte {
	if p > persistenceMax {
		p = persistenceMax
	}
	return p << persistenceShift
}

// encode20 splits a 20-bit value into its little endian register bytes.
func encode20(v uint32) [3]byte {
	v &= dataMask
	return [3]byte{byte(v), byte(v >> 8), byte(v>>16) & 0x0F}
}

func decode20(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2]&0x0F)<<16
}
