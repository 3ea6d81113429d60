package light

import (
	"context"
	"fmt"
	"strings"

	"github.com/mklimuk/als"
)

// APDS9306Addr is the fixed 7-bit bus address of the part.
const APDS9306Addr = 0x52

// Variant selects one of the two parts sharing the register protocol.
type Variant int

const (
	VariantAPDS9306 Variant = iota
	VariantAPDS9306065
)

// PartID is the PART_ID register value the variant reports.
func (v Variant) PartID() byte {
	switch v {
	case VariantAPDS9306:
		return partIDAPDS
	case VariantAPDS9306065:
		return partIDAPDS065
	default:
		return 0
	}
}

func (v Variant) String() string {
	switch v {
	case VariantAPDS9306:
		return "APDS-9306"
	case VariantAPDS9306065:
		return "APDS-9306-065"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

func ParseVariant(s string) (Variant, error) {
	switch strings.TrimPrefix(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "apds-", "apds"), "apds") {
	case "9306":
		return VariantAPDS9306, nil
	case "9306-065", "9306065":
		return VariantAPDS9306065, nil
	}
	return 0, fmt.Errorf("%w: variant %q", ErrInvalidConfig, s)
}

type APDS9306Opts struct {
	Address byte
}

type APDS9306Opt func(*APDS9306Opts)

func WithAddress(address byte) APDS9306Opt {
	return func(o *APDS9306Opts) {
		o.Address = address
	}
}

// Status is the decoded MAIN_STATUS register.
type Status struct {
	PowerOn   bool
	Interrupt bool
	DataReady bool
}

func (s Status) String() string {
	return fmt.Sprintf("power_on: %t, interrupt: %t, data_ready: %t", s.PowerOn, s.Interrupt, s.DataReady)
}

func decodeStatus(v byte) Status {
	return Status{
		PowerOn:   v&statusPowerOn != 0,
		Interrupt: v&statusInterrupt != 0,
		DataReady: v&statusData != 0,
	}
}

// Measurement holds both ADC channels.
type Measurement struct {
	ALS   uint32
	Clear uint32
}

// APDS9306 represents Broadcom APDS-9306/APDS-9306-065 digital ambient light sensor.
// Typical usage:
//
//	s, err := NewAPDS9306(ctx, bus, VariantAPDS9306)
//	err = s.Configure(ctx, DefaultConfig())
//	err = s.Enable(ctx)
//	for ready, _ := s.IsDataReady(ctx); !ready; ready, _ = s.IsDataReady(ctx) {
//		time.Sleep(DefaultConfig().MeasurementRate.Duration())
//	}
//	v, err := s.ReadData(ctx)
//
// The handle owns the bus for its lifetime and is not safe for concurrent use.
// Nothing is retried and the device state is not tracked beyond the last
// written configuration.
type APDS9306 struct {
	transport als.RegisterBus
	addr      byte
	variant   Variant
	config    Config
	interrupt InterruptConfig
}

// NewAPDS9306 reads PART_ID and fails with ErrDeviceNotFound if it does not
// match the variant.
func NewAPDS9306(ctx context.Context, transport als.RegisterBus, variant Variant, opts ...APDS9306Opt) (*APDS9306, error) {
	o := APDS9306Opts{Address: APDS9306Addr}
	for _, opt := range opts {
		opt(&o)
	}
	if variant.PartID() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, variant)
	}
	s := &APDS9306{
		transport: transport,
		addr:      o.Address,
		variant:   variant,
		config:    DefaultConfig(),
		interrupt: DefaultInterruptConfig(),
	}
	id, err := s.readRegister(ctx, "read part id", RegPartID)
	if err != nil {
		return nil, err
	}
	if id != variant.PartID() {
		return nil, &PartIDError{Variant: variant, Got: id}
	}
	return s, nil
}

func (s *APDS9306) Variant() Variant {
	return s.variant
}

func (s *APDS9306) Address() byte {
	return s.addr
}

// Config returns the last configuration written with Configure.
func (s *APDS9306) Config() Config {
	return s.config
}

// InterruptConfig returns the last configuration written with ConfigureInterrupt.
func (s *APDS9306) InterruptConfig() InterruptConfig {
	return s.interrupt
}

// Reset sets SW_RESET in MAIN_CTRL. Completion is not verified.
func (s *APDS9306) Reset(ctx context.Context) error {
	return s.writeRegister(ctx, "reset", RegMainCtrl, mainCtrlSWReset)
}

// Configure writes ALS_MEAS_RATE and then ALS_GAIN. A failed gain write
// leaves the new measurement rate in place.
func (s *APDS9306) Configure(ctx context.Context, config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	err := s.writeRegister(ctx, "configure", RegMeasRate, EncodeMeasRate(config.Resolution, config.MeasurementRate))
	if err != nil {
		return err
	}
	err = s.writeRegister(ctx, "configure", RegGain, EncodeGain(config.Gain))
	if err != nil {
		return err
	}
	s.config = config
	return nil
}

// ReadConfig reads the measurement settings back from the device.
func (s *APDS9306) ReadConfig(ctx context.Context) (Config, error) {
	rate, err := s.readRegister(ctx, "read config", RegMeasRate)
	if err != nil {
		return Config{}, err
	}
	gain, err := s.readRegister(ctx, "read config", RegGain)
	if err != nil {
		return Config{}, err
	}
	var c Config
	c.Resolution, c.MeasurementRate, err = DecodeMeasRate(rate)
	if err != nil {
		return Config{}, err
	}
	c.Gain, err = DecodeGain(gain)
	if err != nil {
		return Config{}, err
	}
	return c, nil
}

// Enable sets ALS_EN keeping the other MAIN_CTRL bits.
func (s *APDS9306) Enable(ctx context.Context) error {
	return s.updateMainCtrl(ctx, "enable", func(v byte) byte { return v | mainCtrlALSEn })
}

// Disable clears ALS_EN keeping the other MAIN_CTRL bits.
func (s *APDS9306) Disable(ctx context.Context) error {
	return s.updateMainCtrl(ctx, "disable", func(v byte) byte { return v &^ mainCtrlALSEn })
}

func (s *APDS9306) updateMainCtrl(ctx context.Context, op string, fn func(byte) byte) error {
	current, err := s.readRegister(ctx, op, RegMainCtrl)
	if err != nil {
		return err
	}
	return s.writeRegister(ctx, op, RegMainCtrl, fn(current))
}

func (s *APDS9306) ReadStatus(ctx context.Context) (Status, error) {
	v, err := s.readRegister(ctx, "read status", RegMainStatus)
	if err != nil {
		return Status{}, err
	}
	return decodeStatus(v), nil
}

// IsDataReady tests the data status bit once. It never waits.
func (s *APDS9306) IsDataReady(ctx context.Context) (bool, error) {
	st, err := s.ReadStatus(ctx)
	return st.DataReady, err
}

func (s *APDS9306) IsInterrupt(ctx context.Context) (bool, error) {
	st, err := s.ReadStatus(ctx)
	return st.Interrupt, err
}

func (s *APDS9306) IsPowerOnStatus(ctx context.Context) (bool, error) {
	st, err := s.ReadStatus(ctx)
	return st.PowerOn, err
}

// ReadData returns the 20-bit ALS channel value.
func (s *APDS9306) ReadData(ctx context.Context) (uint32, error) {
	return s.read20(ctx, "read data", RegData0)
}

// ReadClearData returns the 20-bit clear channel value.
func (s *APDS9306) ReadClearData(ctx context.Context) (uint32, error) {
	return s.read20(ctx, "read clear data", RegClearData0)
}

func (s *APDS9306) ReadMeasurement(ctx context.Context) (Measurement, error) {
	var m Measurement
	var err error
	m.ALS, err = s.ReadData(ctx)
	if err != nil {
		return Measurement{}, err
	}
	m.Clear, err = s.ReadClearData(ctx)
	if err != nil {
		return Measurement{}, err
	}
	return m, nil
}

// ConfigureInterrupt writes INT_CFG, INT_PERSISTENCE, both thresholds and the
// variance threshold, one register at a time. It stops at the first failure.
func (s *APDS9306) ConfigureInterrupt(ctx context.Context, config InterruptConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	up := encode20(config.UpperThreshold)
	low := encode20(config.LowerThreshold)
	writes := []struct {
		reg   Register
		value byte
	}{
		{RegIntCfg, encodeIntCfg(config)},
		{RegIntPersistence, encodePersistence(config.Persistence)},
		{RegThresUp0, up[0]},
		{RegThresUp1, up[1]},
		{RegThresUp2, up[2]},
		{RegThresLow0, low[0]},
		{RegThresLow1, low[1]},
		{RegThresLow2, low[2]},
		{RegThresVar, byte(config.VarianceThreshold) & thresVarMask},
	}
	for _, w := range writes {
		if err := s.writeRegister(ctx, "configure interrupt", w.reg, w.value); err != nil {
			return err
		}
	}
	if config.Persistence > persistenceMax {
		config.Persistence = persistenceMax
	}
	config.UpperThreshold &= dataMask
	config.LowerThreshold &= dataMask
	s.interrupt = config
	return nil
}

func (s *APDS9306) read20(ctx context.Context, op string, reg Register) (uint32, error) {
	buf := make([]byte, 3)
	err := s.transport.ReadRegister(ctx, s.addr, byte(reg), buf)
	if err != nil {
		return 0, &BusError{Op: op, Register: reg, Err: err}
	}
	return decode20(buf), nil
}

func (s *APDS9306) readRegister(ctx context.Context, op string, reg Register) (byte, error) {
	buf := make([]byte, 1)
	err := s.transport.ReadRegister(ctx, s.addr, byte(reg), buf)
	if err != nil {
		return 0, &BusError{Op: op, Register: reg, Err: err}
	}
	return buf[0], nil
}

func (s *APDS9306) writeRegister(ctx context.Context, op string, reg Register, value byte) error {
	err := s.transport.WriteRegister(ctx, s.addr, byte(reg), []byte{value})
	if err != nil {
		return &BusError{Op: op, Register: reg, Err: err}
	}
	return nil
}
