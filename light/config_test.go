package light

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasRate_RoundTrip(t *testing.T) {
	for _, res := range Resolutions() {
		for _, rate := range MeasurementRates() {
			t.Run(fmt.Sprintf("%s/%s", res, rate), func(t *testing.T) {
				gotRes, gotRate, err := DecodeMeasRate(EncodeMeasRate(res, rate))
				require.NoError(t, err)
				assert.Equal(t, res, gotRes)
				assert.Equal(t, rate, gotRate)
			})
		}
	}
}

func TestGain_RoundTrip(t *testing.T) {
	for _, g := range Gains() {
		got, err := DecodeGain(EncodeGain(g))
		require.NoError(t, err)
		assert.Equal(t, g, got)
	}
}

func TestEncodeMeasRate_Literal(t *testing.T) {
	tests := []struct {
		res      Resolution
		rate     MeasurementRate
		expected byte
	}{
		{Resolution18Bit, Rate100ms, 0x22},
		{Resolution20Bit, Rate25ms, 0x00},
		{Resolution13Bit, Rate2000ms, 0x56},
		{Resolution16Bit, Rate500ms, 0x44},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s/%s", test.res, test.rate), func(t *testing.T) {
			assert.Equal(t, test.expected, EncodeMeasRate(test.res, test.rate))
		})
	}
}

func TestDecode_UndefinedCodes(t *testing.T) {
	_, _, err := DecodeMeasRate(0x62) // resolution code 0b110
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, _, err = DecodeMeasRate(0x27) // rate code 0b111
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = DecodeGain(0x05)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "ALS_GAIN 0x05")
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.ErrorIs(t, Config{Resolution: 6}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{MeasurementRate: 7}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{Gain: 5}.Validate(), ErrInvalidConfig)
}

func TestEnumProperties(t *testing.T) {
	assert.Equal(t, 18, Resolution18Bit.Bits())
	assert.Equal(t, 3125*time.Microsecond, Resolution13Bit.ConversionTime())
	assert.Equal(t, 2*time.Second, Rate2000ms.Duration())
	assert.Equal(t, 18, Gain18.Multiplier())
	assert.Equal(t, "18-bit, 100ms, x3", DefaultConfig().String())
	assert.Equal(t, "Gain(9)", Gain(9).String())
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		given    string
		expected Resolution
	}{
		{"20", Resolution20Bit},
		{"18bit", Resolution18Bit},
		{"13-bit", Resolution13Bit},
		{" 16 ", Resolution16Bit},
	}
	for _, test := range tests {
		t.Run(test.given, func(t *testing.T) {
			got, err := ParseResolution(test.given)
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
		})
	}
	_, err := ParseResolution("14")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = ParseResolution("high")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseMeasurementRate(t *testing.T) {
	tests := []struct {
		given    string
		expected MeasurementRate
	}{
		{"25ms", Rate25ms},
		{"100", Rate100ms},
		{"1s", Rate1000ms},
		{"2000ms", Rate2000ms},
	}
	for _, test := range tests {
		t.Run(test.given, func(t *testing.T) {
			got, err := ParseMeasurementRate(test.given)
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
		})
	}
	_, err := ParseMeasurementRate("300ms")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseGain(t *testing.T) {
	for _, s := range []string{"3", "x3", "3x", "X3"} {
		got, err := ParseGain(s)
		require.NoError(t, err, s)
		assert.Equal(t, Gain3, got, s)
	}
	_, err := ParseGain("4")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		given    string
		expected Variant
	}{
		{"apds9306", VariantAPDS9306},
		{"9306", VariantAPDS9306},
		{"APDS-9306", VariantAPDS9306},
		{"apds9306-065", VariantAPDS9306065},
		{"9306-065", VariantAPDS9306065},
	}
	for _, test := range tests {
		t.Run(test.given, func(t *testing.T) {
			got, err := ParseVariant(test.given)
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
		})
	}
	_, err := ParseVariant("tsl2591")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestInterruptEncoding(t *testing.T) {
	assert.Equal(t, byte(0x10), encodeIntCfg(DefaultInterruptConfig()))
	assert.Equal(t, byte(0x0C), encodeIntCfg(InterruptConfig{Source: InterruptSourceClear, Mode: InterruptModeVariation, Enabled: true}))
	assert.Equal(t, byte(0x30), encodePersistence(3))
	assert.Equal(t, byte(0xF0), encodePersistence(200))
	assert.Equal(t, [3]byte{0xFF, 0xFF, 0x0F}, encode20(0xFFFFFFFF))
	assert.Equal(t, uint32(0x0ABCDE), decode20([]byte{0xDE, 0xBC, 0xFA}))
	assert.Equal(t, 1024, Variance1024.Counts())
}

func TestParseInterruptFields(t *testing.T) {
	src, err := ParseInterruptSource("clear")
	require.NoError(t, err)
	assert.Equal(t, InterruptSourceClear, src)
	mode, err := ParseInterruptMode("variation")
	require.NoError(t, err)
	assert.Equal(t, InterruptModeVariation, mode)
	v, err := ParseVarianceThreshold("256")
	require.NoError(t, err)
	assert.Equal(t, Variance256, v)
	_, err = ParseVarianceThreshold("100")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
