package adapter_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/karalabe/hid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/als"
	"github.com/mklimuk/als/adapter"
	"github.com/mklimuk/als/light"
)

// bridgeUnderTest returns an initialised MCP2221 or skips when the hardware
// suite is not enabled or no bridge is plugged in.
func bridgeUnderTest(t *testing.T) *adapter.MCP2221 {
	t.Helper()
	if os.Getenv("TEST_INTEGRATION_ENABLED") != "1" {
		t.Skip("set TEST_INTEGRATION_ENABLED=1 to run hardware tests")
	}
	if len(hid.Enumerate(adapter.VendorID, adapter.ProductID)) == 0 {
		t.Skip("no MCP2221 attached")
	}
	b := adapter.NewMCP2221(adapter.WithDeviceIndex(0))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Init(ctx))
	return b
}

func TestMCP2221_APDS9306Session(t *testing.T) {
	bridge := bridgeUnderTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	variant := light.VariantAPDS9306
	if v := os.Getenv("ALS_VARIANT"); v != "" {
		var err error
		variant, err = light.ParseVariant(v)
		require.NoError(t, err)
	}
	sensor, err := light.NewAPDS9306(ctx, als.NewPointerBus(bridge), variant)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, sensor.Disable(context.Background()))
	})

	cfg := light.Config{Resolution: light.Resolution16Bit, MeasurementRate: light.Rate25ms, Gain: light.Gain3}
	require.NoError(t, sensor.Configure(ctx, cfg))
	got, err := sensor.ReadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	require.NoError(t, sensor.Enable(ctx))
	assert.Eventually(t, func() bool {
		ready, err := sensor.IsDataReady(ctx)
		return err == nil && ready
	}, time.Second, 25*time.Millisecond)

	v, err := sensor.ReadData(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, v, uint32(1<<16-1), "16-bit resolution caps the count")
}

func TestMCP2221_Status(t *testing.T) {
	bridge := bridgeUnderTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	status, err := bridge.Status(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, status.CurrentAddress)
}
