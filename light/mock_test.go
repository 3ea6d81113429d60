package light

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockReader_StaticValue(t *testing.T) {
	r := NewMockReader(func(ctx context.Context) (Measurement, error) {
		return Measurement{ALS: 1200, Clear: 1500}, nil
	})
	m, err := r.ReadMeasurement(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Measurement{ALS: 1200, Clear: 1500}, m)
}

func TestMockReader_DynamicBehavior(t *testing.T) {
	calls := 0
	r := NewMockReader(func(ctx context.Context) (Measurement, error) {
		calls++
		return Measurement{ALS: uint32(calls * 100)}, nil
	})
	ctx := context.Background()

	first, err := r.ReadMeasurement(ctx)
	require.NoError(t, err)
	second, err := r.ReadMeasurement(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint32(100), first.ALS)
	assert.Equal(t, uint32(200), second.ALS)
}

func TestMockReader_Error(t *testing.T) {
	r := NewMockReader(func(ctx context.Context) (Measurement, error) {
		return Measurement{}, fmt.Errorf("sensor malfunction")
	})
	_, err := r.ReadMeasurement(context.Background())
	assert.EqualError(t, err, "sensor malfunction")
}

func TestMockReader_ContextPassedThrough(t *testing.T) {
	type key string
	var got context.Context
	r := NewMockReader(func(ctx context.Context) (Measurement, error) {
		got = ctx
		return Measurement{}, nil
	})
	ctx := context.WithValue(context.Background(), key("k"), "v")
	_, err := r.ReadMeasurement(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v", got.Value(key("k")))
}
