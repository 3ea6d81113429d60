package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/als/light"
	"github.com/mklimuk/als/store"
)

func TestMonitor_Count(t *testing.T) {
	n := uint32(0)
	reader := light.NewMockReader(func(ctx context.Context) (light.Measurement, error) {
		n++
		return light.Measurement{ALS: n * 10, Clear: n * 20}, nil
	})
	var got []store.Sample
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := monitor{
		reader:   reader,
		variant:  light.VariantAPDS9306065,
		config:   light.DefaultConfig(),
		interval: time.Millisecond,
		count:    3,
		now:      func() time.Time { return stamp },
		sink: func(ctx context.Context, s store.Sample) error {
			got = append(got, s)
			return nil
		},
	}
	require.NoError(t, m.run(context.Background()))
	require.Len(t, got, 3)
	assert.Equal(t, uint32(30), got[2].ALS)
	assert.Equal(t, uint32(60), got[2].Clear)
	assert.Equal(t, "APDS-9306-065", got[0].Variant)
	assert.Equal(t, stamp, got[0].TakenAt)
	assert.Equal(t, light.DefaultConfig(), got[0].Config)
}

func TestMonitor_SkipsReadErrors(t *testing.T) {
	calls := 0
	reader := light.NewMockReader(func(ctx context.Context) (light.Measurement, error) {
		calls++
		if calls%2 == 1 {
			return light.Measurement{}, errors.New("nack")
		}
		return light.Measurement{ALS: 1}, nil
	})
	saved := 0
	m := monitor{
		reader:   reader,
		interval: time.Millisecond,
		count:    2,
		sink: func(ctx context.Context, s store.Sample) error {
			saved++
			return nil
		},
	}
	require.NoError(t, m.run(context.Background()))
	assert.Equal(t, 2, saved)
	assert.Equal(t, 4, calls)
}

func TestMonitor_SinkErrorStops(t *testing.T) {
	fail := errors.New("disk full")
	m := monitor{
		reader: light.NewMockReader(func(ctx context.Context) (light.Measurement, error) {
			return light.Measurement{}, nil
		}),
		interval: time.Millisecond,
		sink:     func(ctx context.Context, s store.Sample) error { return fail },
	}
	assert.ErrorIs(t, m.run(context.Background()), fail)
}

func TestMonitor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := monitor{
		reader: light.NewMockReader(func(ctx context.Context) (light.Measurement, error) {
			return light.Measurement{}, nil
		}),
		interval: time.Millisecond,
		sink: func(ctx context.Context, s store.Sample) error {
			cancel()
			return nil
		},
	}
	assert.ErrorIs(t, m.run(ctx), context.Canceled)
}

func TestMonitor_StoresToSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := store.OpenSQLite(ctx, t.TempDir()+"/samples.db")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	m := monitor{
		reader: light.NewMockReader(func(ctx context.Context) (light.Measurement, error) {
			return light.Measurement{ALS: 1234, Clear: 2345}, nil
		}),
		variant:  light.VariantAPDS9306,
		config:   light.DefaultConfig(),
		interval: time.Millisecond,
		count:    2,
		sink: func(ctx context.Context, s store.Sample) error {
			_, err := db.Save(ctx, s)
			return err
		},
	}
	require.NoError(t, m.run(ctx))
	samples, err := db.Latest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, uint32(1234), samples[0].ALS)
}
