package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/als/cmd/als/console"
	"github.com/mklimuk/als/light"
)

type readySequence struct {
	answers []bool
	err     error
	calls   int
}

func (r *readySequence) IsDataReady(ctx context.Context) (bool, error) {
	r.calls++
	if r.err != nil {
		return false, r.err
	}
	if r.calls > len(r.answers) {
		return false, nil
	}
	return r.answers[r.calls-1], nil
}

func TestWaitReady(t *testing.T) {
	seq := &readySequence{answers: []bool{false, false, true}}
	err := waitReady(context.Background(), seq, time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, seq.calls)
}

func TestWaitReady_Timeout(t *testing.T) {
	seq := &readySequence{}
	err := waitReady(context.Background(), seq, 5*time.Millisecond, 20*time.Millisecond)
	assert.ErrorIs(t, err, light.ErrNotReady)
	assert.GreaterOrEqual(t, seq.calls, 1)
}

func TestWaitReady_BusError(t *testing.T) {
	fail := errors.New("nack")
	seq := &readySequence{err: fail}
	err := waitReady(context.Background(), seq, time.Millisecond, time.Second)
	assert.ErrorIs(t, err, fail)
	assert.Equal(t, 1, seq.calls, "no retry after a transport error")
}

// slowStatus answers only after its context is done, the way a bus transfer
// interrupted by the deadline does.
type slowStatus struct{}

func (slowStatus) IsDataReady(ctx context.Context) (bool, error) {
	<-ctx.Done()
	return false, &light.BusError{Op: "read status", Register: light.RegMainStatus, Err: ctx.Err()}
}

func TestWaitReady_DeadlineDuringRead(t *testing.T) {
	err := waitReady(context.Background(), slowStatus{}, 5*time.Millisecond, 15*time.Millisecond)
	assert.ErrorIs(t, err, light.ErrNotReady)
	assert.Equal(t, console.CodeNotReady, exitError(err, "no data").ExitCode())
}

func TestWaitReady_CancelledDuringRead(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	err := waitReady(ctx, slowStatus{}, time.Millisecond, time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, light.ErrNotReady)
}

func TestWaitReady_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := waitReady(ctx, &readySequence{}, time.Millisecond, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSamplePeriod(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, samplePeriod(light.DefaultConfig()))
	assert.Equal(t, 400*time.Millisecond, samplePeriod(light.Config{
		Resolution:      light.Resolution20Bit,
		MeasurementRate: light.Rate25ms,
		Gain:            light.Gain1,
	}))
}

func TestExitError_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", &light.PartIDError{Variant: light.VariantAPDS9306, Got: 0xB3}, console.CodeNotFound},
		{"not ready", light.ErrNotReady, console.CodeNotReady},
		{"bus", &light.BusError{Op: "read status", Register: light.RegMainStatus, Err: errors.New("nack")}, console.CodeFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, exitError(tt.err, "failed").ExitCode())
		})
	}
}
