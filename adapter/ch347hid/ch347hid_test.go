//go:build ch347

package ch347hid

import (
	"bytes"
	"context"
	"testing"

	"github.com/serfreeman1337/go-ch347"
	"github.com/sstallion/go-hid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ch347.HIDDev = (*hid.Device)(nil)
var _ ch347.HIDDev = &timeoutDevice{}

// ackDevice answers every confirmation read with the same status byte and
// records the frames written to it.
type ackDevice struct {
	status byte
	frames [][]byte
}

func (d *ackDevice) Write(p []byte) (int, error) {
	d.frames = append(d.frames, append([]byte(nil), p...))
	return len(p), nil
}

func (d *ackDevice) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = d.status
	}
	return len(p), nil
}

func (d *ackDevice) SendFeatureReport(p []byte) (int, error) {
	return len(p), nil
}

func TestBridge_SetI2CStandardRate(t *testing.T) {
	dev := &ackDevice{status: 0x01}
	io := &ch347.IO{Dev: dev}
	require.NoError(t, io.SetI2C(ch347.I2CMode1))
	require.Len(t, dev.frames, 1)
	assert.Equal(t, []byte{0x03, 0x00, 0xAA, 0x61, 0x00}, dev.frames[0])
}

func TestBridge_WriteRegister(t *testing.T) {
	dev := &ackDevice{status: 0x01}
	b := &Bridge{io: &ch347.IO{Dev: dev}}

	require.NoError(t, b.WriteRegister(context.Background(), 0x52, 0x04, []byte{0x22}))
	require.NotEmpty(t, dev.frames)
	frame := dev.frames[0]
	assert.True(t, bytes.Contains(frame, []byte{0x52 << 1, 0x04, 0x22}), "address, register and value in one write: % x", frame)
}

func TestBridge_Nack(t *testing.T) {
	dev := &ackDevice{status: 0x00}
	b := &Bridge{io: &ch347.IO{Dev: dev}}

	err := b.WriteRegister(context.Background(), 0x52, 0x00, []byte{0x02})
	assert.ErrorIs(t, err, ch347.ErrI2CWrite)
}
