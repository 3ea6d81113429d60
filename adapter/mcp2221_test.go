package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCP2221_CopyReadData(t *testing.T) {
	resp := make([]byte, reportSize)
	resp[0] = cmdI2CGetData
	resp[3] = 3
	copy(resp[4:], []byte{0x34, 0x12, 0x00})

	buf := make([]byte, 3)
	require.NoError(t, copyReadData(resp, buf))
	assert.Equal(t, []byte{0x34, 0x12, 0x00}, buf)
}

func TestMCP2221_CopyReadDataErrors(t *testing.T) {
	tests := []struct {
		name string
		set  func(resp []byte)
	}{
		{"engine error", func(resp []byte) { resp[1] = responseReadError }},
		{"invalid size", func(resp []byte) { resp[3] = readSizeInvalid }},
		{"short data", func(resp []byte) { resp[3] = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := make([]byte, reportSize)
			resp[3] = 3
			tt.set(resp)
			assert.Error(t, copyReadData(resp, make([]byte, 3)))
		})
	}
}

func TestMCP2221_BufferToStatus(t *testing.T) {
	buf := make([]byte, reportSize)
	buf[9], buf[10] = 0x02, 0x00
	buf[11], buf[12] = 0x01, 0x00
	buf[13] = 4
	buf[14] = 117
	buf[15] = 9
	buf[16], buf[17] = 0xA4, 0x00
	buf[25] = 1

	assert.Equal(t, &MCP2221Status{
		I2CDataBufferCounter:   4,
		I2CSpeedDivider:        117,
		I2CTimeout:             9,
		CurrentAddress:         "a400",
		LastWriteRequestedSize: 2,
		LastWriteSentSize:      1,
		ReadPending:            1,
	}, bufferToStatus(buf))
}
