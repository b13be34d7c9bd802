package esb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		h    Header
	}{
		{"zero", Header{}},
		{"typical", Header{RSSI: 40, Pipe: 2, Length: 6, PidNoAck: 0x05}},
		{"max fields", Header{RSSI: 0xFF, Pipe: 7, Length: 252, PidNoAck: 0xFF}},
		{"length only", Header{Length: 1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.h, HeaderFromBytes(tc.h.Bytes()))
		})
	}
}

func TestHeaderBytePositions(t *testing.T) {
	h := Header{RSSI: 1, Pipe: 2, Length: 3, PidNoAck: 4}
	b := h.Bytes()
	// Positions are hardware-fixed; bytes 2 and 3 are consumed by DMA.
	require.Equal(t, [4]byte{1, 2, 3, 4}, b)
}

func TestHeaderDecodeIsTotal(t *testing.T) {
	// Every 4-byte input is a valid header.
	for _, b := range [][4]byte{
		{0, 0, 0, 0},
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0xAA, 0x55, 0xAA, 0x55},
	} {
		h := HeaderFromBytes(b)
		require.Equal(t, b, h.Bytes())
	}
}

func TestHeaderPidNoAck(t *testing.T) {
	h := NewHeader(3, 10, 2, true)
	require.Equal(t, uint8(3), h.Pipe)
	require.Equal(t, uint8(10), h.Length)
	require.Equal(t, uint8(2), h.Pid())
	require.True(t, h.NoAck())

	h.SetNoAck(false)
	require.False(t, h.NoAck())
	require.Equal(t, uint8(2), h.Pid())

	h.SetPid(5) // masked to 2 bits
	require.Equal(t, uint8(1), h.Pid())
	require.False(t, h.NoAck())
}
