package esb

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestPayloadHeaderPresentBeforeCommit(t *testing.T) {
	app, _, _ := splitForTest(t, DefaultConfig())

	pkt, err := app.GrantPacket(NewHeader(6, 12, 3, true))
	require.NoError(t, err)
	defer pkt.Abort()

	// The header is written at construction, before any body bytes.
	require.Equal(t, uint8(6), pkt.Pipe())
	require.Equal(t, 12, pkt.PayloadLen())
	h := pkt.Header()
	require.Equal(t, uint8(3), h.Pid())
	require.True(t, h.NoAck())
}

func TestDMAPointerTargetsHardwarePacket(t *testing.T) {
	app, _, _ := splitForTest(t, DefaultConfig())

	pkt, err := app.GrantPacket(NewHeader(1, 4, 0, false))
	require.NoError(t, err)
	defer pkt.Abort()
	copy(pkt.Body(), "dmas")

	// The DMA region starts at the length byte: length, pid_no_ack,
	// then payload.
	dma := (*[6]byte)(pkt.DMAPointer())
	require.Equal(t, uint8(4), dma[0])
	require.Equal(t, []byte("dmas"), dma[2:6])

	// The pointer is stable: it aliases ring storage, not a copy.
	dma[2] = 'D'
	require.Equal(t, []byte("Dmas"), pkt.Body())
}

func TestDMAPointerStableAcrossBodyWrites(t *testing.T) {
	app, _, _ := splitForTest(t, DefaultConfig())

	pkt, err := app.GrantPacket(NewHeader(0, 8, 0, false))
	require.NoError(t, err)
	defer pkt.Abort()

	p1 := uintptr(pkt.DMAPointer())
	copy(pkt.Body(), "01234567")
	p2 := uintptr(pkt.DMAPointer())
	require.Equal(t, p1, p2)
	require.Equal(t, p1, uintptr(unsafe.Pointer(&pkt.Body()[0]))-2)
}
