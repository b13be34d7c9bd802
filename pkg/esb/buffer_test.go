package esb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testRadio and testClock record the one-time split initialization.
type testRadio struct {
	calls *[]string

	maxPayload uint8
	txPower    TxPower
	addrs      Addresses
}

func (r *testRadio) Init(maxPayloadSize uint8, txPower TxPower, addrs *Addresses) {
	*r.calls = append(*r.calls, "radio")
	r.maxPayload = maxPayloadSize
	r.txPower = txPower
	r.addrs = *addrs
}

type testClock struct {
	calls *[]string
}

func (c *testClock) Init() {
	*c.calls = append(*c.calls, "timer")
}

func splitForTest(t *testing.T, cfg Config) (*App, *Irq, *IrqTimer) {
	t.Helper()
	var calls []string
	// Incoming ring must hold a maximum-size frame plus overhead.
	app, irq, irqTimer, err := NewBuffer(512, 512).TrySplit(
		&testClock{calls: &calls}, &testRadio{calls: &calls},
		DefaultAddresses(), cfg)
	require.NoError(t, err)
	return app, irq, irqTimer
}

func TestTrySplitOnce(t *testing.T) {
	var calls []string
	radio := &testRadio{calls: &calls}
	clock := &testClock{calls: &calls}
	buf := NewBuffer(512, 256)

	app, irq, irqTimer, err := buf.TrySplit(clock, radio, DefaultAddresses(), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, app)
	require.NotNil(t, irq)
	require.NotNil(t, irqTimer)

	// Radio init happens before the timer: its register state must be
	// valid before interrupts can fire.
	require.Equal(t, []string{"radio", "timer"}, calls)
	require.Equal(t, DefaultConfig().MaxPayloadSize, radio.maxPayload)
	require.Equal(t, DefaultAddresses(), radio.addrs)

	_, _, _, err = buf.TrySplit(clock, radio, DefaultAddresses(), DefaultConfig())
	require.Equal(t, ErrAlreadySplit, err)
	// Failed split must not re-run hardware init.
	require.Equal(t, []string{"radio", "timer"}, calls)
}

func TestTrySplitRejectsBadConfig(t *testing.T) {
	var calls []string
	buf := NewBuffer(512, 256)
	cfg := DefaultConfig()
	cfg.MaxPayloadSize = 0
	_, _, _, err := buf.TrySplit(&testClock{calls: &calls}, &testRadio{calls: &calls},
		DefaultAddresses(), cfg)
	require.Equal(t, ErrInvalidParameters, err)
	require.Empty(t, calls)

	// A rejected config does not burn the one-time split.
	_, _, _, err = buf.TrySplit(&testClock{calls: &calls}, &testRadio{calls: &calls},
		DefaultAddresses(), DefaultConfig())
	require.NoError(t, err)
}

func TestHappyPath(t *testing.T) {
	app, irq, _ := splitForTest(t, DefaultConfig())

	// Reserve 10 bytes on pipe 2, write 6, commit 6.
	pkt, err := app.GrantPacket(NewHeader(2, 10, 0, false))
	require.NoError(t, err)
	require.Len(t, pkt.Body(), 10)
	copy(pkt.Body(), "abcdef")
	pkt.Commit(6)
	app.StartTx()

	out, err := irq.NextTransmit()
	require.NoError(t, err)
	require.Equal(t, uint8(2), out.Pipe())
	require.Equal(t, uint8(6), out.Header().Length)
	require.Equal(t, []byte("abcdef"), out.Body())
	out.Release()

	_, err = irq.NextTransmit()
	require.Equal(t, ErrEmpty, err)
}

func TestOversizeRejection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPayloadSize = 32
	app, irq, _ := splitForTest(t, cfg)

	_, err := app.GrantPacket(NewHeader(0, 40, 0, false))
	require.Equal(t, ErrMaximumPacketExceeded, err)

	// Channel state is untouched: a valid-size request still succeeds.
	pkt, err := app.GrantPacket(NewHeader(0, 32, 0, false))
	require.NoError(t, err)
	pkt.CommitAll()

	out, err := irq.NextTransmit()
	require.NoError(t, err)
	require.Len(t, out.Body(), 32)
	out.Release()
}

func TestGrantInProgress(t *testing.T) {
	app, _, _ := splitForTest(t, DefaultConfig())

	pkt, err := app.GrantPacket(NewHeader(0, 8, 0, false))
	require.NoError(t, err)
	_, err = app.GrantPacket(NewHeader(0, 8, 0, false))
	require.Equal(t, ErrGrantInProgress, err)

	pkt.Abort()
	_, err = app.GrantPacket(NewHeader(0, 8, 0, false))
	require.NoError(t, err)
}

func TestCommitShrinkNeverGrow(t *testing.T) {
	app, irq, _ := splitForTest(t, DefaultConfig())

	pkt, err := app.GrantPacket(NewHeader(1, 10, 0, false))
	require.NoError(t, err)
	// Committing more than declared clamps to the declaration.
	copy(pkt.Body(), "0123456789")
	pkt.Commit(20)

	out, err := irq.NextTransmit()
	require.NoError(t, err)
	require.Equal(t, uint8(10), out.Header().Length)
	require.Equal(t, []byte("0123456789"), out.Body())
	out.Release()
}

func TestCommitAllUsesDeclaredLength(t *testing.T) {
	app, irq, _ := splitForTest(t, DefaultConfig())

	pkt, err := app.GrantPacket(NewHeader(4, 5, 0, false))
	require.NoError(t, err)
	copy(pkt.Body(), "hello")
	require.Equal(t, 5, pkt.PayloadLen())
	require.Equal(t, uint8(4), pkt.Pipe())
	pkt.CommitAll()

	out, err := irq.NextTransmit()
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), out.Body())
	out.Release()
}

func TestFrameAtomicity(t *testing.T) {
	app, irq, _ := splitForTest(t, DefaultConfig())

	for i := 0; i < 20; i++ {
		pkt, err := app.GrantPacket(NewHeader(uint8(i)&7, 16, 0, false))
		require.NoError(t, err)
		used := i % 17
		pkt.Commit(used)

		out, err := irq.NextTransmit()
		require.NoError(t, err)
		// The body length always agrees with the header's declared
		// length.
		require.Equal(t, uint8(used), out.Header().Length)
		require.Len(t, out.Body(), used)
		out.Release()
	}
}

func TestExhaustionAndRecovery(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPayloadSize = 32
	var calls []string
	app, irq, _, err := NewBuffer(64, 64).TrySplit(
		&testClock{calls: &calls}, &testRadio{calls: &calls},
		DefaultAddresses(), cfg)
	require.NoError(t, err)

	h := NewHeader(0, 8, 0, false)
	var committed int
	for {
		pkt, err := app.GrantPacket(h)
		if err != nil {
			require.Equal(t, ErrQueueFull, err)
			break
		}
		pkt.CommitAll()
		committed++
	}
	require.Greater(t, committed, 1)

	// Drain everything the radio side can see; the reservation that
	// failed now succeeds.
	for {
		out, err := irq.NextTransmit()
		if err != nil {
			require.Equal(t, ErrEmpty, err)
			break
		}
		out.Release()
	}
	pkt, err := app.GrantPacket(h)
	require.NoError(t, err)
	pkt.CommitAll()
}

func TestIncomingPath(t *testing.T) {
	app, irq, _ := splitForTest(t, DefaultConfig())

	// The radio side writes a received packet as DMA would, then stamps
	// the header and commits by declared length.
	in, err := irq.GrantReceived()
	require.NoError(t, err)
	require.NotNil(t, in.DMAPointer())
	h := NewHeader(5, 3, 1, false)
	h.RSSI = 47
	in.SetHeader(h)
	copy(in.Body(), "rcv")
	in.CommitAll()

	require.True(t, app.MsgReady())
	pkt, err := app.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, uint8(5), pkt.Pipe())
	require.Equal(t, uint8(47), pkt.Header().RSSI)
	require.Equal(t, []byte("rcv"), pkt.Body())

	// Read is a peek: the same packet comes back until released.
	again, err := app.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("rcv"), again.Body())
	again.Release()

	require.False(t, app.MsgReady())
	_, err = app.ReadPacket()
	require.Equal(t, ErrEmpty, err)
}

func TestStartTxPends(t *testing.T) {
	app, irq, _ := splitForTest(t, DefaultConfig())

	select {
	case <-irq.Pending():
		t.Fatal("pend signal before StartTx")
	default:
	}

	app.StartTx()
	app.StartTx() // edges coalesce

	select {
	case <-irq.Pending():
	default:
		t.Fatal("no pend signal after StartTx")
	}
	select {
	case <-irq.Pending():
		t.Fatal("pend signal not coalesced")
	default:
	}
}

func TestTimerFlag(t *testing.T) {
	_, irq, irqTimer := splitForTest(t, DefaultConfig())

	require.False(t, irq.TimerFired())
	irqTimer.Fire()
	require.True(t, irq.TimerFired())
	// Consumed: one event, one observation.
	require.False(t, irq.TimerFired())
}

func TestAppSplitHalves(t *testing.T) {
	app, irq, _ := splitForTest(t, DefaultConfig())
	sender, receiver := app.Split()

	pkt, err := sender.GrantPacket(NewHeader(1, 4, 0, false))
	require.NoError(t, err)
	copy(pkt.Body(), "ping")
	pkt.CommitAll()
	sender.StartTx()

	out, err := irq.NextTransmit()
	require.NoError(t, err)

	in, err := irq.GrantReceived()
	require.NoError(t, err)
	in.SetHeader(out.Header())
	copy(in.Body(), out.Body())
	in.CommitAll()
	out.Release()

	got, err := receiver.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("ping"), got.Body())
	got.Release()
}

func TestWaitVariants(t *testing.T) {
	app, irq, _ := splitForTest(t, DefaultConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		pkt, err := app.WaitReadPacket(ctx)
		require.NoError(t, err)
		require.Equal(t, []byte("late"), pkt.Body())
		pkt.Release()
	}()

	time.Sleep(10 * time.Millisecond)
	in, err := irq.GrantReceived()
	require.NoError(t, err)
	in.SetHeader(NewHeader(0, 4, 0, false))
	copy(in.Body(), "late")
	in.CommitAll()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("WaitReadPacket never resumed")
	}

	// Oversize declarations fail before suspending.
	cfg := DefaultConfig()
	cfg.MaxPayloadSize = 8
	app2, _, _ := splitForTest(t, cfg)
	_, err = app2.WaitGrantPacket(ctx, NewHeader(0, 9, 0, false))
	require.Equal(t, ErrMaximumPacketExceeded, err)

	// Cancellation surfaces the context error.
	canceled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, err = app2.WaitReadPacket(canceled)
	require.Equal(t, context.Canceled, err)
}
