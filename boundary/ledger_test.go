package boundary

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/ffifmt/errors"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *recordingObserver) OnBufferEvent(e Event) {
	o.mu.Lock()
	o.events = append(o.events, e)
	o.mu.Unlock()
}

// pairs reports addresses allocated and released, and fails on a double release.
func (o *recordingObserver) pairs(t *testing.T) (allocated, released int) {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()

	live := make(map[uint64]bool)
	for _, e := range o.events {
		switch e.Type {
		case EventAllocated:
			require.False(t, live[e.Addr], "address 0x%x allocated twice", e.Addr)
			live[e.Addr] = true
			allocated++
		case EventReleased:
			require.True(t, live[e.Addr], "address 0x%x released without allocation", e.Addr)
			delete(live, e.Addr)
			released++
		}
	}
	return allocated, released
}

func TestLedger_TrackRelease(t *testing.T) {
	l := NewLedger()
	obs := &recordingObserver{}
	l.Subscribe(obs)

	require.NoError(t, l.Track(0x1000, 16))
	require.NoError(t, l.Track(0x2000, 8))
	assert.Equal(t, 2, l.Live())
	assert.Equal(t, uint64(24), l.LiveBytes())

	size, ok := l.Size(0x1000)
	assert.True(t, ok)
	assert.Equal(t, uint64(16), size)

	size, ok = l.Release(0x1000)
	assert.True(t, ok)
	assert.Equal(t, uint64(16), size)
	assert.Equal(t, 1, l.Live())
	assert.Equal(t, uint64(8), l.LiveBytes())

	_, ok = l.Release(0x1000)
	assert.False(t, ok, "double release must be detected")

	_, ok = l.Release(0x3000)
	assert.False(t, ok, "unknown address must be detected")

	require.Len(t, obs.events, 3)
	assert.Equal(t, Event{Addr: 0x1000, Size: 16, Type: EventAllocated}, obs.events[0])
	assert.Equal(t, Event{Addr: 0x1000, Size: 16, Type: EventReleased}, obs.events[2])
}

func TestLedger_ZeroValue(t *testing.T) {
	var l Ledger
	assert.Equal(t, 0, l.Live())
	_, ok := l.Release(8)
	assert.False(t, ok)

	require.NoError(t, l.Track(8, 3))
	assert.Equal(t, 1, l.Live())
	assert.Equal(t, uint64(3), l.LiveBytes())

	size, ok := l.Release(8)
	require.True(t, ok)
	assert.Equal(t, uint64(3), size)
	assert.Empty(t, l.Close())
}

func TestLedger_TrackErrors(t *testing.T) {
	l := NewLedger()

	err := l.Track(0, 1)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseBoundary, Kind: errors.KindInvalidInput})

	require.NoError(t, l.Track(0x10, 1))
	err = l.Track(0x10, 1)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseBoundary, Kind: errors.KindInvalidInput})

	l.Close()
	err = l.Track(0x20, 1)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseBoundary, Kind: errors.KindNotInitialized})
}

func TestLedger_CloseReportsLeaks(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Track(0x30, 3))
	require.NoError(t, l.Track(0x10, 1))
	require.NoError(t, l.Track(0x20, 2))
	_, _ = l.Release(0x20)

	leaked := l.Close()
	assert.Equal(t, []Allocation{{Addr: 0x10, Size: 1}, {Addr: 0x30, Size: 3}}, leaked)

	// Leaked buffers can still be released after close.
	_, ok := l.Release(0x10)
	assert.True(t, ok)
}

func TestLedger_Unsubscribe(t *testing.T) {
	l := NewLedger()
	obs := &recordingObserver{}
	l.Subscribe(obs)
	l.Unsubscribe(obs)

	require.NoError(t, l.Track(0x10, 1))
	assert.Empty(t, obs.events)
}

func TestLedger_AdapterPairsEveryBuffer(t *testing.T) {
	l := NewLedger()
	obs := &recordingObserver{}
	l.Subscribe(obs)

	a, err := New(WithLedger(l))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		buf := a.FormatArray([]float64{float64(i), float64(i) / 3})
		buf.Release()
		buf.Release()
	}
	Consume(a.FormatScalar(1))

	allocated, released := obs.pairs(t)
	assert.Equal(t, 101, allocated)
	assert.Equal(t, 101, released)
	assert.Equal(t, 0, l.Live())
}

func TestLocal_CloseReportsLeak(t *testing.T) {
	l := NewLedger()
	a, err := New(WithLedger(l))
	require.NoError(t, err)

	leak := a.FormatScalar(1)
	local := NewLocal(a)

	err = local.Close(t.Context())
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseBoundary, Kind: errors.KindLeaked})
	leak.Release()
}

func TestLocal_Caller(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	local := NewLocal(a)

	got, err := local.FormatScalar(t.Context(), 100000000.0)
	require.NoError(t, err)
	assert.Equal(t, "1.0E8", got)

	got, err = local.FormatArray(t.Context(), []float64{0.123, 1})
	require.NoError(t, err)
	assert.Equal(t, "0.123 1.0", got)

	require.NoError(t, local.Close(t.Context()))
}

func TestLocal_CanceledContext(t *testing.T) {
	a, err := New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err = NewLocal(a).FormatScalar(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
