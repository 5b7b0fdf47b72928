package boundary

import (
	"cmp"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/ffifmt/errors"
)

// EventType identifies a buffer lifecycle notification.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventReleased
)

func (t EventType) String() string {
	switch t {
	case EventAllocated:
		return "allocated"
	case EventReleased:
		return "released"
	}
	return "unknown"
}

// Event is a buffer lifecycle notification.
type Event struct {
	Addr uint64
	Size uint64
	Type EventType
}

// Observer receives buffer lifecycle events. Observers are called
// synchronously while the ledger is not locked.
type Observer interface {
	OnBufferEvent(Event)
}

// Allocation is a live foreign buffer.
type Allocation struct {
	Addr uint64
	Size uint64
}

// Ledger records buffers handed across the boundary until they are
// released. Addresses are whatever the binding hands to the foreign
// caller: a C pointer, a guest memory offset or a Go buffer id.
//
// The zero value is an empty ledger ready to use. Ledger is safe for
// concurrent use.
type Ledger struct {
	live      map[uint64]uint64
	observers []Observer
	bytes     uint64
	mu        sync.Mutex
	obsMu     sync.RWMutex
	closed    bool
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		live: make(map[uint64]uint64),
	}
}

// Track records a new live buffer.
func (l *Ledger) Track(addr, size uint64) error {
	if addr == 0 {
		return errors.InvalidInput(errors.PhaseBoundary, "cannot track a null address")
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return errors.New(errors.PhaseBoundary, errors.KindNotInitialized).
			Detail("ledger closed").
			Build()
	}
	if _, exists := l.live[addr]; exists {
		l.mu.Unlock()
		return errors.New(errors.PhaseBoundary, errors.KindInvalidInput).
			Value(addr).
			Detail("address 0x%x is already live", addr).
			Build()
	}
	if l.live == nil {
		l.live = make(map[uint64]uint64)
	}
	l.live[addr] = size
	l.bytes += size
	l.mu.Unlock()

	l.notify(Event{Addr: addr, Size: size, Type: EventAllocated})
	return nil
}

// Release forgets a live buffer and returns its size. It reports false
// when addr was never tracked or has already been released.
func (l *Ledger) Release(addr uint64) (uint64, bool) {
	l.mu.Lock()
	size, ok := l.live[addr]
	if ok {
		delete(l.live, addr)
		l.bytes -= size
	}
	l.mu.Unlock()

	if !ok {
		return 0, false
	}
	l.notify(Event{Addr: addr, Size: size, Type: EventReleased})
	return size, true
}

// Size returns the size of a live buffer.
func (l *Ledger) Size(addr uint64) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	size, ok := l.live[addr]
	return size, ok
}

// Live returns the number of outstanding buffers.
func (l *Ledger) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

// LiveBytes returns the total size of outstanding buffers.
func (l *Ledger) LiveBytes() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bytes
}

// Subscribe adds an observer for lifecycle events.
func (l *Ledger) Subscribe(o Observer) {
	l.obsMu.Lock()
	defer l.obsMu.Unlock()
	l.observers = append(l.observers, o)
}

// Unsubscribe removes an observer.
func (l *Ledger) Unsubscribe(o Observer) {
	l.obsMu.Lock()
	defer l.obsMu.Unlock()
	for i, obs := range l.observers {
		if obs == o {
			l.observers = append(l.observers[:i], l.observers[i+1:]...)
			return
		}
	}
}

// Close stops accepting new buffers and returns the ones never released,
// ordered by address. Releasing a leaked buffer after Close still works.
func (l *Ledger) Close() []Allocation {
	l.mu.Lock()
	l.closed = true
	leaked := make([]Allocation, 0, len(l.live))
	for addr, size := range l.live {
		leaked = append(leaked, Allocation{Addr: addr, Size: size})
	}
	l.mu.Unlock()

	slices.SortFunc(leaked, func(a, b Allocation) int {
		return cmp.Compare(a.Addr, b.Addr)
	})

	if len(leaked) > 0 {
		var total uint64
		for _, a := range leaked {
			total += a.Size
		}
		Logger().Warn("buffers not released",
			zap.Int("count", len(leaked)),
			zap.Uint64("bytes", total),
		)
	}
	return leaked
}

func (l *Ledger) notify(e Event) {
	l.obsMu.RLock()
	defer l.obsMu.RUnlock()
	for _, o := range l.observers {
		o.OnBufferEvent(e)
	}
}
