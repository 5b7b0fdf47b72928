package cabi

import (
	"slices"
	"sync"

	"github.com/wippyai/ffifmt/boundary"
	"github.com/wippyai/ffifmt/errors"
	"github.com/wippyai/ffifmt/ryu"
)

// state is everything Init installs. It is immutable once published.
type state struct {
	adapters [profileCount]*boundary.Adapter
	ledger   *boundary.Ledger
	opts     Options
}

func newState(o Options) (*state, error) {
	s := &state{opts: o}
	if o.Track {
		s.ledger = boundary.NewLedger()
	}

	profiles := [profileCount][]boundary.Option{
		ProfileDefault: {
			boundary.WithStyle(o.Style),
			boundary.WithSeparator(o.Separator),
			boundary.WithTrailingSeparator(o.TrailingSeparator),
		},
		ProfileRyu:      {boundary.WithStyle(ryu.Compact)},
		ProfileRust:     {boundary.WithStyle(ryu.Plain)},
		ProfileRyuArray: {boundary.WithStyle(ryu.Compact), boundary.WithTrailingSeparator(true)},
	}
	for p, opts := range profiles {
		a, err := boundary.New(opts...)
		if err != nil {
			return nil, errors.New(errors.PhaseBoundary, errors.KindInvalidInput).
				Symbol(Profile(p).String()).
				Cause(err).
				Detail("configure profile").
				Build()
		}
		s.adapters[p] = a
	}
	return s, nil
}

func (s *state) adapter(p Profile) *boundary.Adapter {
	if p < 0 || p >= profileCount {
		return nil
	}
	return s.adapters[p]
}

// retiredLedgers keeps the ledgers of shut down states that still have
// live buffers, so those buffers remain releasable after a later Init.
type retiredLedgers struct {
	ledgers []*boundary.Ledger
	mu      sync.Mutex
}

func (r *retiredLedgers) add(l *boundary.Ledger) {
	r.mu.Lock()
	r.ledgers = append(r.ledgers, l)
	r.mu.Unlock()
}

// release forgets addr in whichever retired ledger holds it. Ledgers are
// dropped once drained.
func (r *retiredLedgers) release(addr uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.ledgers {
		if _, ok := l.Release(addr); ok {
			if l.Live() == 0 {
				r.ledgers = slices.Delete(r.ledgers, i, i+1)
			}
			return true
		}
	}
	return false
}

func (r *retiredLedgers) live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.ledgers {
		n += l.Live()
	}
	return n
}

func errAlreadyInitialized() error {
	return errors.New(errors.PhaseRuntime, errors.KindRegistration).
		Detail("library already initialized").
		Build()
}

func errNotInitialized() error {
	return errors.NotInitialized(errors.PhaseRuntime, "ffifmt library")
}
