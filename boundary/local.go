package boundary

import (
	"context"

	"github.com/wippyai/ffifmt"
	"github.com/wippyai/ffifmt/errors"
)

var _ ffifmt.Caller = (*Local)(nil)

// Local drives an Adapter in-process. Each call allocates a Buffer,
// copies the text out and releases it, which is the same ownership cycle
// a foreign caller performs.
type Local struct {
	adapter *Adapter
}

// NewLocal wraps an adapter.
func NewLocal(a *Adapter) *Local {
	return &Local{adapter: a}
}

// Adapter returns the wrapped adapter.
func (l *Local) Adapter() *Adapter {
	return l.adapter
}

// FormatScalar implements ffifmt.Caller.
func (l *Local) FormatScalar(ctx context.Context, v float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Consume(l.adapter.FormatScalar(v)), nil
}

// FormatArray implements ffifmt.Caller.
func (l *Local) FormatArray(ctx context.Context, values []float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Consume(l.adapter.FormatArray(values)), nil
}

// Close implements ffifmt.Caller. It reports leaked buffers when the
// adapter has a ledger.
func (l *Local) Close(context.Context) error {
	if ledger := l.adapter.Ledger(); ledger != nil {
		if leaked := ledger.Close(); len(leaked) > 0 {
			return errors.New(errors.PhaseBoundary, errors.KindLeaked).
				Value(len(leaked)).
				Detail("%d buffers were never released", len(leaked)).
				Build()
		}
	}
	return nil
}
