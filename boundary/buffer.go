package boundary

import "go.uber.org/zap"

// noCopy makes go vet's copylocks check report copies of the enclosing struct.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Buffer is formatted text owned by exactly one caller until Release.
//
// The storage is NUL-terminated so it can be handed to C-style consumers
// unchanged. Bytes and CString alias the storage and are valid only until
// Release. After Release every accessor returns the zero value and further
// Release calls do nothing.
type Buffer struct {
	noCopy noCopy
	data   *[]byte
	ledger *Ledger
	id     uint64
}

func newBuffer(id uint64, ledger *Ledger) *Buffer {
	return &Buffer{data: getText(), ledger: ledger, id: id}
}

// seal terminates the text and registers the buffer as live.
func (b *Buffer) seal() *Buffer {
	*b.data = append(*b.data, 0)
	if b.ledger != nil {
		if err := b.ledger.Track(b.id, uint64(len(*b.data))); err != nil {
			Logger().Warn("buffer not tracked", zap.Error(err))
		}
	}
	return b
}

// ID identifies the buffer in its adapter's ledger.
func (b *Buffer) ID() uint64 {
	return b.id
}

// Bytes returns the text without the terminating NUL.
func (b *Buffer) Bytes() []byte {
	if b == nil || b.data == nil {
		return nil
	}
	d := *b.data
	return d[:len(d)-1]
}

// CString returns the text including the terminating NUL.
func (b *Buffer) CString() []byte {
	if b == nil || b.data == nil {
		return nil
	}
	return *b.data
}

// String returns a copy of the text.
func (b *Buffer) String() string {
	return string(b.Bytes())
}

// Len returns the text length in bytes, excluding the terminator.
func (b *Buffer) Len() int {
	return len(b.Bytes())
}

// Released reports whether the buffer has been released.
func (b *Buffer) Released() bool {
	return b == nil || b.data == nil
}

// Release returns the storage. It is safe to call on nil or on an already
// released buffer.
func (b *Buffer) Release() {
	if b == nil || b.data == nil {
		return
	}
	if b.ledger != nil {
		if _, ok := b.ledger.Release(b.id); !ok {
			Logger().Warn("released buffer missing from ledger", zap.Uint64("id", b.id))
		}
	}
	clear(*b.data)
	putText(b.data)
	b.data = nil
}

// Consume copies the text out of b and releases it.
func Consume(b *Buffer) string {
	s := b.String()
	b.Release()
	return s
}
