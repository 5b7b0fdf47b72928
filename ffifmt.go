package ffifmt

import "context"

// Caller reaches the formatter through one binding. Every binding returns
// the same text for the same configuration; they differ only in how the
// request and the result cross the boundary.
type Caller interface {
	FormatScalar(ctx context.Context, v float64) (string, error)
	FormatArray(ctx context.Context, values []float64) (string, error)
	Close(ctx context.Context) error
}

// Memory is a foreign linear memory addressed by 32-bit offsets.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	WriteU8(offset uint32, value uint8) error
	ReadF64(offset uint32) (float64, error)
	WriteF64(offset uint32, value float64) error
	Size() uint32
}

// Allocator allocates memory in a foreign linear memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}
