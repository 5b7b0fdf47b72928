package wasmhost

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/ffifmt"
	"github.com/wippyai/ffifmt/errors"
)

var _ ffifmt.Memory = (*guestMemory)(nil)

// guestMemory adapts wazero api.Memory to ffifmt.Memory.
// Slices returned by Read alias linear memory and become stale when the
// guest grows its memory.
type guestMemory struct {
	mem api.Memory
}

func (m *guestMemory) outOfBounds(offset, length uint32) error {
	return errors.OutOfBounds(errors.PhaseHost, uint64(offset), uint64(length), uint64(m.mem.Size()))
}

// Read returns a view of length bytes at offset.
func (m *guestMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, m.outOfBounds(offset, length)
	}
	return data, nil
}

// Write copies data into memory at offset.
func (m *guestMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return m.outOfBounds(offset, uint32(len(data)))
	}
	return nil
}

// WriteU8 writes a single byte.
func (m *guestMemory) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return m.outOfBounds(offset, 1)
	}
	return nil
}

// ReadF64 reads a little-endian IEEE-754 double.
func (m *guestMemory) ReadF64(offset uint32) (float64, error) {
	v, ok := m.mem.ReadFloat64Le(offset)
	if !ok {
		return 0, m.outOfBounds(offset, 8)
	}
	return v, nil
}

// WriteF64 writes a little-endian IEEE-754 double.
func (m *guestMemory) WriteF64(offset uint32, value float64) error {
	if !m.mem.WriteFloat64Le(offset, value) {
		return m.outOfBounds(offset, 8)
	}
	return nil
}

// Size returns the current memory size in bytes.
func (m *guestMemory) Size() uint32 {
	return m.mem.Size()
}

// readCString returns a copy of the NUL-terminated string at ptr.
func readCString(mem ffifmt.Memory, ptr uint32) (string, error) {
	size := mem.Size()
	if ptr >= size {
		return "", errors.OutOfBounds(errors.PhaseHost, uint64(ptr), 1, uint64(size))
	}
	view, err := mem.Read(ptr, size-ptr)
	if err != nil {
		return "", err
	}
	for i, c := range view {
		if c == 0 {
			return string(view[:i]), nil
		}
	}
	return "", errors.New(errors.PhaseHost, errors.KindInvalidData).
		Value(ptr).
		Detail("string at %d is not NUL-terminated", ptr).
		Build()
}
