package boundary

import "sync"

const (
	// Pool limits to prevent memory bloat
	poolMaxCap  = 64 << 10
	poolInitCap = 64
)

// text buffer pool for formatted output
var textPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, poolInitCap)
		return &buf
	},
}

func getText() *[]byte {
	return textPool.Get().(*[]byte)
}

func putText(buf *[]byte) {
	if buf == nil || cap(*buf) > poolMaxCap {
		return // reject oversized
	}
	*buf = (*buf)[:0]
	textPool.Put(buf)
}

// Scratch returns a pooled byte slice for building output that is copied
// into foreign memory afterwards. Return it with PutScratch.
func Scratch() *[]byte {
	return getText()
}

// PutScratch returns a slice obtained from Scratch.
func PutScratch(buf *[]byte) {
	putText(buf)
}
