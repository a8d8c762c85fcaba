package util

import "sync"

// ReadBufSize is the size of keystroke read buffers.  Interactive
// clients send a handful of bytes at a time; pasted text arrives in
// several reads.
const ReadBufSize = 512

// BufPool provides reusable read buffers so a server holding many idle
// dial-in lines does not churn the GC on every keystroke.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, ReadBufSize)
		return &buf
	},
}

// GetBuf retrieves a buffer from the pool.  Callers must return it
// with [PutBuf] when finished.
func GetBuf() *[]byte {
	return BufPool.Get().(*[]byte)
}

// PutBuf returns a buffer to the pool for reuse.
func PutBuf(buf *[]byte) {
	if buf == nil {
		return
	}
	BufPool.Put(buf)
}
