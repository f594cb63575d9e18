package transport

import "sync"

// bufferPool reuses receive buffers sized for the largest EDNS(0) payload
// this library will ever negotiate (protocol.MaxUDPPayloadSize), so a busy
// resolver doing many concurrent lookups doesn't allocate on every UDP read.
var bufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 4096)
		return &buf
	},
}

// GetBuffer returns a pooled receive buffer. Callers must return it with
// PutBuffer, ideally via defer immediately after GetBuffer.
func GetBuffer() *[]byte {
	return bufferPool.Get().(*[]byte)
}

// PutBuffer returns buf to the pool. buf must not be used afterward.
func PutBuffer(bufPtr *[]byte) {
	buf := *bufPtr
	for i := range buf {
		buf[i] = 0
	}
	bufferPool.Put(bufPtr)
}
