// Package buffers provides pooled byte buffers for bulk copies.
// Reusing copy buffers keeps large downloads from churning the allocator.
package buffers

import (
	"sync"

	"github.com/chunkstore-io/chunkstore/internal/constants"
)

var copyPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, constants.CopyBufferSize)
		return &b
	},
}

// GetCopyBuffer returns a pooled buffer of constants.CopyBufferSize bytes.
func GetCopyBuffer() *[]byte {
	return copyPool.Get().(*[]byte)
}

// PutCopyBuffer returns a buffer to the pool. Buffers of any other size
// are dropped so the pool stays uniform.
func PutCopyBuffer(b *[]byte) {
	if b == nil || len(*b) != constants.CopyBufferSize {
		return
	}
	copyPool.Put(b)
}
