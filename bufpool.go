package rawcodec

import "sync"

// maxPooledScratch bounds the buffers kept in scratchPool so one huge record
// does not pin its buffer forever.
const maxPooledScratch = 64 * 1024

// scratchPool reuses the transient buffers stream adapters encode into and
// decode from. They never outlive the call that took them.
var scratchPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 512)
		return &b
	},
}

func getScratch(n int) *[]byte {
	p := scratchPool.Get().(*[]byte)
	if cap(*p) < n {
		*p = make([]byte, n)
	}
	*p = (*p)[:n]
	return p
}

func putScratch(p *[]byte) {
	if cap(*p) <= maxPooledScratch {
		scratchPool.Put(p)
	}
}
