package stats

import (
	"sync/atomic"
	"time"
)

// Bool reports 1 or 0
type Bool struct {
	val uint32
}

func NewBool(name string) *Bool {
	return registry.getOrAdd(name, &Bool{}).(*Bool)
}

func (b *Bool) Set(val bool) {
	if val {
		atomic.StoreUint32(&b.val, 1)
		return
	}
	atomic.StoreUint32(&b.val, 0)
}

func (b *Bool) Peek() bool {
	return atomic.LoadUint32(&b.val) == 1
}

func (b *Bool) ReportGraphite(prefix, buf []byte, now time.Time) []byte {
	return WriteUint32(buf, prefix, []byte("gauge1"), atomic.LoadUint32(&b.val), now)
}
