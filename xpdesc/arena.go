package xpdesc

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Arena hands out aligned byte buffers for transport staging, per
// spec.md §6's "Arena: alloc(n)/free(p) returning aligned host or
// pinned memory". This module has no pinned-memory (device) allocator,
// so Alloc always returns host memory aligned to at least the
// platform's cache line size; Free is a no-op since Go's GC reclaims
// the backing array once unreferenced.
type Arena struct {
	// Align overrides the default cpu.CacheLinePadSize alignment; 0
	// means use the default.
	Align int
}

func (a *Arena) align() int {
	if a.Align > 0 {
		return a.Align
	}
	return cpu.CacheLinePadSize
}

// Alloc returns a byte slice of length n whose first byte is aligned to
// a.align() bytes.
func (a *Arena) Alloc(n int) []byte {
	align := a.align()
	if align <= 1 {
		return make([]byte, n)
	}
	buf := make([]byte, n+align-1)
	off := int(uintptr(unsafe.Pointer(&buf[0])) % uintptr(align))
	if off == 0 {
		return buf[:n]
	}
	return buf[align-off : align-off+n]
}

// Free is a no-op; Go's garbage collector reclaims Alloc's backing
// array once the caller drops its reference.
func (a *Arena) Free(p []byte) {}
