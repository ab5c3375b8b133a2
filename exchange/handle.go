package exchange

import "github.com/pkg/errors"

// Handle is the opaque token FillBoundaryNowait returns (ParallelCopy
// has no split form and completes before returning): it lets multiple outstanding exchanges on the same FabArray
// overlap, replacing the original C++ implementation's process-wide
// fb_* mutable fields (spec.md §9's design note).
type Handle struct {
	finished bool
	finish   func() error
	poll     func() bool
}

func noopHandle() *Handle {
	return &Handle{finish: func() error { return nil }}
}

// Finish waits for and unpacks every outstanding operation this Handle
// represents. It is single-use: a second call returns an error instead
// of silently reusing already-freed buffers (spec.md §9's
// resolved open question on double-Finish).
func (h *Handle) Finish() error {
	if h.finished {
		return errors.Errorf("exchange: Handle.Finish called twice")
	}
	h.finished = true
	if h.finish == nil {
		return nil
	}
	return h.finish()
}

// Poll is a non-blocking best-effort progress kick (spec.md §9's
// FillBoundary_test realization). It never affects correctness: a
// Handle that is never polled still completes correctly in Finish. It
// is a documented no-op unless the underlying ParallelDescriptor
// implementation makes real progress from polling (xpdesc.Single never
// does; xpdesc/simnet's synchronous delivery means there is nothing to
// kick either, so this is currently a no-op everywhere, kept as a stable
// extension point for a future real-transport ParallelDescriptor).
func (h *Handle) Poll() bool {
	if h.finished {
		return true
	}
	if h.poll == nil {
		return false
	}
	return h.poll()
}
