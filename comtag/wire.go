package comtag

import (
	"unsafe"

	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/fab"
	"github.com/parallelmesh/amrx/ivec"
)

// PackRegion appends the raw elements of src[sbox] for components
// [scomp, scomp+ncomp) to buf, in canonical (fastest-varying-dimension-
// first) order, using the platform's native representation for T
// (spec.md §6's wire format: "native endianness and the value type's
// platform representation"). This is a direct memory copy rather than a
// portable encoding, matching what a real MPI buffer pack does.
func PackRegion[T fab.Numeric](buf []byte, src *fab.Fab[T], sbox box.IndexBox, scomp, ncomp int) []byte {
	forEachIndex(sbox, func(idx ivec.IntVect) {
		for c := 0; c < ncomp; c++ {
			buf = appendValue(buf, src.At(idx, scomp+c))
		}
	})
	return buf
}

// UnpackRegion reads the bytes PackRegion wrote, in the same order, and
// writes them into dst[dbox] for components [dcomp, dcomp+ncomp),
// overwriting any existing values (spec.md's COPY operator).
func UnpackRegion[T fab.Numeric](data []byte, dst *fab.Fab[T], dbox box.IndexBox, dcomp, ncomp int) int {
	off := 0
	var zero T
	sz := int(unsafe.Sizeof(zero))
	forEachIndex(dbox, func(idx ivec.IntVect) {
		for c := 0; c < ncomp; c++ {
			v := readValue[T](data[off:])
			off += sz
			dst.Set(idx, dcomp+c, v)
		}
	})
	return off
}

// AddUnpackRegion is UnpackRegion's ADD-reduction variant (spec.md's ADD
// operator): values are summed into the destination instead of
// overwriting it.
func AddUnpackRegion[T fab.Numeric](data []byte, dst *fab.Fab[T], dbox box.IndexBox, dcomp, ncomp int) int {
	off := 0
	var zero T
	sz := int(unsafe.Sizeof(zero))
	forEachIndex(dbox, func(idx ivec.IntVect) {
		for c := 0; c < ncomp; c++ {
			v := readValue[T](data[off:])
			off += sz
			dst.Set(idx, dcomp+c, dst.At(idx, dcomp+c)+v)
		}
	})
	return off
}

// RegionBytes returns the number of bytes PackRegion would append for
// sbox/ncomp, used to size receive buffers before the matching send
// arrives (spec.md §4.2 step 3b's "compute nbytes").
func RegionBytes[T fab.Numeric](sbox box.IndexBox, ncomp int) int64 {
	var zero T
	return sbox.NumPts() * int64(ncomp) * int64(unsafe.Sizeof(zero))
}

func appendValue[T fab.Numeric](buf []byte, v T) []byte {
	sz := int(unsafe.Sizeof(v))
	b := (*[8]byte)(unsafe.Pointer(&v))[:sz:sz]
	return append(buf, b...)
}

func readValue[T fab.Numeric](data []byte) T {
	var v T
	sz := int(unsafe.Sizeof(v))
	copy((*[8]byte)(unsafe.Pointer(&v))[:sz:sz], data[:sz])
	return v
}

// forEachIndex visits every index point in b in canonical order; shared
// with fab's own iteration helper but kept local here to avoid exporting
// fab's internal walker.
func forEachIndex(b box.IndexBox, fn func(ivec.IntVect)) {
	if b.Empty() {
		return
	}
	dim := b.Lo.Dim
	cur := b.Lo
	for {
		fn(cur)
		d := 0
		for d < dim {
			cur.V[d]++
			if cur.V[d] <= b.Hi.V[d] {
				break
			}
			cur.V[d] = b.Lo.V[d]
			d++
		}
		if d == dim {
			return
		}
	}
}
