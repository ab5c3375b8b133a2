package comtag

import (
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/minio/highwayhash"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// CompressionKind tags how a transport payload was encoded, mirroring
// select_comm_data_type's size-based dispatch (spec.md §6) one layer up:
// where that function picks a wire element type, this picks whether a
// packed payload is worth compressing at all. The exchange package does
// not use this layer: it hands packed bytes to ParallelDescriptor.Asend
// uncompressed.
type CompressionKind byte

const (
	// CompressNone ships the packed bytes unmodified; used below
	// snappyThreshold, where compression overhead would dominate.
	CompressNone CompressionKind = iota
	// CompressSnappy is used for mid-sized messages: cheap to
	// encode/decode, modest ratio.
	CompressSnappy
	// CompressZstd is used for large messages, where Zstd's better
	// ratio is worth its higher CPU cost.
	CompressZstd
)

const (
	snappyThreshold = 4 << 10   // 4 KiB
	zstdThreshold   = 256 << 10 // 256 KiB
)

// SelectCompression picks a CompressionKind for a payload of nbytes.
func SelectCompression(nbytes int) CompressionKind {
	switch {
	case nbytes >= zstdThreshold:
		return CompressZstd
	case nbytes >= snappyThreshold:
		return CompressSnappy
	default:
		return CompressNone
	}
}

var zstdEncoder, _ = zstd.NewWriter(nil)
var zstdDecoder, _ = zstd.NewReader(nil)

// CompressPayload wraps raw with a one-byte CompressionKind header
// chosen by SelectCompression, compressing it first if warranted.
func CompressPayload(raw []byte) []byte {
	kind := SelectCompression(len(raw))
	switch kind {
	case CompressZstd:
		out := zstdEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2+1))
		vlog.VI(2).Infof("comtag: zstd-compressed payload %d -> %d bytes", len(raw), len(out))
		return append([]byte{byte(kind)}, out...)
	case CompressSnappy:
		out := snappy.Encode(nil, raw)
		vlog.VI(2).Infof("comtag: snappy-compressed payload %d -> %d bytes", len(raw), len(out))
		return append([]byte{byte(kind)}, out...)
	default:
		return append([]byte{byte(kind)}, raw...)
	}
}

// DecompressPayload reverses CompressPayload.
func DecompressPayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("comtag: DecompressPayload on empty data")
	}
	kind := CompressionKind(data[0])
	body := data[1:]
	switch kind {
	case CompressZstd:
		out, err := zstdDecoder.DecodeAll(body, nil)
		if err != nil {
			return nil, errors.Wrap(err, "comtag: zstd decode")
		}
		return out, nil
	case CompressSnappy:
		out, err := snappy.Decode(nil, body)
		if err != nil {
			return nil, errors.Wrap(err, "comtag: snappy decode")
		}
		return out, nil
	case CompressNone:
		return body, nil
	default:
		return nil, errors.Errorf("comtag: unknown compression kind %d", kind)
	}
}

// checksumKey is a fixed 32-byte HighwayHash key. The checksum below is
// not a security boundary, so a fixed key (rather than a per-process random one) keeps the same
// payload hashing identically across ranks and across runs.
var checksumKey = make([]byte, 32)

// Checksum returns a HighwayHash-64 of data. No send or receive path in
// this module computes it.
func Checksum(data []byte) uint64 {
	return highwayhash.Sum64(data, checksumKey)
}
