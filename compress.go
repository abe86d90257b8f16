package zmin

import (
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// ChunkCompression selects how MinifyTurboCompressed compresses each
// chunk's minified output before returning it: s2 favors speed, zstd
// favors ratio.
type ChunkCompression int

const (
	// CompressionNone returns each chunk's minified bytes uncompressed.
	CompressionNone ChunkCompression = iota
	// CompressionFast compresses each chunk with s2.
	CompressionFast
	// CompressionBest compresses each chunk with zstd.
	CompressionBest
)

var zstdEncoderPool = sync.Pool{
	New: func() interface{} {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		return enc
	},
}

// MinifyTurboCompressed splits input into Turbo's JSON-safe chunks and
// returns each chunk's minified output pre-compressed, letting a caller
// pipe per-chunk buffers straight to network or disk without a second
// compression pass over the merged result. The chunks are minified one
// after another on the calling goroutine with the block minifier; the
// input is not validated, and the thread-count, NUMA and stats options
// have no effect. Ordinary Minify(..., Turbo) remains uncompressed and
// byte-identical to Eco/Sport.
func MinifyTurboCompressed(input []byte, compression ChunkCompression, opts ...MinifyOption) ([][]byte, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.ThreadCount < 1 {
		cfg.ThreadCount = 1
	}
	if cfg.TargetChunkBytes < 1 {
		cfg.TargetChunkBytes = defaultTargetChunkBytes
	}

	targetChunks := len(input) / cfg.TargetChunkBytes
	if targetChunks < 1 {
		targetChunks = 1
	}
	ranges := split(input, targetChunks)
	caps := Detect()

	out := make([][]byte, len(ranges))
	for i, r := range ranges {
		buf := make([]byte, r.End-r.Start)
		n, err := minifyBlock(input[r.Start:r.End], buf, caps)
		if err != nil {
			return nil, err
		}
		compressed, err := compressChunk(buf[:n], compression)
		if err != nil {
			return nil, err
		}
		out[i] = compressed
	}
	return out, nil
}

func compressChunk(b []byte, mode ChunkCompression) ([]byte, error) {
	switch mode {
	case CompressionNone:
		dst := make([]byte, len(b))
		copy(dst, b)
		return dst, nil
	case CompressionFast:
		return s2.Encode(nil, b), nil
	case CompressionBest:
		enc := zstdEncoderPool.Get().(*zstd.Encoder)
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(b, nil), nil
	default:
		return nil, newErr(Internal, -1, "unknown chunk compression mode")
	}
}
