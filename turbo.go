package zmin

import (
	"math/rand"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Hydepwns/zmin-sub007/internal/wsdeque"
)

// ChunkStatus is the lifecycle state of a chunk descriptor as it moves
// through the work-stealing pool.
type ChunkStatus int32

const (
	Pending ChunkStatus = iota
	Running
	Done
	Failed
)

// chunkDescriptor is created by the dispatcher (split), mutated by
// exactly one worker, and read by the merging dispatcher after its status
// becomes Done. It is addressed by stable pointer from creation to merge
// so a descriptor can move between deques (via steal) without copying its
// output buffer.
type chunkDescriptor struct {
	id        int
	input     []byte
	output    []byte
	outputLen atomic.Uint64
	status    atomic.Int32
	err       error
}

// Config configures the Turbo work-stealing scheduler.
type Config struct {
	ThreadCount      int
	TargetChunkBytes int
	NumaAware        bool
	Stats            *Stats
}

// Stats carries chunk-level introspection out of a Turbo run: how the
// input was partitioned and how much work-stealing actually happened.
type Stats struct {
	ChunkCount      int
	BytesPerChunk   []int
	StealCount      int64
	DelegatedInline bool
}

// MinifyOption configures a Turbo run via the functional-options pattern.
type MinifyOption func(*Config)

// WithThreadCount sets the worker count. Defaulting to the logical CPU
// count when unset or <= 0.
func WithThreadCount(n int) MinifyOption {
	return func(c *Config) { c.ThreadCount = n }
}

// WithTargetChunkBytes sets the dispatcher's target chunk size in bytes.
func WithTargetChunkBytes(n int) MinifyOption {
	return func(c *Config) { c.TargetChunkBytes = n }
}

// WithNumaAware toggles NUMA-node-affinity-ordered chunk assignment
// instead of plain round robin.
func WithNumaAware(b bool) MinifyOption {
	return func(c *Config) { c.NumaAware = b }
}

// WithStats attaches a Stats struct that the run will populate.
func WithStats(s *Stats) MinifyOption {
	return func(c *Config) { c.Stats = s }
}

const defaultTargetChunkBytes = 1 << 20 // 1 MiB

func defaultConfig() Config {
	return Config{
		ThreadCount:      runtime.GOMAXPROCS(0),
		TargetChunkBytes: defaultTargetChunkBytes,
	}
}

// MinifyTurbo splits input into JSON-safe chunks and minifies them
// concurrently across a work-stealing pool of workers, returning a
// freshly allocated, minified result.
func MinifyTurbo(input []byte, opts ...MinifyOption) ([]byte, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return minifyParallel(input, cfg)
}

func minifyParallel(input []byte, cfg Config) ([]byte, error) {
	if cfg.ThreadCount < 1 {
		cfg.ThreadCount = runtime.GOMAXPROCS(0)
	}
	if cfg.TargetChunkBytes < 1 {
		cfg.TargetChunkBytes = defaultTargetChunkBytes
	}

	// Small input or a single configured thread isn't worth spinning up
	// a worker pool for: delegate to the single-threaded block minifier
	// inline, no goroutines created.
	if len(input) < cfg.TargetChunkBytes || cfg.ThreadCount == 1 {
		if cfg.Stats != nil {
			cfg.Stats.ChunkCount = 1
			cfg.Stats.BytesPerChunk = []int{len(input)}
			cfg.Stats.DelegatedInline = true
		}
		return MinifySport(input)
	}

	targetChunks := len(input) / cfg.TargetChunkBytes
	if targetChunks < 1 {
		targetChunks = 1
	}
	ranges := split(input, targetChunks)

	descs := make([]*chunkDescriptor, len(ranges))
	for i, r := range ranges {
		d := &chunkDescriptor{id: i, input: input[r.Start:r.End]}
		d.output = make([]byte, len(d.input))
		descs[i] = d
	}

	w := cfg.ThreadCount
	if w > len(descs) {
		w = len(descs)
	}
	if w < 1 {
		w = 1
	}

	deques := make([]*wsdeque.Deque, w)
	for i := range deques {
		deques[i] = wsdeque.New(len(descs) + 1)
	}

	// Dispatcher: round-robin assignment, or contiguous block assignment
	// approximating NUMA-node locality (Go exposes no NUMA topology, so
	// this just keeps each worker's chunks adjacent in the input rather
	// than interleaved) when NumaAware is set.
	for i, d := range descs {
		var owner int
		if cfg.NumaAware {
			owner = (i * w) / len(descs)
			if owner >= w {
				owner = w - 1
			}
		} else {
			owner = i % w
		}
		deques[owner].PushBottom(d)
	}

	caps := Detect()
	var stealCount atomic.Int64
	var done atomic.Bool
	var failed atomic.Bool

	g := &errgroup.Group{}
	for wi := 0; wi < w; wi++ {
		own := deques[wi]
		workerID := wi
		g.Go(func() error {
			for {
				if failed.Load() {
					return nil // another worker failed: take no new work
				}
				item, ok := own.PopBottom()
				if !ok {
					item, ok = stealFrom(deques, workerID, &stealCount)
				}
				if !ok {
					if done.Load() {
						return nil
					}
					runtime.Gosched()
					continue
				}
				d := item.(*chunkDescriptor)
				d.status.Store(int32(Running))
				n, err := minifyBlock(d.input, d.output, caps)
				if err != nil {
					d.err = err
					d.status.Store(int32(Failed))
					failed.Store(true)
					return err
				}
				d.outputLen.Store(uint64(n))
				d.status.Store(int32(Done))
			}
		})
	}

	// Signal "no more work" once every deque has been drained by its
	// owner; workers still finish whatever they currently hold. Stop
	// watching once a worker has failed, since the deques may never drain.
	go func() {
		for {
			if failed.Load() {
				return
			}
			empty := true
			for _, dq := range deques {
				if dq.Len() > 0 {
					empty = false
					break
				}
			}
			if empty {
				done.Store(true)
				return
			}
			runtime.Gosched()
		}
	}()

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, d := range descs {
		if ChunkStatus(d.status.Load()) == Failed {
			return nil, d.err
		}
	}

	total := 0
	for _, d := range descs {
		total += int(d.outputLen.Load())
	}
	out := make([]byte, 0, total)
	for _, d := range descs {
		out = append(out, d.output[:d.outputLen.Load()]...)
	}

	if cfg.Stats != nil {
		cfg.Stats.ChunkCount = len(descs)
		cfg.Stats.StealCount = stealCount.Load()
		cfg.Stats.BytesPerChunk = make([]int, len(descs))
		for i, d := range descs {
			cfg.Stats.BytesPerChunk[i] = len(d.input)
		}
	}

	return out, nil
}

// stealFrom attempts to steal one item from a random peer other than
// self.
func stealFrom(deques []*wsdeque.Deque, self int, stealCount *atomic.Int64) (interface{}, bool) {
	if len(deques) <= 1 {
		return nil, false
	}
	start := rand.Intn(len(deques))
	for i := 0; i < len(deques); i++ {
		idx := (start + i) % len(deques)
		if idx == self {
			continue
		}
		if v, ok := deques[idx].Steal(); ok {
			stealCount.Add(1)
			return v, true
		}
	}
	return nil, false
}
