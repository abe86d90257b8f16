package zmin

// Mode selects which back end performs minification. All three produce
// byte-identical output for valid input; they differ in memory and
// concurrency policy only.
type Mode int

const (
	// Eco streams the input through a fixed 64KiB buffer pair with O(1)
	// memory relative to input length.
	Eco Mode = iota
	// Sport runs a single-threaded, SIMD-accelerated block scan.
	Sport
	// Turbo splits the input into JSON-safe chunks and minifies them
	// concurrently across a work-stealing pool of workers.
	Turbo
)

func (m Mode) String() string {
	switch m {
	case Eco:
		return "eco"
	case Sport:
		return "sport"
	case Turbo:
		return "turbo"
	default:
		return "unknown"
	}
}
