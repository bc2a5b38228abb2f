package bsp

// Config holds the tolerances and splitter cost weights of a build.
// The weights are tuning parameters; any positive values produce a valid tree.
type Config struct {
	// Points closer than this on both axes are the same vertex.
	VertexWeldEpsilon float64
	// Points within this distance of a line are treated as lying on it.
	SideEpsilon float64

	BalanceWeight           float64
	SplitWeight             float64
	NotAxisAlignedScore     float64
	PunishableEndpointScore float64
	// A split closer than this to either end of the split segment is punished.
	PunishableEndpointDistance float64

	// MaxDepth bounds the node depth of the tree.
	MaxDepth int
	// MaxWorkItems bounds the number of regions processed, as a multiple of
	// the number of input segments.
	MaxWorkItemsFactor int
}

// DefaultConfig returns the settings used when no WithConfig option is given.
func DefaultConfig() Config {
	return Config{
		VertexWeldEpsilon:          0.005,
		SideEpsilon:                0.01,
		BalanceWeight:              1,
		SplitWeight:                4,
		NotAxisAlignedScore:        2,
		PunishableEndpointScore:    2,
		PunishableEndpointDistance: 0.1,
		MaxDepth:                   512,
		MaxWorkItemsFactor:         8,
	}
}

// Option configures a Builder.
type Option func(*Builder)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(b *Builder) {
		b.cfg = cfg
	}
}

// WithObserver registers fn to receive a snapshot after every step.
func WithObserver(fn func(Snapshot)) Option {
	return func(b *Builder) {
		b.observer = fn
	}
}
