package bsp

import "golang.org/x/exp/slices"

// Snapshot is a copy of the builder's observable state taken after a step.
// It shares no memory with the builder.
type Snapshot struct {
	Step          int
	State         State
	Path          []Side
	WorkRemaining int
	Splitter      int

	Convexity ConvexProgress
	Selector  SplitterProgress
	Partition PartitionProgress
	Minisegs  MinisegProgress
	Err       error
}

// Snapshot returns the current observable state.
func (b *Builder) Snapshot() Snapshot {
	s := Snapshot{
		Step:          b.stats.Steps,
		State:         b.state,
		WorkRemaining: len(b.work),
		Splitter:      b.splitter,
		Convexity:     b.convex.Progress(),
		Selector:      b.selector.Progress(),
		Partition:     b.partitioner.Progress(),
		Minisegs:      b.minisegs.Progress(),
		Err:           b.err,
	}
	if b.current != nil {
		s.Path = slices.Clone(b.current.path)
	}
	return s
}

func (b *Builder) emit() {
	if b.observer != nil {
		b.observer(b.Snapshot())
	}
}
