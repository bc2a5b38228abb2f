package bsp

// Rotation is the winding of an ordered boundary.
type Rotation int

const (
	RotationUnknown Rotation = iota
	RotationClockwise
	RotationCounterClockwise
)

func (r Rotation) String() string {
	switch r {
	case RotationClockwise:
		return "Clockwise"
	case RotationCounterClockwise:
		return "CounterClockwise"
	}
	return "Unknown"
}

// ConvexResult is the verdict of a ConvexChecker.
type ConvexResult struct {
	Convex     bool
	Degenerate bool
	// Offending is a segment whose line has Other behind it; -1 when convex.
	Offending, Other int
	// Ordered, Closed and Rotation are only set for convex sets.
	Ordered  []int
	Closed   bool
	Rotation Rotation
}

// ConvexProgress is the observable state of a ConvexChecker.
type ConvexProgress struct {
	Start, Current int
	Visited, Total int
	Rotation       Rotation
}

// ConvexChecker tests whether every segment of a set lies on the front side
// of every other segment's line. Each Step checks one reference segment
// against the rest.
type ConvexChecker struct {
	store   *SegmentStore
	epsilon float64

	segs    []int
	visited int
	done    bool
	result  ConvexResult
}

func NewConvexChecker(store *SegmentStore, epsilon float64) *ConvexChecker {
	return &ConvexChecker{store: store, epsilon: epsilon}
}

func (c *ConvexChecker) Load(segs []int) {
	c.segs = segs
	c.visited = 0
	c.done = false
	c.result = ConvexResult{Offending: -1, Other: -1}
}

// Step checks the next reference segment and reports whether a verdict has
// been reached.
func (c *ConvexChecker) Step() bool {
	if c.done {
		return true
	}
	if len(c.segs) == 0 {
		c.result.Degenerate = true
		c.done = true
		return true
	}

	ref := c.store.Get(c.segs[c.visited])
	for _, i := range c.segs {
		if i == ref.Index {
			continue
		}
		other := c.store.Get(i)
		if ref.FrontDistance(other.Start) < -c.epsilon || ref.FrontDistance(other.End) < -c.epsilon {
			c.result.Offending = ref.Index
			c.result.Other = i
			c.done = true
			return true
		}
	}

	c.visited++
	if c.visited == len(c.segs) {
		c.result.Convex = true
		c.result.Ordered, c.result.Closed = orderBoundary(c.store, c.segs)
		c.result.Rotation = rotationOf(c.store, c.result.Ordered)
		c.done = true
	}
	return c.done
}

func (c *ConvexChecker) Result() ConvexResult {
	return c.result
}

func (c *ConvexChecker) Progress() ConvexProgress {
	p := ConvexProgress{
		Start:    -1,
		Current:  -1,
		Visited:  c.visited,
		Total:    len(c.segs),
		Rotation: c.result.Rotation,
	}
	if len(c.segs) > 0 {
		p.Start = c.segs[0]
		p.Current = c.segs[min(c.visited, len(c.segs)-1)]
	}
	return p
}

// orderBoundary chains segments end to start. Chains begin at a segment
// whose start no other segment ends at, so an open boundary is walked from
// its free end. closed reports a single chain returning to its first vertex.
func orderBoundary(store *SegmentStore, segs []int) ([]int, bool) {
	byStart := make(map[int][]int, len(segs))
	ends := make(map[int]bool, len(segs))
	for _, i := range segs {
		s := store.Get(i)
		byStart[s.StartVertex] = append(byStart[s.StartVertex], i)
		ends[s.EndVertex] = true
	}

	used := make(map[int]bool, len(segs))
	ordered := make([]int, 0, len(segs))
	chains := 0
	for len(ordered) < len(segs) {
		first := -1
		for _, i := range segs {
			if !used[i] && !ends[store.Get(i).StartVertex] {
				first = i
				break
			}
		}
		if first < 0 {
			for _, i := range segs {
				if !used[i] {
					first = i
					break
				}
			}
		}
		chains++
		for cur := first; cur >= 0; {
			used[cur] = true
			ordered = append(ordered, cur)
			next := -1
			for _, j := range byStart[store.Get(cur).EndVertex] {
				if !used[j] {
					next = j
					break
				}
			}
			cur = next
		}
	}

	closed := chains == 1 &&
		store.Get(ordered[len(ordered)-1]).EndVertex == store.Get(ordered[0]).StartVertex
	return ordered, closed
}

// rotationOf is the winding of the polygon traced by ordered, using the
// shoelace sum. An open boundary is closed from its last end to its first
// start.
func rotationOf(store *SegmentStore, ordered []int) Rotation {
	if len(ordered) == 0 {
		return RotationUnknown
	}
	var area2 float64
	for _, i := range ordered {
		s := store.Get(i)
		area2 += s.Start.Cross(s.End)
	}
	area2 += store.Get(ordered[len(ordered)-1]).End.Cross(store.Get(ordered[0]).Start)
	switch sign(area2) {
	case -1:
		return RotationClockwise
	case 1:
		return RotationCounterClockwise
	}
	return RotationUnknown
}
