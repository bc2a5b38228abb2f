package bsp

import "golang.org/x/exp/slices"

// State is the phase a Builder is in.
type State int

const (
	NotStarted State = iota
	CheckingConvexity
	CreatingLeafNode
	FindingSplitter
	PartitioningSegments
	GeneratingMinisegs
	FinishingSplit
	Complete
	Failed
)

var stateNames = [...]string{
	NotStarted:           "NotStarted",
	CheckingConvexity:    "CheckingConvexity",
	CreatingLeafNode:     "CreatingLeafNode",
	FindingSplitter:      "FindingSplitter",
	PartitioningSegments: "PartitioningSegments",
	GeneratingMinisegs:   "GeneratingMinisegs",
	FinishingSplit:       "FinishingSplit",
	Complete:             "Complete",
	Failed:               "Failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// workItem is a region still to be resolved, and the node slot its result
// goes into.
type workItem struct {
	segs         []int
	path         []Side
	parent       *Node
	side         Side
	depth        int
}

// Builder compiles a map into a Tree one step at a time. Pending regions
// live on an explicit stack, so a build never recurses and can be paused
// between any two steps.
type Builder struct {
	cfg      Config
	observer func(Snapshot)

	vertices    *VertexStore
	segments    *SegmentStore
	junctions   *junctionTable
	convex      *ConvexChecker
	selector    *SplitterSelector
	partitioner *Partitioner
	minisegs    *MinisegGenerator

	input      []int
	state      State
	work       []*workItem
	current    *workItem
	convexity  ConvexResult
	splitter   int
	root       BSPMember
	nodes      []*Node
	subsectors []*Subsector
	processed  int
	maxItems   int
	stats      Stats
	tree       *Tree
	err        error
}

// NewBuilder stores the input walls and returns a builder ready to Step.
// Degenerate walls are dropped here.
func NewBuilder(input []InputSegment, opts ...Option) *Builder {
	b := &Builder{cfg: DefaultConfig(), splitter: -1}
	for _, opt := range opts {
		opt(b)
	}
	b.vertices = NewVertexStore(b.cfg.VertexWeldEpsilon)
	b.segments = NewSegmentStore(b.vertices)
	b.junctions = newJunctionTable()
	b.convex = NewConvexChecker(b.segments, b.cfg.SideEpsilon)
	b.selector = NewSplitterSelector(b.segments, b.cfg)
	b.partitioner = NewPartitioner(b.vertices, b.segments, b.junctions, b.cfg.SideEpsilon)
	b.minisegs = NewMinisegGenerator(b.vertices, b.segments, b.junctions, b.cfg.SideEpsilon)

	for _, in := range input {
		i, ok := b.segments.Add(in)
		if !ok {
			b.stats.Rejected++
			continue
		}
		b.input = append(b.input, i)
		b.junctions.addSegment(b.segments.Get(i))
	}
	b.stats.InputSegments = len(input)
	b.maxItems = 2 * (len(b.input) + 1) * max(1, b.cfg.MaxWorkItemsFactor)
	return b
}

func (b *Builder) State() State {
	return b.state
}

// Tree returns the finished tree, or nil before Complete.
func (b *Builder) Tree() *Tree {
	return b.tree
}

// Build steps until the tree is complete or the build fails.
func (b *Builder) Build() (*Tree, error) {
	for {
		state, err := b.Step()
		if err != nil {
			return nil, err
		}
		if state == Complete {
			return b.tree, nil
		}
	}
}

// Step advances the build by one unit of work and returns the new state.
// Once Complete or Failed, further calls change nothing.
func (b *Builder) Step() (State, error) {
	switch b.state {
	case Complete, Failed:
		return b.state, b.err
	}
	b.stats.Steps++
	switch b.state {
	case NotStarted:
		b.start()
	case CheckingConvexity:
		b.checkConvexity()
	case CreatingLeafNode:
		b.createLeaf()
	case FindingSplitter:
		b.findSplitter()
	case PartitioningSegments:
		b.partition()
	case GeneratingMinisegs:
		if b.minisegs.Step() {
			b.state = FinishingSplit
		}
	case FinishingSplit:
		b.finishSplit()
	}
	b.emit()
	return b.state, b.err
}

func (b *Builder) start() {
	if len(b.input) == 0 {
		b.fail(ErrNoSegments)
		return
	}
	logger.Infow("Building BSP", "segments", len(b.input), "rejected", b.stats.Rejected)
	b.work = append(b.work, &workItem{segs: slices.Clone(b.input)})
	b.next()
}

// next pops the most recently pushed region, or completes the build.
func (b *Builder) next() {
	if len(b.work) == 0 {
		b.complete()
		return
	}
	b.current = b.work[len(b.work)-1]
	b.work = b.work[:len(b.work)-1]
	b.processed++
	if b.processed > b.maxItems || b.current.depth > b.cfg.MaxDepth {
		b.fail(ErrUnresolvableConvexity)
		return
	}
	b.convex.Load(b.current.segs)
	b.state = CheckingConvexity
}

func (b *Builder) checkConvexity() {
	if !b.convex.Step() {
		return
	}
	b.convexity = b.convex.Result()
	switch {
	case b.convexity.Degenerate:
		b.fail(ErrDegenerateRegion)
	case b.convexity.Convex:
		b.state = CreatingLeafNode
	default:
		b.selector.Load(b.current.segs, b.convexity.Offending)
		b.state = FindingSplitter
	}
}

func (b *Builder) createLeaf() {
	r := b.convexity
	sub := &Subsector{
		Index:    len(b.subsectors),
		Segments: r.Ordered,
		Sector:   -1,
		Closed:   r.Closed,
		Rotation: r.Rotation,
		BBox:     b.bbox(r.Ordered),
	}
	for _, i := range r.Ordered {
		if seg := b.segments.Get(i); !seg.Miniseg {
			sub.Sector = seg.FrontSector
			break
		}
	}
	mixed, inconsistent := false, false
	for _, i := range r.Ordered {
		seg := b.segments.Get(i)
		mixed = mixed || seg.FrontSector != sub.Sector
		inconsistent = inconsistent || seg.Inconsistent
	}
	sub.Void = !sub.Closed || sub.Sector < 0 || mixed || inconsistent
	if sub.Void {
		logger.Debugw("Void subsector", "index", sub.Index, "closed", sub.Closed, "mixed", mixed, "inconsistent", inconsistent, "path", pathString(b.current.path))
		sub.Sector = -1
		b.stats.VoidLeaves++
	}

	b.subsectors = append(b.subsectors, sub)
	b.attach(sub)
	b.stats.MaxDepth = max(b.stats.MaxDepth, b.current.depth)
	b.next()
}

func (b *Builder) findSplitter() {
	if !b.selector.Step() {
		return
	}
	seg, score, err := b.selector.Result()
	if err != nil {
		b.fail(err)
		return
	}
	logger.Debugw("Chose splitter", "segment", seg, "score", score, "path", pathString(b.current.path))
	b.splitter = seg
	b.partitioner.Load(seg, b.current.segs)
	b.state = PartitioningSegments
}

func (b *Builder) partition() {
	if !b.partitioner.Step() {
		return
	}
	left, right := b.partitioner.Left(), b.partitioner.Right()
	if len(left) == 0 || len(right) == 0 {
		b.fail(ErrUnresolvableConvexity)
		return
	}
	b.stats.Splits += len(b.partitioner.SplitVertices())
	b.minisegs.Load(b.splitter, left, right)
	b.state = GeneratingMinisegs
}

func (b *Builder) finishSplit() {
	sp := b.segments.Get(b.splitter)
	left, right := b.minisegs.Left(), b.minisegs.Right()
	d := sp.Dir()
	node := &Node{
		Index:    len(b.nodes),
		X:        sp.Start.X,
		Y:        sp.Start.Y,
		DX:       d.X,
		DY:       d.Y,
		Splitter: sp.Index,
		BBoxR:    b.bbox(right),
		BBoxL:    b.bbox(left),
	}
	node.BBox = node.BBoxR.Union(node.BBoxL)
	b.nodes = append(b.nodes, node)
	b.attach(node)
	b.stats.Minisegs += len(b.minisegs.Minisegs())
	b.stats.Inconsistent += b.minisegs.Progress().Inconsistent

	child := func(segs []int, side Side) *workItem {
		return &workItem{
			segs:   segs,
			path:   append(slices.Clone(b.current.path), side),
			parent: node,
			side:   side,
			depth:  b.current.depth + 1,
		}
	}
	// Right is pushed last so it is resolved first.
	b.work = append(b.work, child(left, Left), child(right, Right))
	b.splitter = -1
	b.next()
}

func (b *Builder) attach(m BSPMember) {
	switch parent := b.current.parent; {
	case parent == nil:
		b.root = m
	case b.current.side == Right:
		parent.ChildR = m
	default:
		parent.ChildL = m
	}
}

func (b *Builder) bbox(segs []int) BoundBox {
	box := EmptyBox()
	for _, i := range segs {
		seg := b.segments.Get(i)
		box.Add(seg.Start)
		box.Add(seg.End)
	}
	return box
}

func (b *Builder) complete() {
	b.state = Complete
	b.current = nil
	b.stats.Nodes = len(b.nodes)
	b.stats.Subsectors = len(b.subsectors)
	b.stats.Segments = b.segments.Len()
	b.tree = &Tree{
		Root:       b.root,
		Subsectors: b.subsectors,
		Nodes:      b.nodes,
		Vertices:   b.vertices.All(),
		Segments:   b.segments.All(),
		stats:      b.stats,
	}
	logger.Infow("BSP complete",
		"nodes", b.stats.Nodes,
		"subsectors", b.stats.Subsectors,
		"void", b.stats.VoidLeaves,
		"splits", b.stats.Splits,
		"minisegs", b.stats.Minisegs,
		"depth", b.stats.MaxDepth)
}

func (b *Builder) fail(err error) {
	var path []Side
	if b.current != nil {
		path = slices.Clone(b.current.path)
	}
	b.err = &BuildError{State: b.state, Path: path, Err: err}
	b.state = Failed
	logger.Warnw("BSP build failed", "error", b.err)
}
