package bsp

// Side picks a child of a node. The front of a partition line is Right.
type Side int

const (
	Right Side = iota
	Left
)

func (s Side) String() string {
	if s == Left {
		return "Left"
	}
	return "Right"
}

func (s Side) letter() byte {
	if s == Left {
		return 'L'
	}
	return 'R'
}

type segClass int

const (
	classRight segClass = iota
	classLeft
	classSplit
)

// classify places seg relative to the line through a along d. Endpoints
// within epsilon of the line count as on it; a segment lying on the line
// goes Right when it faces the same way as d.
func classify(a, d Vec2, seg Segment, epsilon float64) (class segClass, fs, fe float64) {
	fs = frontDistance(a, d, seg.Start)
	fe = frontDistance(a, d, seg.End)
	onStart := abs(fs) <= epsilon
	onEnd := abs(fe) <= epsilon
	switch {
	case onStart && onEnd:
		if seg.Dir().Dot(d) > 0 {
			return classRight, fs, fe
		}
		return classLeft, fs, fe
	case fs >= -epsilon && fe >= -epsilon:
		return classRight, fs, fe
	case fs <= epsilon && fe <= epsilon:
		return classLeft, fs, fe
	}
	return classSplit, fs, fe
}

// PartitionProgress is the observable state of a Partitioner.
type PartitionProgress struct {
	Splitter    int
	Index       int
	Left, Right []int
}

// Partitioner sorts a segment set to either side of a splitter, cutting
// the segments that straddle it. Each Step handles one segment.
type Partitioner struct {
	vertices  *VertexStore
	store     *SegmentStore
	junctions *junctionTable
	epsilon   float64

	splitter    Segment
	segs        []int
	index       int
	left, right []int
	splitVerts  []int
}

func NewPartitioner(vertices *VertexStore, store *SegmentStore, junctions *junctionTable, epsilon float64) *Partitioner {
	return &Partitioner{
		vertices:  vertices,
		store:     store,
		junctions: junctions,
		epsilon:   epsilon,
		splitter:  Segment{Index: -1},
	}
}

func (p *Partitioner) Load(splitter int, segs []int) {
	p.splitter = p.store.Get(splitter)
	p.segs = segs
	p.index = 0
	p.left = nil
	p.right = nil
	p.splitVerts = nil
}

// Step partitions the next segment and reports whether all are done.
func (p *Partitioner) Step() bool {
	if p.index >= len(p.segs) {
		return true
	}
	seg := p.store.Get(p.segs[p.index])
	p.index++

	if seg.Index == p.splitter.Index {
		p.right = append(p.right, seg.Index)
		return p.index >= len(p.segs)
	}

	class, fs, fe := classify(p.splitter.Start, p.splitter.Dir(), seg, p.epsilon)
	switch class {
	case classRight:
		p.right = append(p.right, seg.Index)
	case classLeft:
		p.left = append(p.left, seg.Index)
	case classSplit:
		p.split(seg, fs, fe)
	}
	return p.index >= len(p.segs)
}

func (p *Partitioner) split(seg Segment, fs, fe float64) {
	t := clamp(intersectParam(fs, fe), 0, 1)
	v := p.vertices.GetOrAdd(seg.Start.Lerp(seg.End, t))
	if v == seg.StartVertex || v == seg.EndVertex {
		// The cut welded onto an endpoint; the far end decides the side.
		far := fs
		if abs(fe) > abs(fs) {
			far = fe
		}
		if far > 0 {
			p.right = append(p.right, seg.Index)
		} else {
			p.left = append(p.left, seg.Index)
		}
		return
	}

	a, b := p.store.Split(seg.Index, v)
	p.junctions.addSegmentAt(p.store.Get(a), v)
	p.junctions.addSegmentAt(p.store.Get(b), v)
	p.splitVerts = append(p.splitVerts, v)
	if fs > 0 {
		p.right = append(p.right, a)
		p.left = append(p.left, b)
	} else {
		p.left = append(p.left, a)
		p.right = append(p.right, b)
	}
	logger.Debugw("Split segment", "segment", seg.Index, "line", seg.Line, "at", p.vertices.Pos(v))
}

func (p *Partitioner) Left() []int          { return p.left }
func (p *Partitioner) Right() []int         { return p.right }
func (p *Partitioner) SplitVertices() []int { return p.splitVerts }

func (p *Partitioner) Progress() PartitionProgress {
	return PartitionProgress{
		Splitter: p.splitter.Index,
		Index:    p.index,
		Left:     append([]int(nil), p.left...),
		Right:    append([]int(nil), p.right...),
	}
}
