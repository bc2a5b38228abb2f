package bsp

import (
	"cmp"

	"golang.org/x/exp/slices"
)

// VoidStatus is whether the span under consideration lies outside every
// sector.
type VoidStatus int

const (
	VoidNotStarted VoidStatus = iota
	VoidIn
	VoidNotIn
)

func (v VoidStatus) String() string {
	switch v {
	case VoidIn:
		return "InVoid"
	case VoidNotIn:
		return "NotInVoid"
	}
	return "NotStarted"
}

// MinisegProgress is the observable state of a MinisegGenerator.
type MinisegProgress struct {
	First, Second   int
	FirstT, SecondT float64
	Minisegs        []int
	Void            VoidStatus
	Inconsistent    int
}

type linePoint struct {
	vertex int
	t      float64
}

type span struct {
	lo, hi float64
}

// MinisegGenerator closes both halves of a partitioned set along the
// splitter. The vertices lying on the splitter are visited in order, and
// each Step decides, for one span between neighbours, whether either side
// needs a miniseg.
type MinisegGenerator struct {
	vertices  *VertexStore
	store     *SegmentStore
	junctions *junctionTable
	epsilon   float64

	origin, dir    Vec2
	left, right    []int
	points         []linePoint
	coverL, coverR []span
	pair           int
	minisegs       []int
	void           VoidStatus
	inconsistent   int
}

func NewMinisegGenerator(vertices *VertexStore, store *SegmentStore, junctions *junctionTable, epsilon float64) *MinisegGenerator {
	return &MinisegGenerator{
		vertices:  vertices,
		store:     store,
		junctions: junctions,
		epsilon:   epsilon,
	}
}

func (g *MinisegGenerator) Load(splitter int, left, right []int) {
	s := g.store.Get(splitter)
	g.origin = s.Start
	g.dir = s.Dir()
	g.left = append([]int(nil), left...)
	g.right = append([]int(nil), right...)
	g.points = g.points[:0]
	g.coverL = g.coverL[:0]
	g.coverR = g.coverR[:0]
	g.pair = 0
	g.minisegs = nil
	g.void = VoidNotStarted
	g.inconsistent = 0

	seen := make(map[int]bool)
	collect := func(segs []int, cover *[]span) {
		for _, i := range segs {
			seg := g.store.Get(i)
			onStart := g.onLine(seg.StartVertex, seen)
			onEnd := g.onLine(seg.EndVertex, seen)
			if onStart && onEnd {
				ts := lineParam(g.origin, g.dir, seg.Start)
				te := lineParam(g.origin, g.dir, seg.End)
				*cover = append(*cover, span{min(ts, te), max(ts, te)})
			}
		}
	}
	collect(g.right, &g.coverR)
	collect(g.left, &g.coverL)

	slices.SortStableFunc(g.points, func(a, b linePoint) int {
		if c := cmp.Compare(a.t, b.t); c != 0 {
			return c
		}
		return cmp.Compare(a.vertex, b.vertex)
	})
}

// onLine reports whether vertex v lies on the splitter, recording it the
// first time it is seen.
func (g *MinisegGenerator) onLine(v int, seen map[int]bool) bool {
	p := g.vertices.Pos(v)
	if abs(frontDistance(g.origin, g.dir, p)) > g.epsilon {
		return false
	}
	if !seen[v] {
		seen[v] = true
		g.points = append(g.points, linePoint{vertex: v, t: lineParam(g.origin, g.dir, p)})
	}
	return true
}

// Step examines the next span and reports whether all spans are done.
func (g *MinisegGenerator) Step() bool {
	if g.pair+1 >= len(g.points) {
		return true
	}
	p, q := g.points[g.pair], g.points[g.pair+1]
	g.pair++
	g.span(p, q)
	return g.pair+1 >= len(g.points)
}

func (g *MinisegGenerator) span(p, q linePoint) {
	if g.vertices.Pos(p.vertex).Sub(g.vertices.Pos(q.vertex)).Length() <= g.epsilon {
		return
	}

	// Ask both ends which sectors the span runs between. Seen from q the
	// span points backwards, so its right and left swap.
	r1, l1, ok1 := g.junctions.sectorsAlong(p.vertex, g.dir)
	r2, l2, ok2 := g.junctions.sectorsAlong(q.vertex, g.dir.Neg())
	right, left := r1, l1
	conflict := false
	switch {
	case ok1 && ok2:
		if r1 != l2 || l1 != r2 {
			g.inconsistent++
			conflict = true
			logger.Debugw("Inconsistent sectors along splitter",
				"from", g.vertices.Pos(p.vertex), "to", g.vertices.Pos(q.vertex))
			right = agree(r1, l2)
			left = agree(l1, r2)
		}
	case ok2:
		right, left = l2, r2
	}

	if right < 0 && left < 0 {
		g.void = VoidIn
	} else {
		g.void = VoidNotIn
	}

	tEps := g.epsilon / g.dir.Length()
	if right >= 0 && !covered(g.coverR, p.t, q.t, tEps) {
		m := g.store.AddMiniseg(p.vertex, q.vertex, right, conflict)
		g.right = append(g.right, m)
		g.minisegs = append(g.minisegs, m)
	}
	if left >= 0 && !covered(g.coverL, p.t, q.t, tEps) {
		m := g.store.AddMiniseg(q.vertex, p.vertex, left, conflict)
		g.left = append(g.left, m)
		g.minisegs = append(g.minisegs, m)
	}
}

// agree settles two answers for the same side. Void wins, leaving that side
// open. Two different sectors keep the first; the miniseg is then marked
// inconsistent and the leaf it closes is void.
func agree(a, b int) int {
	if a < 0 || b < 0 {
		return -1
	}
	return a
}

func covered(cover []span, lo, hi, eps float64) bool {
	for _, s := range cover {
		if s.lo <= lo+eps && s.hi >= hi-eps {
			return true
		}
	}
	return false
}

func (g *MinisegGenerator) Left() []int     { return g.left }
func (g *MinisegGenerator) Right() []int    { return g.right }
func (g *MinisegGenerator) Minisegs() []int { return g.minisegs }

// Inconsistent reports whether any span got conflicting answers.
func (g *MinisegGenerator) Inconsistent() bool { return g.inconsistent > 0 }

func (g *MinisegGenerator) Progress() MinisegProgress {
	mp := MinisegProgress{
		First:        -1,
		Second:       -1,
		Minisegs:     append([]int(nil), g.minisegs...),
		Void:         g.void,
		Inconsistent: g.inconsistent,
	}
	if g.pair > 0 {
		p, q := g.points[g.pair-1], g.points[g.pair]
		mp.First, mp.Second = p.vertex, q.vertex
		mp.FirstT, mp.SecondT = p.t, q.t
	}
	return mp
}
