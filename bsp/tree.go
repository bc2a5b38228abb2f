package bsp

type BSPType int

const (
	BSPNode BSPType = iota
	BSPSubSector
)

// BSPMember is either a *Node or a *Subsector.
type BSPMember interface {
	BSPType() BSPType
}

// Node divides space along the line through (X,Y) in direction (DX,DY).
// Right holds the front of the line.
type Node struct {
	Index    int
	X, Y     float64
	DX, DY   float64
	Splitter int
	BBoxR    BoundBox
	BBoxL    BoundBox
	BBox     BoundBox
	ChildR   BSPMember
	ChildL   BSPMember
}

func (n *Node) BSPType() BSPType {
	return BSPNode
}

func (n *Node) Child(side Side) BSPMember {
	if side == Right {
		return n.ChildR
	}
	return n.ChildL
}

func (n *Node) BoundBox(side Side) BoundBox {
	if side == Right {
		return n.BBoxR
	}
	return n.BBoxL
}

// PointSide returns the child that owns point (x,y). Points on the line
// belong to the front.
func (n *Node) PointSide(x, y float64) Side {
	if frontDistance(Vec2{n.X, n.Y}, Vec2{n.DX, n.DY}, Vec2{x, y}) >= 0 {
		return Right
	}
	return Left
}

// Subsector is a convex leaf. Segments is its boundary in walking order.
type Subsector struct {
	Index    int
	Segments []int
	Sector   int
	Void     bool
	Closed   bool
	Rotation Rotation
	BBox     BoundBox
}

func (s *Subsector) BSPType() BSPType {
	return BSPSubSector
}

// Tree is a finished build. It is never modified and may be shared between
// goroutines.
type Tree struct {
	Root       BSPMember
	Subsectors []*Subsector
	Nodes      []*Node
	Vertices   []Vertex
	Segments   []Segment

	stats Stats
}

// Stats summarises a build.
type Stats struct {
	Nodes         int
	Subsectors    int
	VoidLeaves    int
	Segments      int
	InputSegments int
	Rejected      int
	Splits        int
	Minisegs      int
	Inconsistent  int
	MaxDepth      int
	Steps         int
}

func (t *Tree) Stats() Stats {
	return t.stats
}

// Locate returns the subsector containing (x,y).
func (t *Tree) Locate(x, y float64) *Subsector {
	member := t.Root
	for {
		switch m := member.(type) {
		case *Node:
			member = m.Child(m.PointSide(x, y))
		case *Subsector:
			return m
		default:
			return nil
		}
	}
}

// FrontToBack visits every subsector ordered nearest first as seen from
// (x,y), the order a renderer draws in. Returning false from fn stops the
// walk.
func (t *Tree) FrontToBack(x, y float64, fn func(*Subsector) bool) {
	if t.Root == nil {
		return
	}
	stack := []BSPMember{t.Root}
	for len(stack) > 0 {
		member := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch m := member.(type) {
		case *Node:
			near := m.PointSide(x, y)
			stack = append(stack, m.Child(1-near), m.Child(near))
		case *Subsector:
			if !fn(m) {
				return
			}
		}
	}
}

// SubsectorsOfSector returns the non-void subsectors of a sector in build
// order.
func (t *Tree) SubsectorsOfSector(sector int) []*Subsector {
	var subs []*Subsector
	for _, s := range t.Subsectors {
		if !s.Void && s.Sector == sector {
			subs = append(subs, s)
		}
	}
	return subs
}

// Polygon returns the corners of a subsector in boundary order.
func (t *Tree) Polygon(s *Subsector) []Vec2 {
	poly := make([]Vec2, 0, len(s.Segments))
	for _, i := range s.Segments {
		poly = append(poly, t.Segments[i].Start)
	}
	return poly
}
