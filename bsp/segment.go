package bsp

// InputSegment is a directed wall as delivered by the map loader. The front
// sector lies to the right of Start->End. A negative BackSector marks a
// one-sided wall.
type InputSegment struct {
	Start, End  Vec2
	Line, Side  int
	FrontSector int
	BackSector  int
}

// Segment is a directed edge between two stored vertices. Minisegs have no
// line or side and carry the sector of the span they close, or -1 in void.
// Inconsistent marks a miniseg whose span got conflicting sector answers
// from its two ends.
type Segment struct {
	Index                  int
	StartVertex, EndVertex int
	Start, End             Vec2
	Line, Side             int
	FrontSector            int
	BackSector             int
	OneSided               bool
	Miniseg                bool
	Inconsistent           bool
}

// Dir is End - Start.
func (s Segment) Dir() Vec2 {
	return s.End.Sub(s.Start)
}

func (s Segment) Length() float64 {
	return s.Dir().Length()
}

// FrontDistance is the signed distance of p from the segment's line,
// positive on the front side.
func (s Segment) FrontDistance(p Vec2) float64 {
	return frontDistance(s.Start, s.Dir(), p)
}

type directedKey struct {
	start, end int
}

// SegmentStore owns every segment of a build. Segments are never modified;
// splitting one adds two fragments.
type SegmentStore struct {
	vertices *VertexStore
	segments []Segment
	directed map[directedKey]int
}

func NewSegmentStore(vertices *VertexStore) *SegmentStore {
	return &SegmentStore{
		vertices: vertices,
		directed: make(map[directedKey]int),
	}
}

// Add stores an input wall. Walls that weld to a single vertex, or that
// repeat an already stored start and end, are logged and rejected.
func (s *SegmentStore) Add(in InputSegment) (int, bool) {
	start := s.vertices.GetOrAdd(in.Start)
	end := s.vertices.GetOrAdd(in.End)
	if start == end {
		logger.Warnw("Skipping zero length segment", "line", in.Line, "side", in.Side, "at", in.Start)
		return -1, false
	}
	key := directedKey{start, end}
	if prev, ok := s.directed[key]; ok {
		logger.Warnw("Skipping duplicate segment", "line", in.Line, "side", in.Side, "duplicates", s.segments[prev].Line)
		return -1, false
	}
	i := s.add(Segment{
		StartVertex: start,
		EndVertex:   end,
		Line:        in.Line,
		Side:        in.Side,
		FrontSector: in.FrontSector,
		BackSector:  max(in.BackSector, -1),
		OneSided:    in.BackSector < 0,
	})
	s.directed[key] = i
	return i, true
}

func (s *SegmentStore) add(seg Segment) int {
	seg.Index = len(s.segments)
	seg.Start = s.vertices.Pos(seg.StartVertex)
	seg.End = s.vertices.Pos(seg.EndVertex)
	s.segments = append(s.segments, seg)
	return seg.Index
}

// Split cuts segment i at vertex v and returns the fragments start->v and
// v->end. Both inherit the wall data of the original.
func (s *SegmentStore) Split(i, v int) (int, int) {
	orig := s.segments[i]
	a := orig
	a.EndVertex = v
	b := orig
	b.StartVertex = v
	return s.add(a), s.add(b)
}

// AddMiniseg stores a synthetic edge closing a leaf along a partition line.
func (s *SegmentStore) AddMiniseg(start, end, sector int, inconsistent bool) int {
	return s.add(Segment{
		StartVertex:  start,
		EndVertex:    end,
		Line:         -1,
		Side:         -1,
		FrontSector:  sector,
		BackSector:   -1,
		Miniseg:      true,
		Inconsistent: inconsistent,
	})
}

func (s *SegmentStore) Get(i int) Segment {
	return s.segments[i]
}

func (s *SegmentStore) Len() int {
	return len(s.segments)
}

// All returns a copy of the stored segments in index order.
func (s *SegmentStore) All() []Segment {
	return append([]Segment(nil), s.segments...)
}
