package bsp

import "math"

// Vertex is a point owned by a VertexStore.
type Vertex struct {
	Index int
	X, Y  float64
}

func (v Vertex) Pos() Vec2 {
	return Vec2{v.X, v.Y}
}

type cellKey struct {
	X, Y int64
}

// VertexStore hands out one index per physical location. Points within the
// weld epsilon on both axes resolve to the vertex inserted first.
type VertexStore struct {
	epsilon  float64
	cellSize float64
	vertices []Vertex
	cells    map[cellKey][]int
}

func NewVertexStore(epsilon float64) *VertexStore {
	return &VertexStore{
		epsilon:  epsilon,
		cellSize: max(16, 4*epsilon),
		cells:    make(map[cellKey][]int),
	}
}

func (s *VertexStore) cell(p Vec2) cellKey {
	return cellKey{
		X: int64(math.Floor(p.X / s.cellSize)),
		Y: int64(math.Floor(p.Y / s.cellSize)),
	}
}

// Lookup returns the vertex welded to p, if any. The cell size is larger than
// the epsilon, so a match can only be in p's cell or one of its neighbours.
func (s *VertexStore) Lookup(p Vec2) (int, bool) {
	c := s.cell(p)
	found := -1
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, i := range s.cells[cellKey{c.X + dx, c.Y + dy}] {
				v := s.vertices[i]
				if abs(v.X-p.X) <= s.epsilon && abs(v.Y-p.Y) <= s.epsilon {
					if found < 0 || i < found {
						found = i
					}
				}
			}
		}
	}
	return found, found >= 0
}

// GetOrAdd returns the index of the vertex at p, creating it if needed.
func (s *VertexStore) GetOrAdd(p Vec2) int {
	if i, ok := s.Lookup(p); ok {
		return i
	}
	i := len(s.vertices)
	s.vertices = append(s.vertices, Vertex{Index: i, X: p.X, Y: p.Y})
	c := s.cell(p)
	s.cells[c] = append(s.cells[c], i)
	return i
}

func (s *VertexStore) Get(i int) Vertex {
	return s.vertices[i]
}

func (s *VertexStore) Pos(i int) Vec2 {
	return s.vertices[i].Pos()
}

func (s *VertexStore) Len() int {
	return len(s.vertices)
}

// All returns a copy of the stored vertices in index order.
func (s *VertexStore) All() []Vertex {
	return append([]Vertex(nil), s.vertices...)
}
