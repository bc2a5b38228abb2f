package bsp

import (
	"math"

	"golang.org/x/exp/slices"
)

const tipAngleEpsilon = 1e-9

// wallTip is a wall leaving a vertex, seen from that vertex. Right and Left
// are the sectors on either side of the tip's direction, -1 for void.
type wallTip struct {
	angle       float64
	right, left int
}

// junctionTable records, for each vertex, the walls that meet there. It
// answers which sector a ray leaving the vertex runs through.
type junctionTable struct {
	tips map[int][]wallTip
}

func newJunctionTable() *junctionTable {
	return &junctionTable{tips: make(map[int][]wallTip)}
}

// addSegment registers tips at both ends of seg.
func (j *junctionTable) addSegment(seg Segment) {
	j.addSegmentAt(seg, seg.StartVertex)
	j.addSegmentAt(seg, seg.EndVertex)
}

// addSegmentAt registers seg's tip at vertex v only.
func (j *junctionTable) addSegmentAt(seg Segment, v int) {
	switch v {
	case seg.StartVertex:
		j.add(v, wallTip{angle: seg.Dir().Angle(), right: seg.FrontSector, left: seg.BackSector})
	case seg.EndVertex:
		j.add(v, wallTip{angle: seg.Dir().Neg().Angle(), right: seg.BackSector, left: seg.FrontSector})
	}
}

func (j *junctionTable) add(v int, tip wallTip) {
	tips := j.tips[v]
	i, found := slices.BinarySearchFunc(tips, tip.angle, func(t wallTip, a float64) int {
		switch {
		case math.Abs(t.angle-a) <= tipAngleEpsilon:
			return 0
		case t.angle < a:
			return -1
		}
		return 1
	})
	if found {
		// Two sides of the same line, or overlapping walls.
		if tips[i].right < 0 {
			tips[i].right = tip.right
		}
		if tips[i].left < 0 {
			tips[i].left = tip.left
		}
		return
	}
	j.tips[v] = slices.Insert(tips, i, tip)
}

// sectorsAlong returns the sectors to the right and left of a ray leaving
// vertex v in direction dir. ok is false when no wall meets v.
func (j *junctionTable) sectorsAlong(v int, dir Vec2) (right, left int, ok bool) {
	tips := j.tips[v]
	if len(tips) == 0 {
		return -1, -1, false
	}
	a := dir.Angle()
	for _, t := range tips {
		if math.Abs(t.angle-a) <= tipAngleEpsilon {
			return t.right, t.left, true
		}
		if t.angle > a {
			// The ray is clockwise of this tip, so on its right.
			return t.right, t.right, true
		}
	}
	if t := tips[0]; t.angle+2*math.Pi-a <= tipAngleEpsilon {
		return t.right, t.left, true
	}
	return tips[0].right, tips[0].right, true
}
