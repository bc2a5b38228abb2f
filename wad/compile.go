package wad

import (
	"fmt"

	"github.com/stuarthighley/doombsp/bsp"
)

// BSPInput converts the level's lines into compiler input: a segment
// V1->V2 for the right side and V2->V1 for the left side of every line.
// Zero length lines and lines without sides are left out.
func (l *Level) BSPInput() []bsp.InputSegment {
	input := make([]bsp.InputSegment, 0, len(l.Sides))
	for i := range l.Lines {
		li := &l.Lines[i]
		if li.DX == 0 && li.DY == 0 {
			logger.Warnw("Skipping zero length line", "level", l.Name, "line", i)
			continue
		}
		if li.SideR == nil && li.SideL == nil {
			logger.Warnw("Skipping line without sides", "level", l.Name, "line", i)
			continue
		}

		v1 := bsp.Vec2{X: li.V1.X, Y: li.V1.Y}
		v2 := bsp.Vec2{X: li.V2.X, Y: li.V2.Y}
		front, back := -1, -1
		if li.SideR != nil {
			front = li.SideR.SectorNum
		}
		if li.SideL != nil {
			back = li.SideL.SectorNum
		}
		if li.SideR != nil {
			input = append(input, bsp.InputSegment{
				Start: v1, End: v2, Line: i, Side: li.SideRNum,
				FrontSector: front, BackSector: back,
			})
		}
		if li.SideL != nil {
			input = append(input, bsp.InputSegment{
				Start: v2, End: v1, Line: i, Side: li.SideLNum,
				FrontSector: back, BackSector: front,
			})
		}
	}
	return input
}

// BuildBSP compiles the level's node tree and stores it in l.BSP.
func (l *Level) BuildBSP(opts ...bsp.Option) (*bsp.Tree, error) {
	logger.Infof("Building nodes for %v ...", l.Name)
	tree, err := bsp.NewBuilder(l.BSPInput(), opts...).Build()
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", l.Name, err)
	}
	l.BSP = tree
	return tree, nil
}

// PlayerStart returns the start spot of player n, counting from 1.
func (l *Level) PlayerStart(n int) (Thing, bool) {
	for _, t := range l.Things {
		if t.Type == n {
			return t, true
		}
	}
	return Thing{}, false
}

// SectorAt returns the sector containing (x,y), or nil outside the map.
// The level must have been compiled with BuildBSP.
func (l *Level) SectorAt(x, y float64) *Sector {
	if l.BSP == nil {
		return nil
	}
	sub := l.BSP.Locate(x, y)
	if sub == nil || sub.Void || sub.Sector >= len(l.Sectors) {
		return nil
	}
	return &l.Sectors[sub.Sector]
}
