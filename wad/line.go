package wad

import "github.com/stuarthighley/doombsp/bsp"

type binLine struct {
	VertexStart, VertexEnd int16
	Flags                  int16
	Type                   int16
	SectorTag              int16
	SideR, SideL           int16
}

// Line is a LINEDEF. SideR faces right of V1->V2 and is the front.
type Line struct {
	Index                  int
	V1Num                  int
	V2Num                  int
	BlockPlayerAndMonsters bool
	BlockMonsters          bool
	TwoSided               bool
	UpperTextureUnpegged   bool
	LowerTextureUnpegged   bool
	Secret                 bool
	BlocksSound            bool
	NeverMap               bool
	AlwaysMap              bool
	Type                   LineType
	SectorTagNum           int
	SideRNum, SideLNum     int

	// References
	V1, V2                  Vertex
	DX, DY                  float64 // V2-V1
	TaggedSectors           []*Sector
	SideR, SideL            *Side // nil when the side is missing
	BoundingBox             bsp.BoundBox
	SlopeType               SlopeType
	FrontSector, BackSector *Sector
}

type SlopeType int

const (
	SlopeTypeHorizontal SlopeType = iota
	SlopeTypeVertical
	SlopeTypePositive
	SlopeTypeNegative
)

// LineType is the special action number of a line, 0 for none.
type LineType int

func (l *Line) slopeType() SlopeType {
	switch {
	case l.DX == 0:
		return SlopeTypeVertical
	case l.DY == 0:
		return SlopeTypeHorizontal
	case l.DY/l.DX > 0:
		return SlopeTypePositive
	}
	return SlopeTypeNegative
}

func decodeLine(i int, line binLine) Line {
	return Line{
		Index:                  i,
		V1Num:                  int(uint16(line.VertexStart)),
		V2Num:                  int(uint16(line.VertexEnd)),
		BlockPlayerAndMonsters: line.Flags&1 != 0,
		BlockMonsters:          line.Flags&2 != 0,
		TwoSided:               line.Flags&4 != 0,
		UpperTextureUnpegged:   line.Flags&8 != 0,
		LowerTextureUnpegged:   line.Flags&0x10 != 0,
		Secret:                 line.Flags&0x20 != 0,
		BlocksSound:            line.Flags&0x40 != 0,
		NeverMap:               line.Flags&0x80 != 0,
		AlwaysMap:              line.Flags&0x100 != 0,
		Type:                   LineType(line.Type),
		SectorTagNum:           int(line.SectorTag),
		SideRNum:               sideNum(line.SideR),
		SideLNum:               sideNum(line.SideL),
	}
}

// sideNum reads a sidedef number as unsigned; 0xFFFF means no side.
func sideNum(n int16) int {
	if uint16(n) == 0xFFFF {
		return -1
	}
	return int(uint16(n))
}
