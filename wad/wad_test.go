package wad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stuarthighley/doombsp/bsp"
)

type testLump struct {
	name string
	data []byte
}

func name8(s string) String8 {
	var n String8
	copy(n[:], s)
	return n
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// buildWAD lays out a WAD image: header, lump data, then the directory.
func buildWAD(t *testing.T, magic string, lumps []testLump) []byte {
	t.Helper()
	var data bytes.Buffer
	infos := make([]binLumpInfo, len(lumps))
	for i, l := range lumps {
		infos[i] = binLumpInfo{Filepos: int32(12 + data.Len()), Size: int32(len(l.data)), Name: name8(l.name)}
		data.Write(l.data)
	}
	var h binHeader
	copy(h.Magic[:], magic)
	h.NumLumps = int32(len(lumps))
	h.InfoTableOfs = int32(12 + data.Len())

	var out bytes.Buffer
	out.Write(encode(t, h))
	out.Write(data.Bytes())
	out.Write(encode(t, infos))
	return out.Bytes()
}

// twoRoomLevel is two 64 unit rooms joined by a two-sided line, plus one
// zero length line.
func twoRoomLevel(t *testing.T) []testLump {
	vertexes := []binVertex{{0, 0}, {0, 64}, {64, 64}, {64, 0}, {128, 64}, {128, 0}}
	lines := []binLine{
		{VertexStart: 0, VertexEnd: 1, SideR: 0, SideL: -1},
		{VertexStart: 1, VertexEnd: 2, SideR: 1, SideL: -1},
		{VertexStart: 2, VertexEnd: 3, Flags: 4, SideR: 2, SideL: 4},
		{VertexStart: 3, VertexEnd: 0, SideR: 3, SideL: -1},
		{VertexStart: 2, VertexEnd: 4, SideR: 5, SideL: -1},
		{VertexStart: 4, VertexEnd: 5, SideR: 6, SideL: -1},
		{VertexStart: 5, VertexEnd: 3, SideR: 7, SideL: -1, SectorTag: 9},
		{VertexStart: 0, VertexEnd: 0, SideR: 3, SideL: -1},
	}
	sides := make([]binSide, 8)
	for i := range sides {
		sides[i] = binSide{MiddleTexture: name8("STARTAN3")}
		if i >= 4 {
			sides[i].SectorNum = 1
		}
	}
	sectors := []binSector{
		{FloorHeight: 0, CeilingHeight: 128, FloorTexture: name8("FLOOR4_8"), CeilingTexture: name8("CEIL3_5"), LightLevel: 160},
		{FloorHeight: 16, CeilingHeight: 128, FloorTexture: name8("FLOOR4_8"), CeilingTexture: name8("F_SKY1"), LightLevel: 255, Type: 9, TagNum: 9},
	}
	things := []binThing{
		{X: 32, Y: 32, Angle: 90, Type: 1, Options: 7},
		{X: 96, Y: 32, Angle: 180, Type: 3001, Options: 4 | 8},
	}
	return []testLump{
		{"MAP01", nil},
		{"THINGS", encode(t, things)},
		{"LINEDEFS", encode(t, lines)},
		{"SIDEDEFS", encode(t, sides)},
		{"VERTEXES", encode(t, vertexes)},
		{"SEGS", nil},
		{"SECTORS", encode(t, sectors)},
		{"PLAYPAL", make([]byte, 16)},
	}
}

func openTestWAD(t *testing.T) *WAD {
	t.Helper()
	w, err := NewWADFromReader(bytes.NewReader(buildWAD(t, "PWAD", twoRoomLevel(t))))
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestNewWADFromReader(t *testing.T) {
	w := openTestWAD(t)
	if h := w.Header(); h.Magic != "PWAD" || h.NumLumps != 8 {
		t.Errorf("header %+v", h)
	}
	if names := w.LevelNames(); len(names) != 1 || names[0] != "MAP01" {
		t.Errorf("levels %v", names)
	}
	if info, err := w.LumpInfo("PLAYPAL"); err != nil || info.Size != 16 {
		t.Errorf("LumpInfo(PLAYPAL) = %+v, %v", info, err)
	}
	if _, err := w.LumpInfo("TEXTURE1"); !errors.Is(err, ErrLumpNotFound) {
		t.Errorf("got %v, want ErrLumpNotFound", err)
	}

	_, err := NewWADFromReader(bytes.NewReader(buildWAD(t, "ZWAD", nil)))
	if !errors.Is(err, ErrBadMagic) {
		t.Errorf("got %v, want ErrBadMagic", err)
	}
	if _, err := NewWADFromReader(bytes.NewReader([]byte("IWAD"))); err == nil {
		t.Error("read a truncated header")
	}
}

func TestCorruptDirectory(t *testing.T) {
	// entry returns the offset of the directory entry for name.
	entry := func(t *testing.T, img []byte, name string) int {
		t.Helper()
		ofs := int(binary.LittleEndian.Uint32(img[8:]))
		for i := ofs; i+16 <= len(img); i += 16 {
			if String8(img[i+8:i+16]).String() == name {
				return i
			}
		}
		t.Fatalf("no directory entry %s", name)
		return 0
	}

	tests := []struct {
		name  string
		patch func(t *testing.T, img []byte)
	}{
		{"negative size", func(t *testing.T, img []byte) {
			binary.LittleEndian.PutUint32(img[entry(t, img, "THINGS")+4:], 0xFFFFFFFF)
		}},
		{"negative position", func(t *testing.T, img []byte) {
			binary.LittleEndian.PutUint32(img[entry(t, img, "LINEDEFS"):], 0x80000000)
		}},
		{"past end of file", func(t *testing.T, img []byte) {
			binary.LittleEndian.PutUint32(img[entry(t, img, "VERTEXES")+4:], uint32(len(img)))
		}},
		{"too many lumps", func(t *testing.T, img []byte) {
			binary.LittleEndian.PutUint32(img[4:], 1<<20)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := buildWAD(t, "PWAD", twoRoomLevel(t))
			tt.patch(t, img)
			w, err := NewWADFromReader(bytes.NewReader(img))
			if err == nil {
				_, err = w.ReadLevel("MAP01", nil)
			}
			if err == nil {
				t.Fatal("accepted a corrupt directory")
			}
		})
	}

	img := buildWAD(t, "PWAD", twoRoomLevel(t))
	binary.LittleEndian.PutUint32(img[entry(t, img, "THINGS")+4:], 0xFFFFFFFF)
	if _, err := NewWADFromReader(bytes.NewReader(img)); !errors.Is(err, ErrBadDirectory) {
		t.Errorf("got %v, want ErrBadDirectory", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wad")
	if err := os.WriteFile(path, buildWAD(t, "IWAD", twoRoomLevel(t)), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.ReadLevel("MAP01", nil); err != nil {
		t.Error(err)
	}
	if err := w.Close(); err != nil {
		t.Error(err)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.wad")); err == nil {
		t.Error("opened a missing file")
	}
}

func TestReadLevel(t *testing.T) {
	type userData struct{ Count int }
	w := openTestWAD(t)
	l, err := w.ReadLevel("MAP01", userData{7})
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Things) != 2 || len(l.Lines) != 8 || len(l.Sides) != 8 || len(l.Vertexes) != 6 || len(l.Sectors) != 2 {
		t.Fatalf("got %d things %d lines %d sides %d vertexes %d sectors",
			len(l.Things), len(l.Lines), len(l.Sides), len(l.Vertexes), len(l.Sectors))
	}

	shared := l.Lines[2]
	if !shared.TwoSided || shared.FrontSector != &l.Sectors[0] || shared.BackSector != &l.Sectors[1] {
		t.Errorf("shared line %+v", shared)
	}
	if shared.SlopeType != SlopeTypeVertical || l.Lines[1].SlopeType != SlopeTypeHorizontal {
		t.Errorf("slope types %v %v", shared.SlopeType, l.Lines[1].SlopeType)
	}
	if bb := l.Lines[4].BoundingBox; bb.Left != 64 || bb.Right != 128 || bb.Top != 64 || bb.Bottom != 64 {
		t.Errorf("bounding box %+v", bb)
	}
	if tagged := l.Lines[6].TaggedSectors; len(tagged) != 1 || tagged[0] != &l.Sectors[1] {
		t.Errorf("tagged sectors %v", tagged)
	}

	s := l.Sectors[1]
	if s.Type != TypeSecret || s.CeilingTextureName != "F_SKY1" || s.FloorHeight != 16 {
		t.Errorf("sector %+v", s)
	}
	if len(l.Sectors[0].Lines) != 5 || len(s.Lines) != 4 {
		t.Errorf("sector lines %d %d", len(l.Sectors[0].Lines), len(s.Lines))
	}
	if s.SoundOrigin.X != 96 || s.SoundOrigin.Y != 32 {
		t.Errorf("sound origin %+v", s.SoundOrigin)
	}
	if u, ok := s.User.(userData); !ok || u.Count != 7 {
		t.Errorf("user data %#v", s.User)
	}
	if l.Sides[0].MiddleTextureName != "STARTAN3" {
		t.Errorf("side texture %q", l.Sides[0].MiddleTextureName)
	}

	th := l.Things[1]
	if th.Type != 3001 || !th.Skill4and5 || !th.Ambush || th.Skill3 || math.Abs(th.Angle-math.Pi) > 1e-12 {
		t.Errorf("thing %+v", th)
	}

	if _, err := w.ReadLevel("E1M1", nil); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("got %v, want ErrLevelNotFound", err)
	}
	if _, err := w.ReadLevel("MAP01", 5); err == nil {
		t.Error("accepted non-struct user data")
	}
}

func TestDecodeLineSides(t *testing.T) {
	tests := []struct {
		side int16
		want int
	}{
		{0, 0},
		{-1, -1},
		{0x7FFF, 0x7FFF},
		{-0x8000, 0x8000},
		{-2, 0xFFFE},
	}
	for _, tt := range tests {
		li := decodeLine(0, binLine{SideR: tt.side, SideL: tt.side})
		if li.SideRNum != tt.want || li.SideLNum != tt.want {
			t.Errorf("side %d decoded as %d/%d, want %d", tt.side, li.SideRNum, li.SideLNum, tt.want)
		}
	}
}

func TestBSPInput(t *testing.T) {
	l, err := openTestWAD(t).ReadLevel("MAP01", nil)
	if err != nil {
		t.Fatal(err)
	}
	input := l.BSPInput()
	if len(input) != 8 {
		t.Fatalf("got %d segments, want 8", len(input))
	}
	var back *bsp.InputSegment
	for i := range input {
		if input[i].Line == 2 && input[i].Side == 4 {
			back = &input[i]
		}
		if input[i].Line == 7 {
			t.Errorf("zero length line converted")
		}
	}
	if back == nil {
		t.Fatal("no segment for the back of the shared line")
	}
	if back.Start != (bsp.Vec2{X: 64, Y: 0}) || back.End != (bsp.Vec2{X: 64, Y: 64}) || back.FrontSector != 1 || back.BackSector != 0 {
		t.Errorf("back segment %+v", *back)
	}
}

func TestBuildBSP(t *testing.T) {
	l, err := openTestWAD(t).ReadLevel("MAP01", nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.SectorAt(32, 32) != nil {
		t.Error("SectorAt before BuildBSP")
	}
	tree, err := l.BuildBSP()
	if err != nil {
		t.Fatal(err)
	}
	if l.BSP != tree || len(tree.Subsectors) != 2 || len(tree.Nodes) != 1 {
		t.Fatalf("tree %+v", tree.Stats())
	}

	start, ok := l.PlayerStart(1)
	if !ok || start.X != 32 || start.Y != 32 {
		t.Fatalf("player start %+v, %v", start, ok)
	}
	if _, ok := l.PlayerStart(2); ok {
		t.Error("found a second player start")
	}
	if s := l.SectorAt(float64(start.X), float64(start.Y)); s == nil || s.Index != 0 {
		t.Errorf("player start in sector %+v", s)
	}
	if s := l.SectorAt(96, 32); s == nil || s.Index != 1 {
		t.Errorf("(96,32) in sector %+v", s)
	}

	_, err = l.BuildBSP(bsp.WithConfig(bsp.Config{MaxDepth: -1}))
	var be *bsp.BuildError
	if !errors.As(err, &be) {
		t.Errorf("got %v, want a BuildError", err)
	}
}
