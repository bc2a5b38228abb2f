package wad

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/stuarthighley/doombsp/bsp"
)

type binSide struct {
	XOffset       int16
	YOffset       int16
	UpperTexture  String8
	LowerTexture  String8
	MiddleTexture String8
	SectorNum     int16
}

type Side struct {
	Index             int
	XOffset           float64
	YOffset           float64
	UpperTextureName  string
	LowerTextureName  string
	MiddleTextureName string
	SectorNum         int
	Sector            *Sector
}

type Vertex struct {
	X, Y float64
}

type binVertex struct {
	X, Y int16
}

type binSector struct {
	FloorHeight    int16
	CeilingHeight  int16
	FloorTexture   String8
	CeilingTexture String8
	LightLevel     int16
	Type           int16
	TagNum         int16
}

type Sector struct {
	Index              int
	FloorHeight        float64
	CeilingHeight      float64
	FloorTextureName   string
	CeilingTextureName string
	LightLevel         int
	Type               SectorType
	TagNum             int

	Lines       []*Line
	BBox        bsp.BoundBox
	SoundOrigin Point // origin for any sounds played by the sector

	User any // User data, cloned per sector from the value passed to ReadLevel
}

type SectorType int

const (
	TypeNormal          SectorType = iota
	TypeBlinkRandom                // 1  Light  Blink random
	TypeBlink05                    // 2  Light  Blink 0.5 second
	TypeBlink10                    // 3  Light  Blink 1.0 second
	TypeDamage20Blink05            // 4  Both   20% damage per second; light blink 0.5 second
	TypeDamage10                   // 5	 Damage 10% damage per second
	TypeUnused1                    // 6  Unused
	TypeDamage5                    // 7	 Damage 5% damage per second
	TypeOscillate                  // 8	 Light  Oscillates
	TypeSecret                     // 9	 Secret Player entering this sector gets credit for finding a secret
	TypeDoor30                     // 10 Door   30 seconds after level start, ceiling closes like a door
	TypeEnd                        // 11 End    20% damage ps. Level ends when player health drops below 11% & touching floor
	TypeBlink10Sync                // 12 Light  Blink 1.0 second, synchronized
	TypeBlink05Sync                // 13 Light  Blink 0.5 second, synchronized
	TypeDoor300                    // 14 Door   300 seconds after level start, ceiling opens like a door
	TypeUnused2                    // 15 Unused
	TypeDamage20                   // 16 Damage 20% damage per second
	TypeFlickerRandom              // 17 Light  Flickers randomly
)

type Point struct {
	X, Y, Z float64
}

type binThing struct {
	X       int16
	Y       int16
	Angle   int16
	Type    int16
	Options int16
}

type Thing struct {
	X, Y            int
	Angle           float64
	Type            int
	Skill1and2      bool
	Skill3          bool
	Skill4and5      bool
	Ambush          bool
	MultiplayerOnly bool
}

// Level is the map data of one level. BSP is set by BuildBSP.
type Level struct {
	Name     string
	Things   []Thing
	Lines    []Line
	Sides    []Side
	Vertexes []Vertex
	Sectors  []Sector
	BSP      *bsp.Tree
}

// ReadLevel reads level data from the WAD archive. sectorUser, when not
// nil, must be a struct; each sector gets its own copy in Sector.User.
// Prebuilt nodes in the WAD are ignored; call BuildBSP to compile them.
func (w *WAD) ReadLevel(name string, sectorUser any) (*Level, error) {
	logger.Infof("Reading Level %v ...", name)

	levelIdx, ok := w.levels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, name)
	}
	level := Level{Name: name}
lumps:
	for i := levelIdx + 1; i < len(w.lumpInfos); i++ {
		lumpInfo := w.lumpInfos[i]
		var err error
		switch lumpInfo.Name {
		case "THINGS":
			level.Things, err = w.readThings(&lumpInfo)
		case "LINEDEFS":
			level.Lines, err = w.readLines(&lumpInfo)
		case "SIDEDEFS":
			level.Sides, err = w.readSides(&lumpInfo)
		case "VERTEXES":
			level.Vertexes, err = w.readVertexes(&lumpInfo)
		case "SECTORS":
			level.Sectors, err = w.readSectors(&lumpInfo, sectorUser)
		case "SEGS", "SSECTORS", "NODES", "REJECT", "BLOCKMAP":
			logger.Debugf("Skipping lump %s", lumpInfo.Name)
		default:
			// Next level or other data
			break lumps
		}
		if err != nil {
			return nil, fmt.Errorf("level %s: %w", name, err)
		}
	}

	// Set references
	if err := level.setReferences(); err != nil {
		return nil, fmt.Errorf("level %s: %w", name, err)
	}

	return &level, nil
}

// setReferences adds pointers to all level assets
func (l *Level) setReferences() error {
	logger.Debug("Setting references ...")

	// Sides
	for i := range l.Sides {
		s := &l.Sides[i]
		if s.SectorNum < 0 || s.SectorNum >= len(l.Sectors) {
			return fmt.Errorf("side %d: bad sector %d", i, s.SectorNum)
		}
		s.Sector = &l.Sectors[s.SectorNum]
	}

	// Lines - dependent on Sides
	for i := range l.Lines {
		li := &l.Lines[i] // Point to element
		if li.V1Num >= len(l.Vertexes) || li.V2Num >= len(l.Vertexes) {
			return fmt.Errorf("line %d: bad vertex %d or %d", i, li.V1Num, li.V2Num)
		}
		li.V1 = l.Vertexes[li.V1Num]
		li.V2 = l.Vertexes[li.V2Num]
		li.DX = li.V2.X - li.V1.X
		li.DY = li.V2.Y - li.V1.Y
		if li.SideRNum >= len(l.Sides) || li.SideLNum >= len(l.Sides) {
			return fmt.Errorf("line %d: bad side %d or %d", i, li.SideRNum, li.SideLNum)
		}
		if li.SideRNum >= 0 { // -1 means no Side
			li.SideR = &l.Sides[li.SideRNum]
			li.FrontSector = li.SideR.Sector
		}
		if li.SideLNum >= 0 { // -1 means no Side
			li.SideL = &l.Sides[li.SideLNum]
			li.BackSector = li.SideL.Sector
		}

		// Point to tagged sectors
		if li.SectorTagNum != 0 {
			for j := range l.Sectors {
				if l.Sectors[j].TagNum == li.SectorTagNum {
					li.TaggedSectors = append(li.TaggedSectors, &l.Sectors[j])
				}
			}
		}

		li.SlopeType = li.slopeType()
		li.BoundingBox = bsp.EmptyBox()
		li.BoundingBox.Add(bsp.Vec2{X: li.V1.X, Y: li.V1.Y})
		li.BoundingBox.Add(bsp.Vec2{X: li.V2.X, Y: li.V2.Y})
	}

	// Sectors
	for i := range l.Sectors {
		l.Sectors[i].BBox = bsp.EmptyBox()
	}
	for i := range l.Lines {
		li := &l.Lines[i]
		if li.FrontSector != nil {
			li.FrontSector.addLine(li)
		}
		if li.BackSector != nil && li.BackSector != li.FrontSector {
			li.BackSector.addLine(li)
		}
	}
	for i := range l.Sectors {
		s := &l.Sectors[i]
		if len(s.Lines) == 0 {
			continue
		}
		// set the sound origin to the middle of the bounding box
		s.SoundOrigin.X = (s.BBox.Right + s.BBox.Left) / 2
		s.SoundOrigin.Y = (s.BBox.Top + s.BBox.Bottom) / 2
	}

	return nil
}

func (s *Sector) addLine(li *Line) {
	s.Lines = append(s.Lines, li)
	s.BBox = s.BBox.Union(li.BoundingBox)
}

func (w *WAD) readThings(lumpInfo *LumpInfo) ([]Thing, error) {
	logger.Debug("Reading Things ...")
	binThings, err := readRecords[binThing](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	// Translate to canonical
	things := make([]Thing, len(binThings))
	for i, t := range binThings {
		things[i] = Thing{
			X:               int(t.X),
			Y:               int(t.Y),
			Angle:           degreesToRadians(t.Angle),
			Type:            int(t.Type),
			Skill1and2:      t.Options&1 != 0,
			Skill3:          t.Options&2 != 0,
			Skill4and5:      t.Options&4 != 0,
			Ambush:          t.Options&8 != 0,
			MultiplayerOnly: t.Options&0x10 != 0,
		}
	}
	logger.Debugf("Read %v things", len(things))
	return things, nil
}

func (w *WAD) readLines(lumpInfo *LumpInfo) ([]Line, error) {
	logger.Debug("Reading Lines ...")
	binLines, err := readRecords[binLine](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, len(binLines))
	for i, line := range binLines {
		lines[i] = decodeLine(i, line)
	}
	logger.Debugf("Read %v lines", len(lines))
	return lines, nil
}

func (w *WAD) readSides(lumpInfo *LumpInfo) ([]Side, error) {
	logger.Debug("Reading Sides ...")
	binSides, err := readRecords[binSide](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	sides := make([]Side, len(binSides))
	for i, s := range binSides {
		sides[i] = Side{
			Index:             i,
			XOffset:           float64(s.XOffset),
			YOffset:           float64(s.YOffset),
			UpperTextureName:  s.UpperTexture.String(),
			MiddleTextureName: s.MiddleTexture.String(),
			LowerTextureName:  s.LowerTexture.String(),
			SectorNum:         int(s.SectorNum),
		}
	}
	logger.Debugf("Read %v sides", len(sides))
	return sides, nil
}

func (w *WAD) readVertexes(lumpInfo *LumpInfo) ([]Vertex, error) {
	logger.Debug("Reading Vertexes ...")
	binVertexes, err := readRecords[binVertex](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	vertexes := make([]Vertex, len(binVertexes))
	for i, v := range binVertexes {
		vertexes[i] = Vertex{float64(v.X), float64(v.Y)}
	}
	logger.Debugf("Read %v vertexes", len(vertexes))
	return vertexes, nil
}

func (w *WAD) readSectors(lumpInfo *LumpInfo, sectorUser any) ([]Sector, error) {
	logger.Debug("Reading Sectors ...")
	binSectors, err := readRecords[binSector](w, lumpInfo)
	if err != nil {
		return nil, err
	}

	sectors := make([]Sector, len(binSectors))
	for i, s := range binSectors {
		var newUser any
		if sectorUser != nil {
			if newUser, err = cloneSectorUserData(sectorUser); err != nil {
				return nil, errors.New("cannot clone passed sectorUserData")
			}
		}
		sectors[i] = Sector{
			Index:              i,
			FloorHeight:        float64(s.FloorHeight),
			CeilingHeight:      float64(s.CeilingHeight),
			FloorTextureName:   s.FloorTexture.String(),
			CeilingTextureName: s.CeilingTexture.String(),
			LightLevel:         int(s.LightLevel),
			Type:               SectorType(s.Type),
			TagNum:             int(s.TagNum),
			User:               newUser,
		}
	}
	logger.Debugf("Read %v Sectors", len(sectors))
	return sectors, nil
}

// CloneStruct clones a struct referenced by an any interface
func cloneSectorUserData(src any) (any, error) {
	srcVal := reflect.ValueOf(src)
	if srcVal.Kind() != reflect.Struct {
		return nil, fmt.Errorf("source is not a struct")
	}
	cloneVal := reflect.New(srcVal.Type()).Elem()
	cloneVal.Set(srcVal)
	return cloneVal.Interface(), nil
}
