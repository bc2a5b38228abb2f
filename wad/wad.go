// Package wad reads Doom's data archives, also known as WAD files, as far as
// needed to compile their levels. The file format is documented in The
// Unofficial DOOM Specs: http://www.gamers.org/dhs/helpdocs/dmsp1666.html
package wad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

var (
	ErrBadMagic      = errors.New("bad magic")
	ErrLumpNotFound  = errors.New("lump not found")
	ErrLevelNotFound = errors.New("level not found")
	ErrBadDirectory  = errors.New("bad directory entry")
)

// WAD is Doom's data archive. The data is organized as named lumps; levels
// are a marker lump followed by their map lumps.
type WAD struct {
	header    *Header
	file      io.ReadSeeker
	size      int64
	closer    io.Closer
	lumpInfos []LumpInfo
	lumpNums  map[string]int
	levels    map[string]int
}

type binHeader struct {
	Magic        [4]byte
	NumLumps     int32
	InfoTableOfs int32
}

type Header struct {
	Magic        string
	NumLumps     int
	InfoTableOfs int
}

type binLumpInfo struct {
	Filepos int32
	Size    int32
	Name    String8
}

type LumpInfo struct {
	Name    string
	Filepos int
	Size    int
}

// WAD eight-character string type. Null-terminated for short strings.
type String8 [8]byte

// String converts String8 to string
func (s String8) String() string {
	i := bytes.IndexByte(s[:], 0)
	if i == -1 {
		i = len(s)
	}
	return string(s[0:i])
}

// Open reads the directory of the WAD file at filename. Close releases the file.
func Open(filename string) (*WAD, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	w, err := NewWADFromReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	w.closer = file
	return w, nil
}

// NewWADFromReader reads the directory of a WAD held by r. Both IWADs and
// PWADs are accepted.
func NewWADFromReader(r io.ReadSeeker) (*WAD, error) {
	logger.Info("Start reading WAD")
	w := &WAD{file: r}
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	w.size = size

	// Read header
	if err := w.seek(0); err != nil {
		return nil, err
	}
	var binHeader binHeader
	if err := binary.Read(r, binary.LittleEndian, &binHeader); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	magic := string(binHeader.Magic[:])
	if magic != "IWAD" && magic != "PWAD" {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, magic)
	}
	if binHeader.NumLumps < 0 || binHeader.InfoTableOfs < 0 ||
		int64(binHeader.InfoTableOfs)+16*int64(binHeader.NumLumps) > w.size {
		return nil, fmt.Errorf("corrupt header: %d lumps at %d", binHeader.NumLumps, binHeader.InfoTableOfs)
	}
	w.header = &Header{magic, int(binHeader.NumLumps), int(binHeader.InfoTableOfs)}

	// Read info tables
	if err := w.readInfoTables(); err != nil {
		return nil, err
	}
	logger.Infow("Read WAD directory", "type", magic, "lumps", len(w.lumpInfos), "levels", len(w.levels))
	return w, nil
}

// Close closes the underlying file when the WAD was opened by name.
func (w *WAD) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

func (w *WAD) Header() Header {
	return *w.header
}

func (w *WAD) readInfoTables() error {
	if err := w.seek(int64(w.header.InfoTableOfs)); err != nil {
		return err
	}
	binInfos := make([]binLumpInfo, w.header.NumLumps)
	if err := binary.Read(w.file, binary.LittleEndian, binInfos); err != nil {
		return fmt.Errorf("reading directory: %w", err)
	}

	lumpNums := map[string]int{}
	levels := map[string]int{}
	lumpInfos := make([]LumpInfo, w.header.NumLumps)
	for i, binInfo := range binInfos {
		lumpInfo := LumpInfo{binInfo.Name.String(), int(binInfo.Filepos), int(binInfo.Size)}
		if binInfo.Filepos < 0 || binInfo.Size < 0 || int64(binInfo.Filepos)+int64(binInfo.Size) > w.size {
			return fmt.Errorf("%w: lump %d %s at %d size %d", ErrBadDirectory, i, lumpInfo.Name, lumpInfo.Filepos, lumpInfo.Size)
		}
		// A level is the marker lump just before its THINGS
		if lumpInfo.Name == "THINGS" && i > 0 {
			levels[lumpInfos[i-1].Name] = i - 1
		}
		lumpNums[lumpInfo.Name] = i
		lumpInfos[i] = lumpInfo
	}
	w.levels = levels
	w.lumpNums = lumpNums
	w.lumpInfos = lumpInfos
	return nil
}

// LevelNames returns the names of all levels in the WAD, sorted.
func (w *WAD) LevelNames() []string {
	result := make([]string, 0, len(w.levels))
	for name := range w.levels {
		result = append(result, name)
	}
	slices.Sort(result)
	return result
}

// LumpInfo returns the directory entry of the last lump called name.
func (w *WAD) LumpInfo(name string) (LumpInfo, error) {
	i, ok := w.lumpNums[name]
	if !ok {
		return LumpInfo{}, fmt.Errorf("%w: %s", ErrLumpNotFound, name)
	}
	return w.lumpInfos[i], nil
}

// seek
func (w *WAD) seek(offset int64) error {
	off, err := w.file.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}
	if off != offset {
		return fmt.Errorf("seek failed")
	}
	return nil
}

// Read entire lump
func (w *WAD) readLump(lumpInfo *LumpInfo) ([]byte, error) {
	if err := w.seek(int64(lumpInfo.Filepos)); err != nil {
		return nil, err
	}
	lump := make([]byte, lumpInfo.Size)
	if _, err := io.ReadFull(w.file, lump); err != nil {
		return nil, fmt.Errorf("truncated lump %s: %w", lumpInfo.Name, err)
	}
	return lump, nil
}

// readRecords decodes a lump made of fixed size little endian records.
func readRecords[T any](w *WAD, lumpInfo *LumpInfo) ([]T, error) {
	lump, err := w.readLump(lumpInfo)
	if err != nil {
		return nil, err
	}
	var zero T
	size := binary.Size(zero)
	if lumpInfo.Size%size != 0 {
		logger.Warnw("Lump has a partial record", "lump", lumpInfo.Name, "size", lumpInfo.Size, "record", size)
	}
	records := make([]T, lumpInfo.Size/size)
	if err := binary.Read(bytes.NewReader(lump), binary.LittleEndian, records); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", lumpInfo.Name, err)
	}
	return records, nil
}

// degreesToRadians
func degreesToRadians[T constraints.Integer | constraints.Float](n T) float64 {
	return float64(n) * (math.Pi / 180)
}
