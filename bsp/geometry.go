package bsp

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Vec2 is a point or direction in map space.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }
func (v Vec2) LengthSqr() float64 { return v.Dot(v) }
func (v Vec2) Length() float64 { return math.Sqrt(v.LengthSqr()) }
func (v Vec2) Neg() Vec2 { return Vec2{-v.X, -v.Y} }
func (v Vec2) Lerp(o Vec2, t float64) Vec2 { return v.Add(o.Sub(v).Scale(t)) }

// RightNormal is the direction a wall faces when walked along v: Doom puts
// the front side of a line on its right.
func (v Vec2) RightNormal() Vec2 { return Vec2{v.Y, -v.X} }

// Angle is the counter-clockwise angle of v in [0, 2*Pi).
func (v Vec2) Angle() float64 {
	a := math.Atan2(v.Y, v.X)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%g,%g)", v.X, v.Y)
}

// frontDistance is the signed perpendicular distance from p to the line
// through a along d. Positive values are on the front (right) side.
func frontDistance(a, d, p Vec2) float64 {
	l := d.Length()
	if l == 0 {
		return 0
	}
	return p.Sub(a).Cross(d) / l
}

// lineParam projects p onto the line through a along d; 0 at a, 1 at a+d.
func lineParam(a, d, p Vec2) float64 {
	return p.Sub(a).Dot(d) / d.LengthSqr()
}

// intersectParam returns where along a segment its supporting line crosses
// a partition, given the signed distances of the segment's endpoints.
func intersectParam(fs, fe float64) float64 {
	return fs / (fs - fe)
}

// isAxisAligned reports whether d is horizontal or vertical.
func isAxisAligned(d Vec2) bool {
	return d.X == 0 || d.Y == 0
}

// BoundBox is an axis aligned box in map space.
type BoundBox struct {
	Top, Bottom, Left, Right float64
}

// EmptyBox returns a box that any added point will replace.
func EmptyBox() BoundBox {
	return BoundBox{
		Left:   math.Inf(1),
		Right:  math.Inf(-1),
		Bottom: math.Inf(1),
		Top:    math.Inf(-1),
	}
}

// Add grows the box to include p.
func (b *BoundBox) Add(p Vec2) {
	b.Left = min(b.Left, p.X)
	b.Right = max(b.Right, p.X)
	b.Bottom = min(b.Bottom, p.Y)
	b.Top = max(b.Top, p.Y)
}

// Union returns the smallest box holding both b and o.
func (b BoundBox) Union(o BoundBox) BoundBox {
	return BoundBox{
		Top:    max(b.Top, o.Top),
		Bottom: min(b.Bottom, o.Bottom),
		Left:   min(b.Left, o.Left),
		Right:  max(b.Right, o.Right),
	}
}

// Contains reports whether p is inside the box, edges included.
func (b BoundBox) Contains(p Vec2) bool {
	return p.X >= b.Left && p.X <= b.Right && p.Y >= b.Bottom && p.Y <= b.Top
}

// IsEmpty reports whether nothing was added to the box.
func (b BoundBox) IsEmpty() bool {
	return b.Left > b.Right || b.Bottom > b.Top
}

func abs[T constraints.Signed | constraints.Float](n T) T {
	if n < 0 {
		return -n
	}
	return n
}

func clamp[T constraints.Ordered](n, lo, hi T) T {
	return max(lo, min(n, hi))
}

func sign[T constraints.Signed | constraints.Float](n T) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
