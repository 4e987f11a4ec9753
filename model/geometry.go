package model

import "math"

// Point is a 2D point in page coordinates.
type Point struct {
	X, Y float64
}

// BBox is an axis-aligned rectangle in PDF page coordinates, where Y grows
// upward: Y is the bottom edge and Y+Height the top edge.
type BBox struct {
	X      float64 // Left
	Y      float64 // Bottom
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from its left/bottom corner and dimensions.
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate.
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate.
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Bottom returns the bottom edge Y coordinate.
func (b BBox) Bottom() float64 {
	return b.Y
}

// Top returns the top edge Y coordinate.
func (b BBox) Top() float64 {
	return b.Y + b.Height
}

// Center returns the center point.
func (b BBox) Center() Point {
	return Point{
		X: b.X + b.Width/2,
		Y: b.Y + b.Height/2,
	}
}

// Contains reports whether a point lies inside the box, edges included.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Bottom() && p.Y <= b.Top()
}

// Intersects reports whether two boxes overlap.
func (b BBox) Intersects(other BBox) bool {
	return !(b.Right() < other.Left() ||
		b.Left() > other.Right() ||
		b.Top() < other.Bottom() ||
		b.Bottom() > other.Top())
}

// Intersection returns the overlapping region of two boxes, or a zero box if
// they do not intersect.
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return BBox{}
	}

	x := math.Max(b.Left(), other.Left())
	y := math.Max(b.Bottom(), other.Bottom())
	right := math.Min(b.Right(), other.Right())
	top := math.Min(b.Top(), other.Top())

	return BBox{X: x, Y: y, Width: right - x, Height: top - y}
}

// Union returns the smallest box covering both boxes.
func (b BBox) Union(other BBox) BBox {
	x := math.Min(b.Left(), other.Left())
	y := math.Min(b.Bottom(), other.Bottom())
	right := math.Max(b.Right(), other.Right())
	top := math.Max(b.Top(), other.Top())

	return BBox{X: x, Y: y, Width: right - x, Height: top - y}
}

// Area returns the area of the box.
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// IoU returns the intersection-over-union ratio of two boxes, in [0,1].
// Identical boxes score 1; disjoint boxes score 0.
func (b BBox) IoU(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}

	inter := b.Intersection(other).Area()
	union := b.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}

	return inter / union
}

// IsEmpty reports whether the box has no area.
func (b BBox) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}
