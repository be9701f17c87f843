package geometry

import (
	"fmt"

	"github.com/matzehuels/netsmith/pkg/errors"
)

// Rect is an axis-aligned rectangle in canvas pixels.
// Width and Height are never negative for values built with [NewRect].
type Rect struct {
	X, Y          int
	Width, Height int
}

// NewRect builds a rectangle from possibly fractional inputs, truncating
// each toward zero. Negative sizes are clamped to zero.
func NewRect(x, y, width, height float64) Rect {
	return Rect{
		X:      int(x),
		Y:      int(y),
		Width:  max(int(width), 0),
		Height: max(int(height), 0),
	}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width == 0 || r.Height == 0 }

// IsInsideOf reports whether r lies fully inside outer. Edges may touch,
// so every rectangle is inside itself.
func (r Rect) IsInsideOf(outer Rect) bool {
	return r.X >= outer.X &&
		r.Y >= outer.Y &&
		r.Right() <= outer.Right() &&
		r.Bottom() <= outer.Bottom()
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Shrink returns r with margin removed from every side. The result is
// clamped so that it never has a negative size.
func (r Rect) Shrink(margin int) Rect {
	return Rect{
		X:      r.X + margin,
		Y:      r.Y + margin,
		Width:  max(r.Width-2*margin, 0),
		Height: max(r.Height-2*margin, 0),
	}
}

// String formats the rectangle as "x,y wxh".
func (r Rect) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

// Point is a single canvas coordinate.
type Point struct {
	X, Y int
}

// Rect returns the 1x1 rectangle at p.
func (p Point) Rect() Rect { return Rect{X: p.X, Y: p.Y, Width: 1, Height: 1} }

// String formats the point as "(x, y)".
func (p Point) String() string { return fmt.Sprintf("(%d, %d)", p.X, p.Y) }

// IsInsideOf reports whether inner lies fully inside outer.
func IsInsideOf(inner, outer Rect) bool { return inner.IsInsideOf(outer) }

// Union returns the tightest rectangle enclosing every rect.
// It returns an EMPTY_INPUT error when rects is empty.
func Union(rects []Rect) (Rect, error) {
	if len(rects) == 0 {
		return Rect{}, errors.New(errors.ErrCodeEmptyInput, "union of zero rectangles")
	}
	left, top := rects[0].X, rects[0].Y
	right, bottom := rects[0].Right(), rects[0].Bottom()
	for _, r := range rects[1:] {
		left = min(left, r.X)
		top = min(top, r.Y)
		right = max(right, r.Right())
		bottom = max(bottom, r.Bottom())
	}
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}, nil
}
