package geometry

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/netsmith/pkg/errors"
)

func TestNewRectTruncates(t *testing.T) {
	r := NewRect(10.9, 20.2, 50.7, -3)
	if want := (Rect{X: 10, Y: 20, Width: 50, Height: 0}); r != want {
		t.Fatalf("NewRect() = %+v, want %+v", r, want)
	}
	if r.Right() != 60 || r.Bottom() != 20 {
		t.Errorf("Right/Bottom = %d/%d, want 60/20", r.Right(), r.Bottom())
	}
	if !r.Empty() {
		t.Error("zero-height rect should be empty")
	}
}

func TestIsInsideOf(t *testing.T) {
	outer := Rect{X: 10, Y: 10, Width: 50, Height: 250}

	tests := []struct {
		name  string
		inner Rect
		want  bool
	}{
		{"itself", outer, true},
		{"strictly inside", Rect{X: 25, Y: 25, Width: 10, Height: 10}, true},
		{"touching right edge", Rect{X: 50, Y: 20, Width: 10, Height: 10}, true},
		{"past right edge", Rect{X: 51, Y: 20, Width: 10, Height: 10}, false},
		{"left of outer", Rect{X: 9, Y: 20, Width: 10, Height: 10}, false},
		{"above outer", Rect{X: 20, Y: 5, Width: 10, Height: 10}, false},
		{"past bottom", Rect{X: 20, Y: 255, Width: 10, Height: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInsideOf(tt.inner, outer); got != tt.want {
				t.Errorf("IsInsideOf(%s, %s) = %v, want %v", tt.inner, outer, got, tt.want)
			}
		})
	}
}

func TestIsInsideOfReflexive(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for range 200 {
		r := Rect{X: rng.IntN(1000) - 500, Y: rng.IntN(1000) - 500, Width: rng.IntN(300), Height: rng.IntN(300)}
		if !r.IsInsideOf(r) {
			t.Errorf("rect %s not inside itself", r)
		}
	}
}

func TestUnionEmpty(t *testing.T) {
	_, err := Union(nil)
	if !errors.Is(err, errors.ErrCodeEmptyInput) {
		t.Errorf("Union(nil) error = %v, want EMPTY_INPUT", err)
	}
}

func TestUnionSingle(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 20}
	u, err := Union([]Rect{r})
	if err != nil {
		t.Fatalf("Union() error: %v", err)
	}
	if u != r {
		t.Errorf("Union() = %s, want %s", u, r)
	}
}

func TestUnionProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	for range 100 {
		n := 1 + rng.IntN(12)
		rects := make([]Rect, n)
		for i := range rects {
			rects[i] = Rect{X: rng.IntN(800), Y: rng.IntN(800), Width: rng.IntN(200), Height: rng.IntN(200)}
		}

		u, err := Union(rects)
		if err != nil {
			t.Fatalf("Union() error: %v", err)
		}

		minX, minY := rects[0].X, rects[0].Y
		maxR, maxB := rects[0].Right(), rects[0].Bottom()
		for _, r := range rects {
			minX, minY = min(minX, r.X), min(minY, r.Y)
			maxR, maxB = max(maxR, r.Right()), max(maxB, r.Bottom())
			if !r.IsInsideOf(u) {
				t.Errorf("member %s outside union %s", r, u)
			}
		}
		if u.X != minX || u.Y != minY || u.Right() != maxR || u.Bottom() != maxB {
			t.Errorf("Union() = %s, want edges %d,%d..%d,%d", u, minX, minY, maxR, maxB)
		}
	}
}

func TestUnionDoesNotMutateInput(t *testing.T) {
	rects := []Rect{{X: 5, Y: 5, Width: 1, Height: 1}, {X: 0, Y: 0, Width: 2, Height: 2}}
	orig := slices.Clone(rects)
	_, _ = Union(rects)
	if !slices.Equal(orig, rects) {
		t.Errorf("input changed: %v, want %v", rects, orig)
	}
}

func TestShrink(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 50, Height: 250}
	tests := []struct {
		margin int
		want   Rect
	}{
		{15, Rect{X: 15, Y: 15, Width: 20, Height: 220}},
		{30, Rect{X: 30, Y: 30, Width: 0, Height: 190}},
	}
	for _, tt := range tests {
		if got := r.Shrink(tt.margin); got != tt.want {
			t.Errorf("Shrink(%d) = %s, want %s", tt.margin, got, tt.want)
		}
	}
}

func TestContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 10, Height: 10}
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{X: 10, Y: 10}, true},
		{Point{X: 20, Y: 20}, true},
		{Point{X: 21, Y: 20}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestGroupUpdateIsExplicit(t *testing.T) {
	g := NewGroup(Rect{X: 0, Y: 0, Width: 10, Height: 10})
	b, ok := g.Bounds()
	if !ok || b != (Rect{X: 0, Y: 0, Width: 10, Height: 10}) {
		t.Fatalf("Bounds() = %s, %v", b, ok)
	}

	g.Append(Rect{X: 90, Y: 90, Width: 10, Height: 10})
	if b, _ = g.Bounds(); b.Width != 10 {
		t.Errorf("union changed before Update: %s", b)
	}

	g.Update()
	b, ok = g.Bounds()
	if !ok || b != (Rect{X: 0, Y: 0, Width: 100, Height: 100}) {
		t.Errorf("Bounds() after Update = %s, %v", b, ok)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

func TestEmptyGroup(t *testing.T) {
	if _, ok := NewGroup().Bounds(); ok {
		t.Error("empty group should have no bounds")
	}
}
