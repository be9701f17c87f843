package layout

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netsmith/pkg/entity"
	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/geometry"
	"github.com/matzehuels/netsmith/pkg/observability"
	"github.com/matzehuels/netsmith/pkg/topology"
)

// Placement defaults.
const (
	DefaultMargin       = 15
	DefaultRouterWidth  = 50
	DefaultRouterHeight = 250
)

// Options holds the engine's placement parameters.
type Options struct {
	Margin       int // gap between placed routers and the canvas edge
	RouterWidth  int
	RouterHeight int
	PortMargin   int // inset kept between a landing spot and its router's edges
}

// DefaultOptions returns the appliance's customary placement parameters.
func DefaultOptions() Options {
	return Options{
		Margin:       DefaultMargin,
		RouterWidth:  DefaultRouterWidth,
		RouterHeight: DefaultRouterHeight,
		PortMargin:   DefaultMargin,
	}
}

// Engine answers placement questions about canvases mirrored in a cache.
type Engine struct {
	cache  *topology.Cache
	opts   Options
	logger *log.Logger

	mu   sync.Mutex // guards rand
	rand RandSource
}

// NewEngine returns an engine over cache. A nil src uses a PCG source with
// seed 1; a nil logger uses log.Default().
func NewEngine(cache *topology.Cache, opts Options, src RandSource, logger *log.Logger) *Engine {
	if src == nil {
		src = NewSeededSource(1)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{cache: cache, opts: opts, rand: src, logger: logger}
}

// Options returns the engine's placement parameters.
func (e *Engine) Options() Options { return e.opts }

// Cache returns the cache the engine reads from.
func (e *Engine) Cache() *topology.Cache { return e.cache }

// OccupiedArea returns the union of every router and port on resource. The
// boolean is false for an empty canvas, which is not an error.
func (e *Engine) OccupiedArea(ctx context.Context, resource int) (geometry.Rect, bool, error) {
	routers, err := e.cache.Routers(ctx, resource, false)
	if err != nil {
		return geometry.Rect{}, false, err
	}
	ports, err := e.cache.Ports(ctx, resource, false)
	if err != nil {
		return geometry.Rect{}, false, err
	}

	g := geometry.NewGroup()
	for _, r := range routers {
		g.Append(r.Rect())
	}
	for _, p := range ports {
		g.Append(p.Rect())
	}
	g.Update()
	area, ok := g.Bounds()
	return area, ok, nil
}

// AllPortBounds is OccupiedArea restricted to ports.
func (e *Engine) AllPortBounds(ctx context.Context, resource int) (geometry.Rect, bool, error) {
	ports, err := e.cache.Ports(ctx, resource, false)
	if err != nil {
		return geometry.Rect{}, false, err
	}
	rects := make([]geometry.Rect, 0, len(ports))
	for _, p := range ports {
		rects = append(rects, p.Rect())
	}
	if len(rects) == 0 {
		return geometry.Rect{}, false, nil
	}
	area, err := geometry.Union(rects)
	return area, err == nil, err
}

// NetsmithBounds returns the occupied area's size anchored at the canvas
// origin. An empty canvas yields a zero rectangle.
func (e *Engine) NetsmithBounds(ctx context.Context, resource int) (geometry.Rect, error) {
	area, ok, err := e.OccupiedArea(ctx, resource)
	if err != nil || !ok {
		return geometry.Rect{}, err
	}
	return geometry.Rect{Width: area.Width, Height: area.Height}, nil
}

// AreaOption overrides a placement parameter for one allocation.
type AreaOption func(*areaParams)

type areaParams struct {
	width, height, margin int
}

// WithSize sets the width and height of the allocated area.
func WithSize(width, height int) AreaOption {
	return func(p *areaParams) { p.width, p.height = width, height }
}

// WithMargin sets the gap kept from the occupied area.
func WithMargin(margin int) AreaOption {
	return func(p *areaParams) { p.margin = margin }
}

// NextAvailableArea proposes a rectangle on the frontier of resource:
// right of everything occupied (y = margin) or below it (x = margin).
// An empty canvas is treated as a zero rectangle at the origin.
func (e *Engine) NextAvailableArea(ctx context.Context, resource int, dir Direction, opts ...AreaOption) (geometry.Rect, error) {
	if err := dir.Validate(); err != nil {
		return geometry.Rect{}, err
	}
	p := areaParams{width: e.opts.RouterWidth, height: e.opts.RouterHeight, margin: e.opts.Margin}
	for _, opt := range opts {
		opt(&p)
	}
	if p.width < 0 || p.height < 0 || p.margin < 0 {
		return geometry.Rect{}, errors.New(errors.ErrCodeInvalidInput, "area %dx%d margin %d must not be negative", p.width, p.height, p.margin)
	}

	occupied, _, err := e.OccupiedArea(ctx, resource)
	if err != nil {
		return geometry.Rect{}, err
	}

	area := geometry.Rect{Width: p.width, Height: p.height}
	switch dir {
	case Right:
		area.X, area.Y = occupied.Right()+p.margin, p.margin
	case Down:
		area.X, area.Y = p.margin, occupied.Bottom()+p.margin
	}

	observability.Layout().OnAllocate(ctx, resource, dir.String(), area)
	e.logger.Debug("allocated area", "resource", resource, "direction", dir, "area", area)
	return area, nil
}

// LandingSpot draws a point uniformly from bounds shrunk by margin on every
// side, inclusive of the shrunk edges.
func (e *Engine) LandingSpot(ctx context.Context, bounds geometry.Rect, margin int) (geometry.Point, error) {
	e.mu.Lock()
	p, err := LandingSpot(e.rand, bounds, margin)
	e.mu.Unlock()
	if err != nil {
		return geometry.Point{}, err
	}
	observability.Layout().OnLanding(ctx, bounds, p)
	return p, nil
}

// LandingSpot is the engine-free form of [Engine.LandingSpot].
func LandingSpot(src RandSource, bounds geometry.Rect, margin int) (geometry.Point, error) {
	if margin < 0 {
		return geometry.Point{}, errors.New(errors.ErrCodeInvalidBounds, "margin must not be negative, got %d", margin)
	}
	if bounds.Width <= 2*margin || bounds.Height <= 2*margin {
		return geometry.Point{}, errors.New(errors.ErrCodeInvalidBounds, "%s has no room inside margin %d", bounds, margin)
	}
	return geometry.Point{
		X: bounds.X + margin + src.IntN(bounds.Width-2*margin+1),
		Y: bounds.Y + margin + src.IntN(bounds.Height-2*margin+1),
	}, nil
}

// RouterSelector picks which routers IsInsideVirtualRouter checks against.
type RouterSelector struct {
	all bool
	id  entity.ID
}

// AllRouters accepts a rectangle inside any router.
var AllRouters = RouterSelector{all: true}

// SelectRouter accepts a rectangle only inside the router id.
func SelectRouter(id entity.ID) RouterSelector { return RouterSelector{id: id} }

func (s RouterSelector) String() string {
	if s.all {
		return "all"
	}
	return s.id.String()
}

// IsInsideVirtualRouter reports whether candidate lies inside the selected
// router, or inside any router for AllRouters. It is false when resource has
// no routers, the selected router does not exist, or the selector names a
// router on another resource.
func (e *Engine) IsInsideVirtualRouter(ctx context.Context, resource int, candidate geometry.Rect, sel RouterSelector) (bool, error) {
	routers, err := e.cache.Routers(ctx, resource, false)
	if err != nil {
		return false, err
	}
	if len(routers) == 0 {
		return false, nil
	}

	if sel.all {
		for _, r := range routers {
			if candidate.IsInsideOf(r.Rect()) {
				return true, nil
			}
		}
		return false, nil
	}

	if sel.id.Shelf != entity.DefaultShelf || sel.id.Resource != resource {
		return false, nil
	}
	r, ok := routers[sel.id]
	if !ok {
		_, r, ok, err = entity.Resolve(routers, resource, sel.id.ShortName(), entity.Lenient)
		if err != nil || !ok {
			return false, err
		}
	}
	return candidate.IsInsideOf(r.Rect()), nil
}
