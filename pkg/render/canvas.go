package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/netsmith/pkg/geometry"
	"github.com/matzehuels/netsmith/pkg/topology"
)

const canvasCSS = `
    .router { fill: #dbeafe; stroke: #1d4ed8; stroke-width: 1; transition: stroke-width 0.2s ease; }
    .router.highlight { stroke-width: 3; }
    .port { fill: #fde68a; stroke: #b45309; stroke-width: 1; }
    .frontier { fill: none; stroke: #16a34a; stroke-dasharray: 4 3; }
    text { font-family: sans-serif; font-size: 10px; pointer-events: none; }`

const canvasJS = `
    document.querySelectorAll('.router').forEach(el => {
      el.addEventListener('mouseenter', () => el.classList.add('highlight'));
      el.addEventListener('mouseleave', () => el.classList.remove('highlight'));
    });`

// CanvasOption configures CanvasSVG.
type CanvasOption func(*canvasRenderer)

type canvasRenderer struct {
	padding  int
	frontier []geometry.Rect
	labels   bool
}

// WithPadding adds space around the occupied area.
func WithPadding(p int) CanvasOption { return func(r *canvasRenderer) { r.padding = p } }

// WithFrontier outlines proposed areas (e.g. the next allocation) dashed.
func WithFrontier(areas ...geometry.Rect) CanvasOption {
	return func(r *canvasRenderer) { r.frontier = append(r.frontier, areas...) }
}

// WithoutLabels omits router names.
func WithoutLabels() CanvasOption { return func(r *canvasRenderer) { r.labels = false } }

// CanvasSVG draws the snapshot at its exact appliance coordinates.
func CanvasSVG(snap topology.Snapshot, opts ...CanvasOption) []byte {
	r := canvasRenderer{padding: 15, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	width, height := r.extent(snap)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", canvasCSS)

	for _, rt := range snap.Routers {
		writeRect(&buf, "router", rt.Record)
	}
	for _, p := range snap.Ports {
		writeRect(&buf, "port", p.Record)
	}
	for _, f := range r.frontier {
		fmt.Fprintf(&buf, `  <rect class="frontier" x="%d" y="%d" width="%d" height="%d"/>`+"\n", f.X, f.Y, f.Width, f.Height)
	}
	if r.labels {
		for _, rt := range snap.Routers {
			fmt.Fprintf(&buf, `  <text x="%d" y="%d">%s</text>`+"\n",
				rt.X+3, rt.Y+12, html.EscapeString(rt.ID.ShortName()))
		}
	}

	fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", canvasJS)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r canvasRenderer) extent(snap topology.Snapshot) (int, int) {
	var rects []geometry.Rect
	for _, rt := range snap.Routers {
		rects = append(rects, rt.Rect())
	}
	for _, p := range snap.Ports {
		rects = append(rects, p.Rect())
	}
	rects = append(rects, r.frontier...)

	w, h := 2*r.padding, 2*r.padding
	if u, err := geometry.Union(rects); err == nil {
		w = max(w, u.Right()+r.padding)
		h = max(h, u.Bottom()+r.padding)
	}
	return w, h
}

func writeRect(buf *bytes.Buffer, class string, rec topology.Record) {
	fmt.Fprintf(buf, `  <rect id="%s" class="%s" x="%d" y="%d" width="%d" height="%d"><title>%s %s</title></rect>`+"\n",
		html.EscapeString(rec.ID.String()), class, rec.X, rec.Y, rec.Width, rec.Height,
		html.EscapeString(rec.ID.String()), rec.Rect())
}
