package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/topology"
)

// Graphviz positions are in points; canvas units map 1:1 onto them.
const pointsPerInch = 72.0

// Options configures DOT output.
type Options struct {
	// Detailed adds each object's rectangle to its label.
	Detailed bool
}

// ToDOT converts a snapshot to an undirected Graphviz graph. Every node is
// pinned at its canvas position (y flipped, since Graphviz grows upwards).
func ToDOT(snap topology.Snapshot, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "graph %q {\n", fmt.Sprintf("resource %d", snap.Resource))
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, fixedsize=true, style=filled, fontsize=10];\n")
	buf.WriteString("\n")

	for _, r := range snap.Routers {
		writeNode(&buf, r.Record, opts, "fillcolor=\"#dbeafe\", color=\"#1d4ed8\"")
	}
	if len(snap.Ports) > 0 {
		buf.WriteString("\n")
	}
	for _, p := range snap.Ports {
		writeNode(&buf, p.Record, opts, "fillcolor=\"#fde68a\", color=\"#b45309\", fontsize=6")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, rec topology.Record, opts Options, style string) {
	label := rec.ID.ShortName()
	if opts.Detailed {
		label += "\n" + rec.Rect().String()
	}
	cx := float64(rec.X) + float64(rec.Width)/2
	cy := -(float64(rec.Y) + float64(rec.Height)/2)
	fmt.Fprintf(buf, "  %q [label=%q, pos=\"%.1f,%.1f!\", width=%.3f, height=%.3f, %s];\n",
		rec.ID.String(), label, cx, cy,
		float64(rec.Width)/pointsPerInch, float64(rec.Height)/pointsPerInch, style)
}

// RenderSVG lays out dot with neato and renders it to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// width and height match the viewBox, so browsers scale it predictably.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
