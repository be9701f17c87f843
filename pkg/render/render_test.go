package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/netsmith/pkg/entity"
	"github.com/matzehuels/netsmith/pkg/geometry"
	"github.com/matzehuels/netsmith/pkg/topology"
)

func testSnapshot() topology.Snapshot {
	return topology.Snapshot{
		Resource: 1,
		Routers: []topology.RouterRecord{
			{Record: topology.Record{ID: entity.CanonicalRouterKey(1, "vr1"), X: 15, Y: 15, Width: 50, Height: 250}},
		},
		Ports: []topology.PortRecord{
			{Record: topology.Record{ID: entity.New(1, "vr1.rd0a"), X: 30, Y: 40, Width: 10, Height: 10}},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testSnapshot(), Options{})

	if !strings.HasPrefix(dot, `graph "resource 1" {`) {
		t.Errorf("ToDOT() header = %q", strings.SplitN(dot, "\n", 2)[0])
	}
	if !strings.Contains(dot, `"1.1.1.65535.vr1" [label="vr1", pos="40.0,-140.0!"`) {
		t.Errorf("ToDOT() router node missing or misplaced:\n%s", dot)
	}
	if !strings.Contains(dot, `label="rd0a"`) {
		t.Error("ToDOT() port label should be its short name")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testSnapshot(), Options{Detailed: true})
	if !strings.Contains(dot, `15,15 50x250`) {
		t.Error("ToDOT() detailed output missing rectangle")
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(topology.Snapshot{Resource: 3}, Options{})
	if strings.Contains(dot, "pos=") {
		t.Error("empty snapshot should have no nodes")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testSnapshot(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "vr1") {
		t.Error("RenderSVG() output is not an SVG of the canvas")
	}
}

func TestCanvasSVG(t *testing.T) {
	next := geometry.Rect{X: 80, Y: 15, Width: 50, Height: 250}
	svg := string(CanvasSVG(testSnapshot(), WithFrontier(next)))

	for _, want := range []string{
		`viewBox="0 0 145 280"`,
		`class="router" x="15" y="15" width="50" height="250"`,
		`class="port" x="30" y="40" width="10" height="10"`,
		`class="frontier" x="80" y="15"`,
		`>vr1</text>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("CanvasSVG() missing %q", want)
		}
	}
}

func TestCanvasSVGEmpty(t *testing.T) {
	svg := string(CanvasSVG(topology.Snapshot{}, WithPadding(10), WithoutLabels()))
	if !strings.Contains(svg, `viewBox="0 0 20 20"`) {
		t.Errorf("empty canvas size wrong: %s", strings.SplitN(svg, "\n", 2)[0])
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `width="10" height="20"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
}
