package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/matzehuels/netsmith/pkg/entity"
	"github.com/matzehuels/netsmith/pkg/geometry"
	"github.com/matzehuels/netsmith/pkg/topology"
)

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		flag    string
		want    string
		wantErr bool
	}{
		{"default svg", "", "", "svg", false},
		{"stdout default", "-", "", "svg", false},
		{"from extension", "canvas.dot", "", "dot", false},
		{"extension case", "canvas.PNG", "", "png", false},
		{"flag wins", "canvas.svg", "pdf", "pdf", false},
		{"unknown extension", "canvas.json", "", "", true},
		{"unknown flag", "", "gif", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputFormat(tt.output, tt.flag)
			if (err != nil) != tt.wantErr {
				t.Fatalf("outputFormat(%q, %q) error = %v, wantErr %v", tt.output, tt.flag, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("outputFormat(%q, %q) = %q, want %q", tt.output, tt.flag, got, tt.want)
			}
		})
	}
}

func testSnapshot() topology.Snapshot {
	return topology.Snapshot{
		Resource: 1,
		Routers: []topology.RouterRecord{{Record: topology.Record{
			ID: entity.CanonicalRouterKey(1, "vr1"), X: 15, Y: 15, Width: 50, Height: 250,
		}}},
		Ports: []topology.PortRecord{{Record: topology.Record{
			ID: entity.New(1, "rd0a"), X: 30, Y: 40, Width: 10, Height: 10,
		}}},
	}
}

func TestRenderSnapshotDOT(t *testing.T) {
	data, err := renderSnapshot(context.Background(), testSnapshot(), nil, &renderOpts{format: "dot", engine: engineCanvas})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("graph ")) {
		t.Errorf("DOT output starts with %q", data[:min(len(data), 20)])
	}
}

func TestRenderSnapshotCanvas(t *testing.T) {
	frontier := []geometry.Rect{{X: 80, Y: 15, Width: 50, Height: 250}}
	data, err := renderSnapshot(context.Background(), testSnapshot(), frontier, &renderOpts{format: "svg", engine: engineCanvas, labels: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<svg", `class="router"`, `class="port"`, `class="frontier"`, "vr1"} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("canvas SVG missing %q", want)
		}
	}
}
