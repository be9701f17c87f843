package fakeappliance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/matzehuels/netsmith/pkg/appliance"
	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/geometry"
	"github.com/matzehuels/netsmith/pkg/topology"
)

func start(t *testing.T) (*Server, *appliance.Client) {
	t.Helper()
	fake := New(nil)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	client, err := appliance.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return fake, client
}

func listRouters(t *testing.T, client *appliance.Client) []appliance.Item {
	t.Helper()
	items, err := client.List(context.Background(), appliance.RouterListPath(1), appliance.ElementRouters, appliance.RecordFields...)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	return items
}

func TestListingShapes(t *testing.T) {
	fake, client := start(t)

	if items := listRouters(t, client); len(items) != 0 {
		t.Fatalf("empty canvas listed %d items", len(items))
	}

	fake.SetRouter(1, "vr1", geometry.Rect{X: 15, Y: 15, Width: 50, Height: 250})
	items := listRouters(t, client)
	if len(items) != 1 {
		t.Fatalf("listed %d items, want 1", len(items))
	}
	if items[0].EID != "1.1.1.65535.vr1" {
		t.Errorf("EID = %q, want 1.1.1.65535.vr1", items[0].EID)
	}

	fake.SetRouter(1, "vr2", geometry.Rect{X: 80, Y: 15, Width: 50, Height: 250})
	items = listRouters(t, client)
	if len(items) != 2 {
		t.Fatalf("listed %d items, want 2", len(items))
	}

	rec, err := topology.DecodeRecord(items[1], 1)
	if err != nil {
		t.Fatalf("DecodeRecord() error: %v", err)
	}
	if want := (geometry.Rect{X: 80, Y: 15, Width: 50, Height: 250}); rec.Rect() != want {
		t.Errorf("Rect() = %s, want %s", rec.Rect(), want)
	}
}

func TestCommands(t *testing.T) {
	fake, client := start(t)
	ctx := context.Background()
	post := func(cmd string, payload any) {
		t.Helper()
		if _, err := client.Post(ctx, appliance.CommandPath(cmd), payload); err != nil {
			t.Fatalf("%s error: %v", cmd, err)
		}
	}

	post(appliance.CmdAddVR, appliance.AddVR{Alias: "vr1", Shelf: 1, Resource: 1, X: 15, Y: 15, Width: 50, Height: 250})
	if r, ok := fake.Router(1, "vr1"); !ok || r.Height != 250 {
		t.Fatalf("Router(vr1) = %s, %v", r, ok)
	}

	post(appliance.CmdAddVRCX, appliance.AddVRCX{Shelf: 1, Resource: 1, VRName: "vr1", LocalDev: "rd0a"})
	owner, rect, ok := fake.Port(1, "rd0a")
	if !ok || owner != "vr1" {
		t.Fatalf("Port(rd0a) owner = %q, %v", owner, ok)
	}
	if want := (geometry.Rect{X: 30, Y: 30, Width: PortSize, Height: PortSize}); rect != want {
		t.Errorf("default port rect = %s, want %s", rect, want)
	}

	x, y := 40, 100
	post(appliance.CmdAddVRCX, appliance.AddVRCX{Shelf: 1, Resource: 1, VRName: "vr1", LocalDev: "rd0a", X: &x, Y: &y})
	if _, rect, _ = fake.Port(1, "rd0a"); rect.X != 40 || rect.Y != 100 {
		t.Errorf("moved port at %d,%d, want 40,100", rect.X, rect.Y)
	}

	post(appliance.CmdRemoveVR, appliance.RemoveVR{Shelf: 1, Resource: 1, RouterName: "vr1"})
	if n := fake.RouterCount(1); n != 0 {
		t.Errorf("RouterCount() = %d after removal", n)
	}
	if _, _, ok = fake.Port(1, "rd0a"); ok {
		t.Error("removing a router should drop its connections")
	}
}

func TestCommandErrors(t *testing.T) {
	_, client := start(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		cmd     string
		payload any
	}{
		{"remove unknown router", appliance.CmdRemoveVR, appliance.RemoveVR{Shelf: 1, Resource: 1, RouterName: "ghost"}},
		{"unknown command", "launch_rockets", map[string]any{}},
		{"connection on unknown router", appliance.CmdAddVRCX, appliance.AddVRCX{Shelf: 1, Resource: 1, VRName: "nope", LocalDev: "rd0a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Post(ctx, appliance.CommandPath(tt.cmd), tt.payload)
			if !errors.Is(err, errors.ErrCodeRemoteOperation) {
				t.Errorf("error = %v, want REMOTE_OPERATION", err)
			}
		})
	}
}

func TestFailNext(t *testing.T) {
	fake, client := start(t)
	path := appliance.PortListPath(1)
	fake.FailNext(path, http.StatusBadRequest)

	_, err := client.List(context.Background(), path, appliance.ElementPorts)
	if !errors.Is(err, errors.ErrCodeRemoteOperation) {
		t.Errorf("first List() error = %v, want REMOTE_OPERATION", err)
	}
	if _, err = client.List(context.Background(), path, appliance.ElementPorts); err != nil {
		t.Errorf("second List() error: %v", err)
	}
}

func TestCallsRecorded(t *testing.T) {
	fake, client := start(t)
	if _, err := client.Post(context.Background(), appliance.GUIRefreshPath(2), appliance.Refresh); err != nil {
		t.Fatalf("Post() error: %v", err)
	}

	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("recorded %d calls, want 1", len(calls))
	}
	if calls[0].Path != "/vr/1/2/0" {
		t.Errorf("Path = %q, want /vr/1/2/0", calls[0].Path)
	}
	if calls[0].Body["action"] != "refresh" {
		t.Errorf("action = %v, want refresh", calls[0].Body["action"])
	}
	if got := fake.Commands(); !slices.Equal(got, []string{"/vr/1/2/0"}) {
		t.Errorf("Commands() = %v", got)
	}
}
