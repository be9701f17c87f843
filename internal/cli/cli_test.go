package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/netsmith/internal/fakeappliance"
	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/geometry"
	"github.com/matzehuels/netsmith/pkg/journal"
	"github.com/matzehuels/netsmith/pkg/observability"
)

type harness struct {
	fake    *fakeappliance.Server
	dir     string
	config  string
	journal string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	fake := fakeappliance.New(nil)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	t.Cleanup(observability.Reset)

	dir := t.TempDir()
	h := harness{fake: fake, dir: dir, config: filepath.Join(dir, "netsmith.toml"), journal: filepath.Join(dir, "journal.jsonl")}
	cfg := fmt.Sprintf(`
[appliance]
url = %q
attempts = 1

[layout]
seed = 7

[timing]
settle = "0s"
remove = "0s"
refresh = "0s"

[journal]
backend = "file"
path = %q
test_id = "cli"
`, srv.URL, h.journal)
	if err := os.WriteFile(h.config, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return h
}

// run executes the CLI with the harness config and returns what it wrote
// through cobra's output.
func (h harness) run(args ...string) (string, error) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", h.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"routers", "ports", "area", "next", "create", "remove", "move", "connect",
		"link", "rdd", "refresh", "render", "watch", "fake-appliance", "config", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestCreateAndRemove(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run("create", "vr1", "vr2"); err != nil {
		t.Fatalf("create: %v", err)
	}
	want := map[string]geometry.Rect{
		"vr1": {X: 15, Y: 15, Width: 50, Height: 250},
		"vr2": {X: 80, Y: 15, Width: 50, Height: 250},
	}
	for name, rect := range want {
		got, ok := h.fake.Router(1, name)
		if !ok || got != rect {
			t.Errorf("router %s = %v (exists %v), want %v", name, got, ok, rect)
		}
	}

	if _, err := h.run("create", "--below", "vr3"); err != nil {
		t.Fatalf("create --below: %v", err)
	}
	if got, _ := h.fake.Router(1, "vr3"); got.X != 15 || got.Y != 280 {
		t.Errorf("vr3 = %v, want at 15,280", got)
	}

	if _, err := h.run("remove", "vr2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := h.fake.Router(1, "vr2"); ok {
		t.Error("vr2 still exists after remove")
	}
}

func TestCreateOnOtherResource(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("--resource", "2", "create", "vr1"); err != nil {
		t.Fatal(err)
	}
	if h.fake.RouterCount(2) != 1 || h.fake.RouterCount(1) != 0 {
		t.Errorf("router counts: resource 1 = %d, resource 2 = %d", h.fake.RouterCount(1), h.fake.RouterCount(2))
	}
}

func TestConnectAndMove(t *testing.T) {
	h := newHarness(t)
	router := geometry.Rect{X: 15, Y: 15, Width: 50, Height: 250}
	h.fake.SetRouter(1, "vr1", router)
	h.fake.SetPort(1, "", "rd0a", geometry.Rect{X: 400, Y: 400, Width: 10, Height: 10})
	h.fake.SetPort(1, "", "rd0b", geometry.Rect{X: 420, Y: 400, Width: 10, Height: 10})

	if _, err := h.run("connect", "vr1", "rd0a", "rd0b"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := h.run("move", "1.1.rd0a", "vr1"); err != nil {
		t.Fatalf("move: %v", err)
	}
	for _, name := range []string{"rd0a", "rd0b"} {
		owner, rect, _ := h.fake.Port(1, name)
		if owner != "vr1" || !router.Shrink(15).Contains(geometry.Point{X: rect.X, Y: rect.Y}) {
			t.Errorf("%s on %q at %v, want inside %v", name, owner, rect, router.Shrink(15))
		}
	}

	_, err := h.run("connect", "vr1", "ghost")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("connect ghost: err = %v, want NOT_FOUND", err)
	}
}

func TestLinkAndRDD(t *testing.T) {
	h := newHarness(t)
	h.fake.SetRouter(1, "vr1", geometry.Rect{X: 15, Y: 15, Width: 50, Height: 250})

	if _, err := h.run("link", "vr1", "eth1", "--remote", "eth2", "--subnets", "10.0.0.0/24"); err != nil {
		t.Fatalf("link: %v", err)
	}
	if owner, _, ok := h.fake.Port(1, "eth1"); !ok || owner != "vr1" {
		t.Errorf("eth1 on %q (exists %v), want vr1", owner, ok)
	}
	if _, err := h.run("rdd"); err != nil {
		t.Fatalf("rdd: %v", err)
	}
	if _, err := h.run("refresh"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
}

func TestJournalWrittenByCommands(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("create", "vr1"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.run("remove", "vr1"); err != nil {
		t.Fatal(err)
	}

	entries, err := journal.ReadFile(h.journal)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d journal entries, want 2", len(entries))
	}
	if entries[0].Op != journal.OpCreateRouter || entries[1].Op != journal.OpRemoveRouter {
		t.Errorf("ops = %s, %s", entries[0].Op, entries[1].Op)
	}
	if entries[0].TestID != "cli" || entries[0].Area == nil {
		t.Errorf("create entry = %+v", entries[0])
	}
}

func TestReadCommands(t *testing.T) {
	h := newHarness(t)
	h.fake.SetRouter(1, "vr1", geometry.Rect{X: 15, Y: 15, Width: 50, Height: 250})
	for _, args := range [][]string{{"routers"}, {"ports"}, {"area"}, {"next"}, {"next", "--down", "--width", "80"}} {
		if _, err := h.run(args...); err != nil {
			t.Errorf("%s: %v", strings.Join(args, " "), err)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	h := newHarness(t)
	h.fake.SetRouter(1, "vr1", geometry.Rect{X: 15, Y: 15, Width: 50, Height: 250})

	svg := filepath.Join(h.dir, "canvas.svg")
	if _, err := h.run("render", "-o", svg, "--frontier"); err != nil {
		t.Fatalf("render svg: %v", err)
	}
	data, err := os.ReadFile(svg)
	if err != nil || !bytes.Contains(data, []byte(`class="frontier"`)) {
		t.Errorf("svg output: err = %v, frontier missing", err)
	}

	dot := filepath.Join(h.dir, "canvas.dot")
	if _, err := h.run("render", "-o", dot); err != nil {
		t.Fatalf("render dot: %v", err)
	}
	if data, _ := os.ReadFile(dot); !bytes.Contains(data, []byte("neato")) {
		t.Error("dot output should select neato")
	}

	if _, err := h.run("render", "--engine", "bogus"); err == nil {
		t.Error("unknown engine should fail")
	}
}

func TestConfigErrors(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--appliance", "not a url", "routers")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad --appliance: err = %v, want INVALID_CONFIG", err)
	}

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", filepath.Join(h.dir, "missing.toml"), "routers"})
	root.SetErr(io.Discard)
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("explicit missing config should fail")
	}
}

func TestCompletion(t *testing.T) {
	out, err := newHarness(t).run("completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "netsmith") {
		t.Error("bash completion should mention netsmith")
	}
}
