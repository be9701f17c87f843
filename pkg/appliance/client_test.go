package appliance

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/httputil"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, WithBackoff(httputil.Backoff{Attempts: 3, Delay: time.Millisecond}))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "ftp://host", "localhost:8080"} {
		if _, err := NewClient(u); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("NewClient(%q) err = %v, want INVALID_INPUT", u, err)
		}
	}
}

func TestListShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "list of singletons keeps order",
			body: `{"virtual-routers":[{"1.1.1.65535.b":{"x":1}},{"1.1.1.65535.a":{"x":2}}]}`,
			want: []string{"1.1.1.65535.b", "1.1.1.65535.a"},
		},
		{
			name: "single object",
			body: `{"virtual-routers":{"eid":"1.1.1.65535.vr1","x":"10"}}`,
			want: []string{"1.1.1.65535.vr1"},
		},
		{
			name: "map sorted by eid",
			body: `{"virtual-routers":{"1.1.1.65535.b":{"x":1},"1.1.1.65535.a":{"x":2}}}`,
			want: []string{"1.1.1.65535.a", "1.1.1.65535.b"},
		},
		{
			name: "missing element",
			body: `{"handler":"x"}`,
			want: nil,
		},
		{
			name: "null element",
			body: `{"virtual-routers":null}`,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})
			items, err := c.List(context.Background(), RouterListPath(1), ElementRouters, RecordFields...)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(items) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(items), len(tt.want))
			}
			for i, it := range items {
				if it.EID != tt.want[i] {
					t.Errorf("items[%d].EID = %q, want %q", i, it.EID, tt.want[i])
				}
			}
		})
	}
}

func TestListSendsFields(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Path + "?" + r.URL.RawQuery
		io.WriteString(w, `{}`)
	})
	if _, err := c.List(context.Background(), PortListPath(2), ElementPorts, "eid", "x"); err != nil {
		t.Fatal(err)
	}
	if want := "/vrcx/1/2/list?fields=eid,x"; got != want {
		t.Errorf("request = %q, want %q", got, want)
	}
}

func TestListNumbersDecodeAsJSONNumber(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"virtual-routers":[{"a":{"x":12.7}}]}`)
	})
	items, err := c.List(context.Background(), RouterListPath(1), ElementRouters)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := items[0].Fields["x"].(json.Number); !ok {
		t.Errorf("x has type %T, want json.Number", items[0].Fields["x"])
	}
}

func TestListRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"virtual-routers":[]}`)
	})
	if _, err := c.List(context.Background(), RouterListPath(1), ElementRouters); err != nil {
		t.Fatalf("List: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestListNotFound(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	})
	_, err := c.List(context.Background(), RouterListPath(9), ElementRouters)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
	if calls.Load() != 1 {
		t.Errorf("404 retried: calls = %d", calls.Load())
	}
}

func TestPost(t *testing.T) {
	var gotBody AddVR
	var gotType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, `{"errors":[]}`)
	})
	payload := AddVR{Alias: "vr1", Shelf: 1, Resource: 1, X: 15, Y: 15, Width: 50, Height: 250}
	if _, err := c.Post(context.Background(), CommandPath(CmdAddVR), payload); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if gotBody != payload {
		t.Errorf("body = %+v, want %+v", gotBody, payload)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
}

func TestPostFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad request", http.StatusBadRequest, `{}`},
		{"server error", http.StatusInternalServerError, ``},
		{"errors list", http.StatusOK, `{"errors":["no such router"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.Post(context.Background(), CommandPath(CmdRemoveVR), RemoveVR{RouterName: "x"})
			if err == nil {
				t.Fatal("expected error")
			}
			if httputil.IsRetryable(err) {
				t.Error("post error must not be retryable")
			}
			if calls.Load() != 1 {
				t.Errorf("calls = %d, want 1", calls.Load())
			}
		})
	}
}

func TestPostErrorsListCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"errors":["boom"]}`)
	})
	_, err := c.Post(context.Background(), CommandPath(CmdAddVR), AddVR{})
	if !errors.Is(err, errors.ErrCodeRemoteOperation) {
		t.Errorf("err = %v, want REMOTE_OPERATION", err)
	}
}

func TestAddVRCXOmitsUnsetFields(t *testing.T) {
	x, y := 20, 30
	data, err := json.Marshal(AddVRCX{Shelf: 1, Resource: 1, VRName: "vr1", LocalDev: "rd0a", X: &x, Y: &y})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	json.Unmarshal(data, &m)
	for _, k := range []string{"remote_dev", "subnets", "nexthop", "flags"} {
		if _, ok := m[k]; ok {
			t.Errorf("%s present in move payload", k)
		}
	}
	if m["x"] != float64(20) || m["y"] != float64(30) {
		t.Errorf("position = %v,%v", m["x"], m["y"])
	}
}
