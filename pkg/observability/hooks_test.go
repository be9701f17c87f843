package observability

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/netsmith/pkg/geometry"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	l := NoopLayoutHooks{}
	l.OnAllocate(ctx, 1, "right", geometry.Rect{X: 15, Y: 15, Width: 50, Height: 250})
	l.OnLanding(ctx, geometry.Rect{Width: 50, Height: 250}, geometry.Point{X: 20, Y: 30})

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "routers", 1)
	c.OnCacheMiss(ctx, "ports", 1)
	c.OnRefresh(ctx, "routers", 1, 3, time.Second, nil)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "lanforge:8080", "/vr/1/1/list")
	h.OnResponse(ctx, "GET", "lanforge:8080", "/vr/1/1/list", 200, time.Second)
	h.OnError(ctx, "GET", "lanforge:8080", "/vr/1/1/list", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testLayoutHooks{}
	SetLayoutHooks(custom)
	SetLayoutHooks(nil)

	if Layout() != custom {
		t.Error("SetLayoutHooks(nil) should be ignored")
	}
}

type testLayoutHooks struct{ NoopLayoutHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
