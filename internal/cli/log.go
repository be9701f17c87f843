// Package cli implements the netsmith command-line interface.
//
// Commands inspect and mutate the canvas of a traffic-generation appliance:
// they list routers and connections, report occupied areas, place new
// routers on the frontier, drop connections inside routers and render the
// canvas. The CLI is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - routers, ports: list cached records of a resource
//   - area, next: report bounding boxes and the next free frontier slot
//   - create, remove, move, connect, link, rdd, refresh: mutate the canvas
//   - render, watch: draw the canvas to a file or follow it live
//   - fake-appliance: serve an in-memory appliance for local work
//   - config: show the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// traces every appliance request and cache refresh.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netsmith/pkg/geometry"
	"github.com/matzehuels/netsmith/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Created 1.1.vr1 (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability
// =============================================================================

// logHooks traces library events at debug level.
type logHooks struct {
	logger *log.Logger
}

func installHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnAllocate(_ context.Context, resource int, dir string, area geometry.Rect) {
	h.logger.Debug("allocated area", "resource", resource, "direction", dir, "area", area)
}

func (h logHooks) OnLanding(_ context.Context, bounds geometry.Rect, spot geometry.Point) {
	h.logger.Debug("landing spot", "bounds", bounds, "spot", spot)
}

func (h logHooks) OnCacheHit(_ context.Context, kind string, resource int) {
	h.logger.Debug("cache hit", "kind", kind, "resource", resource)
}

func (h logHooks) OnCacheMiss(_ context.Context, kind string, resource int) {
	h.logger.Debug("cache miss", "kind", kind, "resource", resource)
}

func (h logHooks) OnRefresh(_ context.Context, kind string, resource, count int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("cache refresh failed", "kind", kind, "resource", resource, "err", err)
		return
	}
	h.logger.Debug("cache refreshed", "kind", kind, "resource", resource, "count", count, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, _, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, _, path string, err error) {
	h.logger.Debug("request failed", "method", method, "path", path, "err", err)
}
