package cli

import (
	"context"
	"time"

	"github.com/matzehuels/netsmith/pkg/appliance"
	"github.com/matzehuels/netsmith/pkg/config"
	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/httputil"
	"github.com/matzehuels/netsmith/pkg/journal"
	"github.com/matzehuels/netsmith/pkg/layout"
	"github.com/matzehuels/netsmith/pkg/lock"
	"github.com/matzehuels/netsmith/pkg/orchestrator"
	"github.com/matzehuels/netsmith/pkg/topology"
)

// =============================================================================
// App Factory
// =============================================================================

// app is the component graph one command runs against.
type app struct {
	cfg     config.Config
	client  *appliance.Client
	cache   *topology.Cache
	engine  *layout.Engine
	orch    *orchestrator.Orchestrator
	closers []func(context.Context) error
}

// newApp wires the client, cache and engine from the loaded config.
// Mutating commands additionally call withOrchestrator.
func (c *CLI) newApp() (*app, error) {
	cfg := c.cfg
	client, err := appliance.NewClient(cfg.Appliance.URL,
		appliance.WithTimeout(cfg.Appliance.Timeout.Std()),
		appliance.WithHeaders(cfg.Appliance.Headers),
		appliance.WithBackoff(httputil.Backoff{Attempts: cfg.Appliance.Attempts, Delay: cfg.Appliance.Backoff.Std()}),
		appliance.WithLogger(c.Logger),
	)
	if err != nil {
		return nil, err
	}

	cache := topology.NewCache(client, c.Logger)
	engine := layout.NewEngine(cache, layoutOptions(cfg.Layout), randSource(cfg.Layout), c.Logger)
	return &app{cfg: cfg, client: client, cache: cache, engine: engine}, nil
}

// withOrchestrator connects the configured lock and journal backends.
func (a *app) withOrchestrator(ctx context.Context, c *CLI) error {
	locker, err := a.openLocker(ctx, c)
	if err != nil {
		return err
	}
	rec, err := a.openJournal(ctx)
	if err != nil {
		return err
	}
	a.orch = orchestrator.New(a.client, a.engine,
		orchestrator.WithLocker(locker),
		orchestrator.WithJournal(rec),
		orchestrator.WithTiming(orchestrator.Timing{
			Settle:  a.cfg.Timing.Settle.Std(),
			Remove:  a.cfg.Timing.Remove.Std(),
			Refresh: a.cfg.Timing.Refresh.Std(),
		}),
		orchestrator.WithDefaultResource(a.cfg.DefaultResource),
		orchestrator.WithTestRun(a.cfg.Journal.TestID, a.cfg.Journal.TestTag),
		orchestrator.WithLogger(c.Logger),
	)
	return nil
}

func (a *app) openLocker(ctx context.Context, c *CLI) (lock.Locker, error) {
	lc := a.cfg.Lock
	if lc.Backend != "redis" {
		return lock.NewLocal(), nil
	}
	r, err := lock.DialRedis(ctx, lc.RedisAddr, lc.RedisPassword, lc.RedisDB,
		lock.WithPrefix(lc.Prefix),
		lock.WithTTL(lc.TTL.Std()),
		lock.WithLogger(c.Logger),
	)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return r.Close() })
	return r, nil
}

func (a *app) openJournal(ctx context.Context) (journal.Recorder, error) {
	jc := a.cfg.Journal
	var (
		rec journal.Recorder
		err error
	)
	switch jc.Backend {
	case "file":
		rec, err = journal.OpenFile(jc.Path)
	case "mongo":
		rec, err = journal.DialMongo(ctx, jc.MongoURI, jc.Database, jc.Collection)
	default:
		return journal.Null{}, nil
	}
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rec.Close)
	return rec, nil
}

// close releases backends in reverse order of opening.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Wrap(errors.ErrCodeInternal, errs[0], "closing backends")
	}
	return nil
}

func layoutOptions(l config.Layout) layout.Options {
	return layout.Options{
		Margin:       l.Margin,
		RouterWidth:  l.RouterWidth,
		RouterHeight: l.RouterHeight,
		PortMargin:   l.LandingMargin,
	}
}

// randSource prefers a named rngstream, then a fixed seed, then the clock.
func randSource(l config.Layout) layout.RandSource {
	if l.Stream != "" {
		return layout.NewStreamSource(l.Stream)
	}
	seed := l.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return layout.NewSeededSource(seed)
}
