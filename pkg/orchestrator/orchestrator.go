// Package orchestrator creates, moves and removes objects on an appliance
// canvas using placements computed by the layout engine.
//
// Every mutation follows the same shape: take the resource lock, compute a
// placement from cached state, issue the appliance commands, then bring the
// appliance view and the local cache back in sync. The outcome is reported
// as a [Result] and journaled.
//
// # Partial Failure
//
// A mutation can succeed remotely and still fail to resync. Such calls
// return a Result with RemoteApplied set and CacheSynced unset, together with
// a CACHE_SYNC error, so callers can tell "nothing happened" apart from
// "it happened but the mirror is stale".
//
// # Staleness
//
// Lookups that miss in the cache are retried once after a forced refresh.
// That is the only retry performed here; appliance errors are returned as is.
package orchestrator

import (
	"context"
	stderrors "errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netsmith/pkg/appliance"
	"github.com/matzehuels/netsmith/pkg/entity"
	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/geometry"
	"github.com/matzehuels/netsmith/pkg/journal"
	"github.com/matzehuels/netsmith/pkg/layout"
	"github.com/matzehuels/netsmith/pkg/lock"
	"github.com/matzehuels/netsmith/pkg/topology"
)

// Timing holds the waits the appliance needs between commands.
type Timing struct {
	Settle  time.Duration // after apply_vr_cfg
	Remove  time.Duration // after rm_vr
	Refresh time.Duration // between GUI refresh steps
}

// DefaultTiming returns the delays the appliance is known to need.
func DefaultTiming() Timing {
	return Timing{Settle: time.Second, Remove: 50 * time.Millisecond, Refresh: 30 * time.Millisecond}
}

// Result describes the outcome of one mutation.
type Result struct {
	ID            entity.ID
	Area          geometry.Rect  // placement of a created router
	Point         geometry.Point // landing spot of a moved connection
	RemoteApplied bool
	CacheSynced   bool
}

// Orchestrator composes the cache, layout engine and appliance client.
type Orchestrator struct {
	api     topology.API
	engine  *layout.Engine
	cache   *topology.Cache
	locker  lock.Locker
	journal journal.Recorder
	timing  Timing
	logger  *log.Logger

	defaultResource int
	testID, testTag string

	mu      sync.Mutex
	created []entity.ID
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLocker sets the mutation lock. The default is an in-process lock.
func WithLocker(l lock.Locker) Option { return func(o *Orchestrator) { o.locker = l } }

// WithJournal sets where outcomes are recorded. The default discards them.
func WithJournal(j journal.Recorder) Option { return func(o *Orchestrator) { o.journal = j } }

// WithTiming overrides the inter-command delays.
func WithTiming(t Timing) Option { return func(o *Orchestrator) { o.timing = t } }

// WithDefaultResource sets the resource used for names without one.
func WithDefaultResource(r int) Option { return func(o *Orchestrator) { o.defaultResource = r } }

// WithTestRun stamps journal entries with a test id and tag.
func WithTestRun(testID, testTag string) Option {
	return func(o *Orchestrator) { o.testID, o.testTag = testID, testTag }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New returns an orchestrator issuing commands through api and placing
// objects with engine.
func New(api topology.API, engine *layout.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:             api,
		engine:          engine,
		cache:           engine.Cache(),
		locker:          lock.NewLocal(),
		journal:         journal.Null{},
		timing:          DefaultTiming(),
		logger:          log.Default(),
		defaultResource: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Engine returns the layout engine.
func (o *Orchestrator) Engine() *layout.Engine { return o.engine }

// Created returns the routers created by this orchestrator and not yet
// removed, oldest first.
func (o *Orchestrator) Created() []entity.ID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.created)
}

// ParseID resolves a user-supplied name against the default resource.
func (o *Orchestrator) ParseID(name string) (entity.ID, error) {
	id, err := entity.Parse(name, o.defaultResource)
	if err != nil {
		return entity.ID{}, err
	}
	id.Name = id.ShortName()
	if err := id.Validate(); err != nil {
		return entity.ID{}, err
	}
	return id, nil
}

// =============================================================================
// Helpers
// =============================================================================

func (o *Orchestrator) post(ctx context.Context, cmd string, payload any) error {
	_, err := o.api.Post(ctx, appliance.CommandPath(cmd), payload)
	return err
}

// showAll asks the appliance to re-announce routers and connections.
func (o *Orchestrator) showAll(ctx context.Context, resource int) error {
	if err := o.post(ctx, appliance.CmdShowVR, appliance.ShowVR{Shelf: entity.DefaultShelf, Resource: resource, Router: "all"}); err != nil {
		return err
	}
	return o.post(ctx, appliance.CmdShowVRCX, appliance.ShowVRCX{Shelf: entity.DefaultShelf, Resource: resource, CXName: "all"})
}

func (o *Orchestrator) refreshGUI(ctx context.Context, resource int) error {
	if err := o.post(ctx, appliance.CmdShowVR, appliance.ShowVR{Shelf: entity.DefaultShelf, Resource: resource, Router: "all"}); err != nil {
		return err
	}
	if err := sleep(ctx, o.timing.Refresh); err != nil {
		return err
	}
	if err := o.post(ctx, appliance.CmdShowVRCX, appliance.ShowVRCX{Shelf: entity.DefaultShelf, Resource: resource, CXName: "all"}); err != nil {
		return err
	}
	if err := sleep(ctx, 2*o.timing.Refresh); err != nil {
		return err
	}
	_, err := o.api.Post(ctx, appliance.GUIRefreshPath(resource), appliance.Refresh)
	return err
}

// syncError marks a failure that happened after the appliance applied a
// mutation.
func syncError(err error, id entity.ID) error {
	return errors.Wrap(errors.ErrCodeCacheSync, err, "%s applied but resync failed", id)
}

func (o *Orchestrator) record(ctx context.Context, e journal.Entry, res Result, err error) {
	e.RemoteApplied, e.CacheSynced = res.RemoteApplied, res.CacheSynced
	e.TestID, e.TestTag = o.testID, o.testTag
	if err != nil {
		e.Error = err.Error()
	}
	if jerr := o.journal.Record(ctx, e); jerr != nil {
		o.logger.Warn("journal write failed", "op", e.Op, "target", e.Target, "err", jerr)
	}
}

func (o *Orchestrator) track(id entity.ID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !slices.Contains(o.created, id) {
		o.created = append(o.created, id)
	}
}

func (o *Orchestrator) forget(id entity.ID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created = slices.DeleteFunc(o.created, func(c entity.ID) bool { return c == id })
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "waiting %s", d)
	case <-t.C:
		return nil
	}
}

func joinErrors(errs []error) error {
	return stderrors.Join(errs...)
}
