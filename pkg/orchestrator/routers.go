package orchestrator

import (
	"context"

	"github.com/matzehuels/netsmith/pkg/appliance"
	"github.com/matzehuels/netsmith/pkg/entity"
	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/journal"
	"github.com/matzehuels/netsmith/pkg/layout"
)

// CreateOption adjusts CreateRouter.
type CreateOption func(*createParams)

type createParams struct {
	dir layout.Direction
}

// Below places the router under the occupied area instead of to its right.
func Below() CreateOption { return func(p *createParams) { p.dir = layout.Down } }

// CreateRouter places a new virtual router on the canvas frontier. name is
// "vr1", "2.vr1" or "1.2.vr1"; a missing resource means the default one.
func (o *Orchestrator) CreateRouter(ctx context.Context, name string, opts ...CreateOption) (res Result, err error) {
	id, err := o.ParseID(name)
	if err != nil {
		return Result{}, err
	}
	p := createParams{dir: layout.Right}
	for _, opt := range opts {
		opt(&p)
	}

	res.ID = id
	entry := journal.NewEntry(journal.OpCreateRouter, id.Resource, id.String())
	defer func() {
		if res.RemoteApplied {
			area := res.Area
			entry.Area = &area
		}
		o.record(ctx, entry, res, err)
	}()

	unlock, err := o.locker.Lock(ctx, id.Resource)
	if err != nil {
		return res, err
	}
	defer unlock()

	area, err := o.engine.NextAvailableArea(ctx, id.Resource, p.dir)
	if err != nil {
		return res, err
	}
	res.Area = area

	err = o.post(ctx, appliance.CmdAddVR, appliance.AddVR{
		Alias:    id.Name,
		Shelf:    entity.DefaultShelf,
		Resource: id.Resource,
		X:        area.X,
		Y:        area.Y,
		Width:    area.Width,
		Height:   area.Height,
	})
	if err != nil {
		return res, err
	}
	res.RemoteApplied = true
	o.track(id)

	if err := o.post(ctx, appliance.CmdApplyVRConfig, appliance.ApplyVRConfig{Shelf: entity.DefaultShelf, Resource: id.Resource}); err != nil {
		return res, syncError(err, id)
	}
	o.logger.Info("created router", "id", id, "area", area)

	if err := o.resync(ctx, id); err != nil {
		return res, syncError(err, id)
	}
	res.CacheSynced = true
	return res, nil
}

// resync waits for the appliance to settle, redraws its view and reloads
// the cached canvas.
func (o *Orchestrator) resync(ctx context.Context, id entity.ID) error {
	if err := sleep(ctx, o.timing.Settle); err != nil {
		return err
	}
	if err := o.showAll(ctx, id.Resource); err != nil {
		return err
	}
	if err := o.refreshGUI(ctx, id.Resource); err != nil {
		return err
	}
	o.cache.Invalidate(id.Resource)
	if _, err := o.cache.Routers(ctx, id.Resource, true); err != nil {
		return err
	}
	_, err := o.cache.Ports(ctx, id.Resource, true)
	return err
}

// RemoveRouter deletes a router. With refresh set the appliance is asked
// to re-announce its topology afterwards. The cached canvas is dropped
// either way.
func (o *Orchestrator) RemoveRouter(ctx context.Context, name string, refresh bool) (res Result, err error) {
	id, err := o.ParseID(name)
	if err != nil {
		return Result{}, err
	}
	res.ID = id
	defer func() {
		o.record(ctx, journal.NewEntry(journal.OpRemoveRouter, id.Resource, id.String()), res, err)
	}()

	unlock, err := o.locker.Lock(ctx, id.Resource)
	if err != nil {
		return res, err
	}
	defer unlock()
	return o.removeLocked(ctx, id, refresh)
}

func (o *Orchestrator) removeLocked(ctx context.Context, id entity.ID, refresh bool) (Result, error) {
	res := Result{ID: id}
	err := o.post(ctx, appliance.CmdRemoveVR, appliance.RemoveVR{
		Shelf:      entity.DefaultShelf,
		Resource:   id.Resource,
		RouterName: id.Name,
	})
	if err != nil {
		return res, err
	}
	res.RemoteApplied = true
	o.forget(id)
	o.cache.Invalidate(id.Resource)
	o.logger.Info("removed router", "id", id)

	if err := sleep(ctx, o.timing.Remove); err != nil {
		return res, syncError(err, id)
	}
	if refresh {
		if err := o.showAll(ctx, id.Resource); err != nil {
			return res, syncError(err, id)
		}
	}
	res.CacheSynced = true
	return res, nil
}

// Cleanup removes every router this orchestrator created, newest first,
// then refreshes the view of each touched resource. It keeps going after
// failures and returns them joined.
func (o *Orchestrator) Cleanup(ctx context.Context) error {
	ids := o.Created()
	var errs []error
	touched := make(map[int]bool)
	for i := len(ids) - 1; i >= 0; i-- {
		if _, err := o.RemoveRouter(ctx, ids[i].String(), false); err != nil {
			errs = append(errs, err)
		}
		touched[ids[i].Resource] = true
	}
	for _, id := range ids {
		if !touched[id.Resource] {
			continue
		}
		delete(touched, id.Resource)
		if err := o.RefreshGUI(ctx, id.Resource); err != nil {
			errs = append(errs, err)
		}
	}
	return joinErrors(errs)
}

// RefreshGUI makes the appliance recompute and redraw the canvas of
// resource.
func (o *Orchestrator) RefreshGUI(ctx context.Context, resource int) (err error) {
	if err := errors.ValidateResource(resource); err != nil {
		return err
	}
	defer func() {
		o.record(ctx, journal.NewEntry(journal.OpRefreshGUI, resource, ""), Result{RemoteApplied: err == nil}, err)
	}()
	return o.refreshGUI(ctx, resource)
}
