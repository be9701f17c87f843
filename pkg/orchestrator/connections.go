package orchestrator

import (
	"context"
	"strings"

	"github.com/matzehuels/netsmith/pkg/appliance"
	"github.com/matzehuels/netsmith/pkg/entity"
	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/journal"
	"github.com/matzehuels/netsmith/pkg/topology"
)

// findRouter looks a router up in the cache and, on a miss, once more
// after forcing a refresh.
func (o *Orchestrator) findRouter(ctx context.Context, id entity.ID) (topology.RouterRecord, error) {
	r, ok, err := o.cache.FindRouter(ctx, id.Resource, id.Name, entity.Lenient)
	if err != nil || ok {
		return r, err
	}
	o.logger.Debug("router not cached, refreshing", "id", id)
	if _, err := o.cache.Routers(ctx, id.Resource, true); err != nil {
		return topology.RouterRecord{}, err
	}
	r, _, err = o.cache.FindRouter(ctx, id.Resource, id.Name, entity.Strict)
	return r, err
}

// connectionName strips any dotted prefix, leaving the local device name.
func connectionName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// MoveConnection drops connection conn at a random spot inside router.
func (o *Orchestrator) MoveConnection(ctx context.Context, conn, router string) (res Result, err error) {
	id, err := o.ParseID(router)
	if err != nil {
		return Result{}, err
	}
	unlock, err := o.locker.Lock(ctx, id.Resource)
	if err != nil {
		return Result{ID: id}, err
	}
	defer unlock()

	res, err = o.moveLocked(ctx, conn, id)
	if err == nil {
		if serr := o.refreshGUI(ctx, id.Resource); serr != nil {
			res.CacheSynced = false
			err = syncError(serr, res.ID)
		}
	}
	o.recordMove(ctx, res, err)
	return res, err
}

// moveLocked posts a single connection move. The caller holds the
// resource lock, refreshes the appliance view and journals the outcome.
func (o *Orchestrator) moveLocked(ctx context.Context, conn string, router entity.ID) (Result, error) {
	dev := connectionName(conn)
	res := Result{ID: entity.New(router.Resource, dev)}

	if err := errors.ValidateName(dev); err != nil {
		return res, err
	}
	r, err := o.findRouter(ctx, router)
	if err != nil {
		return res, err
	}
	pt, err := o.engine.LandingSpot(ctx, r.Rect(), o.engine.Options().PortMargin)
	if err != nil {
		return res, err
	}
	res.Point = pt

	err = o.post(ctx, appliance.CmdAddVRCX, appliance.AddVRCX{
		Shelf:    entity.DefaultShelf,
		Resource: router.Resource,
		VRName:   router.Name,
		LocalDev: dev,
		X:        &pt.X,
		Y:        &pt.Y,
	})
	if err != nil {
		return res, err
	}
	res.RemoteApplied = true
	o.cache.InvalidatePorts(router.Resource)
	res.CacheSynced = true
	o.logger.Info("moved connection", "conn", dev, "router", router, "point", pt)
	return res, nil
}

func (o *Orchestrator) recordMove(ctx context.Context, res Result, err error) {
	entry := journal.NewEntry(journal.OpMoveConnection, res.ID.Resource, res.ID.String())
	if res.RemoteApplied {
		pt := res.Point
		entry.Point = &pt
	}
	o.record(ctx, entry, res, err)
}

// AddConnections moves existing connections into router. Bare names are
// qualified with the router's resource. Every name must be present in a
// fresh port listing before anything is moved.
func (o *Orchestrator) AddConnections(ctx context.Context, router string, names ...string) ([]Result, error) {
	id, err := o.ParseID(router)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "no connections to add to %s", id)
	}

	unlock, err := o.locker.Lock(ctx, id.Resource)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ports, err := o.cache.Ports(ctx, id.Resource, true)
	if err != nil {
		return nil, err
	}
	qualified := make([]string, len(names))
	for i, name := range names {
		q := entity.Qualify(id.Resource, name)
		pid, err := entity.Parse(q, id.Resource)
		if err != nil {
			return nil, err
		}
		if _, ok := ports[pid]; !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "connection %s does not exist on resource %d", q, id.Resource)
		}
		qualified[i] = q
	}

	results := make([]Result, 0, len(qualified))
	var moveErr, syncErr error
	for _, q := range qualified {
		res, err := o.moveLocked(ctx, q, id)
		results = append(results, res)
		if err != nil {
			moveErr = err
			break
		}
	}
	if moveErr == nil {
		if err := o.refreshGUI(ctx, id.Resource); err != nil {
			for i := range results {
				results[i].CacheSynced = false
			}
			syncErr = syncError(err, id)
		}
	}

	// The failed move, if any, is always last.
	for i, res := range results {
		err := syncErr
		if moveErr != nil && i == len(results)-1 {
			err = moveErr
		}
		o.recordMove(ctx, res, err)
	}
	if moveErr != nil {
		return results, moveErr
	}
	return results, syncErr
}

// ConnectionSpec describes a router connection to create.
type ConnectionSpec struct {
	Router    string // router name, optionally resource-qualified
	LocalDev  string
	RemoteDev string
	Subnets   string
	Nexthop   string
	Flags     int
}

// CreateConnection attaches a new connection to a router. The appliance
// chooses its initial position.
func (o *Orchestrator) CreateConnection(ctx context.Context, spec ConnectionSpec) (res Result, err error) {
	id, err := o.ParseID(spec.Router)
	if err != nil {
		return Result{}, err
	}
	if err := errors.ValidateName(spec.LocalDev); err != nil {
		return Result{}, err
	}
	res.ID = entity.New(id.Resource, spec.LocalDev)
	defer func() {
		o.record(ctx, journal.NewEntry(journal.OpCreateConnection, id.Resource, res.ID.String()), res, err)
	}()

	unlock, err := o.locker.Lock(ctx, id.Resource)
	if err != nil {
		return res, err
	}
	defer unlock()

	flags := spec.Flags
	err = o.post(ctx, appliance.CmdAddVRCX, appliance.AddVRCX{
		Shelf:     entity.DefaultShelf,
		Resource:  id.Resource,
		VRName:    id.Name,
		LocalDev:  spec.LocalDev,
		RemoteDev: spec.RemoteDev,
		Subnets:   spec.Subnets,
		Nexthop:   spec.Nexthop,
		Flags:     &flags,
	})
	if err != nil {
		return res, err
	}
	res.RemoteApplied = true
	o.cache.InvalidatePorts(id.Resource)

	if err := o.refreshGUI(ctx, id.Resource); err != nil {
		return res, syncError(err, res.ID)
	}
	res.CacheSynced = true
	return res, nil
}

// CreateRDDPair creates the redirect device pair rdd0/rdd1 on resource.
func (o *Orchestrator) CreateRDDPair(ctx context.Context, resource int) (res Result, err error) {
	if err := errors.ValidateResource(resource); err != nil {
		return Result{}, err
	}
	res.ID = entity.New(resource, "rdd0")
	defer func() {
		o.record(ctx, journal.NewEntry(journal.OpCreateRDD, resource, res.ID.String()), res, err)
	}()

	unlock, err := o.locker.Lock(ctx, resource)
	if err != nil {
		return res, err
	}
	defer unlock()

	err = o.post(ctx, appliance.CmdAddRDD, appliance.AddRDD{
		Shelf:      entity.DefaultShelf,
		Resource:   resource,
		Port:       "rdd0",
		PeerIfname: "rdd1",
	})
	if err != nil {
		return res, err
	}
	res.RemoteApplied, res.CacheSynced = true, true
	return res, nil
}
