package topology

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netsmith/pkg/appliance"
	"github.com/matzehuels/netsmith/pkg/entity"
	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/observability"
)

// Kinds reported to cache hooks.
const (
	KindRouters = "routers"
	KindPorts   = "ports"
)

// API is the subset of the appliance client the cache needs.
// *appliance.Client satisfies it.
type API interface {
	List(ctx context.Context, path, element string, fields ...string) ([]appliance.Item, error)
	Post(ctx context.Context, path string, payload any) (appliance.Response, error)
}

// Cache mirrors the routers and ports of each resource. Entries are loaded
// lazily, replaced wholesale on refresh, and dropped by Invalidate.
//
// Cache is safe for concurrent use. A refresh builds the new mapping before
// swapping it in, so readers never observe a partially loaded resource.
type Cache struct {
	api    API
	logger *log.Logger

	mu      sync.RWMutex
	routers map[int]map[entity.ID]RouterRecord
	ports   map[int]map[entity.ID]PortRecord
}

// NewCache returns an empty cache reading through api.
func NewCache(api API, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{
		api:     api,
		logger:  logger,
		routers: make(map[int]map[entity.ID]RouterRecord),
		ports:   make(map[int]map[entity.ID]PortRecord),
	}
}

// Routers returns the routers of resource, listing them from the appliance
// when nothing is cached or force is set. The returned map is a copy.
func (c *Cache) Routers(ctx context.Context, resource int, force bool) (map[entity.ID]RouterRecord, error) {
	if err := errors.ValidateResource(resource); err != nil {
		return nil, err
	}
	if !force {
		c.mu.RLock()
		cached := c.routers[resource]
		c.mu.RUnlock()
		if len(cached) > 0 {
			observability.Cache().OnCacheHit(ctx, KindRouters, resource)
			return maps.Clone(cached), nil
		}
		observability.Cache().OnCacheMiss(ctx, KindRouters, resource)
	}

	records, err := c.load(ctx, KindRouters, resource, appliance.RouterListPath(resource), appliance.ElementRouters)
	if err != nil {
		return nil, err
	}
	fresh := make(map[entity.ID]RouterRecord, len(records))
	for _, r := range records {
		fresh[r.ID] = RouterRecord{r}
	}

	c.mu.Lock()
	c.routers[resource] = fresh
	c.mu.Unlock()
	return maps.Clone(fresh), nil
}

// Ports returns the connection endpoints of resource. A refresh first asks
// the appliance to recompute port state, which it otherwise reports stale.
func (c *Cache) Ports(ctx context.Context, resource int, force bool) (map[entity.ID]PortRecord, error) {
	if err := errors.ValidateResource(resource); err != nil {
		return nil, err
	}
	if !force {
		c.mu.RLock()
		cached := c.ports[resource]
		c.mu.RUnlock()
		if len(cached) > 0 {
			observability.Cache().OnCacheHit(ctx, KindPorts, resource)
			return maps.Clone(cached), nil
		}
		observability.Cache().OnCacheMiss(ctx, KindPorts, resource)
	}

	if _, err := c.api.Post(ctx, appliance.PortRefreshPath(resource), appliance.Refresh); err != nil {
		return nil, err
	}
	records, err := c.load(ctx, KindPorts, resource, appliance.PortListPath(resource), appliance.ElementPorts)
	if err != nil {
		return nil, err
	}
	fresh := make(map[entity.ID]PortRecord, len(records))
	for _, r := range records {
		fresh[r.ID] = PortRecord{r}
	}

	c.mu.Lock()
	c.ports[resource] = fresh
	c.mu.Unlock()
	return maps.Clone(fresh), nil
}

func (c *Cache) load(ctx context.Context, kind string, resource int, path, element string) ([]Record, error) {
	start := time.Now()
	items, err := c.api.List(ctx, path, element, appliance.RecordFields...)
	if err != nil {
		observability.Cache().OnRefresh(ctx, kind, resource, 0, time.Since(start), err)
		return nil, err
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		r, err := DecodeRecord(item, resource)
		if err != nil {
			c.logger.Warn("skipping malformed record", "kind", kind, "resource", resource, "eid", item.EID, "err", err)
			continue
		}
		records = append(records, r)
	}
	observability.Cache().OnRefresh(ctx, kind, resource, len(records), time.Since(start), nil)
	c.logger.Debug("refreshed", "kind", kind, "resource", resource, "count", len(records))
	return records, nil
}

// Invalidate drops everything cached for resource.
func (c *Cache) Invalidate(resource int) {
	c.mu.Lock()
	delete(c.routers, resource)
	delete(c.ports, resource)
	c.mu.Unlock()
}

// InvalidatePorts drops the cached ports of resource and keeps its routers.
func (c *Cache) InvalidatePorts(resource int) {
	c.mu.Lock()
	delete(c.ports, resource)
	c.mu.Unlock()
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	clear(c.routers)
	clear(c.ports)
	c.mu.Unlock()
}

// FindRouter resolves name among the cached routers of resource using the
// canonical key first and the prefix/suffix fallback second.
func (c *Cache) FindRouter(ctx context.Context, resource int, name string, policy entity.Policy) (RouterRecord, bool, error) {
	routers, err := c.Routers(ctx, resource, false)
	if err != nil {
		return RouterRecord{}, false, err
	}
	_, r, ok, err := entity.Resolve(routers, resource, name, policy)
	return r, ok, err
}

// FindPort resolves name among the cached ports of resource.
func (c *Cache) FindPort(ctx context.Context, resource int, name string, policy entity.Policy) (PortRecord, bool, error) {
	ports, err := c.Ports(ctx, resource, false)
	if err != nil {
		return PortRecord{}, false, err
	}
	_, p, ok, err := entity.Resolve(ports, resource, name, policy)
	return p, ok, err
}

// Snapshot is an ordered view of one canvas.
type Snapshot struct {
	Resource int
	Routers  []RouterRecord
	Ports    []PortRecord
}

// Snapshot returns the routers and ports of resource sorted by id.
func (c *Cache) Snapshot(ctx context.Context, resource int, force bool) (Snapshot, error) {
	routers, err := c.Routers(ctx, resource, force)
	if err != nil {
		return Snapshot{}, err
	}
	ports, err := c.Ports(ctx, resource, force)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Resource: resource}
	for _, id := range entity.Sorted(routers) {
		snap.Routers = append(snap.Routers, routers[id])
	}
	for _, id := range entity.Sorted(ports) {
		snap.Ports = append(snap.Ports, ports[id])
	}
	return snap, nil
}

// Resources returns the resources that currently have cached data.
func (c *Cache) Resources() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set := make(map[int]struct{}, len(c.routers)+len(c.ports))
	for r := range c.routers {
		set[r] = struct{}{}
	}
	for r := range c.ports {
		set[r] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}
