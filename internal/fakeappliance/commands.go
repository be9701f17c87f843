package fakeappliance

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/netsmith/pkg/appliance"
	"github.com/matzehuels/netsmith/pkg/geometry"
)

var errUnknownCommand = errors.New("unknown command")

// apply executes a /cli-json/ command. The caller holds s.mu.
func (s *Server) apply(cmd string, body map[string]any) error {
	args := fields(body)
	switch cmd {
	case appliance.CmdApplyVRConfig, appliance.CmdShowVR, appliance.CmdShowVRCX:
		_, err := args.resource()
		return err

	case appliance.CmdAddVR:
		res, err := args.resource()
		if err != nil {
			return err
		}
		alias := args.str("alias")
		if alias == "" {
			return errors.New("alias is required")
		}
		s.canvas(res).routers[alias] = geometry.Rect{
			X: args.num("x"), Y: args.num("y"), Width: args.num("width"), Height: args.num("height"),
		}
		return nil

	case appliance.CmdRemoveVR:
		res, err := args.resource()
		if err != nil {
			return err
		}
		c := s.canvas(res)
		name := args.str("router_name")
		if _, ok := c.routers[name]; !ok {
			return fmt.Errorf("router %q not found", name)
		}
		delete(c.routers, name)
		for k, p := range c.ports {
			if p.router == name {
				delete(c.ports, k)
			}
		}
		return nil

	case appliance.CmdAddVRCX:
		return s.addVRCX(args)

	case appliance.CmdAddRDD:
		res, err := args.resource()
		if err != nil {
			return err
		}
		c := s.canvas(res)
		for _, key := range []string{"port", "peer_ifname"} {
			if name := args.str(key); name != "" {
				c.devices[name] = true
			}
		}
		return nil
	}
	return errUnknownCommand
}

func (s *Server) addVRCX(args fields) error {
	res, err := args.resource()
	if err != nil {
		return err
	}
	c := s.canvas(res)
	vr, dev := args.str("vr_name"), args.str("local_dev")
	if dev == "" {
		return errors.New("local_dev is required")
	}
	router, ok := c.routers[vr]
	if !ok {
		return fmt.Errorf("router %q not found", vr)
	}

	p, exists := c.ports[dev]
	if !exists {
		p.rect = geometry.Rect{X: router.X + 15, Y: router.Y + 15, Width: PortSize, Height: PortSize}
	}
	p.router = vr
	if args.has("x") {
		p.rect.X = args.num("x")
	}
	if args.has("y") {
		p.rect.Y = args.num("y")
	}
	c.ports[dev] = p
	return nil
}

type fields map[string]any

func (f fields) has(key string) bool {
	v, ok := f[key]
	return ok && v != nil
}

func (f fields) str(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (f fields) num(key string) int {
	switch v := f[key].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return int(n)
	}
	return 0
}

func (f fields) resource() (int, error) {
	res := f.num("resource")
	if res < 1 {
		return 0, fmt.Errorf("invalid resource %v", f["resource"])
	}
	return res, nil
}

// =============================================================================
// Listings
// =============================================================================

type listEntry struct {
	eid  string
	rect geometry.Rect
}

// listing encodes entries the way the appliance does: nothing for an empty
// listing, a bare object for one entry and a list of singletons otherwise.
// Coordinates are sent as strings and sizes as numbers.
func listing(element string, entries []listEntry, fieldParam string) map[string]any {
	out := map[string]any{"handler": "fake"}
	slices.SortFunc(entries, func(a, b listEntry) int { return strings.Compare(a.eid, b.eid) })

	var want map[string]bool
	if fieldParam != "" {
		want = make(map[string]bool)
		for _, f := range strings.Split(fieldParam, ",") {
			want[strings.TrimSpace(f)] = true
		}
	}
	project := func(e listEntry) map[string]any {
		all := map[string]any{
			"eid":    e.eid,
			"x":      strconv.Itoa(e.rect.X),
			"y":      strconv.Itoa(e.rect.Y),
			"width":  e.rect.Width,
			"height": e.rect.Height,
		}
		if want == nil {
			return all
		}
		for _, k := range slices.Collect(maps.Keys(all)) {
			if !want[k] {
				delete(all, k)
			}
		}
		return all
	}

	switch len(entries) {
	case 0:
	case 1:
		out[element] = project(entries[0])
	default:
		list := make([]map[string]any, 0, len(entries))
		for _, e := range entries {
			list = append(list, map[string]any{e.eid: project(e)})
		}
		out[element] = list
	}
	return out
}
