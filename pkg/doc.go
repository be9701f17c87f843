// Package pkg provides the core libraries of netsmith, a layout tool for the
// canvas of a traffic-generation appliance.
//
// # Overview
//
// The appliance draws virtual routers and their connections as rectangles
// on a per-resource canvas. Netsmith keeps new objects clear of existing
// ones. It places each new router on the frontier of the occupied area and
// drops connections at random spots inside their router.
//
// # Architecture
//
//	appliance REST API
//	         ↓
//	    [appliance] package (listing envelopes, CLI-JSON commands)
//	         ↓
//	    [topology] package (records, per-resource cache)
//	         ↓
//	    [layout] package (occupied area, frontier allocation, landing spots)
//	         ↓
//	    [orchestrator] package (create, move, remove; locks and journal)
//
// Supporting packages:
//
//   - [geometry]: rectangles, points and their union
//   - [entity]: dotted object ids and lenient name resolution
//   - [errors]: code-based error taxonomy
//   - [httputil]: retry with backoff
//   - [lock]: per-resource mutation locks (in-process or Redis)
//   - [journal]: mutation outcomes (file or MongoDB)
//   - [config]: TOML/YAML settings
//   - [render]: DOT, SVG, PDF and PNG views of a canvas
//   - [observability]: hooks for logging and metrics
//
// # Quick Start
//
//	client, _ := appliance.NewClient("http://lanforge:8080")
//	engine := layout.NewEngine(topology.NewCache(client, nil), layout.DefaultOptions(), nil, nil)
//	orch := orchestrator.New(client, engine)
//
//	res, err := orch.CreateRouter(ctx, "vr1")
//	if err != nil {
//	    return err
//	}
//	fmt.Println("placed at", res.Area)
package pkg
