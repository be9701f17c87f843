// Package layout computes placements on an appliance canvas.
//
// An [Engine] reads router and port records through a [topology.Cache] and
// answers four questions:
//
//   - What area is occupied? ([Engine.OccupiedArea], [Engine.AllPortBounds])
//   - Where does the next router go? ([Engine.NextAvailableArea])
//   - Where inside a router should a port land? ([Engine.LandingSpot])
//   - Is a rectangle placed inside a router? ([Engine.IsInsideVirtualRouter])
//
// # Frontier Allocation
//
// NextAvailableArea is a greedy frontier allocator. A new router is placed
// strictly to the right of, or strictly below, everything currently on the
// canvas. Gaps left by removed routers are never back-filled and rows are
// never packed. This keeps placement predictable for test operators reading
// the canvas; it is not a bin packer and should not become one.
//
// # Randomness
//
// Landing spots are drawn from an injected [RandSource]. Use
// [NewSeededSource] for reproducible runs or [NewStreamSource] to draw from
// a named rngstream stream.
package layout
