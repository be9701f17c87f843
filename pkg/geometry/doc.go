// Package geometry provides the integer rectangle math used to lay out
// virtual routers and their connections on an appliance canvas.
//
// All coordinates are canvas pixels with the origin at the top left and y
// growing downward, matching the appliance GUI. Values are immutable: every
// operation returns a new [Rect] and never modifies its inputs, so the
// package is safe for concurrent use.
//
// # Bounding Unions
//
// [Union] computes the tight bounding rectangle of a set of rectangles and
// fails with an EMPTY_INPUT error when the set is empty. Callers that treat
// "no rectangles" as a valid empty canvas must check for that themselves
// before calling Union, rather than inventing a zero rectangle.
//
// [Group] accumulates members and recomputes its union only when [Group.Update]
// is called.
package geometry
