package geometry

import "slices"

// Group is a set of member rectangles with a cached bounding union.
// The union is not kept live: call [Group.Update] after changing membership.
type Group struct {
	members []Rect
	bounds  Rect
	valid   bool
}

// NewGroup returns a group holding rects with its union already computed.
func NewGroup(rects ...Rect) *Group {
	g := &Group{members: slices.Clone(rects)}
	g.Update()
	return g
}

// Append adds members without recomputing the union.
func (g *Group) Append(rects ...Rect) {
	g.members = append(g.members, rects...)
}

// Len returns the number of members.
func (g *Group) Len() int { return len(g.members) }

// Members returns a copy of the member rectangles.
func (g *Group) Members() []Rect { return slices.Clone(g.members) }

// Update recomputes the union from the current members.
func (g *Group) Update() {
	u, err := Union(g.members)
	g.bounds, g.valid = u, err == nil
}

// Bounds returns the union as of the last Update, and false when the group
// had no members at that time.
func (g *Group) Bounds() (Rect, bool) {
	return g.bounds, g.valid
}
