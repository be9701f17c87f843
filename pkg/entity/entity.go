// Package entity models the appliance's hierarchical entity identifiers
// ("shelf.resource.name") and the tolerant lookup rules used to find routers
// and connections in a cached listing.
//
// The appliance does not always report ids in the shape a caller expects:
// a router created as "vr1" on resource 1 is usually listed as
// "1.1.1.65535.vr1" (shelf, resource, card, port, name), but the card and
// port segments vary. [Resolve] therefore tries the canonical key first and
// then falls back to a prefix/suffix scan over every cached key.
package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/netsmith/pkg/errors"
)

// DefaultShelf is the only shelf the appliance exposes.
const DefaultShelf = 1

// ID identifies a router or connection in the appliance namespace.
// Name may itself contain dots (e.g. "1.65535.vr1" for canonical router keys).
type ID struct {
	Shelf    int
	Resource int
	Name     string
}

// New returns the id of name on resource of the default shelf.
func New(resource int, name string) ID {
	return ID{Shelf: DefaultShelf, Resource: resource, Name: name}
}

// String returns the dot-joined form "shelf.resource.name".
func (id ID) String() string {
	return fmt.Sprintf("%d.%d.%s", id.Shelf, id.Resource, id.Name)
}

// ShortName returns the last dot-separated segment of Name, which is what
// the appliance's CLI commands expect as an alias.
func (id ID) ShortName() string {
	if i := strings.LastIndexByte(id.Name, '.'); i >= 0 {
		return id.Name[i+1:]
	}
	return id.Name
}

// Validate checks that the id addresses a real object.
func (id ID) Validate() error {
	if id.Shelf < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "shelf must be positive, got %d", id.Shelf)
	}
	if err := errors.ValidateResource(id.Resource); err != nil {
		return err
	}
	return errors.ValidateName(id.Name)
}

// Parse converts a dotted name into an ID:
//
//	"vr1"            -> shelf 1, defaultResource, "vr1"
//	"2.vr1"          -> shelf 1, resource 2, "vr1"
//	"1.2.vr1"        -> shelf 1, resource 2, "vr1"
//	"1.2.1.65535.v"  -> shelf 1, resource 2, "1.65535.v"
//
// A dotted string whose leading segments are not numeric is rejected, so a
// name can never carry dots of its own.
func Parse(s string, defaultResource int) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, errors.New(errors.ErrCodeInvalidInput, "entity id cannot be empty")
	}

	parts := strings.Split(s, ".")
	switch len(parts) {
	case 1:
		return New(defaultResource, s), nil
	case 2:
		res, err := strconv.Atoi(parts[0])
		if err != nil {
			return ID{}, errors.New(errors.ErrCodeInvalidInput, "malformed entity id %q: resource %q is not a number", s, parts[0])
		}
		return New(res, parts[1]), nil
	default:
		shelf, errS := strconv.Atoi(parts[0])
		res, errR := strconv.Atoi(parts[1])
		if errS != nil || errR != nil {
			return ID{}, errors.New(errors.ErrCodeInvalidInput, "malformed entity id %q: shelf and resource must be numbers", s)
		}
		return ID{Shelf: shelf, Resource: res, Name: strings.Join(parts[2:], ".")}, nil
	}
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) ID {
	id, err := Parse(s, 1)
	if err != nil {
		panic(err)
	}
	return id
}

// CanonicalRouterKey returns the key the appliance normally uses for a
// router named name on resource.
func CanonicalRouterKey(resource int, name string) ID {
	return ID{Shelf: DefaultShelf, Resource: resource, Name: "1.65535." + name}
}

// Qualify prefixes a bare connection name with "1.<resource>." unless it is
// already shelf-qualified.
func Qualify(resource int, name string) string {
	if strings.HasPrefix(name, fmt.Sprintf("%d.", DefaultShelf)) {
		return name
	}
	return New(resource, name).String()
}
