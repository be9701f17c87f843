package topology

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/netsmith/pkg/appliance"
	"github.com/matzehuels/netsmith/pkg/entity"
	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/geometry"
)

// Record is a placed object on a canvas as reported by the appliance.
type Record struct {
	ID     entity.ID
	X      int
	Y      int
	Width  int
	Height int
}

// Rect returns the record's placement.
func (r Record) Rect() geometry.Rect {
	return geometry.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// RouterRecord is a placed virtual router.
type RouterRecord struct{ Record }

// PortRecord is a placed router connection endpoint.
type PortRecord struct{ Record }

// DecodeRecord builds a Record from a listing item. Bare ids are assigned to
// resource and malformed dotted ids are rejected. Coordinates may be
// JSON numbers or numeric strings and are truncated to integers.
func DecodeRecord(item appliance.Item, resource int) (Record, error) {
	id, err := entity.Parse(item.EID, resource)
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInvalidRecord, err, "record id")
	}

	var vals [4]int
	for i, key := range [...]string{"x", "y", "width", "height"} {
		v, err := intField(item.Fields, key)
		if err != nil {
			return Record{}, errors.Wrap(errors.ErrCodeInvalidRecord, err, "record %s", item.EID)
		}
		vals[i] = v
	}
	if vals[2] < 0 || vals[3] < 0 {
		return Record{}, errors.New(errors.ErrCodeInvalidRecord, "record %s has negative size %dx%d", item.EID, vals[2], vals[3])
	}
	return Record{ID: id, X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

func intField(fields map[string]any, key string) (int, error) {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return 0, errors.New(errors.ErrCodeInvalidRecord, "missing field %q", key)
	}

	var f float64
	var err error
	switch v := raw.(type) {
	case json.Number:
		f, err = v.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	case float64:
		f = v
	case int:
		f = float64(v)
	default:
		return 0, errors.New(errors.ErrCodeInvalidRecord, "field %q has type %T", key, raw)
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New(errors.ErrCodeInvalidRecord, "field %q is not a number: %v", key, raw)
	}
	return int(f), nil
}
