package entity

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/netsmith/pkg/errors"
)

// Policy selects what happens when resolution finds nothing.
type Policy int

const (
	// Lenient reports a miss as ok == false with a nil error.
	Lenient Policy = iota
	// Strict reports a miss as a NOT_FOUND error.
	Strict
)

// Resolve finds the entry for name on resource.
//
// It first checks the canonical router key "1.<resource>.1.65535.<name>",
// then the plain key "1.<resource>.<name>", and finally scans every key
// (in sorted order, so the first match is deterministic) whose string form
// starts with "1.<resource>." and ends with "."+name.
func Resolve[T any](entries map[ID]T, resource int, name string, policy Policy) (ID, T, bool, error) {
	var zero T
	if err := errors.ValidateResource(resource); err != nil {
		return ID{}, zero, false, err
	}
	if name == "" {
		return ID{}, zero, false, errors.New(errors.ErrCodeInvalidInput, "lookup needs a name")
	}

	for _, key := range []ID{CanonicalRouterKey(resource, name), New(resource, name)} {
		if v, ok := entries[key]; ok {
			return key, v, true, nil
		}
	}

	prefix := fmt.Sprintf("%d.%d.", DefaultShelf, resource)
	suffix := "." + name
	keys := slices.SortedFunc(maps.Keys(entries), compare)
	for _, key := range keys {
		s := key.String()
		if strings.HasPrefix(s, prefix) && strings.HasSuffix(s, suffix) {
			return key, entries[key], true, nil
		}
	}

	if policy == Strict {
		return ID{}, zero, false, errors.New(errors.ErrCodeNotFound, "no entry matches %s%s", prefix, name)
	}
	return ID{}, zero, false, nil
}

func compare(a, b ID) int {
	return strings.Compare(a.String(), b.String())
}

// Sorted returns the ids in entries in string order.
func Sorted[T any](entries map[ID]T) []ID {
	return slices.SortedFunc(maps.Keys(entries), compare)
}
