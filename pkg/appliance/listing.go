package appliance

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/matzehuels/netsmith/pkg/errors"
)

// decodeListing extracts the items stored under element. A missing or null
// element yields an empty listing.
func decodeListing(body []byte, element string) ([]Item, error) {
	var envelope map[string]json.RawMessage
	if err := unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRemoteOperation, err, "decode listing envelope")
	}
	raw, ok := envelope[element]
	if !ok || len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	switch bytes.TrimSpace(raw)[0] {
	case '[':
		return decodeList(raw, element)
	case '{':
		return decodeObject(raw, element)
	default:
		return nil, errors.New(errors.ErrCodeRemoteOperation, "%s: unexpected listing shape", element)
	}
}

// decodeList handles [{eid: {fields}}, ...].
func decodeList(raw json.RawMessage, element string) ([]Item, error) {
	var entries []map[string]map[string]any
	if err := unmarshal(raw, &entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRemoteOperation, err, "decode %s list", element)
	}
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		for _, eid := range sortedKeys(entry) {
			items = append(items, Item{EID: eid, Fields: entry[eid]})
		}
	}
	return items, nil
}

// decodeObject handles a lone object carrying its own "eid", or a map of
// eid to fields. Map listings are ordered by eid.
func decodeObject(raw json.RawMessage, element string) ([]Item, error) {
	var obj map[string]any
	if err := unmarshal(raw, &obj); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRemoteOperation, err, "decode %s object", element)
	}
	if eid, ok := obj["eid"].(string); ok {
		return []Item{{EID: eid, Fields: obj}}, nil
	}

	items := make([]Item, 0, len(obj))
	for _, eid := range sortedKeys(obj) {
		fields, ok := obj[eid].(map[string]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeRemoteOperation, "%s: entry %q is not an object", element, eid)
		}
		items = append(items, Item{EID: eid, Fields: fields})
	}
	return items, nil
}

func unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
