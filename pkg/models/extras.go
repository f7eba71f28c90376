package models

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"
)

// Extras maps unknown JSON keys to their raw values so that a record written
// by a newer version survives a load/save cycle unchanged.
type Extras map[string]json.RawMessage

// Keys returns the extra field names in sorted order.
func (e Extras) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of e.
func (e Extras) Clone() Extras {
	if e == nil {
		return nil
	}
	out := make(Extras, len(e))
	for k, v := range e {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func splitExtras(data []byte, known []string) (Extras, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return Extras(all), nil
}

// appendExtras splices extra fields into an encoded object, after the known ones.
func appendExtras(object []byte, extra Extras) ([]byte, error) {
	if len(extra) == 0 {
		return object, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(object) + 64*len(extra))
	buf.Write(bytes.TrimSuffix(bytes.TrimSpace(object), []byte("}")))

	for _, k := range extra.Keys() {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		var value bytes.Buffer
		if err := json.Compact(&value, extra[k]); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value.Bytes())
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
