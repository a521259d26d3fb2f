package adapter

import "encoding/json"

// Get is a typed version of GetItem. The stored JSON is decoded into T. If the
// stored value isn't valid JSON and T is a string, the raw value is returned;
// any other decoding failure is returned as an error.
func Get[T any](a *Adapter, key string, defaultValue T) (T, error) {
	var v T

	raw, ok, err := a.read(a.physicalKey(key))
	if err != nil {
		return v, err
	}
	if !ok {
		return defaultValue, nil
	}

	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		if s, isStr := any(&v).(*string); isStr && !json.Valid([]byte(raw)) {
			*s = raw
			return v, nil
		}
		return v, err
	}

	return v, nil
}
