// Package snapshot produces stable cache keys for analysis queries.
// A filter object is reduced to a canonical JSON form that is identical
// under key reordering and absence of optional fields, then hashed.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Canonical returns the canonical JSON encoding of a filter object:
// dates become RFC 3339 strings, nil-valued keys are dropped, object
// keys are sorted, arrays map element-wise.
func Canonical(filter interface{}) ([]byte, error) {
	// Round-trip through JSON first: time.Time and structs flatten to
	// maps/strings, so canonicalization only deals in generic values.
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encoding filter: %w", err)
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decoding filter: %w", err)
	}

	out, err := json.Marshal(canonicalize(generic))
	if err != nil {
		return nil, fmt.Errorf("encoding canonical form: %w", err)
	}
	return out, nil
}

// FilterHash returns the hex-encoded SHA-256 digest of the canonical
// form of a filter object.
func FilterHash(filter interface{}) (string, error) {
	canonical, err := Canonical(filter)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalize drops null-valued object keys and recurses into
// containers. encoding/json already writes map keys in sorted order;
// sorting here keeps the invariant explicit rather than implied.
func canonicalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(map[string]interface{}, len(keys))
		for _, k := range keys {
			out[k] = canonicalize(val[k])
		}
		return out

	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = canonicalize(item)
		}
		return out

	default:
		return v
	}
}
