package config

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

// Settings maps an opensearch.yml setting name to a scalar value.
type Settings map[string]any

func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys returns the setting names in sorted order.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate rejects values that are not strings, booleans or numbers.
func (s Settings) Validate() error {
	var err error
	for _, key := range s.Keys() {
		if !isScalar(s[key]) {
			err = multierr.Append(err, fmt.Errorf("%w: %s is %T", ErrNonScalarSetting, key, s[key]))
		}
	}
	return err
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
