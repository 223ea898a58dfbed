// Package value converts loosely typed slot payloads and properties.
package value

import (
	"encoding/json"
	"strconv"
)

// Float reads v as a number. Strings are parsed; anything else that is not
// numeric reports false.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int reads v as a whole number.
func Int(v any) (int, bool) {
	f, ok := Float(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
