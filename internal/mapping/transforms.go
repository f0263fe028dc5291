package mapping

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tombee/awsdeck/internal/value"
)

var byteUnits = []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// FormatBytes renders a byte count in binary units with one decimal place,
// e.g. 1536 -> "1.5 KiB". Counts that round below 1 KiB render as whole
// bytes. The unit is chosen after rounding, so 1048575 is "1.0 MiB".
func FormatBytes(n float64) string {
	whole := math.Round(n)
	if math.Abs(whole) < 1024 {
		if whole == 0 {
			whole = 0
		}
		return fmt.Sprintf("%s B", value.ToString(whole))
	}
	v := n / 1024
	unit := 0
	for unit < len(byteUnits)-1 && math.Abs(math.Round(v*10)/10) >= 1024 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[unit])
}

func formatBytesValue(v any) string {
	n, ok := value.Float(v)
	if !ok {
		return value.ToString(v)
	}
	return FormatBytes(n)
}

// TagsToMap flattens a sequence of {Key, Value} pairs into
// "key=value, key=value", keeping sequence order. A plain mapping of tag
// names to values (the REST services' shape) is rendered sorted by key.
func TagsToMap(v any) string {
	switch tags := v.(type) {
	case []any:
		pairs := make([]string, 0, len(tags))
		for _, t := range tags {
			entry, ok := t.(map[string]any)
			if !ok {
				continue
			}
			key, ok := pick(entry, "Key", "key")
			if !ok {
				continue
			}
			val, _ := pick(entry, "Value", "value")
			pairs = append(pairs, value.ToString(key)+"="+value.ToString(val))
		}
		return strings.Join(pairs, ", ")
	case map[string]any:
		keys := make([]string, 0, len(tags))
		for k := range tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+value.ToString(tags[k]))
		}
		return strings.Join(pairs, ", ")
	default:
		return value.ToString(v)
	}
}

// BoolToYesNo renders booleans as "Yes"/"No". Other values are coerced by
// truthiness: null, zero, empty strings and empty collections are "No", as
// are the strings "false" and "no" which XML responses use for booleans.
func BoolToYesNo(v any) string {
	if truthy(v) {
		return "Yes"
	}
	return "No"
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "", "false", "no", "0":
			return false
		}
		return true
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	if n, ok := value.Float(v); ok {
		return n != 0
	}
	return true
}

// ArrayToCSV joins a sequence of scalars with ", " in sequence order.
// A lone scalar renders as itself.
func ArrayToCSV(v any) string {
	items, ok := v.([]any)
	if !ok {
		return value.ToString(v)
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, value.ToString(item))
	}
	return strings.Join(parts, ", ")
}

func pick(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}
