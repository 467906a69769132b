package leads

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Text is a scalar field that decodes from any JSON value. Research output
// is inconsistent: scores arrive as numbers or strings, flags as booleans.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		*t = ""
		return nil
	}
	*t = Text(flatten(v))
	return nil
}

// String returns the trimmed value.
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// TextList is a list field that decodes from a single string or an array of
// strings, numbers or objects.
type TextList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *TextList) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		*l = nil
		return nil
	}

	var out []string
	switch x := v.(type) {
	case []interface{}:
		for _, item := range x {
			if s := strings.TrimSpace(flatten(item)); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := strings.TrimSpace(flatten(x)); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// Join returns the non-empty items joined by sep.
func (l TextList) Join(sep string) string {
	return strings.Join(l, sep)
}

// flatten renders an arbitrary decoded JSON value as display text. Objects
// lead with their "nome" entry (partner lists) then the remaining values in
// key order.
func flatten(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "sim"
		}
		return "não"
	case []interface{}:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := strings.TrimSpace(flatten(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			if k != "nome" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		if _, ok := x["nome"]; ok {
			keys = append([]string{"nome"}, keys...)
		}
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := strings.TrimSpace(flatten(x[k])); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " - ")
	default:
		return ""
	}
}

// isObject reports whether raw holds a JSON object.
func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// isArray reports whether raw holds a JSON array.
func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
