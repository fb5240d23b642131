package floodmonitoring

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/riverwatch/riverwatch/internal/hydrology"
)

// object is a JSON object with its members left undecoded.
type object map[string]json.RawMessage

// decodeObject decodes raw as a JSON object. ok is false for any other JSON
// value, including null.
func decodeObject(raw []byte) (object, bool) {
	if kindOf(raw) != '{' {
		return nil, false
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// member returns the named member, treating an explicit null as absent.
func (o object) member(key string) (json.RawMessage, bool) {
	raw, ok := o[key]
	if !ok || kindOf(raw) == 'n' {
		return nil, false
	}
	return raw, true
}

// kindOf returns the first significant byte of a JSON value: '{', '[', '"',
// 'n' for null, and so on. Zero means empty input.
func kindOf(raw []byte) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// oneOrMany normalizes a field the API sends either as a single value or as
// an array of values into a slice.
func oneOrMany(raw json.RawMessage) ([]json.RawMessage, bool) {
	switch kindOf(raw) {
	case '[':
		var many []json.RawMessage
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, false
		}
		return many, true
	case 0, 'n':
		return nil, false
	default:
		return []json.RawMessage{raw}, true
	}
}

// stringMember returns the named member when it is a JSON string.
func (o object) stringMember(key string) *string {
	raw, ok := o.member(key)
	if !ok || kindOf(raw) != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// displayMember renders the named member as display text, falling back to
// hydrology.Unknown when it is absent, null or blank.
func (o object) displayMember(key string) string {
	raw, ok := o.member(key)
	if !ok {
		return hydrology.Unknown
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return hydrology.Unknown
	}
	text := strings.TrimSpace(render(v))
	if text == "" {
		return hydrology.Unknown
	}
	return text
}

func render(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(render(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
