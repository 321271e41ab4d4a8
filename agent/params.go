package agent

import (
	"strconv"
	"strings"
)

// ParamBag is the loosely-typed parameter mapping attached to an
// ActionDescriptor. The planner produces it from LLM JSON output, so values
// arrive as strings, bools, float64 numbers, or []any. The accessors below
// tolerate all of those shapes; the bag is validated against the registry's
// declared contract at the gate/dispatcher boundary, never trusted beyond it.
type ParamBag map[string]any

// String returns the value for key coerced to a string, or "" when absent.
func (p ParamBag) String(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		// JSON numbers decode as float64; render integers without a fraction.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// StringList returns the value for key as a list of strings. A scalar string
// becomes a single-element list; []any elements are coerced individually.
func (p ParamBag) StringList(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Bool returns the value for key as a bool. String values "true"/"1"/"yes"
// count as true.
func (p ParamBag) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true
		}
	case float64:
		return v != 0
	}
	return false
}

// Int returns the value for key as an int, or def when absent or unusable.
func (p ParamBag) Int(key string, def int) int {
	switch v := p[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Has reports whether key is present with a non-empty value. Empty strings
// and empty lists do not count: the registry's required-parameter contract
// treats them the same as absent.
func (p ParamBag) Has(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []string:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return true
}

// Clone returns a shallow copy of the bag. Enrichment mutates the copy so a
// preview's params stay byte-identical across repeated builds.
func (p ParamBag) Clone() ParamBag {
	out := make(ParamBag, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
