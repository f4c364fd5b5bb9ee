package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// TagKind discriminates the scalar kinds a tag value may hold.
type TagKind int

const (
	TagString TagKind = iota
	TagNumber
	TagBool
)

// TagValue is a closed sum over the scalar types allowed as tag values.
// Keeping the set closed makes JSON serialization and HTML rendering
// exhaustive: anything else is rejected when the request body is decoded.
type TagValue struct {
	Kind TagKind
	Str  string
	Num  float64
	Bool bool
}

// String returns the display form of the value (used in templates and spans).
func (v TagValue) String() string {
	switch v.Kind {
	case TagNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case TagBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// MarshalJSON emits the underlying scalar, not the wrapper struct.
func (v TagValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case TagNumber:
		return json.Marshal(v.Num)
	case TagBool:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON accepts a JSON string, number, or boolean. Arrays, objects,
// and null are rejected so the closed-sum invariant holds for every stored tag.
func (v *TagValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = TagValue{Kind: TagString, Str: x}
	case float64:
		*v = TagValue{Kind: TagNumber, Num: x}
	case bool:
		*v = TagValue{Kind: TagBool, Bool: x}
	default:
		return fmt.Errorf("tag value must be a string, number, or boolean, got %T", raw)
	}
	return nil
}

// Tags is an unvalidated key -> scalar annotation map used only for display
// grouping. A nil map means "no tags".
type Tags map[string]TagValue

// Keys returns the tag keys in sorted order for deterministic rendering.
func (t Tags) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value implements driver.Valuer, storing the map as a JSONB document.
// A nil map is stored as SQL NULL.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB columns.
func (t *Tags) Scan(src any) error {
	if src == nil {
		*t = nil
		return nil
	}
	var b []byte
	switch x := src.(type) {
	case []byte:
		b = x
	case string:
		b = []byte(x)
	default:
		return fmt.Errorf("cannot scan %T into Tags", src)
	}
	return json.Unmarshal(b, t)
}
