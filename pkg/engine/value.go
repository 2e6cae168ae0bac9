package engine

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
)

// Kind is the shape of a setting value. It is fixed at registration.
type Kind int

const (
	// KindScalar is a single string.
	KindScalar Kind = iota
	// KindList is an ordered sequence of strings.
	KindList
	// KindDict is a string to string mapping.
	KindDict
)

// String returns the kind's display name as shown by help.
func (k Kind) String() string {
	switch k {
	case KindList:
		return "List"
	case KindDict:
		return "Dictionary"
	default:
		return "String"
	}
}

// Value is a setting value: exactly one of a scalar, a list or a dict.
// The zero Value is the empty scalar.
type Value struct {
	kind   Kind
	scalar string
	list   []string
	dict   map[string]string
}

// Scalar returns a scalar value.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// List returns a list value holding a copy of items.
func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string{}, items...)}
}

// Dict returns a dict value holding a copy of m.
func Dict(m map[string]string) Value {
	d := make(map[string]string, len(m))
	maps.Copy(d, m)
	return Value{kind: KindDict, dict: d}
}

// EmptyValue returns the empty value of the given kind.
func EmptyValue(k Kind) Value {
	switch k {
	case KindList:
		return List()
	case KindDict:
		return Dict(nil)
	default:
		return Scalar("")
	}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Scalar returns the scalar content. It is empty for collections.
func (v Value) Scalar() string { return v.scalar }

// List returns a copy of the list content.
func (v Value) List() []string { return append([]string{}, v.list...) }

// Dict returns a copy of the dict content.
func (v Value) Dict() map[string]string {
	d := make(map[string]string, len(v.dict))
	maps.Copy(d, v.dict)
	return d
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		return List(v.list...)
	case KindDict:
		return Dict(v.dict)
	default:
		return v
	}
}

// Equal reports value equality. Lists compare in order, dicts ignore order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindList:
		return slices.Equal(v.list, o.list)
	case KindDict:
		return maps.Equal(v.dict, o.dict)
	default:
		return v.scalar == o.scalar
	}
}

// Candidates returns the strings checked against a setting's options: the
// scalar itself, every list element, or every dict value.
func (v Value) Candidates() []string {
	switch v.kind {
	case KindList:
		return v.List()
	case KindDict:
		keys := v.keys()
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, v.dict[k])
		}
		return out
	default:
		return []string{v.scalar}
	}
}

// String formats the value the way get prints it.
func (v Value) String() string {
	switch v.kind {
	case KindList:
		return strings.Join(v.list, ", ")
	case KindDict:
		keys := v.keys()
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+DictSeparator+v.dict[k])
		}
		return strings.Join(parts, ", ")
	default:
		return v.scalar
	}
}

// Raw returns the value as plain Go data (string, []string or
// map[string]string) for serialization.
func (v Value) Raw() any {
	switch v.kind {
	case KindList:
		return v.List()
	case KindDict:
		return v.Dict()
	default:
		return v.scalar
	}
}

func (v Value) keys() []string {
	keys := make([]string, 0, len(v.dict))
	for k := range v.dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DictSeparator splits dictionary entries given on the command line.
const DictSeparator = ":"

// ParseDictEntries parses key:value tokens. Every token lacking the separator
// is reported in a single MalformedEntry error.
func ParseDictEntries(tokens []string) (map[string]string, error) {
	var malformed []string
	out := make(map[string]string, len(tokens))
	for _, tok := range tokens {
		key, val, ok := strings.Cut(tok, DictSeparator)
		if !ok {
			malformed = append(malformed, tok)
			continue
		}
		out[key] = val
	}
	if len(malformed) > 0 {
		return nil, NewMalformedEntryError(malformed)
	}
	return out, nil
}

// ValueFromRaw converts decoded store data into a value of kind k. Any scalar
// is accepted as its string form; nil yields the kind's empty value.
func ValueFromRaw(raw any, k Kind) (Value, error) {
	if raw == nil {
		return EmptyValue(k), nil
	}
	switch k {
	case KindList:
		items, ok := raw.([]any)
		if !ok {
			if strs, ok := raw.([]string); ok {
				return List(strs...), nil
			}
			return Value{}, fmt.Errorf("expected a list, got %T", raw)
		}
		list := make([]string, 0, len(items))
		for i, item := range items {
			s, err := scalarFromRaw(item)
			if err != nil {
				return Value{}, fmt.Errorf("list item %d: %w", i, err)
			}
			list = append(list, s)
		}
		return List(list...), nil
	case KindDict:
		switch m := raw.(type) {
		case map[string]string:
			return Dict(m), nil
		case map[string]any:
			d := make(map[string]string, len(m))
			for key, item := range m {
				s, err := scalarFromRaw(item)
				if err != nil {
					return Value{}, fmt.Errorf("key %s: %w", key, err)
				}
				d[key] = s
			}
			return Dict(d), nil
		case map[any]any:
			// yaml.v3 decodes mappings with non-string keys this way.
			d := make(map[string]string, len(m))
			for rawKey, item := range m {
				key, err := scalarFromRaw(rawKey)
				if err != nil {
					return Value{}, fmt.Errorf("dict key: %w", err)
				}
				s, err := scalarFromRaw(item)
				if err != nil {
					return Value{}, fmt.Errorf("key %s: %w", key, err)
				}
				d[key] = s
			}
			return Dict(d), nil
		default:
			return Value{}, fmt.Errorf("expected a mapping, got %T", raw)
		}
	default:
		s, err := scalarFromRaw(raw)
		if err != nil {
			return Value{}, err
		}
		return Scalar(s), nil
	}
}

func scalarFromRaw(raw any) (string, error) {
	switch raw.(type) {
	case []any, []string, map[string]any, map[string]string, map[any]any:
		return "", fmt.Errorf("expected a scalar, got %T", raw)
	case nil:
		return "", nil
	}
	return fmt.Sprint(raw), nil
}
