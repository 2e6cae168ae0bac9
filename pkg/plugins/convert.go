package plugins

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"

	"github.com/lonesomebyte537/lets/pkg/engine"
)

// toStarlarkValue converts a setting value: scalars become strings, lists
// become lists and dicts become dicts of strings.
func toStarlarkValue(v engine.Value) (starlark.Value, error) {
	switch v.Kind() {
	case engine.KindList:
		items := v.List()
		list := make([]starlark.Value, len(items))
		for i, item := range items {
			list[i] = starlark.String(item)
		}
		return starlark.NewList(list), nil
	case engine.KindDict:
		m := v.Dict()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		dict := starlark.NewDict(len(m))
		for _, k := range keys {
			if err := dict.SetKey(starlark.String(k), starlark.String(m[k])); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return starlark.String(v.Scalar()), nil
	}
}

// fromStarlarkValue converts a Starlark value into a setting value. Strings
// and other scalars become scalars, lists and tuples become lists, dicts
// become dicts. Nested collections are rejected.
func fromStarlarkValue(v starlark.Value) (engine.Value, error) {
	switch val := v.(type) {
	case *starlark.List, starlark.Tuple:
		seq := val.(starlark.Indexable)
		items := make([]string, seq.Len())
		for i := 0; i < seq.Len(); i++ {
			s, err := scalarString(seq.Index(i))
			if err != nil {
				return engine.Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			items[i] = s
		}
		return engine.List(items...), nil
	case *starlark.Dict:
		m := make(map[string]string, val.Len())
		for _, item := range val.Items() {
			key, err := scalarString(item[0])
			if err != nil {
				return engine.Value{}, fmt.Errorf("dict key: %w", err)
			}
			value, err := scalarString(item[1])
			if err != nil {
				return engine.Value{}, fmt.Errorf("dict value for %s: %w", key, err)
			}
			m[key] = value
		}
		return engine.Dict(m), nil
	default:
		s, err := scalarString(v)
		if err != nil {
			return engine.Value{}, err
		}
		return engine.Scalar(s), nil
	}
}

// scalarString renders a scalar the way a user would type it.
func scalarString(v starlark.Value) (string, error) {
	switch val := v.(type) {
	case starlark.String:
		return string(val), nil
	case starlark.NoneType:
		return "", nil
	case starlark.Bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case starlark.Int, starlark.Float:
		return val.String(), nil
	default:
		return "", fmt.Errorf("unsupported %s, want a string", v.Type())
	}
}

// toStrings unpacks positional arguments as strings.
func toStrings(args starlark.Tuple) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		s, err := scalarString(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = s
	}
	return out, nil
}
