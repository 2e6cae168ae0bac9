package plugins

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/lonesomebyte537/lets/pkg/engine"
)

// module backs the lets module handed to a plugin. Every plugin gets its own
// instance bound to its context.
type module struct {
	e     *engine.Engine
	scope string
	self  *starlarkstruct.Module
}

func newModule(e *engine.Engine, scope string) *starlarkstruct.Module {
	m := &module{e: e, scope: scope}
	m.self = &starlarkstruct.Module{
		Name: "lets",
		Members: starlark.StringDict{
			"context":          starlark.String(scope),
			"program":          starlark.String(e.Program()),
			"register_setting": starlark.NewBuiltin("register_setting", m.registerSetting),
			"verb":             starlark.NewBuiltin("verb", m.verb),
			"get":              starlark.NewBuiltin("get", m.get),
			"lookup":           starlark.NewBuiltin("lookup", m.lookup),
			"set":              starlark.NewBuiltin("set", m.set),
			"add":              starlark.NewBuiltin("add", m.add),
			"remove":           starlark.NewBuiltin("remove", m.remove),
			"info":             starlark.NewBuiltin("info", m.message(e.Info)),
			"warning":          starlark.NewBuiltin("warning", m.message(e.Warning)),
			"error":            starlark.NewBuiltin("error", m.message(e.Error)),
			"verbose":          starlark.NewBuiltin("verbose", m.message(e.Verbose)),
			"verbose_enabled":  starlark.NewBuiltin("verbose_enabled", m.verboseEnabled),
		},
	}
	return m.self
}

// register_setting(name, description="", options=None, default="")
func (m *module) registerSetting(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		name        string
		description string
		options     starlark.Value = starlark.None
		def         starlark.Value = starlark.String("")
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name, "description?", &description, "options?", &options, "default?", &def); err != nil {
		return nil, err
	}

	value, err := fromStarlarkValue(def)
	if err != nil {
		return nil, fmt.Errorf("%s: default: %w", b.Name(), err)
	}

	var allowed []string
	if options != starlark.None {
		v, err := fromStarlarkValue(options)
		if err != nil || v.Kind() != engine.KindList {
			return nil, fmt.Errorf("%s: options must be a list of strings", b.Name())
		}
		allowed = v.List()
	}

	if err := m.e.RegisterSetting(m.scope, name, description, allowed, value); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

// verb(fn, name=None) registers fn under the plugin's context and returns it.
func (m *module) verb(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		fn   starlark.Callable
		name starlark.Value = starlark.None
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "fn", &fn, "name?", &name); err != nil {
		return nil, err
	}

	verbName := fn.Name()
	if name != starlark.None {
		s, ok := starlark.AsString(name)
		if !ok {
			return nil, fmt.Errorf("%s: name must be a string, got %s", b.Name(), name.Type())
		}
		verbName = s
	}

	var doc string
	if f, ok := fn.(*starlark.Function); ok {
		doc = f.Doc()
	}

	if err := m.e.RegisterVerb(m.scope, verbName, handler(m.self, m.scope, fn), doc); err != nil {
		return nil, err
	}
	return fn, nil
}

// get(name) returns the value of a setting, or None when there is none.
// The lookup is exact: "ctx.name" names a setting of another context and a
// bare name one of the plugin's own.
func (m *module) get(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	scope, setting := engine.SplitName(name)
	if scope == "" {
		scope = m.scope
	}
	v, ok := m.e.Setting(scope, setting)
	if !ok {
		return starlark.None, nil
	}
	return toStarlarkValue(v)
}

// lookup(name) resolves name the way the command line does and returns the
// setting's value. Unknown and ambiguous names are errors.
func (m *module) lookup(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	s, err := m.e.ResolveSetting(m.settingName(name))
	if err != nil {
		return nil, err
	}
	return toStarlarkValue(s.Value())
}

// set(name, value) replaces the value of a setting.
func (m *module) set(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		name  string
		value starlark.Value
	)
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &name, &value); err != nil {
		return nil, err
	}
	v, err := fromStarlarkValue(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if err := m.e.SetSetting(threadContext(thread), m.settingName(name), v); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

// add(name, *values) appends list elements or merges key:value entries.
func (m *module) add(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	name, values, err := nameAndValues(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	if err := m.e.AddToSetting(threadContext(thread), m.settingName(name), values...); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

// remove(name, *values) removes list elements or dict keys.
func (m *module) remove(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	name, values, err := nameAndValues(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	if err := m.e.RemoveFromSetting(threadContext(thread), m.settingName(name), values...); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (m *module) message(emit func(string)) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var text string
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &text); err != nil {
			return nil, err
		}
		emit(text)
		return starlark.None, nil
	}
}

func (m *module) verboseEnabled(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.Bool(m.e.VerboseEnabled()), nil
}

// settingName prefers the plugin's own setting for an unqualified name.
func (m *module) settingName(name string) string {
	if scope, _ := engine.SplitName(name); scope == "" {
		if _, ok := m.e.Setting(m.scope, name); ok {
			return engine.QualifiedName(m.scope, name)
		}
	}
	return name
}

func nameAndValues(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (string, []string, error) {
	if len(kwargs) > 0 {
		return "", nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%s: missing setting name", b.Name())
	}
	name, ok := starlark.AsString(args[0])
	if !ok {
		return "", nil, fmt.Errorf("%s: setting name must be a string, got %s", b.Name(), args[0].Type())
	}
	values, err := toStrings(args[1:])
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return name, values, nil
}
