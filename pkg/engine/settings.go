package engine

import (
	"context"
	"slices"
	"sort"
	"strings"
)

// Setting is a named, typed, persisted configuration value declared by a
// context. Its kind never changes after registration.
type Setting struct {
	context     string
	name        string
	description string
	options     []string
	value       Value
}

// Context returns the declaring context.
func (s *Setting) Context() string { return s.context }

// Name returns the setting name.
func (s *Setting) Name() string { return s.name }

// QualifiedName returns context.name.
func (s *Setting) QualifiedName() string { return QualifiedName(s.context, s.name) }

// Description returns the setting description.
func (s *Setting) Description() string { return s.description }

// Options returns the allowed values, or nil when unconstrained.
func (s *Setting) Options() []string { return slices.Clone(s.options) }

// Kind returns the setting kind.
func (s *Setting) Kind() Kind { return s.value.Kind() }

// Value returns a copy of the current value.
func (s *Setting) Value() Value { return s.value.Clone() }

// Protected reports whether the setting is hidden from listings.
func (s *Setting) Protected() bool { return strings.HasPrefix(s.name, "_") }

// checkOptions verifies every candidate of v is an allowed option. An empty
// option set allows anything.
func (s *Setting) checkOptions(v Value) error {
	if len(s.options) == 0 {
		return nil
	}
	for _, c := range v.Candidates() {
		if !slices.Contains(s.options, c) {
			return NewInvalidOptionError(c, s.options)
		}
	}
	return nil
}

// registration is the validated identity of a verb or setting.
type registration struct {
	Context string `validate:"required,excludesall=."`
	Name    string `validate:"required,excludesall=."`
}

// RegisterSetting declares a setting. The kind is taken from def. Declaring
// the same (context, name) twice is a fatal error.
func (e *Engine) RegisterSetting(context, name, description string, options []string, def Value) error {
	qualified := QualifiedName(context, name)
	if e.started {
		return NewSealedError("setting " + qualified)
	}
	if err := e.validate.Struct(registration{Context: context, Name: name}); err != nil {
		return NewInvalidRegistrationError("setting "+qualified, err)
	}
	if e.lookupSetting(context, name) != nil {
		return NewDuplicateSettingError(context, name)
	}

	s := &Setting{
		context:     context,
		name:        name,
		description: description,
		options:     slices.Clone(options),
		value:       def.Clone(),
	}
	if err := s.checkOptions(def); err != nil {
		return err
	}
	e.settings = append(e.settings, s)

	e.log.Debug().Str("setting", qualified).Stringer("kind", def.Kind()).Msg("Registered setting")
	return nil
}

// Setting returns the value of the setting identified exactly by context and
// name. No resolution is attempted.
func (e *Engine) Setting(context, name string) (Value, bool) {
	s := e.lookupSetting(context, name)
	if s == nil {
		return Value{}, false
	}
	return s.Value(), true
}

// Settings returns every registered setting in registration order, protected
// ones included.
func (e *Engine) Settings() []*Setting {
	return slices.Clone(e.settings)
}

// VisibleSettings returns the settings that are not protected.
func (e *Engine) VisibleSettings() []*Setting {
	var out []*Setting
	for _, s := range e.settings {
		if !s.Protected() {
			out = append(out, s)
		}
	}
	return out
}

// ResolveSetting finds the unique setting matching a possibly qualified name.
func (e *Engine) ResolveSetting(name string) (*Setting, error) {
	return resolveOne(e.settings, name, "setting")
}

// SetSetting replaces the value of the named setting. The value must have the
// setting's kind and satisfy its options. The store is only written when the
// value actually changes.
func (e *Engine) SetSetting(ctx context.Context, name string, v Value) error {
	s, err := e.ResolveSetting(name)
	if err != nil {
		return err
	}
	return e.assign(ctx, s, v)
}

// SetSettingArgs sets a setting from command-line values: a single token for
// scalars, the whole token list for lists and key:value tokens for dicts.
func (e *Engine) SetSettingArgs(ctx context.Context, name string, values []string) error {
	s, err := e.ResolveSetting(name)
	if err != nil {
		return err
	}

	var v Value
	switch s.Kind() {
	case KindList:
		v = List(values...)
	case KindDict:
		d, err := ParseDictEntries(values)
		if err != nil {
			return err
		}
		v = Dict(d)
	default:
		if len(values) != 1 {
			return NewSingleValueError(s.QualifiedName())
		}
		v = Scalar(values[0])
	}
	return e.assign(ctx, s, v)
}

func (e *Engine) assign(ctx context.Context, s *Setting, v Value) error {
	if v.Kind() != s.Kind() {
		return NewKindMismatchError(s.QualifiedName(), s.Kind(), v.Kind())
	}
	if err := s.checkOptions(v); err != nil {
		return err
	}
	if s.value.Equal(v) {
		return nil
	}
	s.value = v.Clone()
	if s == e.verboseSetting() {
		e.verboseRestore = nil
	}
	return e.save(ctx)
}

// AddToSetting appends values to a list setting or merges key:value entries
// into a dict setting. The store is always written.
func (e *Engine) AddToSetting(ctx context.Context, name string, values ...string) error {
	s, err := e.ResolveSetting(name)
	if err != nil {
		return err
	}

	var next Value
	switch s.Kind() {
	case KindList:
		next = List(append(s.value.List(), values...)...)
		if err := s.checkOptions(List(values...)); err != nil {
			return err
		}
	case KindDict:
		entries, err := ParseDictEntries(values)
		if err != nil {
			return err
		}
		if err := s.checkOptions(Dict(entries)); err != nil {
			return err
		}
		merged := s.value.Dict()
		for k, v := range entries {
			merged[k] = v
		}
		next = Dict(merged)
	default:
		return NewNotCollectionError(name)
	}

	s.value = next
	return e.save(ctx)
}

// RemoveFromSetting removes list elements or dict keys. Absent values are
// ignored. For lists the last occurrence of each value goes, so an add
// followed by the matching remove restores the previous list. The store is
// always written.
func (e *Engine) RemoveFromSetting(ctx context.Context, name string, values ...string) error {
	s, err := e.ResolveSetting(name)
	if err != nil {
		return err
	}

	switch s.Kind() {
	case KindList:
		list := s.value.List()
		for _, val := range values {
			if i := lastIndex(list, val); i >= 0 {
				list = slices.Delete(list, i, i+1)
			}
		}
		s.value = List(list...)
	case KindDict:
		d := s.value.Dict()
		for _, key := range values {
			delete(d, key)
		}
		s.value = Dict(d)
	default:
		return NewNotCollectionError(name)
	}

	return e.save(ctx)
}

func lastIndex(list []string, val string) int {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i] == val {
			return i
		}
	}
	return -1
}

func (e *Engine) lookupSetting(context, name string) *Setting {
	for _, s := range e.settings {
		if s.context == context && s.name == name {
			return s
		}
	}
	return nil
}

// hasSettingContext reports whether any setting is declared under context.
func (e *Engine) hasSettingContext(context string) bool {
	for _, s := range e.settings {
		if s.context == context {
			return true
		}
	}
	return false
}

// document serializes the whole registry for the store. A verbose mode forced
// for this invocation is written back with its previous value.
func (e *Engine) document() SettingsDocument {
	doc := make(SettingsDocument)
	for _, s := range e.settings {
		if doc[s.context] == nil {
			doc[s.context] = make(map[string]any)
		}
		v := s.value
		if s == e.verboseSetting() && e.verboseRestore != nil {
			v = *e.verboseRestore
		}
		doc[s.context][s.name] = v.Raw()
	}
	return doc
}

func (e *Engine) save(ctx context.Context) error {
	err := e.store.Save(ctx, e.document())
	e.recorder.RecordSettingsSaved(err)
	if err != nil {
		return NewPersistenceError("save", err)
	}
	e.log.Debug().Msg("Settings saved")
	return nil
}

// applyDocument overwrites registered defaults with persisted values.
// Unknown contexts are dropped with a warning; unknown settings inside a
// known context are fatal.
func (e *Engine) applyDocument(doc SettingsDocument) error {
	var unknownContexts, unknownSettings []string
	for context, values := range doc {
		if !e.hasSettingContext(context) {
			unknownContexts = append(unknownContexts, context)
			continue
		}
		for name := range values {
			if e.lookupSetting(context, name) == nil {
				unknownSettings = append(unknownSettings, QualifiedName(context, name))
			}
		}
	}

	if len(unknownContexts) > 0 {
		sort.Strings(unknownContexts)
		e.Warning("Unknown contexts found in settings file: " + strings.Join(unknownContexts, ", "))
	}
	if len(unknownSettings) > 0 {
		sort.Strings(unknownSettings)
		return NewUnknownSettingsError(unknownSettings)
	}

	for _, s := range e.settings {
		raw, ok := doc[s.context][s.name]
		if !ok {
			continue
		}
		v, err := ValueFromRaw(raw, s.Kind())
		if err != nil {
			return NewInvalidPersistedError(s.QualifiedName(), err)
		}
		s.value = v
	}
	return nil
}
