package engine

import (
	"context"
	"fmt"
)

const getDoc = `Print the value of the given settings. If no settings are given, all settings are printed.

A context name prints every setting of that context.

Examples:
- lets get: print all settings
- lets get verbose: print the verbose setting
- lets get lets: print all settings of the lets context`

const setDoc = `Assign the value to the given setting.

List settings take all given values, dictionary settings take values in the
form of key:value. The settings file is only written when the value changes.

Examples:
- lets set verbose on: turn verbose mode permanently on
- lets set plugin_folders /opt/plugins ~/plugins: replace the plugin folders`

const addDoc = `Add values to a setting of type list or dict.

Examples:
- lets add plugin_folders ~/plugins: search ~/plugins for plugins as well`

const removeDoc = `Remove values from a setting of type list or dict.

Dictionary entries are removed by key. Values that are not present are ignored.

Examples:
- lets remove plugin_folders ~/plugins: stop searching ~/plugins for plugins`

// registerBuiltins registers the framework verbs. It runs after every
// extension so the duplicate check also covers extensions registering into
// the reserved context.
func (e *Engine) registerBuiltins() error {
	builtins := []struct {
		name    string
		handler Handler
		doc     string
	}{
		{"help", helpVerb, helpDoc},
		{"get", getVerb, getDoc},
		{"set", setVerb, setDoc},
		{"add", addVerb, addDoc},
		{"remove", removeVerb, removeDoc},
	}
	for _, b := range builtins {
		if err := e.RegisterVerb(ReservedContext, b.name, b.handler, b.doc); err != nil {
			return err
		}
	}
	return nil
}

func getVerb(_ context.Context, e *Engine, _ string, args []string) int {
	var selected []*Setting
	if len(args) == 0 {
		selected = e.VisibleSettings()
	}
	for _, arg := range args {
		if e.hasSettingContext(arg) {
			for _, s := range e.VisibleSettings() {
				if s.context == arg {
					selected = append(selected, s)
				}
			}
			continue
		}
		s, err := e.ResolveSetting(arg)
		if err != nil {
			e.report(err)
			return ExitFailure
		}
		selected = append(selected, s)
	}

	seen := make(map[*Setting]bool, len(selected))
	width := 0
	var unique []*Setting
	for _, s := range selected {
		if seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
		width = max(width, len(s.QualifiedName()))
	}
	for _, s := range unique {
		e.out.Print(fmt.Sprintf("%*s: %s", width, s.QualifiedName(), s.value.String()), 0)
	}
	return ExitOK
}

func setVerb(ctx context.Context, e *Engine, _ string, args []string) int {
	if len(args) < 2 {
		e.Warning("Usage: set [setting] [value1] [value2]")
		return ExitFailure
	}
	if err := e.SetSettingArgs(ctx, args[0], args[1:]); err != nil {
		e.report(err)
		return ExitFailure
	}
	e.Verbose("Setting " + args[0] + " updated")
	return ExitOK
}

func addVerb(ctx context.Context, e *Engine, _ string, args []string) int {
	if len(args) < 2 {
		e.Warning("Usage: add [setting] [value1] [value2]")
		return ExitFailure
	}
	if err := e.AddToSetting(ctx, args[0], args[1:]...); err != nil {
		e.report(err)
		return ExitFailure
	}
	return ExitOK
}

func removeVerb(ctx context.Context, e *Engine, _ string, args []string) int {
	if len(args) < 2 {
		e.Warning("Usage: remove [setting] [value1] [value2]")
		return ExitFailure
	}
	if err := e.RemoveFromSetting(ctx, args[0], args[1:]...); err != nil {
		e.report(err)
		return ExitFailure
	}
	return ExitOK
}
