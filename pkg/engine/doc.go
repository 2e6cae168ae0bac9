// Package engine provides the verb and setting registries behind the lets
// command-line tool.
//
// # Overview
//
// lets takes a verb and options from the command line and runs the callback
// an extension registered for that verb. Extensions also declare settings:
// typed values that persist between invocations so that semi static options
// can be left off the command line.
//
// An invocation runs in two phases:
//
//  1. Start - read the settings store, initialize every extension, register
//     the built-in verbs and apply the persisted values
//  2. Process - resolve the first argument to a verb and run its handler
//
// After Start the registries are sealed.
//
// # Names
//
// Verbs and settings are addressed as [CONTEXT].[NAME]. The context may be
// omitted as long as the name is unique:
//
//	e.ResolveVerb("build")       // any context
//	e.ResolveVerb("cmake.build") // cmake only
//
// A name matching several entries is ambiguous and never guessed.
//
// # Settings
//
// A setting is a scalar, a list or a dictionary, fixed by its default value:
//
//	e.RegisterSetting("cmake", "flavor", "Build flavor",
//		[]string{"debug", "release"}, engine.Scalar("debug"))
//
// Setting names starting with "_" are protected: they are left out of
// listings but can still be read and written by name.
//
// The reserved context "lets" holds the built-in verbs (help, get, set, add
// and remove) and the settings verbose and plugin_folders.
//
// # Errors
//
// Failures are reported as *Error values carrying an ErrorClass. Fatal
// classes abort startup; the others abort only the current operation.
//
//	if engine.IsAmbiguous(err) {
//	    // ask the user to qualify the name
//	}
package engine
