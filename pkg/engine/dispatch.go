package engine

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Exit codes returned by Process.
const (
	ExitOK      = 0
	ExitFailure = -1
)

// Process resolves args[0] as a verb and runs it with the remaining
// arguments. It returns the handler's exit code, or ExitFailure when the verb
// cannot be resolved.
func (e *Engine) Process(ctx context.Context, args []string) int {
	ctx, span := e.tracer.Start(ctx, "lets.dispatch")
	defer span.End()

	start := time.Now()
	verb, code := e.dispatch(ctx, args)

	name := ""
	if verb != nil {
		name = verb.QualifiedName()
		span.SetAttributes(
			attribute.String("lets.context", verb.context),
			attribute.String("lets.verb", verb.name),
		)
	}
	span.SetAttributes(attribute.Int("lets.exit_code", code))
	if code != ExitOK {
		span.SetStatus(codes.Error, "verb failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	e.recorder.RecordDispatch(name, code, time.Since(start))
	return code
}

func (e *Engine) dispatch(ctx context.Context, args []string) (*Verb, int) {
	if len(args) == 0 {
		e.runBuiltin(ctx, "help", nil)
		return nil, ExitFailure
	}

	verb, err := e.ResolveVerb(args[0])
	if err != nil {
		e.report(err)
		return nil, ExitFailure
	}
	qualified := verb.QualifiedName()
	rest := slices.Clone(args[1:])

	if verb.context != ReservedContext && verb.name != "get" && verb.name != "set" {
		var forced bool
		rest, forced = stripVerbose(rest)
		if forced {
			e.forceVerbose()
			e.Verbose("Verbose mode forced on for " + qualified)
		}
	}

	if slices.Contains(rest, "help") {
		return verb, e.runBuiltin(ctx, "help", []string{qualified})
	}

	trace.SpanFromContext(ctx).AddEvent("handler.invoke",
		trace.WithAttributes(attribute.Int("lets.args", len(rest))))
	return verb, verb.handler(ctx, e, args[0], rest)
}

// stripVerbose removes every bare or qualified verbose token.
func stripVerbose(args []string) ([]string, bool) {
	qualified := QualifiedName(ReservedContext, SettingVerbose)
	out := make([]string, 0, len(args))
	found := false
	for _, a := range args {
		if a == SettingVerbose || a == qualified {
			found = true
			continue
		}
		out = append(out, a)
	}
	return out, found
}

// runBuiltin invokes a built-in verb directly, bypassing resolution.
func (e *Engine) runBuiltin(ctx context.Context, name string, args []string) int {
	v := e.lookupVerb(ReservedContext, name)
	if v == nil {
		e.report(NewUnknownError("verb", QualifiedName(ReservedContext, name)))
		return ExitFailure
	}
	return v.handler(ctx, e, name, args)
}

func (e *Engine) lookupVerb(context, name string) *Verb {
	for _, v := range e.verbs {
		if v.context == context && v.name == name {
			return v
		}
	}
	return nil
}
