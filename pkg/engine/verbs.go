package engine

import (
	"context"
	"slices"
)

// Handler runs a verb. invoked is the verb token as typed by the user and
// args are the remaining arguments. The result is the process exit code.
type Handler func(ctx context.Context, e *Engine, invoked string, args []string) int

// Verb binds a (context, name) pair to a handler and its documentation.
type Verb struct {
	context string
	name    string
	handler Handler
	doc     Doc
}

// Context returns the defining context.
func (v *Verb) Context() string { return v.context }

// Name returns the verb name.
func (v *Verb) Name() string { return v.name }

// QualifiedName returns context.name.
func (v *Verb) QualifiedName() string { return QualifiedName(v.context, v.name) }

// Doc returns the parsed documentation.
func (v *Verb) Doc() Doc { return v.doc }

// RegisterVerb binds handler to (context, name). doc is the handler's
// documentation text in the summary / description / Options: / Examples:
// layout understood by ParseDoc.
func (e *Engine) RegisterVerb(context, name string, handler Handler, doc string) error {
	qualified := QualifiedName(context, name)
	if e.started {
		return NewSealedError("verb " + qualified)
	}
	if err := e.validate.Struct(registration{Context: context, Name: name}); err != nil {
		return NewInvalidRegistrationError("verb "+qualified, err)
	}
	if handler == nil {
		return NewInvalidRegistrationError("verb "+qualified, errNilHandler)
	}
	for _, v := range e.verbs {
		if v.context == context && v.name == name {
			return NewDuplicateVerbError(context, name)
		}
	}

	e.verbs = append(e.verbs, &Verb{
		context: context,
		name:    name,
		handler: handler,
		doc:     ParseDoc(doc),
	})
	e.log.Debug().Str("verb", qualified).Msg("Registered verb")
	return nil
}

// Verbs returns every registered verb in registration order.
func (e *Engine) Verbs() []*Verb {
	return slices.Clone(e.verbs)
}

// ResolveVerbs returns every verb matching a possibly qualified name.
func (e *Engine) ResolveVerbs(name string) []*Verb {
	return resolve(e.verbs, name)
}

// ResolveVerb finds the unique verb matching a possibly qualified name.
func (e *Engine) ResolveVerb(name string) (*Verb, error) {
	return resolveOne(e.verbs, name, "verb")
}
