package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of an engine error.
type ErrorClass string

const (
	// ErrorClassDuplicate indicates a verb or setting registered twice.
	// Fatal, raised during startup only.
	ErrorClassDuplicate ErrorClass = "duplicate_registration"

	// ErrorClassInvalidRegistration indicates a registration with a malformed
	// identity (empty names, names containing the separator).
	ErrorClassInvalidRegistration ErrorClass = "invalid_registration"

	// ErrorClassSealed indicates a registration attempted after startup.
	ErrorClassSealed ErrorClass = "registry_sealed"

	// ErrorClassAmbiguous indicates a name resolving to more than one entry.
	ErrorClassAmbiguous ErrorClass = "ambiguous_name"

	// ErrorClassUnknown indicates a name resolving to no entry.
	ErrorClassUnknown ErrorClass = "unknown_name"

	// ErrorClassInvalidOption indicates a value outside the declared options.
	ErrorClassInvalidOption ErrorClass = "invalid_option"

	// ErrorClassMalformedEntry indicates dictionary entries lacking the
	// key:value separator.
	ErrorClassMalformedEntry ErrorClass = "malformed_entry"

	// ErrorClassUnsupported indicates a collection operation on a scalar
	// setting, or a value of the wrong kind.
	ErrorClassUnsupported ErrorClass = "unsupported_operation"

	// ErrorClassUnknownSetting indicates a persisted store naming settings
	// that a known context never declared.
	ErrorClassUnknownSetting ErrorClass = "unknown_setting_in_known_context"

	// ErrorClassInvalidPersisted indicates a persisted value whose shape does
	// not match the declared kind.
	ErrorClassInvalidPersisted ErrorClass = "invalid_persisted_value"

	// ErrorClassPersistence indicates the settings store failed to load or save.
	ErrorClassPersistence ErrorClass = "persistence"
)

// Error is a classified engine error.
type Error struct {
	// Class is the error classification.
	Class ErrorClass

	// Message is the human-readable error message.
	Message string

	// Subject is the name (verb, setting, context) the error is about.
	Subject string

	// Entries lists candidates for ambiguous names or offending entries for
	// malformed input.
	Entries []string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if len(e.Entries) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Entries, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same class.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// Fatal reports whether the error must abort startup rather than just the
// current operation.
func (e *Error) Fatal() bool {
	switch e.Class {
	case ErrorClassDuplicate, ErrorClassInvalidRegistration, ErrorClassSealed,
		ErrorClassUnknownSetting, ErrorClassInvalidPersisted:
		return true
	}
	return false
}

// NewDuplicateVerbError reports a (context, verb) pair registered twice.
func NewDuplicateVerbError(context, verb string) *Error {
	return &Error{
		Class:   ErrorClassDuplicate,
		Message: fmt.Sprintf("Verb %s.%s already exists", context, verb),
		Subject: context + Separator + verb,
	}
}

// NewDuplicateSettingError reports a (context, setting) pair registered twice.
func NewDuplicateSettingError(context, setting string) *Error {
	return &Error{
		Class:   ErrorClassDuplicate,
		Message: fmt.Sprintf("Setting %s.%s already exists", context, setting),
		Subject: context + Separator + setting,
	}
}

// NewInvalidRegistrationError reports a registration rejected by validation.
func NewInvalidRegistrationError(subject string, err error) *Error {
	return &Error{
		Class:   ErrorClassInvalidRegistration,
		Message: fmt.Sprintf("Invalid registration %s", subject),
		Subject: subject,
		Err:     err,
	}
}

// NewSealedError reports a registration attempted once dispatch may begin.
func NewSealedError(subject string) *Error {
	return &Error{
		Class:   ErrorClassSealed,
		Message: fmt.Sprintf("Cannot register %s after startup", subject),
		Subject: subject,
	}
}

// NewAmbiguousError reports a name matching several entries of the given kind
// ("verb" or "setting").
func NewAmbiguousError(kind, name string, candidates []string) *Error {
	return &Error{
		Class:   ErrorClassAmbiguous,
		Message: fmt.Sprintf("Ambiguous %s found. Use one of following %ss", kind, kind),
		Subject: name,
		Entries: candidates,
	}
}

// NewUnknownError reports a name matching nothing.
func NewUnknownError(kind, name string) *Error {
	return &Error{
		Class:   ErrorClassUnknown,
		Message: fmt.Sprintf("Unknown %s %s", kind, name),
		Subject: name,
	}
}

// NewInvalidOptionError reports a value that is not one of the setting's options.
func NewInvalidOptionError(value string, options []string) *Error {
	return &Error{
		Class:   ErrorClassInvalidOption,
		Message: fmt.Sprintf("Unsupported value %s. Choose between %s", value, strings.Join(options, ", ")),
		Subject: value,
	}
}

// NewMalformedEntryError reports every dictionary entry lacking a key:value form.
func NewMalformedEntryError(entries []string) *Error {
	return &Error{
		Class: ErrorClassMalformedEntry,
		Message: fmt.Sprintf("Invalid values found for dictionary setting: %s. "+
			"Values must be in the form of key:value", strings.Join(entries, ", ")),
		Subject: strings.Join(entries, ", "),
	}
}

// NewNotCollectionError reports add/remove applied to a scalar setting.
func NewNotCollectionError(name string) *Error {
	return &Error{
		Class:   ErrorClassUnsupported,
		Message: fmt.Sprintf("Setting %s not a list or dict", name),
		Subject: name,
	}
}

// NewKindMismatchError reports a value whose kind differs from the setting's.
func NewKindMismatchError(name string, want, got Kind) *Error {
	return &Error{
		Class:   ErrorClassUnsupported,
		Message: fmt.Sprintf("Setting %s expects a %s value, got %s", name, want, got),
		Subject: name,
	}
}

// NewSingleValueError reports several values given for a scalar setting.
func NewSingleValueError(name string) *Error {
	return &Error{
		Class:   ErrorClassUnsupported,
		Message: fmt.Sprintf("Setting %s takes a single value", name),
		Subject: name,
	}
}

// NewUnknownSettingsError reports persisted settings no known context declared.
func NewUnknownSettingsError(names []string) *Error {
	return &Error{
		Class:   ErrorClassUnknownSetting,
		Message: "Unknown settings found in settings file",
		Entries: names,
	}
}

// NewInvalidPersistedError reports a persisted value of the wrong shape.
func NewInvalidPersistedError(name string, err error) *Error {
	return &Error{
		Class:   ErrorClassInvalidPersisted,
		Message: fmt.Sprintf("Invalid value for %s in settings file", name),
		Subject: name,
		Err:     err,
	}
}

// NewPersistenceError wraps a store failure.
func NewPersistenceError(op string, err error) *Error {
	return &Error{
		Class:   ErrorClassPersistence,
		Message: fmt.Sprintf("Failed to %s settings", op),
		Err:     err,
	}
}

func hasClass(err error, class ErrorClass) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == class
	}
	return false
}

// IsDuplicate returns true if the error reports a duplicate registration.
func IsDuplicate(err error) bool { return hasClass(err, ErrorClassDuplicate) }

// IsAmbiguous returns true if the error reports an ambiguous name.
func IsAmbiguous(err error) bool { return hasClass(err, ErrorClassAmbiguous) }

// IsUnknown returns true if the error reports an unknown name.
func IsUnknown(err error) bool { return hasClass(err, ErrorClassUnknown) }

// IsInvalidOption returns true if the error reports a value outside the options.
func IsInvalidOption(err error) bool { return hasClass(err, ErrorClassInvalidOption) }

// IsMalformedEntry returns true if the error reports malformed key:value entries.
func IsMalformedEntry(err error) bool { return hasClass(err, ErrorClassMalformedEntry) }

// IsUnsupported returns true if the error reports an unsupported operation.
func IsUnsupported(err error) bool { return hasClass(err, ErrorClassUnsupported) }

// IsUnknownSetting returns true if the error reports unknown persisted settings.
func IsUnknownSetting(err error) bool { return hasClass(err, ErrorClassUnknownSetting) }

// IsFatal returns true if the error must abort startup.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Fatal()
	}
	return false
}
