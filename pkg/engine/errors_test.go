package engine

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Classification(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name  string
		err   *Error
		class ErrorClass
		fatal bool
		msg   string
	}{
		{
			name:  "duplicate verb",
			err:   NewDuplicateVerbError("build", "run"),
			class: ErrorClassDuplicate,
			fatal: true,
			msg:   "Verb build.run already exists",
		},
		{
			name:  "ambiguous",
			err:   NewAmbiguousError("setting", "flavor", []string{"a.flavor", "b.flavor"}),
			class: ErrorClassAmbiguous,
			msg:   "Ambiguous setting found. Use one of following settings: a.flavor, b.flavor",
		},
		{
			name:  "unknown",
			err:   NewUnknownError("verb", "deploy"),
			class: ErrorClassUnknown,
			msg:   "Unknown verb deploy",
		},
		{
			name:  "unknown settings",
			err:   NewUnknownSettingsError([]string{"lets.a", "lets.b"}),
			class: ErrorClassUnknownSetting,
			fatal: true,
			msg:   "Unknown settings found in settings file: lets.a, lets.b",
		},
		{
			name:  "invalid persisted",
			err:   NewInvalidPersistedError("lets.verbose", cause),
			class: ErrorClassInvalidPersisted,
			fatal: true,
			msg:   "Invalid value for lets.verbose in settings file: boom",
		},
		{
			name:  "persistence",
			err:   NewPersistenceError("save", cause),
			class: ErrorClassPersistence,
			msg:   "Failed to save settings: boom",
		},
		{
			name:  "single value",
			err:   NewSingleValueError("lets.verbose"),
			class: ErrorClassUnsupported,
			msg:   "Setting lets.verbose takes a single value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Class != tt.class {
				t.Errorf("Expected class %s, got %s", tt.class, tt.err.Class)
			}
			if tt.err.Fatal() != tt.fatal {
				t.Errorf("Expected fatal %v, got %v", tt.fatal, tt.err.Fatal())
			}
			if tt.err.Error() != tt.msg {
				t.Errorf("Expected message %q, got %q", tt.msg, tt.err.Error())
			}

			wrapped := fmt.Errorf("while starting: %w", tt.err)
			if !errors.Is(wrapped, &Error{Class: tt.class}) {
				t.Error("Expected wrapped error to match its class")
			}
			if IsFatal(wrapped) != tt.fatal {
				t.Errorf("Expected IsFatal %v through wrapping", tt.fatal)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewPersistenceError("load", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected error chain to contain the cause")
	}
	if errors.Is(err, &Error{Class: ErrorClassDuplicate}) {
		t.Error("Expected class mismatch")
	}
	if IsAmbiguous(cause) {
		t.Error("Expected plain errors to have no class")
	}
}
