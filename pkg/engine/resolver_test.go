package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type named struct{ context, name string }

func (n named) Context() string { return n.context }
func (n named) Name() string    { return n.name }

func TestSplitName(t *testing.T) {
	tests := []struct {
		token   string
		context string
		name    string
	}{
		{token: "run", context: "", name: "run"},
		{token: "build.run", context: "build", name: "run"},
		{token: "a.b.c", context: "a", name: "b.c"},
		{token: ".run", context: "", name: "run"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			context, name := SplitName(tt.token)
			assert.Equal(t, tt.context, context)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestResolve_AmbiguousRegardlessOfOrder(t *testing.T) {
	build := named{"build", "run"}
	test := named{"test", "run"}

	for _, entries := range [][]named{{build, test}, {test, build}} {
		_, err := resolveOne(entries, "run", "verb")
		require.Error(t, err)
		assert.True(t, IsAmbiguous(err))
		assert.False(t, IsFatal(err))

		got, err := resolveOne(entries, "build.run", "verb")
		require.NoError(t, err)
		assert.Equal(t, build, got)

		got, err = resolveOne(entries, "test.run", "verb")
		require.NoError(t, err)
		assert.Equal(t, test, got)
	}
}

func TestResolve_Outcomes(t *testing.T) {
	entries := []named{{"build", "run"}, {"build", "clean"}, {"test", "run"}}

	tests := []struct {
		token   string
		matches int
	}{
		{token: "clean", matches: 1},
		{token: "build.clean", matches: 1},
		{token: "test.clean", matches: 0},
		{token: "deploy", matches: 0},
		{token: "run", matches: 2},
		{token: "build.run", matches: 1},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Len(t, resolve(entries, tt.token), tt.matches)
		})
	}
}

func TestResolve_Messages(t *testing.T) {
	entries := []named{{"build", "run"}, {"test", "run"}}

	_, err := resolveOne(entries, "run", "verb")
	assert.Equal(t, "Ambiguous verb found. Use one of following verbs: build.run, test.run", err.Error())

	_, err = resolveOne(entries, "deploy", "setting")
	assert.True(t, IsUnknown(err))
	assert.Equal(t, "Unknown setting deploy", err.Error())
}
