package plugins

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lonesomebyte537/lets/pkg/engine"
	"github.com/lonesomebyte537/lets/pkg/stores"
)

const cmakePlugin = `
def build(lets, verb, args):
    """Build the project.

    Runs the configured generator.

    Options:
    - clean: remove the build folder first

    Examples:
    - lets build app: build the app target
    """
    lets.info("%s %s with %s" % (verb, " ".join(args), lets.get("flavor")))
    return 0

def fail(lets, verb, args):
    """Always fails."""
    return 4

def configure(lets, verb, args):
    lets.set("flavor", args[0])

def crash(lets, verb, args):
    return 1 // 0

def init(lets):
    lets.register_setting("flavor", "Build flavor", options = ["debug", "release"], default = "debug")
    lets.register_setting("targets", "Default targets", default = ["app"])
    lets.register_setting("env", "Build environment", default = {"CC": "gcc"})
    lets.verb(build)
    lets.verb(build, name = "make")
    lets.verb(fail)
    lets.verb(configure)
    lets.verb(crash)
`

type pluginEnv struct {
	engine *engine.Engine
	store  *stores.MemoryStore
	out    *bytes.Buffer
	logs   *bytes.Buffer
}

func startPlugins(t *testing.T, scripts ...*Script) *pluginEnv {
	t.Helper()
	env, err := newPluginEnv(scripts...)
	require.NoError(t, err)
	return env
}

func newPluginEnv(scripts ...*Script) (*pluginEnv, error) {
	env := &pluginEnv{
		store: stores.NewMemoryStore(nil),
		out:   &bytes.Buffer{},
		logs:  &bytes.Buffer{},
	}
	exts := make([]engine.Extension, len(scripts))
	for i, s := range scripts {
		exts[i] = s
	}
	logger := zerolog.New(env.logs)
	e, err := engine.New(engine.Options{
		Store:      env.store,
		Extensions: exts,
		Out:        env.out,
		Logger:     &logger,
	})
	if err != nil {
		return nil, err
	}
	env.engine = e
	return env, e.Start(context.Background())
}

func TestScript_RegistersUnderFileName(t *testing.T) {
	env := startPlugins(t, NewScriptSource("/plugins/cmake.star", []byte(cmakePlugin)))

	v, err := env.engine.ResolveVerb("build")
	require.NoError(t, err)
	assert.Equal(t, "cmake.build", v.QualifiedName())
	assert.Equal(t, "Build the project.", v.Doc().Summary)
	assert.Equal(t, "Runs the configured generator.", v.Doc().Description)
	assert.Equal(t, []string{"- clean: remove the build folder first"}, v.Doc().Options)
	assert.Equal(t, []string{"- lets build app: build the app target"}, v.Doc().Examples)

	alias, err := env.engine.ResolveVerb("make")
	require.NoError(t, err)
	assert.Equal(t, "cmake.make", alias.QualifiedName())

	flavor, ok := env.engine.Setting("cmake", "flavor")
	require.True(t, ok)
	assert.Equal(t, "debug", flavor.Scalar())

	targets, _ := env.engine.Setting("cmake", "targets")
	assert.Equal(t, engine.KindList, targets.Kind())
	buildEnv, _ := env.engine.Setting("cmake", "env")
	assert.Equal(t, map[string]string{"CC": "gcc"}, buildEnv.Dict())
}

func TestScript_Handlers(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		code    int
		out     string
		logPart string
	}{
		{name: "success", args: []string{"build", "app", "lib"}, code: 0, out: "build app lib with debug\n"},
		{name: "invoked as typed", args: []string{"cmake.make", "docs"}, code: 0, out: "cmake.make docs with debug\n"},
		{name: "exit code", args: []string{"fail"}, code: 4},
		{name: "starlark error", args: []string{"crash"}, code: engine.ExitFailure, logPart: "floored division by zero"},
		{name: "engine error", args: []string{"configure", "profile"}, code: engine.ExitFailure, logPart: "Unsupported value profile. Choose between debug, release"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := startPlugins(t, NewScriptSource("cmake.star", []byte(cmakePlugin)))
			code := env.engine.Process(context.Background(), tt.args)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.out, env.out.String())
			if tt.logPart != "" {
				assert.Contains(t, env.logs.String(), tt.logPart)
			}
		})
	}
}

func TestScript_SetPersists(t *testing.T) {
	env := startPlugins(t, NewScriptSource("cmake.star", []byte(cmakePlugin)))

	assert.Equal(t, engine.ExitOK, env.engine.Process(context.Background(), []string{"configure", "release"}))
	doc, err := env.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "release", doc["cmake"]["flavor"])
}

func TestScript_InitFailures(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, err error)
		ok    bool
	}{
		{
			name: "missing init",
			src:  "x = 1\n",
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "does not define init(lets)")
			},
		},
		{
			name: "syntax error",
			src:  "def init(lets)\n",
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "failed to execute plugin")
			},
		},
		{
			name: "duplicate verb",
			src: `
def run(lets, verb, args):
    pass

def init(lets):
    lets.verb(run)
    lets.verb(run)
`,
			check: func(t *testing.T, err error) {
				assert.True(t, engine.IsDuplicate(err))
				assert.True(t, engine.IsFatal(err))
			},
		},
		{
			name: "claims builtin",
			src: `
def help(lets, verb, args):
    pass

def init(lets):
    lets.verb(help)
`,
			check: func(t *testing.T, err error) {
				// Registered as plugin.help, the built-in lets.help is untouched.
				assert.NoError(t, err)
			},
			ok: true,
		},
		{
			name: "default outside options",
			src: `
def init(lets):
    lets.register_setting("mode", options = ["a", "b"], default = "c")
`,
			check: func(t *testing.T, err error) {
				assert.True(t, engine.IsInvalidOption(err))
			},
		},
		{
			name: "nested default",
			src: `
def init(lets):
    lets.register_setting("mode", default = [["a"]])
`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "want a string")
			},
		},
		{
			name: "load statement",
			src:  "load(\"other.star\", \"x\")\ndef init(lets):\n    pass\n",
			check: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newPluginEnv(NewScriptSource("plugin.star", []byte(tt.src)))
			if !tt.ok {
				require.Error(t, err)
			}
			tt.check(t, err)
		})
	}
}

func TestScript_CancelledContext(t *testing.T) {
	env := startPlugins(t, NewScriptSource("spin.star", []byte(`
def spin(lets, verb, args):
    for i in range(100000000):
        pass

def init(lets):
    lets.verb(spin)
`)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, engine.ExitFailure, env.engine.Process(ctx, []string{"spin"}))
	assert.Contains(t, env.logs.String(), "context canceled")
}

func TestScript_FromFolder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cmake.star", cmakePlugin)

	var out bytes.Buffer
	logger := zerolog.Nop()
	e, err := engine.New(engine.Options{
		Loader:        NewLoader(&logger),
		PluginFolders: []string{dir},
		Out:           &out,
		Logger:        &logger,
	})
	require.NoError(t, err)
	require.NoError(t, e.Start(context.Background()))

	assert.Equal(t, engine.ExitOK, e.Process(context.Background(), []string{"build", "all"}))
	assert.Equal(t, "build all with debug\n", out.String())
}

const flavorPlugin = `
def init(lets):
    lets.register_setting("flavor", "Build flavor", default = "debug")
`

const toolsPlugin = `
def show(lets, verb, args):
    for name in args:
        lets.info("%s=%s" % (name, lets.get(name)))

def which(lets, verb, args):
    lets.info(lets.lookup(args[0]))

def init(lets):
    if lets.get("missing_setting") != None:
        fail("missing setting should be None")
    if lets.get("flavor") != None:
        fail("flavor of another context should need its context")
    if lets.get("a.flavor") != "debug":
        fail("qualified lookup failed")
    lets.verb(show)
    lets.verb(which)
`

func TestScript_GetIsExact(t *testing.T) {
	env := startPlugins(t,
		NewScriptSource("a.star", []byte(flavorPlugin)),
		NewScriptSource("c.star", []byte(flavorPlugin)),
		NewScriptSource("tools.star", []byte(toolsPlugin)),
	)

	code := env.engine.Process(context.Background(), []string{"show", "a.flavor", "flavor", "missing_setting", "nosuch.flavor"})
	assert.Equal(t, engine.ExitOK, code)
	assert.Equal(t, "a.flavor=debug\nflavor=None\nmissing_setting=None\nnosuch.flavor=None\n", env.out.String())
}

func TestScript_Lookup(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		code    int
		out     string
		logPart string
	}{
		{name: "qualified", arg: "c.flavor", code: engine.ExitOK, out: "debug\n"},
		{name: "ambiguous", arg: "flavor", code: engine.ExitFailure, logPart: "a.flavor, c.flavor"},
		{name: "unknown", arg: "missing_setting", code: engine.ExitFailure, logPart: "missing_setting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := startPlugins(t,
				NewScriptSource("a.star", []byte(flavorPlugin)),
				NewScriptSource("c.star", []byte(flavorPlugin)),
				NewScriptSource("tools.star", []byte(toolsPlugin)),
			)
			assert.Equal(t, tt.code, env.engine.Process(context.Background(), []string{"which", tt.arg}))
			assert.Equal(t, tt.out, env.out.String())
			if tt.logPart != "" {
				assert.Contains(t, env.logs.String(), tt.logPart)
			}
		})
	}
}
