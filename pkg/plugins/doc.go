// Package plugins discovers and runs lets extensions written in Starlark.
//
// Every file named *.star in a plugin folder is an extension, unless its name
// starts with "_". The file name without the extension is the context its
// verbs and settings are registered under. The file must define init(lets):
//
//	def build(lets, verb, args):
//	    """Build the project.
//
//	    Examples:
//	    - lets build: build all targets
//	    """
//	    lets.info("Building " + lets.get("flavor"))
//	    return 0
//
//	def init(lets):
//	    lets.register_setting("flavor", "Build flavor",
//	        options = ["debug", "release"], default = "debug")
//	    lets.verb(build)
//
// A verb function receives the lets module, the verb token as typed and the
// remaining arguments. Its docstring becomes the verb's help. Returning None
// counts as success; an int is used as the exit code.
//
// lets.get is an exact lookup: a bare name is a setting of the plugin's own
// context, "ctx.name" one of another context, and a missing setting yields
// None. lets.lookup resolves names like the command line does and fails on
// unknown or ambiguous names.
package plugins
