package toolchain

import (
	"path"
	"strconv"
	"strings"
)

// Command is an external program invocation as an ordered list of tokens.
type Command struct {
	Path string
	Dir  string
	args []string
}

// NewCommandLine creates a Command for program with no arguments.
func NewCommandLine(program string) *Command {
	return &Command{Path: program}
}

// Arg appends tokens verbatim.
func (c *Command) Arg(tokens ...string) *Command {
	c.args = append(c.args, tokens...)
	return c
}

// Setting appends an emscripten "-s KEY=VALUE" pair.
func (c *Command) Setting(key, value string) *Command {
	return c.Arg("-s", key+"="+value)
}

// Args returns a copy of the argument tokens, excluding the program.
func (c *Command) Args() []string {
	out := make([]string, len(c.args))
	copy(out, c.args)
	return out
}

// String renders the command for logs, quoting tokens that need it.
func (c *Command) String() string {
	parts := make([]string, 0, len(c.args)+1)
	parts = append(parts, quote(c.Path))
	for _, a := range c.args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"'\\$`") {
		return strconv.Quote(s)
	}
	return s
}

// Options describes one emcc build.
type Options struct {
	Compiler    string
	SDKRoot     string // raylib src directory
	Source      string // main.c
	Output      string // game.html
	MemoryBytes int64
	Resources   []Resource
	ExtraArgs   []string
}

// exportedFunctions are kept alive for JavaScript callers.
const exportedFunctions = `["_free","_malloc","_main"]`

// NewCommand builds the emcc invocation for opts.
func NewCommand(opts Options) *Command {
	sdk := strings.TrimRight(opts.SDKRoot, `/\`)
	cmd := NewCommandLine(opts.Compiler).
		Arg("-o", opts.Output, opts.Source).
		Arg("-Wall", "-std=c99", "-D_DEFAULT_SOURCE", "-Wno-missing-braces", "-Wunused-result", "-Os").
		Arg("-I.", "-I", sdk, "-I", path.Join(sdk, "external")).
		Arg("-L.", "-L", sdk).
		Setting("USE_GLFW", "3").
		Arg("-s", "ASYNCIFY").
		Setting("TOTAL_MEMORY", strconv.FormatInt(opts.MemoryBytes, 10)).
		Setting("FORCE_FILESYSTEM", "1").
		Arg("--shell-file", path.Join(sdk, "shell.html")).
		Arg(path.Join(sdk, "web", "libraylib.a")).
		Arg("-DPLATFORM_WEB").
		Setting("EXPORTED_FUNCTIONS", exportedFunctions).
		Setting("EXPORTED_RUNTIME_METHODS", "ccall")

	for _, r := range opts.Resources {
		cmd.Arg(EmbedFlag, r.Arg())
	}
	cmd.Arg(opts.ExtraArgs...)
	return cmd
}
