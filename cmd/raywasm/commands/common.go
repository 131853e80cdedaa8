package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/raywasm/internal/config"
	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
	"git.home.luguber.info/inful/raywasm/internal/serve"
	"git.home.luguber.info/inful/raywasm/internal/version"
)

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `name:"config" help:"Configuration file path (default: ${config_file} when present)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"withargs" help:"Compile main.c with emscripten and clean up game.html (default)"`
	Watch WatchCmd `cmd:"" help:"Rebuild whenever a file in the input directory changes"`
	Serve ServeCmd `cmd:"" help:"Serve the output directory for local play testing"`
	Init  InitCmd  `cmd:"" help:"Write a starter configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if v := os.Getenv(config.EnvLogLevel); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			level = slog.LevelInfo
		}
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(g.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// BuildFlags are the options shared by build and watch.
type BuildFlags struct {
	Name      *string `short:"n" help:"Page title (default: ${default_name})"`
	Color     string  `short:"c" help:"Background color as 6 hex characters, without # (e.g. 1E1E2E)"`
	Input     string  `short:"i" help:"Directory containing main.c (default: current directory)" type:"path"`
	Output    string  `short:"o" help:"Directory receiving game.html (default: current directory)" type:"path"`
	NoBuild   bool    `name:"nobuild" help:"Skip the compiler and only clean up an existing game.html (alias -nb)"`
	NoClean   bool    `name:"noclean" help:"Compile only; leave game.html untouched (alias -nc)"`
	Mode      string  `short:"m" help:"Page cleanup mode: full or minimal (default: ${default_mode})"`
	Strict    bool    `help:"Fail when an expected element is missing from game.html"`
	Pack      bool    `short:"p" help:"Embed the resources directory into the build"`
	Resources string  `name:"resources" help:"Resource directory inside the input directory (default: ${default_resources})"`
	SDK       string  `name:"sdk" help:"raylib src directory (default: ${default_sdk}, env ${env_sdk})"`
	Compiler  string  `name:"compiler" help:"Emscripten compiler binary (default: ${default_compiler})"`
}

// Overrides converts the flags to configuration overrides.
func (f *BuildFlags) Overrides() config.Overrides {
	return config.Overrides{
		Name:         f.Name,
		Color:        f.Color,
		InputDir:     f.Input,
		OutputDir:    f.Output,
		Mode:         f.Mode,
		SDKRoot:      f.SDK,
		Compiler:     f.Compiler,
		ResourcesDir: f.Resources,
		NoBuild:      f.NoBuild,
		NoClean:      f.NoClean,
		Strict:       f.Strict,
		Pack:         f.Pack,
	}
}

// shortAliases are two-letter single-dash flags kong cannot express.
var shortAliases = map[string]string{
	"-nb": "--nobuild",
	"-nc": "--noclean",
}

// NormalizeArgs rewrites -nb and -nc to their long forms. Arguments after "--"
// are left alone.
func NormalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, a := range args {
		if a == "--" {
			return append(out, args[i:]...)
		}
		if long, ok := shortAliases[a]; ok {
			a = long
		}
		out = append(out, a)
	}
	return out
}

func vars() kong.Vars {
	return kong.Vars{
		"version":           version.String(),
		"config_file":       config.DefaultConfigFile,
		"default_name":      config.DefaultName,
		"default_mode":      config.DefaultPageMode,
		"default_resources": config.DefaultResourcesDir,
		"default_sdk":       config.DefaultSDKRoot,
		"default_compiler":  config.DefaultCompiler,
		"env_sdk":           config.EnvSDKRoot,
		"default_addr":      serve.DefaultAddr,
	}
}

// exitCode is raised through panic by kong's exit hook so that --help and
// --version return from Execute instead of terminating the process.
type exitCode int

// Execute parses args, runs the selected command and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) (code int) {
	g := &Global{Logger: slog.Default(), Stdout: stdout, Stderr: stderr}
	var cli CLI

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	parser, err := kong.New(&cli,
		kong.Name("raywasm"),
		kong.Description("Build raylib games for the web with emscripten."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.Bind(g),
		vars(),
	)
	if err != nil {
		return errors.NewCLIErrorAdapter(false, g.Logger).
			Handle(errors.WrapError(err, errors.CategoryInternal, "invalid command definition").Build(), stderr)
	}

	ctx, err := parser.Parse(NormalizeArgs(args))
	if err != nil {
		return errors.NewCLIErrorAdapter(cli.Verbose, g.Logger).
			Handle(errors.ValidationError(err.Error()).Build(), stderr)
	}

	if err := ctx.Run(&cli); err != nil {
		return errors.NewCLIErrorAdapter(cli.Verbose, g.Logger).Handle(err, stderr)
	}
	return errors.ExitOK
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// configPath returns the path init writes to.
func configPath(root *CLI) string {
	if strings.TrimSpace(root.Config) != "" {
		return root.Config
	}
	return config.DefaultConfigFile
}
