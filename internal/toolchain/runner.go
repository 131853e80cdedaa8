package toolchain

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"git.home.luguber.info/inful/raywasm/internal/foundation/errors"
	"git.home.luguber.info/inful/raywasm/internal/logfields"
)

// Runner executes a Command to completion.
type Runner interface {
	Run(ctx context.Context, cmd *Command) error
}

// ExecRunner runs commands as child processes, streaming their output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	// LookPath resolves the program; exec.LookPath when nil.
	LookPath func(string) (string, error)
}

// NewExecRunner returns a runner wired to the process stdout and stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts cmd and waits for it. A missing binary, a non-zero exit status and
// cancellation of ctx are all reported as toolchain errors.
func (r *ExecRunner) Run(ctx context.Context, cmd *Command) error {
	lookPath := r.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	bin, err := lookPath(cmd.Path)
	if err != nil {
		return errors.WrapError(err, errors.CategoryToolchain, "compiler not found").
			WithContext("compiler", cmd.Path).
			Build()
	}

	c := exec.CommandContext(ctx, bin, cmd.Args()...)
	c.Dir = cmd.Dir
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	slog.Debug("Running toolchain", logfields.Command(cmd.String()))
	start := time.Now()
	err = c.Run()
	elapsed := float64(time.Since(start).Milliseconds())

	if err == nil {
		slog.Debug("Toolchain finished", logfields.DurationMS(elapsed))
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.WrapError(ctxErr, errors.CategoryToolchain, "compiler interrupted").
			WithContext("compiler", cmd.Path).
			Build()
	}
	b := errors.WrapError(err, errors.CategoryToolchain, "compiler failed").
		WithContext("compiler", cmd.Path)
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		b = b.WithContext("exit_code", exitErr.ExitCode())
	}
	return b.Build()
}
