package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/raywasm/internal/config"
	"git.home.luguber.info/inful/raywasm/internal/page"
)

// BuildService executes raywasm builds.
type BuildService interface {
	// Run executes validate → compile → transform for req.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	// Config is the resolved configuration for this build.
	Config *config.Config

	// Trigger names what started the build ("cli", "watch").
	Trigger string
}

// StageName identifies a pipeline stage.
type StageName string

const (
	StageValidate  StageName = "validate"
	StageCompile   StageName = "compile"
	StageTransform StageName = "transform"
)

// StageResult records the outcome of one stage.
type StageResult struct {
	Name     StageName
	Status   BuildStatus
	Duration time.Duration
	Err      error
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// RunID correlates the log lines of one build.
	RunID string

	// Status indicates overall build outcome.
	Status BuildStatus

	// Stages lists every stage that was reached, in order.
	Stages []StageResult

	// Artifact is the path of game.html.
	Artifact string

	// Resources is the number of packed asset files.
	Resources int

	// Page reports the HTML edits; nil when the transform stage did not run.
	Page *page.Result

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Stage returns the result for name, if that stage was reached.
func (r *BuildResult) Stage(name StageName) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

// BuildStatus represents the outcome of a build or stage.
type BuildStatus string

const (
	// BuildStatusSuccess indicates the work completed successfully.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusFailed indicates an error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusSkipped indicates the work was switched off (--nobuild, --noclean).
	BuildStatusSkipped BuildStatus = "skipped"

	// BuildStatusCancelled indicates the context was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusFailed ||
		s == BuildStatusSkipped || s == BuildStatusCancelled
}

// IsSuccess returns true if the work completed or was intentionally skipped.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusSkipped
}
