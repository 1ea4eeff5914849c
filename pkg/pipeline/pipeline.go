// Package pipeline chains the three stages that give a local source
// tree precedence over a registry copy: remove whatever the site root
// holds under the component's name, link the tree in, then verify that
// resolution now lands on the tree. Stages run in order and the first
// failure stops the run.
package pipeline

import (
	"context"

	"github.com/arthur-debert/sitelink/pkg/descriptor"
	"github.com/arthur-debert/sitelink/pkg/installer"
	"github.com/arthur-debert/sitelink/pkg/logging"
	"github.com/arthur-debert/sitelink/pkg/paths"
	"github.com/arthur-debert/sitelink/pkg/registry"
	"github.com/arthur-debert/sitelink/pkg/remover"
	"github.com/arthur-debert/sitelink/pkg/searchpath"
	"github.com/arthur-debert/sitelink/pkg/types"
	"github.com/arthur-debert/sitelink/pkg/verifier"
)

// State tracks how far a pipeline run got
type State string

const (
	// StateUnresolved is the starting state, nothing has happened yet
	StateUnresolved State = "unresolved"

	// StateRemoved means the site root holds no prior copy anymore
	StateRemoved State = "removed"

	// StateInstalled means the tree is linked into the site root
	StateInstalled State = "installed"

	// StateVerified means resolution lands on the linked tree
	StateVerified State = "verified"

	// StateFailed means a stage failed and later stages did not run
	StateFailed State = "failed"
)

// Result is the outcome of a pipeline run. Stage results are nil for
// stages that did not run.
type Result struct {
	// Component is the component the run operated on
	Component types.Component `json:"component" yaml:"component"`

	// Tree is the source tree given to the run
	Tree string `json:"tree" yaml:"tree"`

	// State is the state the run ended in
	State State `json:"state" yaml:"state"`

	// Removed is the removal stage's result
	Removed *remover.Removed `json:"removed,omitempty" yaml:"removed,omitempty"`

	// Installed is the install stage's result
	Installed *installer.Installed `json:"installed,omitempty" yaml:"installed,omitempty"`

	// Report is the verification stage's result
	Report *verifier.Report `json:"report,omitempty" yaml:"report,omitempty"`
}

// Pipeline runs the remove, install and verify stages for one tree
type Pipeline struct {
	fs       types.FS
	paths    *paths.Paths
	search   searchpath.SearchPath
	registry *registry.Client
	dryRun   bool
}

// New creates a pipeline
func New(fsys types.FS, p *paths.Paths, search searchpath.SearchPath, dryRun bool) *Pipeline {
	return &Pipeline{
		fs:     fsys,
		paths:  p,
		search: search,
		dryRun: dryRun,
	}
}

// WithRegistry attaches a registry index client for dependency
// diagnostics during the install stage
func (pl *Pipeline) WithRegistry(client *registry.Client) *Pipeline {
	pl.registry = client
	return pl
}

// Run takes a source tree through remove, install and verify. The
// returned Result always reflects how far the run got, including on
// error. In dry-run mode the verify stage is skipped since nothing was
// written to verify against.
func (pl *Pipeline) Run(ctx context.Context, tree string) (Result, error) {
	logger := logging.GetLogger("pipeline")
	defer logging.LogOperationStart(logger, "prepare")()

	result := Result{Tree: tree, State: StateUnresolved}

	desc, err := descriptor.Load(pl.fs, tree)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	result.Component = types.Component(descriptor.ImportName(desc.Name))

	logger.Info().
		Str("component", result.Component.String()).
		Str("tree", tree).
		Bool("dryRun", pl.dryRun).
		Msg("Starting override pipeline")

	rm := remover.New(pl.fs, pl.paths, pl.dryRun)
	removed, err := rm.Remove(result.Component)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	result.Removed = &removed
	result.State = StateRemoved

	inst := installer.New(pl.fs, pl.paths, pl.search, pl.dryRun)
	if pl.registry != nil {
		inst.WithRegistry(pl.registry)
	}
	installed, err := inst.Install(ctx, tree)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	result.Installed = &installed
	result.State = StateInstalled

	if pl.dryRun {
		logger.Info().Msg("Dry run, skipping verification")
		return result, nil
	}

	v := verifier.New(pl.fs, pl.paths, pl.search)
	report, err := v.Verify(result.Component, installed.ImplementationDir)
	result.Report = &report
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	result.State = StateVerified

	logger.Info().
		Str("component", result.Component.String()).
		Str("root", report.Resolution.Root).
		Msg("Override pipeline complete")

	return result, nil
}
