// Package remover deletes an installed copy of a component from the
// system-wide site root so a stale registry-distributed copy cannot
// shadow the local one.
package remover

import (
	"os"

	"github.com/arthur-debert/sitelink/pkg/errors"
	"github.com/arthur-debert/sitelink/pkg/logging"
	"github.com/arthur-debert/sitelink/pkg/paths"
	"github.com/arthur-debert/sitelink/pkg/types"
)

// Removed is the typed result of a successful removal stage
type Removed struct {
	// Component is the component whose copies were removed
	Component types.Component `json:"component" yaml:"component"`

	// SiteRoot is the install root that was cleared
	SiteRoot string `json:"siteRoot" yaml:"siteRoot"`

	// Paths lists the artifacts that were actually deleted; empty when
	// the site root was already clean
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`

	// DryRun records that no deletion was performed
	DryRun bool `json:"dryRun" yaml:"dryRun"`
}

// Remover deletes registry-installed copies and sitelink artifacts
type Remover struct {
	fs     types.FS
	paths  *paths.Paths
	dryRun bool
}

// New creates a Remover operating on the given filesystem and paths
func New(fsys types.FS, p *paths.Paths, dryRun bool) *Remover {
	return &Remover{fs: fsys, paths: p, dryRun: dryRun}
}

// Remove deletes the component's directory tree from the site root along
// with the sitelink link manifest and path entry file. It is idempotent:
// an already-absent installation is not an error. Permission problems and
// unexpected filesystem faults are fatal.
func (r *Remover) Remove(component types.Component) (Removed, error) {
	logger := logging.GetLogger("remover")

	if err := component.Validate(); err != nil {
		return Removed{}, err
	}

	result := Removed{
		Component: component,
		SiteRoot:  r.paths.SiteRoot(),
		DryRun:    r.dryRun,
	}

	targets := []string{
		r.paths.InstallPath(component.String()),
		r.paths.ManifestPath(component.String()),
		r.paths.PathFilePath(component.String()),
	}

	for _, target := range targets {
		if _, err := r.fs.Lstat(target); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Removed{}, errors.Wrapf(err, errors.ErrIOFault,
				"failed to inspect %s", target)
		}

		if r.dryRun {
			logger.Info().Str("target", target).Msg("Would delete")
			result.Paths = append(result.Paths, target)
			continue
		}

		if err := r.fs.RemoveAll(target); err != nil {
			if os.IsPermission(err) {
				return Removed{}, errors.Wrapf(err, errors.ErrPermission,
					"no permission to delete %s", target)
			}
			return Removed{}, errors.Wrapf(err, errors.ErrIOFault,
				"failed to delete %s", target)
		}

		logger.Debug().Str("target", target).Msg("Deleted")
		result.Paths = append(result.Paths, target)
	}

	logger.Info().
		Str("component", component.String()).
		Int("deleted", len(result.Paths)).
		Bool("dryRun", r.dryRun).
		Msg("Site root cleared")

	return result, nil
}
