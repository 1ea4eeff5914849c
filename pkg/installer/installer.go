// Package installer performs link-mode installs of local source trees
// into the site root. An install is three artifacts: a symlink from the
// site root to the tree's implementation directory, a .pth file naming
// the tree for processes that scan path files, and a manifest recording
// what was installed and from where. All validation runs before any
// artifact is written, so a failed install leaves the site root as it
// was.
package installer

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/sitelink/pkg/descriptor"
	"github.com/arthur-debert/sitelink/pkg/errors"
	"github.com/arthur-debert/sitelink/pkg/logging"
	"github.com/arthur-debert/sitelink/pkg/paths"
	"github.com/arthur-debert/sitelink/pkg/registry"
	"github.com/arthur-debert/sitelink/pkg/searchpath"
	"github.com/arthur-debert/sitelink/pkg/synthfs"
	"github.com/arthur-debert/sitelink/pkg/types"
)

// Installed describes a completed (or simulated) install
type Installed struct {
	// Component is the installed component's name
	Component types.Component `json:"component" yaml:"component"`

	// Tree is the local source tree the install points at
	Tree string `json:"tree" yaml:"tree"`

	// ImplementationDir is the physical directory the install symlink
	// resolves to
	ImplementationDir string `json:"implementationDir" yaml:"implementationDir"`

	// InstallPath is the symlink created in the site root
	InstallPath string `json:"installPath" yaml:"installPath"`

	// ManifestPath is the install manifest written next to the symlink
	ManifestPath string `json:"manifestPath" yaml:"manifestPath"`

	// PathFilePath is the .pth file naming the tree
	PathFilePath string `json:"pathFilePath" yaml:"pathFilePath"`

	// Version is the version declared by the tree's descriptor
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// DryRun is true when nothing was actually written
	DryRun bool `json:"dryRun" yaml:"dryRun"`
}

// Installer builds and executes link-mode installs
type Installer struct {
	fs       types.FS
	paths    *paths.Paths
	search   searchpath.SearchPath
	registry *registry.Client
	dryRun   bool
	force    bool
}

// New creates an installer. The search path is used to resolve the
// declared dependencies of the tree being installed.
func New(fsys types.FS, p *paths.Paths, search searchpath.SearchPath, dryRun bool) *Installer {
	return &Installer{
		fs:     fsys,
		paths:  p,
		search: search,
		dryRun: dryRun,
		force:  true,
	}
}

// WithRegistry attaches a registry index client. When set, unresolved
// dependencies are looked up upstream so the error can say whether the
// package exists at all.
func (i *Installer) WithRegistry(client *registry.Client) *Installer {
	i.registry = client
	return i
}

// Install links the given source tree into the site root. The tree must
// carry a valid build descriptor; its declared dependencies must
// resolve on the search path before anything is written.
func (i *Installer) Install(ctx context.Context, tree string) (Installed, error) {
	logger := logging.GetLogger("installer")

	tree, err := paths.NormalizePath(tree)
	if err != nil {
		return Installed{}, err
	}

	desc, err := descriptor.Load(i.fs, tree)
	if err != nil {
		return Installed{}, err
	}

	component := types.Component(descriptor.ImportName(desc.Name))
	if err := component.Validate(); err != nil {
		return Installed{}, errors.Wrapf(err, errors.ErrDescriptorInvalid,
			"descriptor of %s declares an unusable project name %q", tree, desc.Name)
	}

	implDir := filepath.Join(desc.ImplementationDir(tree), component.String())
	if info, err := i.fs.Stat(implDir); err != nil || !info.IsDir() {
		return Installed{}, errors.Newf(errors.ErrDescriptorInvalid,
			"tree %s has no implementation directory at %s", tree, implDir).
			WithDetail("component", component.String())
	}

	if err := i.resolveDependencies(ctx, desc); err != nil {
		return Installed{}, err
	}

	result := Installed{
		Component:         component,
		Tree:              tree,
		ImplementationDir: implDir,
		InstallPath:       i.paths.InstallPath(component.String()),
		ManifestPath:      i.paths.ManifestPath(component.String()),
		PathFilePath:      i.paths.PathFilePath(component.String()),
		Version:           desc.Version,
		DryRun:            i.dryRun,
	}

	ops, err := i.buildOperations(desc, result)
	if err != nil {
		return Installed{}, err
	}

	executor := synthfs.NewExecutor(i.dryRun, i.paths).EnableForce(i.force)
	if err := executor.ExecuteOperations(ops); err != nil {
		return Installed{}, err
	}

	logger.Info().
		Str("component", component.String()).
		Str("tree", tree).
		Bool("dryRun", i.dryRun).
		Msg("Component installed in link mode")

	return result, nil
}

// buildOperations produces the install's filesystem effects in order:
// the install symlink, the path file, then the manifest.
func (i *Installer) buildOperations(desc *descriptor.Descriptor, result Installed) ([]types.Operation, error) {
	manifest := &Manifest{
		Component:   result.Component.String(),
		Tree:        result.Tree,
		Version:     result.Version,
		Kind:        string(types.KindLocalEditable),
		InstalledAt: time.Now().UTC(),
	}
	for _, dep := range desc.Dependencies {
		manifest.Dependencies = append(manifest.Dependencies, dep.Raw)
	}

	manifestData, err := manifest.encode()
	if err != nil {
		return nil, err
	}

	return []types.Operation{
		{
			Type:        types.OperationCreateSymlink,
			Source:      result.ImplementationDir,
			Target:      result.InstallPath,
			Description: "Link implementation directory into site root",
			Status:      types.StatusReady,
		},
		{
			Type:        types.OperationWriteFile,
			Target:      result.PathFilePath,
			Content:     desc.ImplementationDir(result.Tree) + "\n",
			Description: "Write path file for the source tree",
			Status:      types.StatusReady,
		},
		{
			Type:        types.OperationWriteFile,
			Target:      result.ManifestPath,
			Content:     string(manifestData),
			Description: "Write install manifest",
			Status:      types.StatusReady,
		},
	}, nil
}

// resolveDependencies checks each declared dependency against the
// search path. Version constraints are checked when an install manifest
// records the installed version; installs without one are accepted.
func (i *Installer) resolveDependencies(ctx context.Context, desc *descriptor.Descriptor) error {
	logger := logging.GetLogger("installer")

	for _, dep := range desc.Dependencies {
		name := types.Component(descriptor.ImportName(dep.Name))
		if err := name.Validate(); err != nil {
			return errors.Wrapf(err, errors.ErrDescriptorInvalid,
				"dependency %q has an unusable name", dep.Raw)
		}

		inst, err := i.search.Resolve(i.fs, name)
		if err != nil {
			return i.missingDependency(ctx, dep, err)
		}

		if dep.Constraint != nil {
			version := i.installedVersion(name)
			if version == "" {
				logger.Debug().
					Str("dependency", name.String()).
					Str("constraint", dep.Raw).
					Msg("Installed version unknown, accepting constraint unchecked")
				continue
			}
			if !dep.Satisfies(version) {
				return errors.Newf(errors.ErrDependencyUnresolved,
					"dependency %q is installed at version %s, which does not satisfy %q",
					name.String(), version, dep.Raw).
					WithDetail("installed", inst.Root)
			}
		}
	}

	return nil
}

// missingDependency shapes the error for a dependency the search path
// cannot satisfy, consulting the registry index when one is configured.
func (i *Installer) missingDependency(ctx context.Context, dep descriptor.Dependency, cause error) error {
	if i.registry == nil {
		return errors.Wrapf(cause, errors.ErrDependencyUnresolved,
			"declared dependency %q is not installed", dep.Name)
	}

	entry, lookupErr := i.registry.Lookup(ctx, dep.Name)
	switch {
	case lookupErr == nil:
		return errors.Wrapf(cause, errors.ErrDependencyUnresolved,
			"declared dependency %q is not installed (registry has versions %s)",
			dep.Name, strings.Join(entry.Versions, ", "))
	case errors.IsErrorCode(lookupErr, errors.ErrNotFound):
		return errors.Wrapf(cause, errors.ErrDependencyUnresolved,
			"declared dependency %q is not installed and unknown to the registry", dep.Name)
	default:
		return lookupErr
	}
}

// installedVersion reads the version an install manifest recorded for a
// component, or "" when no manifest exists.
func (i *Installer) installedVersion(component types.Component) string {
	m, err := LoadManifest(i.fs, i.paths.ManifestPath(component.String()))
	if err != nil {
		return ""
	}
	return m.Version
}
