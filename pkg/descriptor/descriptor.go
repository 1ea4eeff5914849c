// Package descriptor parses the build descriptor (pyproject.toml) found
// at the root of a local source tree. The descriptor names the component,
// its version and its declared dependencies.
package descriptor

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/arthur-debert/sitelink/pkg/errors"
	"github.com/arthur-debert/sitelink/pkg/paths"
	"github.com/arthur-debert/sitelink/pkg/types"
	"github.com/pelletier/go-toml/v2"
)

// depSpecRe splits a dependency spec into name and constraint remainder,
// e.g. "torch>=2.0" -> ("torch", ">=2.0")
var depSpecRe = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(.*)$`)

// Dependency is one declared dependency of a component
type Dependency struct {
	// Name is the dependency's component name
	Name string

	// Constraint is the parsed version constraint, nil when the spec
	// carries no version
	Constraint *semver.Constraints

	// Raw is the spec as written in the descriptor
	Raw string
}

// Satisfies reports whether the given installed version satisfies the
// dependency's constraint. An unconstrained dependency accepts anything;
// an unparseable installed version only satisfies unconstrained specs.
func (d Dependency) Satisfies(version string) bool {
	if d.Constraint == nil {
		return true
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return d.Constraint.Check(v)
}

// Descriptor is a parsed build descriptor
type Descriptor struct {
	// Name is the component name declared in [project]
	Name string

	// Version is the declared version, may be empty
	Version string

	// PackageDir is the subdirectory holding implementation packages,
	// relative to the tree root ("" means the tree root itself)
	PackageDir string

	// Dependencies are the declared runtime dependencies
	Dependencies []Dependency
}

// raw mirrors the TOML layout of a descriptor
type raw struct {
	Project struct {
		Name         string   `toml:"name"`
		Version      string   `toml:"version"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Sitelink struct {
			PackageDir string `toml:"package-dir"`
		} `toml:"sitelink"`
	} `toml:"tool"`
}

// Load reads and validates the build descriptor of a source tree
func Load(fs types.FS, tree string) (*Descriptor, error) {
	path := paths.DescriptorPath(tree)

	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrDescriptorMissing,
				"no build descriptor at %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"failed to read build descriptor %s", path)
	}

	var r raw
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDescriptorParse,
			"malformed build descriptor %s", path)
	}

	if r.Project.Name == "" {
		return nil, errors.Newf(errors.ErrDescriptorInvalid,
			"build descriptor %s declares no project name", path)
	}

	d := &Descriptor{
		Name:       r.Project.Name,
		Version:    r.Project.Version,
		PackageDir: r.Tool.Sitelink.PackageDir,
	}

	for _, spec := range r.Project.Dependencies {
		dep, err := ParseDependency(spec)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrDescriptorInvalid,
				"invalid dependency spec %q in %s", spec, path)
		}
		d.Dependencies = append(d.Dependencies, dep)
	}

	return d, nil
}

// ImplementationDir returns the directory expected to contain the
// component's implementation subdirectory for the given tree.
func (d *Descriptor) ImplementationDir(tree string) string {
	if d.PackageDir == "" {
		return tree
	}
	return filepath.Join(tree, d.PackageDir)
}

// ParseDependency parses one dependency spec like "torch>=2.0.0" or
// "soundfile". The constraint grammar is the semver one, with "==" as an
// accepted spelling of exact pins.
func ParseDependency(spec string) (Dependency, error) {
	spec = strings.TrimSpace(spec)
	m := depSpecRe.FindStringSubmatch(spec)
	if m == nil || m[1] == "" {
		return Dependency{}, errors.Newf(errors.ErrInvalidInput, "empty dependency name in %q", spec)
	}

	dep := Dependency{Name: m[1], Raw: spec}

	constraint := strings.TrimSpace(m[2])
	if constraint == "" {
		return dep, nil
	}

	// "==1.2.3" is the pip spelling of an exact pin
	constraint = strings.ReplaceAll(constraint, "==", "=")

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return Dependency{}, errors.Wrapf(err, errors.ErrInvalidInput,
			"unparseable version constraint %q", constraint)
	}
	dep.Constraint = c

	return dep, nil
}

// ImportName maps a declared project name to the directory name the
// component resolves under. Distribution names use dashes and dots
// where directory names use underscores.
func ImportName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	return name
}
