// Package types defines the core data model shared across sitelink:
// components, installations, filesystem operations and the FS interface.
package types

import (
	"regexp"

	"github.com/arthur-debert/sitelink/pkg/errors"
)

// componentNameRe matches importable package names: a letter or underscore
// followed by letters, digits and underscores.
var componentNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Component is a named, versioned unit of code that can exist as zero or
// more Installations. The name doubles as the implementation subdirectory
// name inside each candidate source tree.
type Component string

// Validate checks that the component name is non-empty and importable
func (c Component) Validate() error {
	if c == "" {
		return errors.New(errors.ErrInvalidInput, "component name must not be empty")
	}
	if !componentNameRe.MatchString(string(c)) {
		return errors.Newf(errors.ErrInvalidInput, "invalid component name: %q", string(c))
	}
	return nil
}

// String returns the component name
func (c Component) String() string {
	return string(c)
}

// InstallKind distinguishes how an installation got onto the filesystem
type InstallKind string

const (
	// KindRegistryInstalled is a copy placed in the site root by a package
	// registry tool (pip and friends)
	KindRegistryInstalled InstallKind = "registry-installed"

	// KindLocalEditable is a link-mode install referencing a local source
	// tree in place
	KindLocalEditable InstallKind = "local-editable"
)

// Installation is one physical copy of a Component on disk.
type Installation struct {
	// Component is the name this installation provides
	Component Component `json:"component" yaml:"component"`

	// Root is the absolute path of the implementation directory
	Root string `json:"root" yaml:"root"`

	// Kind records whether this copy came from a registry or a local tree
	Kind InstallKind `json:"kind" yaml:"kind"`

	// Priority is the installation's index on the search path.
	// Lower wins; the site root always carries the highest value.
	Priority int `json:"priority" yaml:"priority"`

	// Version is the version recorded in the link manifest or descriptor,
	// empty when unknown
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}
