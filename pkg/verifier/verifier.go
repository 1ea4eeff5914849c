// Package verifier answers the question an install leaves open: which
// copy of a component does a process actually get. It resolves the
// component on the search path, lists every candidate location for the
// report, and when an expected path is known asserts that resolution
// landed there.
package verifier

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/sitelink/pkg/errors"
	"github.com/arthur-debert/sitelink/pkg/installer"
	"github.com/arthur-debert/sitelink/pkg/logging"
	"github.com/arthur-debert/sitelink/pkg/paths"
	"github.com/arthur-debert/sitelink/pkg/searchpath"
	"github.com/arthur-debert/sitelink/pkg/types"
)

// Listing is the observed state of one candidate location
type Listing struct {
	// Entry is the search path entry the candidate lives under
	Entry string `json:"entry" yaml:"entry"`

	// Dir is the candidate implementation directory
	Dir string `json:"dir" yaml:"dir"`

	// Present is true when the directory exists
	Present bool `json:"present" yaml:"present"`

	// IsSymlink is true when the directory is itself a symlink
	IsSymlink bool `json:"isSymlink" yaml:"isSymlink"`

	// Target is the symlink target when IsSymlink is true
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// Files holds the names of the directory's entries when Present
	Files []string `json:"files,omitempty" yaml:"files,omitempty"`
}

// Report is the full verification outcome for one component
type Report struct {
	// Component is the component that was verified
	Component types.Component `json:"component" yaml:"component"`

	// Resolution is the winning installation, nil when nothing on the
	// search path provides the component
	Resolution *types.Installation `json:"resolution,omitempty" yaml:"resolution,omitempty"`

	// Listings covers every candidate location in search order
	Listings []Listing `json:"listings" yaml:"listings"`

	// Manifest is the install manifest of the winning installation,
	// present only for link-mode installs that recorded one
	Manifest *installer.Manifest `json:"manifest,omitempty" yaml:"manifest,omitempty"`

	// ExpectedPath is the physical path resolution was expected to
	// reach, empty when no assertion was requested
	ExpectedPath string `json:"expectedPath,omitempty" yaml:"expectedPath,omitempty"`

	// Verified is true when resolution succeeded and, if an expected
	// path was given, landed on it
	Verified bool `json:"verified" yaml:"verified"`
}

// Verifier resolves components and checks where resolution lands
type Verifier struct {
	fs     types.FS
	paths  *paths.Paths
	search searchpath.SearchPath
}

// New creates a verifier over the given search path
func New(fsys types.FS, p *paths.Paths, search searchpath.SearchPath) *Verifier {
	return &Verifier{fs: fsys, paths: p, search: search}
}

// Verify resolves the component and builds its report. When
// expectedPath is non-empty the resolved root must be that path, and a
// mismatch is an error. The report is returned even on failure so
// callers can show the candidate listings.
func (v *Verifier) Verify(component types.Component, expectedPath string) (Report, error) {
	logger := logging.GetLogger("verifier")

	report := Report{Component: component}

	if err := component.Validate(); err != nil {
		return report, err
	}

	report.Listings = v.listCandidates(component)

	inst, err := v.search.Resolve(v.fs, component)
	if err != nil {
		logger.Warn().
			Str("component", component.String()).
			Msg("Component did not resolve on the search path")
		return report, err
	}
	report.Resolution = &inst

	if inst.Kind == types.KindLocalEditable {
		if m, merr := installer.LoadManifest(v.fs, v.paths.ManifestPath(component.String())); merr == nil {
			report.Manifest = m
		}
	}

	if expectedPath != "" {
		expected, nerr := paths.NormalizePath(expectedPath)
		if nerr != nil {
			return report, nerr
		}
		report.ExpectedPath = expected

		if filepath.Clean(inst.Root) != expected {
			return report, errors.Newf(errors.ErrResolutionFailed,
				"component %q resolves to %s, expected %s",
				component.String(), inst.Root, expected).
				WithDetail("resolved", inst.Root).
				WithDetail("expected", expected)
		}
	}

	report.Verified = true

	logger.Info().
		Str("component", component.String()).
		Str("root", inst.Root).
		Str("kind", string(inst.Kind)).
		Msg("Component verified")

	return report, nil
}

// listCandidates records the observed state of every candidate
// location in search order
func (v *Verifier) listCandidates(component types.Component) []Listing {
	candidates := v.search.Candidates(component)
	listings := make([]Listing, 0, len(candidates))

	for _, c := range candidates {
		listing := Listing{
			Entry: c.Entry,
			Dir:   c.Dir,
		}

		if info, err := v.fs.Stat(c.Dir); err == nil && info.IsDir() {
			listing.Present = true
			if entries, rerr := v.fs.ReadDir(c.Dir); rerr == nil {
				for _, e := range entries {
					listing.Files = append(listing.Files, e.Name())
				}
			}
		}

		if info, err := v.fs.Lstat(c.Dir); err == nil && info.Mode()&fs.ModeSymlink != 0 {
			listing.IsSymlink = true
			if target, terr := v.fs.Readlink(c.Dir); terr == nil {
				listing.Target = target
			}
		}

		listings = append(listings, listing)
	}

	return listings
}
