// Package searchpath models the ordered list of directories consulted
// when resolving a component by name. A SearchPath is constructed once
// per session and is immutable afterwards; the first entry providing the
// component's implementation subdirectory wins.
package searchpath

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/sitelink/pkg/errors"
	"github.com/arthur-debert/sitelink/pkg/logging"
	"github.com/arthur-debert/sitelink/pkg/paths"
	"github.com/arthur-debert/sitelink/pkg/types"
)

// SearchPath is an ordered sequence of directories, consulted
// left-to-right, with the system-wide site root always last.
type SearchPath struct {
	entries  []string
	siteRoot string
}

// Candidate describes one search-path entry's claim on a component
type Candidate struct {
	// Entry is the search-path directory
	Entry string

	// Dir is the implementation directory the entry would provide
	Dir string

	// Kind is the installation kind an entry of this position implies
	Kind types.InstallKind

	// Priority is the entry's index on the search path
	Priority int
}

// New builds a SearchPath from the ordered extra entries and the site
// root. Entries are normalized to absolute, cleaned paths; order is
// preserved. The site root must be non-empty.
func New(entries []string, siteRoot string) (SearchPath, error) {
	if siteRoot == "" {
		return SearchPath{}, errors.New(errors.ErrInvalidInput, "site root must not be empty")
	}

	normRoot, err := paths.NormalizePath(siteRoot)
	if err != nil {
		return SearchPath{}, err
	}

	sp := SearchPath{siteRoot: normRoot}
	for _, entry := range entries {
		norm, err := paths.NormalizePath(entry)
		if err != nil {
			return SearchPath{}, err
		}
		sp.entries = append(sp.entries, norm)
	}

	return sp, nil
}

// SiteRoot returns the system-wide default install location
func (sp SearchPath) SiteRoot() string {
	return sp.siteRoot
}

// Entries returns all consulted directories in resolution order,
// including the site root
func (sp SearchPath) Entries() []string {
	all := make([]string, 0, len(sp.entries)+1)
	all = append(all, sp.entries...)
	return append(all, sp.siteRoot)
}

// ExtraEntries returns the entries consulted before the site root
func (sp SearchPath) ExtraEntries() []string {
	out := make([]string, len(sp.entries))
	copy(out, sp.entries)
	return out
}

// Candidates returns every entry's claim on the component, in
// resolution order
func (sp SearchPath) Candidates(component types.Component) []Candidate {
	candidates := make([]Candidate, 0, len(sp.entries)+1)
	for i, entry := range sp.Entries() {
		kind := types.KindLocalEditable
		if entry == sp.siteRoot {
			kind = types.KindRegistryInstalled
		}
		candidates = append(candidates, Candidate{
			Entry:    entry,
			Dir:      filepath.Join(entry, component.String()),
			Kind:     kind,
			Priority: i,
		})
	}
	return candidates
}

// Resolve performs the name-based lookup a running process would
// perform: the first entry whose implementation subdirectory exists
// wins. Symlinked implementation directories (link-mode installs in the
// site root) are followed so the reported root is the physical copy.
func (sp SearchPath) Resolve(fsys types.FS, component types.Component) (types.Installation, error) {
	logger := logging.GetLogger("searchpath")

	if err := component.Validate(); err != nil {
		return types.Installation{}, err
	}

	for _, candidate := range sp.Candidates(component) {
		info, err := fsys.Stat(candidate.Dir)
		if err != nil || !info.IsDir() {
			logger.Trace().
				Str("dir", candidate.Dir).
				Msg("candidate does not provide the component")
			continue
		}

		root := candidate.Dir
		kind := candidate.Kind

		// A symlink in the site root is a link-mode install, not a
		// registry copy; report where it physically points.
		if isSymlink(fsys, candidate.Dir) {
			if target, terr := fsys.Readlink(candidate.Dir); terr == nil {
				if !filepath.IsAbs(target) {
					target = filepath.Join(filepath.Dir(candidate.Dir), target)
				}
				root = filepath.Clean(target)
				kind = types.KindLocalEditable
			}
		}

		logger.Debug().
			Str("component", component.String()).
			Str("root", root).
			Int("priority", candidate.Priority).
			Msg("component resolved")

		return types.Installation{
			Component: component,
			Root:      root,
			Kind:      kind,
			Priority:  candidate.Priority,
		}, nil
	}

	return types.Installation{}, errors.Newf(errors.ErrResolutionFailed,
		"no installation provides %q on the search path", component.String()).
		WithDetail("component", component.String()).
		WithDetail("searched", len(sp.Entries()))
}

// isSymlink reports whether the path itself is a symbolic link
func isSymlink(fsys types.FS, path string) bool {
	info, err := fsys.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&fs.ModeSymlink != 0
}
