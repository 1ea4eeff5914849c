// Package paths provides centralized path handling for sitelink.
// It resolves the system-wide site root, the search-path environment and
// the XDG directories sitelink writes state to.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/sitelink/pkg/errors"
)

// Environment variable names
const (
	// EnvSiteRoot overrides the system-wide install root
	EnvSiteRoot = "SITELINK_SITE_ROOT"

	// EnvSearchPath is the ordered, PathListSeparator-delimited list of
	// extra search-path entries consulted before the site root
	EnvSearchPath = "SITELINK_PATH"

	// EnvDataDir overrides the XDG data directory for sitelink
	EnvDataDir = "SITELINK_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for sitelink
	EnvConfigDir = "SITELINK_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// SitelinkDirName is the directory name for sitelink-specific files
	SitelinkDirName = "sitelink"

	// ConfigFileName is the name of the project configuration file
	ConfigFileName = "sitelink.toml"

	// DescriptorFileName is the build descriptor expected at a source tree root
	DescriptorFileName = "pyproject.toml"

	// ManifestSuffix is appended to the component name for link manifests
	ManifestSuffix = ".sitelink.toml"

	// PathFileSuffix is appended to the component name for path entry files
	PathFileSuffix = ".pth"

	// LogFileName is the name of the log file
	LogFileName = "sitelink.log"

	// sitePackagesFormat is the version-dependent default install root
	sitePackagesFormat = "/usr/local/lib/python%s/site-packages"
)

// Paths provides centralized path management for sitelink
type Paths struct {
	// siteRoot is the system-wide default install location
	siteRoot string

	// xdgData is the XDG data directory
	xdgData string

	// xdgConfig is the XDG config directory
	xdgConfig string

	// xdgState is the XDG state directory
	xdgState string
}

// New creates a new Paths instance. When siteRoot is empty it is
// determined from SITELINK_SITE_ROOT or derived from the interpreter
// version (e.g. "3.10" -> /usr/local/lib/python3.10/site-packages).
func New(siteRoot, pythonVersion string) (*Paths, error) {
	p := &Paths{}

	if siteRoot == "" {
		siteRoot = findSiteRoot(pythonVersion)
	} else {
		siteRoot = ExpandHome(siteRoot)
	}

	absRoot, err := filepath.Abs(siteRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for site root")
	}
	p.siteRoot = absRoot

	p.setupXDGDirs()

	return p, nil
}

// findSiteRoot determines the site root using the following priority:
// 1. SITELINK_SITE_ROOT environment variable (if set)
// 2. The version-dependent default location
func findSiteRoot(pythonVersion string) string {
	if root := os.Getenv(EnvSiteRoot); root != "" {
		return ExpandHome(root)
	}
	return fmt.Sprintf(sitePackagesFormat, pythonVersion)
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *Paths) setupXDGDirs() {
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = ExpandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, SitelinkDirName)
	}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = ExpandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, SitelinkDirName)
	}

	// XDG doesn't provide StateHome, so we check manually
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		p.xdgState = filepath.Join(stateDir, SitelinkDirName)
	} else {
		homeDir, _ := os.UserHomeDir()
		p.xdgState = filepath.Join(homeDir, ".local", "state", SitelinkDirName)
	}
}

// SiteRoot returns the system-wide default install location
func (p *Paths) SiteRoot() string {
	return p.siteRoot
}

// DataDir returns the XDG data directory for sitelink
func (p *Paths) DataDir() string {
	return p.xdgData
}

// ConfigDir returns the XDG config directory for sitelink
func (p *Paths) ConfigDir() string {
	return p.xdgConfig
}

// LogFilePath returns the path to the sitelink log file
func (p *Paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// InstallPath returns the link-mode install location for a component
func (p *Paths) InstallPath(component string) string {
	return filepath.Join(p.siteRoot, component)
}

// ManifestPath returns the link manifest location for a component
func (p *Paths) ManifestPath(component string) string {
	return filepath.Join(p.siteRoot, component+ManifestSuffix)
}

// PathFilePath returns the path entry file location for a component
func (p *Paths) PathFilePath(component string) string {
	return filepath.Join(p.siteRoot, component+PathFileSuffix)
}

// DescriptorPath returns the build descriptor location for a source tree
func DescriptorPath(tree string) string {
	return filepath.Join(tree, DescriptorFileName)
}

// SearchPathFromEnv returns the ordered extra search-path entries declared
// in SITELINK_PATH. Empty entries are dropped; order is preserved.
func SearchPathFromEnv() []string {
	return SplitSearchPath(os.Getenv(EnvSearchPath))
}

// SplitSearchPath splits a PathListSeparator-delimited list into entries,
// dropping empties and expanding ~.
func SplitSearchPath(value string) []string {
	if value == "" {
		return nil
	}
	var entries []string
	for _, entry := range strings.Split(value, string(os.PathListSeparator)) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		entries = append(entries, ExpandHome(entry))
	}
	return entries
}

// NormalizePath normalizes a path by expanding home, making it absolute,
// and cleaning it
func NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	expanded := ExpandHome(path)

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path")
	}

	return filepath.Clean(abs), nil
}

// ExpandHome expands ~ to the home directory
func ExpandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}
