package installer

import (
	"os"
	"time"

	"github.com/arthur-debert/sitelink/pkg/errors"
	"github.com/arthur-debert/sitelink/pkg/types"
	"github.com/pelletier/go-toml/v2"
)

// Manifest records a link-mode install in the site root. It sits next
// to the install symlink and is what lets later runs tell a sitelink
// install apart from a registry copy without guessing.
type Manifest struct {
	Component    string    `toml:"component" json:"component" yaml:"component"`
	Tree         string    `toml:"tree" json:"tree" yaml:"tree"`
	Version      string    `toml:"version,omitempty" json:"version,omitempty" yaml:"version,omitempty"`
	Kind         string    `toml:"kind" json:"kind" yaml:"kind"`
	Dependencies []string  `toml:"dependencies,omitempty" json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	InstalledAt  time.Time `toml:"installed-at" json:"installedAt" yaml:"installedAt"`
}

// LoadManifest reads the install manifest at the given path. A missing
// manifest is reported as ErrNotFound.
func LoadManifest(fs types.FS, path string) (*Manifest, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound,
				"no install manifest at %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"failed to read install manifest %s", path)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse,
			"malformed install manifest %s", path)
	}

	return &m, nil
}

// encode serializes the manifest for writing
func (m *Manifest) encode() ([]byte, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal,
			"failed to encode install manifest")
	}
	return data, nil
}
