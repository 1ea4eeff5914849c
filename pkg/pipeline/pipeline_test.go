package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/sitelink/pkg/errors"
	"github.com/arthur-debert/sitelink/pkg/filesystem"
	"github.com/arthur-debert/sitelink/pkg/paths"
	"github.com/arthur-debert/sitelink/pkg/searchpath"
	"github.com/arthur-debert/sitelink/pkg/testutil"
	"github.com/arthur-debert/sitelink/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicDescriptor = `
[project]
name = "f5_tts"
version = "1.0.0"
`

func newTestEnv(t *testing.T) (*paths.Paths, searchpath.SearchPath, string) {
	t.Helper()

	tempDir := testutil.TempDir(t)
	siteRoot := testutil.CreateDir(t, tempDir, "site-packages")
	t.Setenv("XDG_DATA_HOME", filepath.Join(tempDir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "config"))

	p, err := paths.New(siteRoot, "3.10")
	require.NoError(t, err)

	search, err := searchpath.New(nil, siteRoot)
	require.NoError(t, err)

	return p, search, tempDir
}

func TestPipeline_Run(t *testing.T) {
	fs := filesystem.NewOS()

	t.Run("replaces a registry copy end to end", func(t *testing.T) {
		p, search, tempDir := newTestEnv(t)

		// pre-existing registry install that must lose
		registryCopy := testutil.CreateDir(t, p.SiteRoot(), "f5_tts")
		testutil.CreateFile(t, registryCopy, "__init__.py", "VERSION = 'registry'\n")

		tree := testutil.CreateTree(t, tempDir, "src", "f5_tts", basicDescriptor,
			map[string]string{"__init__.py": "VERSION = 'local'\n"})

		pl := New(fs, p, search, false)
		result, err := pl.Run(context.Background(), tree)

		require.NoError(t, err)
		assert.Equal(t, StateVerified, result.State)
		assert.Equal(t, types.Component("f5_tts"), result.Component)
		require.NotNil(t, result.Removed)
		require.NotNil(t, result.Installed)
		require.NotNil(t, result.Report)
		assert.True(t, result.Report.Verified)
		assert.Equal(t, types.KindLocalEditable, result.Report.Resolution.Kind)
		assert.Equal(t, filepath.Join(tree, "f5_tts"), result.Report.Resolution.Root)

		// the registry copy is gone, the local tree serves the component
		content := testutil.ReadFile(t, filepath.Join(p.InstallPath("f5_tts"), "__init__.py"))
		assert.Equal(t, "VERSION = 'local'\n", content)
	})

	t.Run("runs cleanly with nothing to remove", func(t *testing.T) {
		p, search, tempDir := newTestEnv(t)
		tree := testutil.CreateTree(t, tempDir, "src", "f5_tts", basicDescriptor, nil)

		pl := New(fs, p, search, false)
		result, err := pl.Run(context.Background(), tree)

		require.NoError(t, err)
		assert.Equal(t, StateVerified, result.State)
		assert.Empty(t, result.Removed.Paths)
	})

	t.Run("missing descriptor fails before removal", func(t *testing.T) {
		p, search, tempDir := newTestEnv(t)
		tree := testutil.CreateDir(t, tempDir, "src")

		// a registry copy that must survive a failed run
		testutil.CreateDir(t, p.SiteRoot(), "f5_tts")

		pl := New(fs, p, search, false)
		result, err := pl.Run(context.Background(), tree)

		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDescriptorMissing))
		assert.Equal(t, StateFailed, result.State)
		assert.Nil(t, result.Removed)
		assert.True(t, testutil.DirExists(t, filepath.Join(p.SiteRoot(), "f5_tts")))
	})

	t.Run("unresolved dependency stops after removal", func(t *testing.T) {
		p, search, tempDir := newTestEnv(t)
		tree := testutil.CreateTree(t, tempDir, "src", "f5_tts", `
[project]
name = "f5_tts"
version = "1.0.0"
dependencies = ["torch>=2.0.0"]
`, nil)

		pl := New(fs, p, search, false)
		result, err := pl.Run(context.Background(), tree)

		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDependencyUnresolved))
		assert.Equal(t, StateFailed, result.State)
		assert.NotNil(t, result.Removed)
		assert.Nil(t, result.Installed)
		testutil.AssertNoFile(t, p.InstallPath("f5_tts"))
		testutil.AssertNoFile(t, p.PathFilePath("f5_tts"))
	})

	t.Run("dry run simulates without writing and skips verification", func(t *testing.T) {
		p, search, tempDir := newTestEnv(t)
		registryCopy := testutil.CreateDir(t, p.SiteRoot(), "f5_tts")
		tree := testutil.CreateTree(t, tempDir, "src", "f5_tts", basicDescriptor, nil)

		pl := New(fs, p, search, true)
		result, err := pl.Run(context.Background(), tree)

		require.NoError(t, err)
		assert.Equal(t, StateInstalled, result.State)
		assert.Nil(t, result.Report)
		assert.True(t, result.Removed.DryRun)
		assert.True(t, result.Installed.DryRun)
		assert.True(t, testutil.DirExists(t, registryCopy), "dry run must not delete")
	})

	t.Run("rerunning the pipeline is idempotent", func(t *testing.T) {
		p, search, tempDir := newTestEnv(t)
		tree := testutil.CreateTree(t, tempDir, "src", "f5_tts", basicDescriptor, nil)

		pl := New(fs, p, search, false)

		for i := 0; i < 2; i++ {
			result, err := pl.Run(context.Background(), tree)
			require.NoError(t, err)
			assert.Equal(t, StateVerified, result.State)
		}

		testutil.AssertSymlink(t, p.InstallPath("f5_tts"), filepath.Join(tree, "f5_tts"))
	})
}
