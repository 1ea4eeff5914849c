package synthfs

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/sitelink/pkg/paths"
	"github.com/arthur-debert/sitelink/pkg/testutil"
	"github.com/arthur-debert/sitelink/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modePtr(mode uint32) *uint32 {
	return &mode
}

func TestExecutor_ValidateSafePath(t *testing.T) {
	tempDir := testutil.TempDir(t)
	siteRoot := filepath.Join(tempDir, "site-packages")
	testutil.CreateDir(t, tempDir, "site-packages")
	t.Setenv("XDG_DATA_HOME", filepath.Join(tempDir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "config"))

	p, err := paths.New(siteRoot, "3.10")
	require.NoError(t, err)
	executor := NewExecutor(false, p)

	tests := []struct {
		name      string
		path      string
		expectErr bool
	}{
		{
			name:      "site root is safe",
			path:      filepath.Join(siteRoot, "f5_tts"),
			expectErr: false,
		},
		{
			name:      "nested path under site root is safe",
			path:      filepath.Join(siteRoot, "f5_tts.sitelink.toml"),
			expectErr: false,
		},
		{
			name:      "system directory is not safe",
			path:      "/etc/passwd",
			expectErr: true,
		},
		{
			name:      "parent of site root is not safe",
			path:      tempDir,
			expectErr: true,
		},
		{
			name:      "sibling directory is not safe",
			path:      filepath.Join(tempDir, "elsewhere", "f5_tts"),
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executor.validateSafePath(tt.path)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExecutor_ExecuteOperations(t *testing.T) {
	tempDir := testutil.TempDir(t)
	siteRoot := filepath.Join(tempDir, "site-packages")
	testutil.CreateDir(t, tempDir, "site-packages")
	t.Setenv("XDG_DATA_HOME", filepath.Join(tempDir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "config"))

	p, err := paths.New(siteRoot, "3.10")
	require.NoError(t, err)

	t.Run("writes files and directories", func(t *testing.T) {
		executor := NewExecutor(false, p)

		ops := []types.Operation{
			{
				Type:        types.OperationCreateDir,
				Target:      filepath.Join(siteRoot, "pkg-dir"),
				Description: "Create package directory",
				Status:      types.StatusReady,
			},
			{
				Type:        types.OperationWriteFile,
				Target:      filepath.Join(siteRoot, "f5_tts.pth"),
				Content:     "/src/f5_tts\n",
				Mode:        modePtr(0644),
				Description: "Write path file",
				Status:      types.StatusReady,
			},
		}

		require.NoError(t, executor.ExecuteOperations(ops))
		assert.True(t, testutil.DirExists(t, filepath.Join(siteRoot, "pkg-dir")))
		assert.Equal(t, "/src/f5_tts\n", testutil.ReadFile(t, filepath.Join(siteRoot, "f5_tts.pth")))
	})

	t.Run("creates symlinks", func(t *testing.T) {
		executor := NewExecutor(false, p)
		source := filepath.Join(siteRoot, "source-tree")
		testutil.CreateDir(t, siteRoot, "source-tree")

		ops := []types.Operation{
			{
				Type:        types.OperationCreateSymlink,
				Source:      source,
				Target:      filepath.Join(siteRoot, "linked"),
				Description: "Link package into site root",
				Status:      types.StatusReady,
			},
		}

		require.NoError(t, executor.ExecuteOperations(ops))
		assert.True(t, testutil.SymlinkExists(t, filepath.Join(siteRoot, "linked")))
	})

	t.Run("dry run touches nothing", func(t *testing.T) {
		executor := NewExecutor(true, p)

		ops := []types.Operation{
			{
				Type:        types.OperationWriteFile,
				Target:      filepath.Join(siteRoot, "dry-run.pth"),
				Content:     "/src/pkg\n",
				Description: "Write path file",
				Status:      types.StatusReady,
			},
		}

		require.NoError(t, executor.ExecuteOperations(ops))
		assert.False(t, testutil.FileExists(t, filepath.Join(siteRoot, "dry-run.pth")))
	})

	t.Run("skips non-ready operations", func(t *testing.T) {
		executor := NewExecutor(false, p)

		ops := []types.Operation{
			{
				Type:        types.OperationWriteFile,
				Target:      filepath.Join(siteRoot, "skipped.pth"),
				Content:     "/src/pkg\n",
				Description: "Write path file",
				Status:      types.StatusSkipped,
			},
		}

		require.NoError(t, executor.ExecuteOperations(ops))
		assert.False(t, testutil.FileExists(t, filepath.Join(siteRoot, "skipped.pth")))
	})

	t.Run("rejects targets outside controlled directories", func(t *testing.T) {
		executor := NewExecutor(false, p)

		ops := []types.Operation{
			{
				Type:        types.OperationWriteFile,
				Target:      filepath.Join(tempDir, "outside.pth"),
				Content:     "x",
				Description: "Write outside",
				Status:      types.StatusReady,
			},
		}

		assert.Error(t, executor.ExecuteOperations(ops))
	})
}
