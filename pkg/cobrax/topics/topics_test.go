package topics

import (
	"os"
	"testing"

	"github.com/arthur-debert/sitelink/pkg/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicManager_ScanTopics(t *testing.T) {
	tmpDir := testutil.TempDir(t)
	topicsDir := testutil.CreateDir(t, tmpDir, "help")

	testutil.CreateFile(t, topicsDir, "resolution.txt", "How components resolve")
	testutil.CreateFile(t, topicsDir, "layout.md", "# Layout\n\nSite root layout details")
	testutil.CreateFile(t, topicsDir, "config.txxt", "Configuration Guide")
	testutil.CreateFile(t, topicsDir, "ignore.json", "This should be ignored")

	t.Run("default extensions", func(t *testing.T) {
		tm := New(topicsDir)
		require.NoError(t, tm.scanTopics())

		tests := []struct {
			name     string
			expected bool
			content  string
		}{
			{"resolution", true, "How components resolve"},
			{"layout", true, "# Layout\n\nSite root layout details"},
			{"config", false, ""}, // .txxt not in defaults
			{"ignore", false, ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				topic, exists := tm.GetTopic(tt.name)
				assert.Equal(t, tt.expected, exists)
				if exists {
					assert.Equal(t, tt.content, topic.Content)
				}
			})
		}
	})

	t.Run("custom extensions", func(t *testing.T) {
		tm := NewWithOptions(topicsDir, Options{
			Extensions: []string{".txt", ".md", ".txxt"},
		})
		require.NoError(t, tm.scanTopics())

		topic, exists := tm.GetTopic("config")
		require.True(t, exists)
		assert.Equal(t, "Configuration Guide", topic.Content)
	})
}

func TestTopicManager_GetTopic(t *testing.T) {
	tmpDir := testutil.TempDir(t)
	topicsDir := testutil.CreateDir(t, tmpDir, "help")
	testutil.CreateFile(t, topicsDir, "option-dry-run.txt", "Dry run help")
	testutil.CreateFile(t, topicsDir, "option-verbose.txt", "Verbose help")
	testutil.CreateFile(t, topicsDir, "resolution.txt", "Resolution help")

	tm := New(topicsDir)
	require.NoError(t, tm.scanTopics())

	tests := []struct {
		input    string
		expected string
		exists   bool
	}{
		{"resolution", "resolution", true},
		{"option-dry-run", "option-dry-run", true},
		// flag-style lookups find option- prefixed files
		{"dry-run", "option-dry-run", true},
		{"--dry-run", "option-dry-run", true},
		{"-dry-run", "option-dry-run", true},
		{"verbose", "option-verbose", true},
		{"-v", "", false}, // single letter flags don't match
		{"--verbose", "option-verbose", true},
		{"nonexistent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			topic, exists := tm.GetTopic(tt.input)
			assert.Equal(t, tt.exists, exists)
			if exists {
				assert.Equal(t, tt.expected, topic.Name)
			}
		})
	}
}

func TestInitialize(t *testing.T) {
	tmpDir := testutil.TempDir(t)
	topicsDir := testutil.CreateDir(t, tmpDir, "help")
	testutil.CreateFile(t, topicsDir, "test-topic.txt", "Test topic content")

	rootCmd := &cobra.Command{
		Use:   "testapp",
		Short: "Test application",
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Verify something",
		Run:   func(cmd *cobra.Command, args []string) {},
	})

	require.NoError(t, Initialize(rootCmd, topicsDir))

	helpCmd, _, err := rootCmd.Find([]string{"help"})
	require.NoError(t, err)
	assert.Equal(t, "help", helpCmd.Name())
	assert.Equal(t, "help [command or topic]", helpCmd.Use)
}

func TestNonexistentTopicsDir(t *testing.T) {
	tm := New("/nonexistent/directory")
	require.NoError(t, tm.scanTopics())
	assert.Empty(t, tm.ListTopics())
}

func TestIntegration_HelpCommand(t *testing.T) {
	tmpDir := testutil.TempDir(t)
	topicsDir := testutil.CreateDir(t, tmpDir, "help")
	testutil.CreateFile(t, topicsDir, "resolution.txt", "RESOLUTION ORDER\nFirst match on the search path wins.")

	rootCmd := &cobra.Command{
		Use:   "testapp",
		Short: "Test application",
	}
	require.NoError(t, Initialize(rootCmd, topicsDir))

	output := captureOutput(func() {
		rootCmd.SetArgs([]string{"help", "resolution"})
		_ = rootCmd.Execute()
	})

	assert.Contains(t, output, "RESOLUTION ORDER")
}

// captureOutput captures what a function writes to stdout
func captureOutput(f func()) string {
	r, w, _ := os.Pipe()
	stdout := os.Stdout
	os.Stdout = w

	f()

	_ = w.Close()
	os.Stdout = stdout

	out := make([]byte, 4096)
	n, _ := r.Read(out)
	return string(out[:n])
}
