package style

import (
	"testing"

	"github.com/arthur-debert/sitelink/pkg/installer"
	"github.com/arthur-debert/sitelink/pkg/pipeline"
	"github.com/arthur-debert/sitelink/pkg/remover"
	"github.com/arthur-debert/sitelink/pkg/types"
	"github.com/arthur-debert/sitelink/pkg/verifier"
	"github.com/stretchr/testify/assert"
)

func TestRenderStageLine(t *testing.T) {
	tests := []struct {
		name   string
		stage  string
		status Status
		detail string
		want   string
	}{
		{
			name:   "success uses past tense",
			stage:  "install",
			status: StatusSuccess,
			detail: "/usr/local/lib/python3.10/site-packages",
			want:   "linked into",
		},
		{
			name:   "dry run uses future tense",
			stage:  "remove",
			status: StatusQueue,
			detail: "/usr/local/lib/python3.10/site-packages",
			want:   "would be removed from",
		},
		{
			name:   "error is explicit",
			stage:  "verify",
			status: StatusError,
			detail: "no installation found",
			want:   "failed:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := RenderStageLine(tt.stage, tt.status, tt.detail)
			assert.Contains(t, line, tt.want)
		})
	}
}

func TestRenderReport(t *testing.T) {
	t.Run("verified report shows resolution and listings", func(t *testing.T) {
		report := verifier.Report{
			Component: types.Component("f5_tts"),
			Resolution: &types.Installation{
				Component: types.Component("f5_tts"),
				Root:      "/src/f5_tts/f5_tts",
				Kind:      types.KindLocalEditable,
			},
			Listings: []verifier.Listing{
				{
					Entry: "/site", Dir: "/site/f5_tts",
					Present: true, IsSymlink: true,
					Target: "/src/f5_tts/f5_tts",
					Files:  []string{"__init__.py", "model.py"},
				},
			},
			Verified: true,
		}

		out := RenderReport(report)
		assert.Contains(t, out, "f5_tts:")
		assert.Contains(t, out, "/src/f5_tts/f5_tts")
		assert.Contains(t, out, "local-editable")
		assert.Contains(t, out, "candidates in search order")
		assert.Contains(t, out, "__init__.py")
		assert.Contains(t, out, "model.py")
	})

	t.Run("failed report names the failure", func(t *testing.T) {
		report := verifier.Report{
			Component: types.Component("f5_tts"),
			Listings: []verifier.Listing{
				{Entry: "/site", Dir: "/site/f5_tts"},
			},
		}

		out := RenderReport(report)
		assert.Contains(t, out, "no installation found on the search path")
		assert.Contains(t, out, "(absent)")
	})
}

func TestRenderRun(t *testing.T) {
	result := pipeline.Result{
		Component: types.Component("f5_tts"),
		State:     pipeline.StateVerified,
		Removed: &remover.Removed{
			Component: types.Component("f5_tts"),
			SiteRoot:  "/site",
		},
		Installed: &installer.Installed{
			Component:   types.Component("f5_tts"),
			InstallPath: "/site/f5_tts",
		},
		Report: &verifier.Report{
			Component: types.Component("f5_tts"),
			Resolution: &types.Installation{
				Root: "/src/f5_tts/f5_tts",
				Kind: types.KindLocalEditable,
			},
			Verified: true,
		},
	}

	out := RenderRun(result)
	assert.Contains(t, out, "f5_tts:")
	assert.Contains(t, out, "nothing to remove")
	assert.Contains(t, out, "/site/f5_tts")
	assert.Contains(t, out, "state: verified")
}
