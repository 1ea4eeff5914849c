package style

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/sitelink/pkg/installer"
	"github.com/arthur-debert/sitelink/pkg/pipeline"
	"github.com/arthur-debert/sitelink/pkg/remover"
	"github.com/arthur-debert/sitelink/pkg/verifier"
)

// Status types for rendered stage lines
type Status string

const (
	StatusSuccess Status = "success" // Stage completed
	StatusError   Status = "error"   // Stage failed
	StatusQueue   Status = "queue"   // Stage simulated (dry run)
	StatusSkipped Status = "skipped" // Stage did not run
)

// StageVerbs defines past and future tense verbs for each stage
var StageVerbs = map[string]struct {
	Past   string
	Future string
}{
	"remove":  {Past: "removed from", Future: "would be removed from"},
	"install": {Past: "linked into", Future: "would be linked into"},
	"verify":  {Past: "resolved to", Future: "would resolve to"},
}

// StatusStyle returns the appropriate pterm style for a status
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusSuccess:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite)
	case StatusError:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	case StatusQueue:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// RenderStageLine renders one stage of a run
func RenderStageLine(stage string, status Status, detail string) string {
	stageName := fmt.Sprintf("%-8s", stage)
	styledStage := StatusStyle(status).Sprint(stageName)

	var msg string
	if verbs, ok := StageVerbs[stage]; ok {
		switch status {
		case StatusSuccess:
			msg = fmt.Sprintf("%s %s", verbs.Past, detail)
		case StatusQueue:
			msg = fmt.Sprintf("%s %s", verbs.Future, detail)
		case StatusError:
			msg = fmt.Sprintf("failed: %s", detail)
		case StatusSkipped:
			msg = "did not run"
		}
	} else {
		msg = detail
	}

	return fmt.Sprintf("    %s : %s", styledStage, msg)
}

// RenderRemoval renders the removal stage's outcome
func RenderRemoval(r remover.Removed) string {
	status := StatusSuccess
	if r.DryRun {
		status = StatusQueue
	}

	detail := r.SiteRoot
	if len(r.Paths) == 0 {
		detail = fmt.Sprintf("%s (nothing to remove)", r.SiteRoot)
	}
	return RenderStageLine("remove", status, detail)
}

// RenderInstall renders the install stage's outcome
func RenderInstall(i installer.Installed) string {
	status := StatusSuccess
	if i.DryRun {
		status = StatusQueue
	}
	return RenderStageLine("install", status, PathStyle.Render(i.InstallPath))
}

// RenderReport renders a verification report with its candidate
// listings
func RenderReport(r verifier.Report) string {
	var result strings.Builder

	header := SubtitleStyle.Render(r.Component.String() + ":")
	result.WriteString(header + "\n")

	if r.Resolution != nil {
		status := StatusSuccess
		if !r.Verified {
			status = StatusError
		}
		result.WriteString(RenderStageLine("verify", status,
			PathStyle.Render(r.Resolution.Root)) + "\n")
		result.WriteString(fmt.Sprintf("    %s : %s\n",
			MutedStyle.Render("kind    "), string(r.Resolution.Kind)))
	} else {
		result.WriteString(RenderStageLine("verify", StatusError,
			"no installation found on the search path") + "\n")
	}

	if r.ExpectedPath != "" {
		marker := SuccessStyle.Render("matches")
		if !r.Verified {
			marker = ErrorStyle.Render("does not match")
		}
		result.WriteString(fmt.Sprintf("    %s : %s %s\n",
			MutedStyle.Render("expected"), PathStyle.Render(r.ExpectedPath), marker))
	}

	if len(r.Listings) > 0 {
		result.WriteString("\n" + MutedStyle.Render("    candidates in search order:") + "\n")
		for _, l := range r.Listings {
			result.WriteString("    " + RenderListing(l) + "\n")
		}
	}

	return strings.TrimRight(result.String(), "\n")
}

// RenderListing renders one candidate location with the entries the
// directory holds
func RenderListing(l verifier.Listing) string {
	var line string
	switch {
	case l.IsSymlink:
		line = fmt.Sprintf("%s %s -> %s",
			SuccessStyle.Render("*"), l.Dir, PathStyle.Render(l.Target))
	case l.Present:
		line = fmt.Sprintf("%s %s", SuccessStyle.Render("*"), l.Dir)
	default:
		return MutedStyle.Render(fmt.Sprintf("- %s (absent)", l.Dir))
	}

	if len(l.Files) > 0 {
		line += "\n      " + MutedStyle.Render(strings.Join(l.Files, "  "))
	}
	return line
}

// RenderRun renders a full pipeline run
func RenderRun(r pipeline.Result) string {
	var result strings.Builder

	header := SubtitleStyle.Render(r.Component.String() + ":")
	result.WriteString(header + "\n")

	if r.Removed != nil {
		result.WriteString(RenderRemoval(*r.Removed) + "\n")
	}
	if r.Installed != nil {
		result.WriteString(RenderInstall(*r.Installed) + "\n")
	}
	if r.Report != nil {
		status := StatusSuccess
		if !r.Report.Verified {
			status = StatusError
		}
		detail := "no installation found"
		if r.Report.Resolution != nil {
			detail = PathStyle.Render(r.Report.Resolution.Root)
		}
		result.WriteString(RenderStageLine("verify", status, detail) + "\n")
	}

	stateLine := fmt.Sprintf("    state: %s", string(r.State))
	switch r.State {
	case pipeline.StateVerified:
		result.WriteString(SuccessStyle.Render(stateLine) + "\n")
	case pipeline.StateFailed:
		result.WriteString(ErrorStyle.Render(stateLine) + "\n")
	default:
		result.WriteString(MutedStyle.Render(stateLine) + "\n")
	}

	return strings.TrimRight(result.String(), "\n")
}

// RenderError renders an error for terminal display
func RenderError(err error) string {
	return ErrorStyle.Render("Error: ") + err.Error()
}
