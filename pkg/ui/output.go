package ui

import (
	"encoding/json"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/sitelink/pkg/errors"
)

// ansiRe matches the escape sequences the terminal renderers emit
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes terminal styling from a rendered string
func StripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// Write renders a command result to w in the given format. The render
// function produces the terminal form; text output is the same with
// styling stripped, json and yaml serialize the value itself.
func Write(w io.Writer, format Format, value any, render func() string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(value); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode JSON output")
		}
		return nil

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		if err := enc.Encode(value); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode YAML output")
		}
		return nil

	case FormatText:
		_, err := io.WriteString(w, StripANSI(render())+"\n")
		return err

	default:
		_, err := io.WriteString(w, render()+"\n")
		return err
	}
}
