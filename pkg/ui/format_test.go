package ui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "auto", want: FormatAuto},
		{input: "", want: FormatAuto},
		{input: "term", want: FormatTerminal},
		{input: "terminal", want: FormatTerminal},
		{input: "text", want: FormatText},
		{input: "plain", want: FormatText},
		{input: "json", want: FormatJSON},
		{input: "JSON", want: FormatJSON},
		{input: "yaml", want: FormatYAML},
		{input: "yml", want: FormatYAML},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("parse "+tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "auto", FormatAuto.String())
	assert.Equal(t, "term", FormatTerminal.String())
	assert.Equal(t, "text", FormatText.String())
	assert.Equal(t, "json", FormatJSON.String())
	assert.Equal(t, "yaml", FormatYAML.String())
}

func TestStripANSI(t *testing.T) {
	styled := "\x1b[1;32mok\x1b[0m plain"
	assert.Equal(t, "ok plain", StripANSI(styled))
}

func TestWrite(t *testing.T) {
	type payload struct {
		Component string `json:"component" yaml:"component"`
		Verified  bool   `json:"verified" yaml:"verified"`
	}
	value := payload{Component: "f5_tts", Verified: true}
	render := func() string { return "\x1b[1mf5_tts\x1b[0m verified" }

	t.Run("json output is the value itself", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatJSON, value, render))

		var decoded payload
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, value, decoded)
	})

	t.Run("yaml output is the value itself", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatYAML, value, render))

		var decoded payload
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, value, decoded)
	})

	t.Run("text output strips styling", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatText, value, render))
		assert.Equal(t, "f5_tts verified\n", buf.String())
	})

	t.Run("terminal output keeps styling", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatTerminal, value, render))
		assert.Contains(t, buf.String(), "\x1b[1m")
	})
}
