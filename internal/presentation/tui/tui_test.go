package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "type 'help' for keys")
	assert.Contains(t, buf.String(), `|_.__/`)
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer()
	out, err := render("# Keys\n\n`sqrt`")
	require.NoError(t, err)
	assert.Contains(t, out, "Keys")
	assert.Contains(t, out, "sqrt")
}

func TestTerminalWidth(t *testing.T) {
	assert.Positive(t, TerminalWidth())
}
