package abacus

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the release of this module.
var Version = strings.TrimSpace(rawVersion)
