package heycochrane

import _ "embed"

// Version is the release of the library and the heycochrane command.
//
//go:embed VERSION
var Version string
