package tradecoin

import _ "embed"

// Version is the release of the ledger, read from the VERSION file.
//
//go:embed VERSION
var Version string
