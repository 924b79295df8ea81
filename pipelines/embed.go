// Package pipelines bundles the default pipeline definitions.
package pipelines

import _ "embed"

// HistoricalName is the file name reported for the embedded pipeline.
const HistoricalName = "historical.hcl"

// Historical is the default pipeline: web3j CLI and OpenZeppelin
// preparation followed by compilation of the historical contracts.
//
//go:embed historical.hcl
var Historical []byte
