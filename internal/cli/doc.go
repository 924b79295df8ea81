// Package cli builds the cobra command tree, translates flags into an
// app.Config and maps failures to process exit codes: 0 when every planned
// task succeeded or was skipped, 1 when a run failed, 2 for usage and
// configuration errors.
package cli
