// Package artifact decides whether work can be skipped because its output is
// already on disk, and serializes access to shared output paths.
//
// Existence is the only signal. There is no hashing, no timestamp comparison
// and no expiry; a version embedded in the path is the only versioning. The
// producers in this module (fetch, archive) therefore only ever make an
// artifact visible once it is complete.
package artifact
