// Package registry provides the central "glue" for the action system.
//
// The Registry maps the action kinds used in pipeline files (e.g. "download")
// to the compiled Go code implementing them. Each kind supplies an input
// struct decoded from the `action` block and a builder that binds the decoded
// input to the capabilities (downloader, extractor, process invoker, artifact
// cache) the application was started with.
//
// During application startup, the registry is populated and then validated so
// that malformed input structs surface before any pipeline is loaded.
package registry
