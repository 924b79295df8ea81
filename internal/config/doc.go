// Package config defines the format-agnostic pipeline model and the Loader
// interface that turns pipeline files into it.
//
// The `config.Model` is the single source of truth for the `dag` package.
// Concrete loaders, such as the HCL one, live in separate packages.
package config
