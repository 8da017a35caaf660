// Package config defines the format-agnostic model of a workspace's
// descriptors, along with the Loader interface that turns descriptor files on
// disk into that model.
//
// The `config.Model` is the single source of truth for the `app` package when
// it builds the workspace tree and configures nodes. Concrete loaders, such as
// the HCL one, live in separate packages.
//
// The package also owns ConfigurationError, the fatal error kind of the
// configuration phase.
package config
