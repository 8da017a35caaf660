package config

import "context"

// Loader is the interface for a format-specific descriptor loader.
type Loader interface {
	// Load reads the settings descriptor in dir, the module descriptors of
	// every included module, and recursively every included build.
	Load(ctx context.Context, dir string) (*Model, error)
}
