package modelview

import "errors"

var (
	// ErrNotInitialized is returned by Viewer methods called before Init
	// or after Exit.
	ErrNotInitialized = errors.New("modelview: viewer not initialized")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("modelview: invalid config")

	// ErrUnknownConfigFormat is returned by LoadConfig for files that are
	// neither TOML nor YAML.
	ErrUnknownConfigFormat = errors.New("modelview: unknown config format")

	// ErrNoDevice is returned by NewViewer without a GPU device.
	ErrNoDevice = errors.New("modelview: no GPU device")
)
