package native

import "errors"

var (
	// ErrNoAdapter is returned when the backend exposes no adapter.
	ErrNoAdapter = errors.New("native: no GPU adapter found")

	// ErrBackendUnavailable is returned when the requested HAL backend is
	// not registered.
	ErrBackendUnavailable = errors.New("native: backend not available")

	// ErrNoHAL is returned by NewFromProvider when the provider does not
	// expose HAL objects.
	ErrNoHAL = errors.New("native: provider does not expose HAL device and queue")

	// ErrUnknownID is returned when an ID does not name a live object.
	ErrUnknownID = errors.New("native: unknown object")

	// ErrWindowUnsupported is returned for swapchains bound to a window.
	ErrWindowUnsupported = errors.New("native: window presentation is not supported")

	// ErrNotRecording is returned when a command buffer is used outside
	// Begin/EndCommandBuffer.
	ErrNotRecording = errors.New("native: command buffer is not recording")

	// ErrTimeout is returned when a fence wait exceeds the device timeout.
	ErrTimeout = errors.New("native: fence wait timed out")

	// ErrEmptyShader is returned for shaders with no source.
	ErrEmptyShader = errors.New("native: empty shader source")
)
