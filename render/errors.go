package render

import "errors"

var (
	// ErrUnsupported is returned when Init cannot create the renderer,
	// queue or frame ring.
	ErrUnsupported = errors.New("render: feature not supported")

	// ErrNotInitialized is returned when a frame is started before Init
	// or after Exit.
	ErrNotInitialized = errors.New("render: context not initialized")

	// ErrNoSwapChain is returned when a frame is started before the
	// swapchain was loaded.
	ErrNoSwapChain = errors.New("render: swapchain not loaded")

	// ErrFrameInProgress is returned by BeginFrame while a frame is open.
	ErrFrameInProgress = errors.New("render: frame already in progress")

	// ErrFrameConsumed is returned by EndFrame for a frame that was
	// already ended or that this context did not begin.
	ErrFrameConsumed = errors.New("render: frame already ended")

	// ErrNotIdle is returned by destructive calls issued without a
	// preceding WaitIdle.
	ErrNotIdle = errors.New("render: GPU work still in flight, call WaitIdle first")

	// ErrSwapChain is returned when swapchain creation fails.
	ErrSwapChain = errors.New("render: swapchain creation failed")

	// ErrDepthBuffer is returned when depth buffer creation fails.
	ErrDepthBuffer = errors.New("render: depth buffer creation failed")
)
