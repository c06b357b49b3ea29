package render

import "github.com/gogpu/modelview/gpucore"

// ContextOption configures a Context during creation.
//
// Example:
//
//	ctx := render.NewContext(device,
//	    render.WithWindow(hwnd),
//	    render.WithSize(1280, 720),
//	    render.WithVSync(true),
//	)
type ContextOption func(*contextOptions)

type contextOptions struct {
	window      gpucore.WindowHandle
	width       uint32
	height      uint32
	vsync       bool
	ringSize    int
	colorFormat gpucore.TextureFormat
	depthFormat gpucore.TextureFormat
	clearColor  [4]float32
}

func defaultContextOptions() contextOptions {
	return contextOptions{
		width:       1280,
		height:      720,
		ringSize:    DataBufferCount,
		colorFormat: gpucore.TextureFormatBGRA8Unorm,
		depthFormat: gpucore.TextureFormatDepth32Float,
		clearColor:  [4]float32{0, 0, 0, 0},
	}
}

// WithWindow sets the native window the swapchain presents to.
// Without it the swapchain renders offscreen.
func WithWindow(w gpucore.WindowHandle) ContextOption {
	return func(o *contextOptions) {
		o.window = w
	}
}

// WithSize sets the initial swapchain size.
func WithSize(width, height uint32) ContextOption {
	return func(o *contextOptions) {
		o.width = width
		o.height = height
	}
}

// WithVSync sets the initial presentation mode.
func WithVSync(enabled bool) ContextOption {
	return func(o *contextOptions) {
		o.vsync = enabled
	}
}

// WithRingSize overrides the number of frames in flight.
func WithRingSize(n int) ContextOption {
	return func(o *contextOptions) {
		o.ringSize = n
	}
}

// WithDepthFormat overrides the depth buffer format.
func WithDepthFormat(f gpucore.TextureFormat) ContextOption {
	return func(o *contextOptions) {
		o.depthFormat = f
	}
}
