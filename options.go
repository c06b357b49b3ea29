package modelview

import (
	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/gui"
	"github.com/gogpu/modelview/input"
)

// Option configures a Viewer during creation.
//
// Example:
//
//	v, err := modelview.NewViewer(device, cfg,
//	    modelview.WithInput(source),
//	    modelview.WithOverlay(overlay),
//	)
type Option func(*viewerOptions)

type viewerOptions struct {
	input   input.Source
	overlay gui.Overlay
	window  gpucore.WindowHandle
}

func defaultViewerOptions() viewerOptions {
	return viewerOptions{
		input:   input.None,
		overlay: nil, // headless overlay created by NewViewer
	}
}

// WithInput sets the source polled once per Update. The default source
// reports no input.
func WithInput(src input.Source) Option {
	return func(o *viewerOptions) {
		if src != nil {
			o.input = src
		}
	}
}

// WithOverlay sets the UI toolkit. Without it the viewer keeps its UI in
// a gui.Headless overlay.
func WithOverlay(ov gui.Overlay) Option {
	return func(o *viewerOptions) {
		o.overlay = ov
	}
}

// WithWindow sets the native window the swapchain presents to.
func WithWindow(w gpucore.WindowHandle) Option {
	return func(o *viewerOptions) {
		o.window = w
	}
}
