package render

import "github.com/gogpu/modelview/gpucore"

// Frame is the handle for one frame between BeginFrame and EndFrame.
//
// A Frame is consumed by EndFrame. Its accessors keep returning the values
// it was created with, but passing it to EndFrame again fails with
// ErrFrameConsumed.
type Frame struct {
	ctx        *Context
	element    *RingElement
	imageIndex uint32
	color      gpucore.RenderTargetID
	depth      gpucore.RenderTargetID
	consumed   bool
}

// Index returns the ring slot this frame records into. Per-frame resources
// such as uniform buffers are indexed by it.
func (f *Frame) Index() uint32 { return f.element.index }

// ImageIndex returns the acquired swapchain image index.
func (f *Frame) ImageIndex() uint32 { return f.imageIndex }

// Cmd returns the command buffer open for recording.
func (f *Frame) Cmd() gpucore.CommandBufferID { return f.element.cmd }

// ColorTarget returns the swapchain image to render into.
func (f *Frame) ColorTarget() gpucore.RenderTargetID { return f.color }

// DepthTarget returns the depth buffer, or InvalidID when none is loaded.
func (f *Frame) DepthTarget() gpucore.RenderTargetID { return f.depth }

// Element returns the ring element backing the frame.
func (f *Frame) Element() *RingElement { return f.element }

// Consumed reports whether EndFrame has taken the frame.
func (f *Frame) Consumed() bool { return f.consumed }

// BeginRenderPass opens a pass on the frame's color and depth targets,
// clearing both. Depth clears to 0 for reverse-Z projections.
func (f *Frame) BeginRenderPass() error {
	if f.consumed {
		return ErrFrameConsumed
	}
	desc := &gpucore.RenderPassDesc{
		Color:      f.color,
		ColorLoad:  gpucore.LoadActionClear,
		ClearColor: f.ctx.opts.clearColor,
	}
	if f.depth != gpucore.InvalidID {
		desc.Depth = f.depth
		desc.DepthLoad = gpucore.LoadActionClear
		desc.ClearDepth = 0
	}
	return f.ctx.device.BeginRenderPass(f.element.cmd, desc)
}

// EndRenderPass closes the pass opened by BeginRenderPass.
func (f *Frame) EndRenderPass() {
	f.ctx.device.EndRenderPass(f.element.cmd)
}
