// Package render drives the per-frame GPU pipeline.
//
// A [Context] owns the command queue, the swapchain, the depth buffer and a
// [Ring] of [DataBufferCount] per-frame command and synchronization
// bundles. Each frame goes through the same sequence:
//
//	frame, err := ctx.BeginFrame() // acquire image, pace on the ring fence
//	...record into frame.Cmd()...
//	err = ctx.EndFrame(frame)      // submit, present, advance the ring
//
// BeginFrame blocks when the next ring slot is still executing on the GPU,
// which bounds how far the CPU can run ahead to the ring size.
//
// # Reloads
//
// Context implements [reload.System] for the swapchain and depth buffer
// steps and [reload.Drainer] through WaitIdle. Destructive calls require a
// preceding WaitIdle and fail with [ErrNotIdle] otherwise.
//
// # Thread Safety
//
// A Context is owned by the frame loop goroutine and is not safe for
// concurrent use.
package render
