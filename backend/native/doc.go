// Package native implements gpucore.Device on the gogpu/wgpu HAL.
//
// A Device either opens its own adapter (Open, OpenBackend) or adopts the
// device and queue of a host application (NewFromProvider). Shaders are
// WGSL compiled to SPIR-V with naga.
//
// Swapchains are offscreen: their images are ordinary render targets and
// Present only advances bookkeeping. Semaphores are tracked for validation
// but carry no GPU state, since HAL queue submissions execute in order.
//
// Device methods must be called from a single goroutine, except Destroy
// which may be called once all work has been waited for.
package native
