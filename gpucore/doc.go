// Package gpucore defines the GPU collaborator the viewer renders through.
//
// The frame loop and the render systems never touch a graphics API
// directly. They talk to a [Device], which hands out opaque IDs for every
// object it creates (queues, swapchains, render targets, shaders, root
// signatures, descriptor sets, pipelines, samplers, buffers, textures,
// command pools, fences and semaphores) and accepts descriptor structs for
// creation.
//
//	+-----------------+      +------------------+
//	|  render.Context |----->|  gpucore.Device  |
//	|  scene, gui     |      +--------+---------+
//	+-----------------+               |
//	                         +--------v---------+
//	                         |  backend/native  |
//	                         |  (gogpu/wgpu)    |
//	                         +------------------+
//
// # Resource Management
//
// Objects are identified by typed uint64 IDs. [InvalidID] (zero) never
// names a live object. Each Create call is paired with a Destroy call on
// the same device; implementations must tolerate Destroy on an unknown ID.
//
// # Synchronization
//
// A fence reports CPU-visible completion of one submission. A semaphore
// orders two queue operations on the GPU timeline (acquire before submit,
// submit before present). Implementations on in-order queues may treat
// semaphores as pure bookkeeping.
package gpucore
