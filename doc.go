// Package modelview is a small 3D model viewer built on the gogpu stack.
//
// # Overview
//
// A Viewer draws one mesh inside a cube-mapped skybox through an orbit
// camera, with a tuning UI on top. Rendering goes through a gpucore.Device,
// so the same viewer runs on a real GPU (backend/native) or on the
// recording fake in gpucore/gputest.
//
// # Quick Start
//
//	dev, err := native.Open(gputypes.BackendVulkan)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Destroy()
//
//	cfg, err := modelview.LoadConfig("viewer.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := modelview.NewViewer(dev, cfg, modelview.WithInput(source))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = v.Run(ctx, 0, 1.0/60)
//
// # Lifecycle
//
// Init creates the frame ring and loads assets. Load and Unload create and
// destroy the objects a reload.Type covers: the swapchain and depth buffer
// on Resize, shaders and descriptor sets on Shader, pipelines on
// RenderTarget. Reload requests from any goroutine (the UI button, the
// shader watcher, a window resize) are applied at the start of the next
// Draw, after the GPU has drained.
//
// # Architecture
//
// The module is organized into:
//   - Viewer: modelview (this package)
//   - Frame loop: render (context, frame ring), reload (coordinator)
//   - Content: scene (mesh, skybox, render system), camera, gui, input
//   - Devices: gpucore (interface), backend/native (HAL), gpucore/gputest
//   - Internal: assets (loading), shaders, watch (hot reload), cache
//
// # Coordinate System
//
// World space is left-handed with Y up. Depth is reversed: the near plane maps to 1 and far to 0, and the depth
// buffer clears to 0.
package modelview

// Version is the current version of the module.
const Version = "0.1.0"
