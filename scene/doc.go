// Package scene holds the viewed mesh, the skybox and the render system
// that draws them.
//
// The render system is a reload.System: its shaders, root signature and
// descriptor sets are rebuilt on a Shader reload, its pipelines on a
// Shader or RenderTarget reload, and its descriptor sets are rebound after
// every reload. Uniform buffers live for the whole session, one pair per
// ring slot, and are indexed by render.Frame.Index.
package scene
