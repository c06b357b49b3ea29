// Package assets loads meshes and textures for the viewer.
//
// A Loader decodes files concurrently and uploads the results to the GPU
// when WaitAll is called, so that GPU objects are only ever created from
// the caller's goroutine. Destinations passed to LoadMesh and LoadTexture
// are filled in by WaitAll.
package assets
