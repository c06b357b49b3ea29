// Package camera provides camera controllers that turn per-frame input
// deltas into view transforms.
//
// The only controller shipped today is [OrbitController], which keeps the
// eye on a sphere around a pivot point and integrates zoom and orbit input
// through an acceleration/braking model. Renderers depend on the
// [Controller] interface so that other camera behaviors can be added
// without touching the frame loop.
//
// Controllers are not safe for concurrent use. They are owned by the
// goroutine that runs the simulation tick.
package camera
