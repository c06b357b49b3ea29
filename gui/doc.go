// Package gui builds the viewer's tuning windows on top of an Overlay.
//
// The System owns no widgets itself. It describes two windows to the
// overlay (Controls with the manual and the camera sliders, Scene with the
// scale slider) and rebuilds them whenever the window size changes. Slider
// values are bound by pointer to fields owned by the viewer, which reads
// them once per tick.
package gui
