package gui

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/modelview/render"
)

// WindowID identifies a window created by an Overlay. Zero is never a
// valid window.
type WindowID uint32

// Color is an RGBA color in [0, 1].
type Color [4]float32

// Overlay is the UI toolkit the System builds on.
type Overlay interface {
	// AddWindow creates a window with its top-left corner at pos pixels.
	AddWindow(title string, pos mgl32.Vec2) (WindowID, error)
	RemoveWindow(WindowID)

	AddText(w WindowID, label, text string, color Color) error
	AddSlider(w WindowID, s Slider) error
	AddButton(w WindowID, label string, onClick func()) error

	// Focused reports whether the overlay is consuming input.
	Focused() bool

	SetActive(bool)
	Active() bool

	// Draw records the overlay into the frame after the scene.
	Draw(f *render.Frame) error
}
