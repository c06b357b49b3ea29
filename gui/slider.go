package gui

import "github.com/chewxy/math32"

// Slider is a bounded float tunable.
type Slider struct {
	Label string
	Min   float32
	Max   float32
	Step  float32

	// Value points at the tuned field.
	Value *float32
}

// Set stores v snapped to Step and clamped to [Min, Max].
func (s Slider) Set(v float32) {
	if s.Value == nil {
		return
	}
	*s.Value = s.Snap(v)
}

// Snap returns v snapped to the nearest Step above Min and clamped to
// [Min, Max].
func (s Slider) Snap(v float32) float32 {
	if math32.IsNaN(v) {
		v = s.Min
	}
	if s.Step > 0 {
		v = s.Min + math32.Round((v-s.Min)/s.Step)*s.Step
	}
	return math32.Max(s.Min, math32.Min(s.Max, v))
}

// Clamp forces the bound value into [Min, Max] without snapping.
func (s Slider) Clamp() {
	if s.Value == nil {
		return
	}
	*s.Value = math32.Max(s.Min, math32.Min(s.Max, *s.Value))
}

// Slider bounds.
const (
	CameraMin  = 0
	CameraMax  = 1000
	CameraStep = 1

	ScaleMin  = 0
	ScaleMax  = 100
	ScaleStep = 0.1
)
