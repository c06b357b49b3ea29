package gui

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/modelview/internal/logging"
	"github.com/gogpu/modelview/reload"
	"github.com/gogpu/modelview/render"
)

// ControlsText is the manual shown in the Controls window.
const ControlsText = "Manual:\n" +
	"W: Zoom in\n" +
	"S: Zoom out\n" +
	"A: Orbit right\n" +
	"D: Orbit left\n" +
	"Q: Orbit down\n" +
	"E: Orbit up\n" +
	"Mouse drag: Orbit around\n"

// Window titles.
const (
	ControlsWindow = "Controls"
	SceneWindow    = "Scene"
)

// manualColor is the manual text color.
var manualColor = Color{1, 1, 1, 0.75}

// ErrIncompleteModel is returned when a ModelView field is nil.
var ErrIncompleteModel = errors.New("gui: model view has a nil field")

// ModelView points at the tunables the UI edits.
type ModelView struct {
	SceneScale         *float32
	CameraAcceleration *float32
	CameraBraking      *float32
	CameraZoomSpeed    *float32
	CameraOrbitSpeed   *float32
}

func (m ModelView) complete() bool {
	return m.SceneScale != nil && m.CameraAcceleration != nil &&
		m.CameraBraking != nil && m.CameraZoomSpeed != nil && m.CameraOrbitSpeed != nil
}

// Sizer reports the current render size.
type Sizer interface {
	Size() (width, height uint32)
}

// System lays out the tuning windows.
type System struct {
	overlay Overlay
	sizer   Sizer
	model   ModelView

	controls WindowID
	scene    WindowID
	loaded   bool

	mu             sync.Mutex
	onReloadShader func()
}

var _ reload.System = (*System)(nil)

// NewSystem returns a system building windows on overlay for model.
func NewSystem(overlay Overlay, sizer Sizer, model ModelView) (*System, error) {
	if !model.complete() {
		return nil, ErrIncompleteModel
	}
	return &System{overlay: overlay, sizer: sizer, model: model}, nil
}

// Sliders returns the tunable sliders in display order.
func (s *System) Sliders() []Slider {
	camera := func(label string, v *float32) Slider {
		return Slider{Label: label, Min: CameraMin, Max: CameraMax, Step: CameraStep, Value: v}
	}
	return []Slider{
		camera("Camera Acceleration", s.model.CameraAcceleration),
		camera("Camera Braking", s.model.CameraBraking),
		camera("Zoom Speed", s.model.CameraZoomSpeed),
		camera("Orbit Speed", s.model.CameraOrbitSpeed),
		{Label: "Scale", Min: ScaleMin, Max: ScaleMax, Step: ScaleStep, Value: s.model.SceneScale},
	}
}

// OnShaderReload sets the function called when the user asks for a shader
// reload.
func (s *System) OnShaderReload(fn func()) {
	s.mu.Lock()
	s.onReloadShader = fn
	s.mu.Unlock()
}

// RequestShadersReload forwards a shader reload request to the handler
// set with OnShaderReload.
func (s *System) RequestShadersReload() {
	s.mu.Lock()
	fn := s.onReloadShader
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Loaded reports whether the windows exist.
func (s *System) Loaded() bool { return s.loaded }

// Focused reports whether the UI is consuming input.
func (s *System) Focused() bool { return s.overlay.Focused() }

// ToggleActive shows or hides the UI.
func (s *System) ToggleActive() {
	s.overlay.SetActive(!s.overlay.Active())
}

// LoadStep implements reload.System. Windows are only rebuilt when the
// render size may have changed.
func (s *System) LoadStep(step reload.Step, t reload.Type) error {
	if step != reload.StepUserInterface || !t.Has(reload.Resize|reload.RenderTarget) {
		return nil
	}
	if s.loaded {
		return nil
	}
	if err := s.build(); err != nil {
		s.remove()
		return err
	}
	s.loaded = true
	return nil
}

// UnloadStep implements reload.System.
func (s *System) UnloadStep(step reload.Step, t reload.Type) error {
	if step != reload.StepUserInterface || !t.Has(reload.Resize|reload.RenderTarget) {
		return nil
	}
	s.remove()
	s.loaded = false
	return nil
}

func (s *System) build() error {
	w, h := s.sizer.Size()
	fw, fh := float32(w), float32(h)

	controls, err := s.overlay.AddWindow(ControlsWindow, mgl32.Vec2{fw * 0.01, fh * 0.01})
	if err != nil {
		return fmt.Errorf("gui: add %s window: %w", ControlsWindow, err)
	}
	s.controls = controls

	if err := s.overlay.AddText(controls, "Manual", ControlsText, manualColor); err != nil {
		return fmt.Errorf("gui: add manual: %w", err)
	}
	sliders := s.Sliders()
	for _, sl := range sliders[:4] {
		if err := s.overlay.AddSlider(controls, sl); err != nil {
			return fmt.Errorf("gui: add slider %q: %w", sl.Label, err)
		}
	}
	if err := s.overlay.AddButton(controls, "Reload shaders", s.RequestShadersReload); err != nil {
		return fmt.Errorf("gui: add button: %w", err)
	}

	scene, err := s.overlay.AddWindow(SceneWindow, mgl32.Vec2{fw * 0.01, fh * 0.87})
	if err != nil {
		return fmt.Errorf("gui: add %s window: %w", SceneWindow, err)
	}
	s.scene = scene
	if err := s.overlay.AddSlider(scene, sliders[4]); err != nil {
		return fmt.Errorf("gui: add slider %q: %w", sliders[4].Label, err)
	}

	logging.L().Debug("gui: windows built", "width", w, "height", h)
	return nil
}

func (s *System) remove() {
	if s.scene != 0 {
		s.overlay.RemoveWindow(s.scene)
		s.scene = 0
	}
	if s.controls != 0 {
		s.overlay.RemoveWindow(s.controls)
		s.controls = 0
	}
}

// Draw records the overlay when it is active.
func (s *System) Draw(f *render.Frame) error {
	if !s.loaded || !s.overlay.Active() {
		return nil
	}
	return s.overlay.Draw(f)
}
