package gui

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/modelview/render"
)

// Widget is a widget recorded by Headless.
type Widget struct {
	Kind    string // "text", "slider" or "button"
	Label   string
	Text    string
	Color   Color
	Slider  Slider
	OnClick func()
}

// Window is a window recorded by Headless.
type Window struct {
	Title   string
	Pos     mgl32.Vec2
	Widgets []Widget
}

// Headless is an Overlay that keeps the widget tree in memory and draws
// nothing. It backs offscreen runs and lets callers drive sliders and
// buttons by label.
type Headless struct {
	mu      sync.Mutex
	next    WindowID
	windows map[WindowID]*Window
	focused bool
	hidden  bool
	draws   int
}

var _ Overlay = (*Headless)(nil)

// NewHeadless returns an empty, active headless overlay.
func NewHeadless() *Headless {
	return &Headless{windows: make(map[WindowID]*Window)}
}

// AddWindow implements Overlay.
func (h *Headless) AddWindow(title string, pos mgl32.Vec2) (WindowID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	h.windows[h.next] = &Window{Title: title, Pos: pos}
	return h.next, nil
}

// RemoveWindow implements Overlay.
func (h *Headless) RemoveWindow(id WindowID) {
	h.mu.Lock()
	delete(h.windows, id)
	h.mu.Unlock()
}

func (h *Headless) add(id WindowID, w Widget) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	win, ok := h.windows[id]
	if !ok {
		return fmt.Errorf("gui: unknown window %d", id)
	}
	win.Widgets = append(win.Widgets, w)
	return nil
}

// AddText implements Overlay.
func (h *Headless) AddText(id WindowID, label, text string, color Color) error {
	return h.add(id, Widget{Kind: "text", Label: label, Text: text, Color: color})
}

// AddSlider implements Overlay.
func (h *Headless) AddSlider(id WindowID, s Slider) error {
	return h.add(id, Widget{Kind: "slider", Label: s.Label, Slider: s})
}

// AddButton implements Overlay.
func (h *Headless) AddButton(id WindowID, label string, onClick func()) error {
	return h.add(id, Widget{Kind: "button", Label: label, OnClick: onClick})
}

// Focused implements Overlay.
func (h *Headless) Focused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focused
}

// SetFocused simulates the pointer entering or leaving a window.
func (h *Headless) SetFocused(f bool) {
	h.mu.Lock()
	h.focused = f
	h.mu.Unlock()
}

// SetActive implements Overlay.
func (h *Headless) SetActive(a bool) {
	h.mu.Lock()
	h.hidden = !a
	h.mu.Unlock()
}

// Active implements Overlay.
func (h *Headless) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.hidden
}

// Draw implements Overlay. It only counts calls.
func (h *Headless) Draw(*render.Frame) error {
	h.mu.Lock()
	h.draws++
	h.mu.Unlock()
	return nil
}

// Draws returns the number of Draw calls.
func (h *Headless) Draws() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.draws
}

// Windows returns copies of the live windows ordered by creation.
func (h *Headless) Windows() []Window {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Window, 0, len(h.windows))
	for id := WindowID(1); id <= h.next; id++ {
		if w, ok := h.windows[id]; ok {
			cp := *w
			cp.Widgets = append([]Widget(nil), w.Widgets...)
			out = append(out, cp)
		}
	}
	return out
}

func (h *Headless) find(kind, label string) (Widget, bool) {
	for _, w := range h.Windows() {
		for _, wd := range w.Widgets {
			if wd.Kind == kind && wd.Label == label {
				return wd, true
			}
		}
	}
	return Widget{}, false
}

// SetSlider drags the slider with the given label to v.
func (h *Headless) SetSlider(label string, v float32) error {
	wd, ok := h.find("slider", label)
	if !ok {
		return fmt.Errorf("gui: no slider %q", label)
	}
	wd.Slider.Set(v)
	return nil
}

// Click presses the button with the given label.
func (h *Headless) Click(label string) error {
	wd, ok := h.find("button", label)
	if !ok {
		return fmt.Errorf("gui: no button %q", label)
	}
	if wd.OnClick != nil {
		wd.OnClick()
	}
	return nil
}
