// Package input defines the per-frame input actions the viewer consumes
// and the sources that produce them.
//
// Device polling lives outside this package. A Source returns one
// Snapshot per Update tick; the viewer reads every action from it once.
package input

import "fmt"

// Action identifies one analog input value.
type Action uint8

// Actions.
const (
	MoveX Action = iota
	MoveY
	LookX
	LookY
	MoveUp
	ResetView
	ToggleFullscreen
	ToggleUI
	DumpProfile
	Exit

	actionCount
)

var actionNames = [actionCount]string{
	"MoveX", "MoveY", "LookX", "LookY", "MoveUp",
	"ResetView", "ToggleFullscreen", "ToggleUI", "DumpProfile", "Exit",
}

// String returns the action name.
func (a Action) String() string {
	if a < actionCount {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", a)
}

// ParseAction returns the action with the given name.
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("input: unknown action %q", name)
}

// Snapshot holds the value of every action for one tick. Axes are in
// [-1, 1]; buttons are 0 or 1.
type Snapshot [actionCount]float32

// Value returns the value of a.
func (s *Snapshot) Value(a Action) float32 {
	if a >= actionCount {
		return 0
	}
	return s[a]
}

// Pressed reports whether a button action is down.
func (s *Snapshot) Pressed(a Action) bool {
	return s.Value(a) != 0
}

// Set assigns the value of a.
func (s *Snapshot) Set(a Action, v float32) {
	if a < actionCount {
		s[a] = v
	}
}

// Source produces one snapshot per tick.
type Source interface {
	Poll() Snapshot
}

// SourceFunc adapts a function to Source.
type SourceFunc func() Snapshot

// Poll implements Source.
func (f SourceFunc) Poll() Snapshot { return f() }

// None is a source that never reports input.
var None Source = SourceFunc(func() Snapshot { return Snapshot{} })
