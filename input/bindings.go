package input

import "sort"

// Binding maps a key to an action and the value it contributes while
// held.
type Binding struct {
	Action Action
	Value  float32
}

// Bindings maps key names to bindings.
type Bindings map[string]Binding

// DefaultBindings matches the controls manual shown in the UI.
var DefaultBindings = Bindings{
	"W":      {MoveY, -1},
	"S":      {MoveY, 1},
	"A":      {MoveX, 1},
	"D":      {MoveX, -1},
	"Q":      {MoveUp, -1},
	"E":      {MoveUp, 1},
	"R":      {ResetView, 1},
	"F":      {ToggleFullscreen, 1},
	"U":      {ToggleUI, 1},
	"P":      {DumpProfile, 1},
	"Escape": {Exit, 1},
}

// Snapshot builds a snapshot from the held keys. Contributions to the
// same action add up and are clamped to [-1, 1]. Unknown keys are
// ignored.
func (b Bindings) Snapshot(held ...string) Snapshot {
	var s Snapshot
	for _, k := range held {
		bind, ok := b[k]
		if !ok {
			continue
		}
		s[bind.Action] = clamp(s[bind.Action]+bind.Value, -1, 1)
	}
	return s
}

// Keys returns the bound key names in sorted order.
func (b Bindings) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
