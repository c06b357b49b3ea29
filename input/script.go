package input

import "sync"

// Step is a snapshot held for a number of ticks.
type Step struct {
	Snapshot Snapshot
	Ticks    int
}

// Script replays a fixed sequence of snapshots. After the last step it
// reports no input. Script is safe for concurrent use.
type Script struct {
	mu    sync.Mutex
	steps []Step
	step  int
	tick  int
}

// NewScript returns a script over steps.
func NewScript(steps ...Step) *Script {
	return &Script{steps: append([]Step(nil), steps...)}
}

// Hold returns a step that holds a single action at v for ticks ticks.
func Hold(a Action, v float32, ticks int) Step {
	var s Snapshot
	s.Set(a, v)
	return Step{Snapshot: s, Ticks: ticks}
}

// Idle returns a step with no input for ticks ticks.
func Idle(ticks int) Step {
	return Step{Ticks: ticks}
}

// Poll implements Source.
func (s *Script) Poll() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.step < len(s.steps) && s.tick >= s.steps[s.step].Ticks {
		s.step++
		s.tick = 0
	}
	if s.step >= len(s.steps) {
		return Snapshot{}
	}
	s.tick++
	return s.steps[s.step].Snapshot
}

// Done reports whether every step has been replayed.
func (s *Script) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step >= len(s.steps) {
		return true
	}
	return s.step == len(s.steps)-1 && s.tick >= s.steps[s.step].Ticks
}

// Reset rewinds the script.
func (s *Script) Reset() {
	s.mu.Lock()
	s.step, s.tick = 0, 0
	s.mu.Unlock()
}
