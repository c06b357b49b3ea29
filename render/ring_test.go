package render

import (
	"testing"

	"github.com/gogpu/modelview/gpucore/gputest"
)

func TestNewRingRejectsEmpty(t *testing.T) {
	dev := gputest.NewDevice()
	for _, n := range []int{0, -1} {
		if _, err := NewRing(dev, 1, n); err == nil {
			t.Errorf("NewRing(%d) succeeded, want error", n)
		}
	}
}

func TestRingAdvanceWraps(t *testing.T) {
	dev := gputest.NewDevice()
	r, err := NewRing(dev, 1, 3)
	if err != nil {
		t.Fatalf("NewRing: %v", err)
	}
	defer r.Destroy()

	want := []uint32{0, 1, 2, 0, 1}
	for i, w := range want {
		if got := r.Index(); got != w {
			t.Errorf("step %d: Index() = %d, want %d", i, got, w)
		}
		if got := r.Current().Index(); got != w {
			t.Errorf("step %d: Current().Index() = %d, want %d", i, got, w)
		}
		r.Advance()
	}
}

func TestRingElementsDistinct(t *testing.T) {
	dev := gputest.NewDevice()
	r, err := NewRing(dev, 1, DataBufferCount)
	if err != nil {
		t.Fatalf("NewRing: %v", err)
	}
	a, b := r.Element(0), r.Element(1)
	if a.Fence() == b.Fence() || a.Semaphore() == b.Semaphore() || a.Cmd() == b.Cmd() {
		t.Error("ring elements share synchronization objects")
	}
	if a.State() != ElementIdle {
		t.Errorf("new element state = %v, want Idle", a.State())
	}

	r.Destroy()
	if n := dev.Live("Fence"); n != 0 {
		t.Errorf("%d fences alive after Destroy", n)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after Destroy, want 0", r.Len())
	}
}

func TestElementStateString(t *testing.T) {
	tests := map[ElementState]string{
		ElementIdle:      "Idle",
		ElementRecording: "Recording",
		ElementSubmitted: "Submitted",
		ElementState(9):  "Unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}
