package render

import (
	"fmt"

	"github.com/gogpu/modelview/gpucore"
)

// DataBufferCount is the number of frames that may be in flight at once.
const DataBufferCount = 2

// ElementState is the lifecycle state of a ring element.
type ElementState uint8

const (
	// ElementIdle means the element may be recorded into once its fence
	// has been observed complete.
	ElementIdle ElementState = iota

	// ElementRecording means the CPU is recording into the element.
	ElementRecording

	// ElementSubmitted means the element's commands were submitted and
	// its fence has not yet been observed complete.
	ElementSubmitted
)

// String returns the state name.
func (s ElementState) String() string {
	switch s {
	case ElementIdle:
		return "Idle"
	case ElementRecording:
		return "Recording"
	case ElementSubmitted:
		return "Submitted"
	default:
		return "Unknown"
	}
}

// RingElement is one slot of the frame ring: a command pool with one
// command buffer, the fence signaled when its submission completes and the
// semaphore that gates presentation.
type RingElement struct {
	index     uint32
	pool      gpucore.CommandPoolID
	cmd       gpucore.CommandBufferID
	fence     gpucore.FenceID
	semaphore gpucore.SemaphoreID
	state     ElementState
}

// Index returns the slot index in [0, ring length).
func (e *RingElement) Index() uint32 { return e.index }

// Cmd returns the slot's command buffer.
func (e *RingElement) Cmd() gpucore.CommandBufferID { return e.cmd }

// Fence returns the slot's completion fence.
func (e *RingElement) Fence() gpucore.FenceID { return e.fence }

// Semaphore returns the semaphore signaled by the slot's submission.
func (e *RingElement) Semaphore() gpucore.SemaphoreID { return e.semaphore }

// State returns the slot's lifecycle state.
func (e *RingElement) State() ElementState { return e.state }

// Ring is a fixed-size round-robin pool of ring elements.
type Ring struct {
	device   gpucore.Device
	elements []RingElement
	index    uint32
}

// NewRing creates n elements on queue. On failure everything created so
// far is destroyed.
func NewRing(device gpucore.Device, queue gpucore.QueueID, n int) (*Ring, error) {
	if n <= 0 {
		return nil, fmt.Errorf("render: ring size %d must be positive", n)
	}
	r := &Ring{
		device:   device,
		elements: make([]RingElement, 0, n),
	}
	for i := 0; i < n; i++ {
		e, err := newRingElement(device, queue, uint32(i))
		if err != nil {
			r.Destroy()
			return nil, fmt.Errorf("ring element %d: %w", i, err)
		}
		r.elements = append(r.elements, e)
	}
	return r, nil
}

func newRingElement(device gpucore.Device, queue gpucore.QueueID, index uint32) (RingElement, error) {
	e := RingElement{index: index}
	var err error

	if e.pool, err = device.CreateCommandPool(queue); err != nil {
		return e, fmt.Errorf("create command pool: %w", err)
	}
	if e.cmd, err = device.CreateCommandBuffer(e.pool); err != nil {
		e.destroy(device)
		return e, fmt.Errorf("create command buffer: %w", err)
	}
	if e.fence, err = device.CreateFence(); err != nil {
		e.destroy(device)
		return e, fmt.Errorf("create fence: %w", err)
	}
	if e.semaphore, err = device.CreateSemaphore(); err != nil {
		e.destroy(device)
		return e, fmt.Errorf("create semaphore: %w", err)
	}
	return e, nil
}

func (e *RingElement) destroy(device gpucore.Device) {
	if e.semaphore != gpucore.InvalidID {
		device.DestroySemaphore(e.semaphore)
		e.semaphore = gpucore.InvalidID
	}
	if e.fence != gpucore.InvalidID {
		device.DestroyFence(e.fence)
		e.fence = gpucore.InvalidID
	}
	if e.cmd != gpucore.InvalidID {
		device.DestroyCommandBuffer(e.cmd)
		e.cmd = gpucore.InvalidID
	}
	if e.pool != gpucore.InvalidID {
		device.DestroyCommandPool(e.pool)
		e.pool = gpucore.InvalidID
	}
}

// Len returns the number of elements.
func (r *Ring) Len() int { return len(r.elements) }

// Index returns the index of the element the next frame will use.
func (r *Ring) Index() uint32 { return r.index }

// Current returns the element the next frame will use.
func (r *Ring) Current() *RingElement { return &r.elements[r.index] }

// Element returns element i.
func (r *Ring) Element(i int) *RingElement { return &r.elements[i] }

// Advance moves to the next element.
func (r *Ring) Advance() {
	r.index = (r.index + 1) % uint32(len(r.elements))
}

// markIdle resets every element after the queue has been drained.
func (r *Ring) markIdle() {
	for i := range r.elements {
		r.elements[i].state = ElementIdle
	}
}

// Destroy releases all elements. The queue must be idle.
func (r *Ring) Destroy() {
	for i := range r.elements {
		r.elements[i].destroy(r.device)
	}
	r.elements = nil
	r.index = 0
}
