package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/internal/logging"
	"github.com/gogpu/modelview/reload"
)

// Stats counts frame loop activity.
type Stats struct {
	// Frames is the number of frames submitted.
	Frames uint64

	// FenceStalls is the number of BeginFrame calls that had to wait for
	// the GPU to release the ring slot.
	FenceStalls uint64
}

// Context owns the queue, swapchain, depth buffer and frame ring.
type Context struct {
	device gpucore.Device
	opts   contextOptions

	appName string
	queue   gpucore.QueueID
	ring    *Ring

	imageAcquired gpucore.SemaphoreID
	swapChain     gpucore.SwapChainID
	depth         gpucore.RenderTargetID

	frame   *Frame
	drained bool
	stats   Stats
}

var (
	_ reload.System  = (*Context)(nil)
	_ reload.Drainer = (*Context)(nil)
)

// NewContext creates a context on device. Call Init before use.
func NewContext(device gpucore.Device, opts ...ContextOption) *Context {
	o := defaultContextOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Context{
		device:  device,
		opts:    o,
		drained: true,
	}
}

// Init creates the graphics queue, the frame ring and the image-acquired
// semaphore. Failures wrap ErrUnsupported.
func (c *Context) Init(appName string) error {
	if c.ring != nil {
		return nil
	}
	c.appName = appName

	queue, err := c.device.CreateQueue()
	if err != nil {
		return fmt.Errorf("%w: create queue: %w", ErrUnsupported, err)
	}

	ring, err := NewRing(c.device, queue, c.opts.ringSize)
	if err != nil {
		c.device.DestroyQueue(queue)
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	sem, err := c.device.CreateSemaphore()
	if err != nil {
		ring.Destroy()
		c.device.DestroyQueue(queue)
		return fmt.Errorf("%w: create semaphore: %w", ErrUnsupported, err)
	}

	c.queue = queue
	c.ring = ring
	c.imageAcquired = sem
	c.drained = true

	logging.L().Info("render: context initialized",
		"app", appName, "frames_in_flight", ring.Len())
	return nil
}

// Exit drains the queue and releases everything Init created. Load-time
// objects must have been unloaded first.
func (c *Context) Exit() {
	if c.ring == nil {
		return
	}
	if err := c.WaitIdle(); err != nil {
		logging.L().Warn("render: wait idle on exit failed", "error", err)
	}
	c.device.DestroySemaphore(c.imageAcquired)
	c.ring.Destroy()
	c.device.DestroyQueue(c.queue)

	c.imageAcquired = gpucore.InvalidID
	c.ring = nil
	c.queue = gpucore.InvalidID
	c.frame = nil
}

// Device returns the GPU device.
func (c *Context) Device() gpucore.Device { return c.device }

// Queue returns the graphics queue.
func (c *Context) Queue() gpucore.QueueID { return c.queue }

// Ring returns the frame ring, or nil before Init.
func (c *Context) Ring() *Ring { return c.ring }

// SwapChain returns the current swapchain, or InvalidID when not loaded.
func (c *Context) SwapChain() gpucore.SwapChainID { return c.swapChain }

// DepthBuffer returns the current depth buffer, or InvalidID when not loaded.
func (c *Context) DepthBuffer() gpucore.RenderTargetID { return c.depth }

// ColorFormat returns the swapchain image format.
func (c *Context) ColorFormat() gpucore.TextureFormat { return c.opts.colorFormat }

// DepthFormat returns the depth buffer format.
func (c *Context) DepthFormat() gpucore.TextureFormat { return c.opts.depthFormat }

// Size returns the swapchain size.
func (c *Context) Size() (width, height uint32) { return c.opts.width, c.opts.height }

// SetSize records a new size. It takes effect on the next Resize load.
func (c *Context) SetSize(width, height uint32) {
	c.opts.width = width
	c.opts.height = height
}

// VSync reports whether presentation waits for vertical blank.
func (c *Context) VSync() bool { return c.opts.vsync }

// Stats returns frame loop counters.
func (c *Context) Stats() Stats { return c.stats }

// BeginFrame acquires the next swapchain image, waits for the next ring
// slot to be released by the GPU and opens its command buffer.
func (c *Context) BeginFrame() (*Frame, error) {
	if c.ring == nil {
		return nil, ErrNotInitialized
	}
	if c.swapChain == gpucore.InvalidID {
		return nil, ErrNoSwapChain
	}
	if c.frame != nil {
		return nil, ErrFrameInProgress
	}

	image, err := c.device.AcquireNextImage(c.swapChain, c.imageAcquired)
	if err != nil {
		return nil, fmt.Errorf("render: acquire image: %w", err)
	}

	elem := c.ring.Current()
	status, err := c.device.FenceStatus(elem.fence)
	if err != nil {
		c.releaseImage()
		return nil, fmt.Errorf("render: fence status: %w", err)
	}
	if status == gpucore.FenceIncomplete {
		c.stats.FenceStalls++
		logging.L().Debug("render: waiting for ring slot", "slot", elem.index)
		if err := c.device.WaitForFences(elem.fence); err != nil {
			c.releaseImage()
			return nil, fmt.Errorf("render: wait for ring slot %d: %w", elem.index, err)
		}
	}
	elem.state = ElementIdle

	if err := c.device.ResetCommandPool(elem.pool); err != nil {
		c.releaseImage()
		return nil, fmt.Errorf("render: reset command pool: %w", err)
	}
	if err := c.device.BeginCommandBuffer(elem.cmd); err != nil {
		c.releaseImage()
		return nil, fmt.Errorf("render: begin command buffer: %w", err)
	}
	elem.state = ElementRecording

	c.frame = &Frame{
		ctx:        c,
		element:    elem,
		imageIndex: image,
		color:      c.device.SwapChainImage(c.swapChain, image),
		depth:      c.depth,
	}
	return c.frame, nil
}

// EndFrame closes the frame's command buffer, submits it and presents the
// image. The submission waits on the image-acquired semaphore and on any
// pending resource upload, and signals the slot's semaphore and fence.
// Presentation waits on the slot's semaphore. The ring advances even when
// submission fails, and the context stays usable for the next frame.
func (c *Context) EndFrame(f *Frame) error {
	if f == nil || f.consumed || f.ctx != c || c.frame != f {
		return ErrFrameConsumed
	}
	f.consumed = true
	c.frame = nil
	defer c.ring.Advance()

	elem := f.element
	if err := c.device.EndCommandBuffer(elem.cmd); err != nil {
		elem.state = ElementIdle
		c.releaseImage()
		return fmt.Errorf("render: end command buffer: %w", err)
	}

	waits := make([]gpucore.SemaphoreID, 0, 2)
	flush, err := c.device.FlushResourceUpdates()
	if err != nil {
		elem.state = ElementIdle
		c.releaseImage()
		return fmt.Errorf("render: flush resource updates: %w", err)
	}
	if flush != gpucore.InvalidID {
		waits = append(waits, flush)
	}
	waits = append(waits, c.imageAcquired)

	err = c.device.Submit(&gpucore.SubmitDesc{
		Queue:            c.queue,
		CommandBuffers:   []gpucore.CommandBufferID{elem.cmd},
		WaitSemaphores:   waits,
		SignalSemaphores: []gpucore.SemaphoreID{elem.semaphore},
		SignalFence:      elem.fence,
	})
	if err != nil {
		elem.state = ElementIdle
		c.releaseImage()
		return fmt.Errorf("render: submit: %w", err)
	}
	elem.state = ElementSubmitted
	c.drained = false
	c.stats.Frames++

	err = c.device.Present(&gpucore.PresentDesc{
		Queue:          c.queue,
		SwapChain:      c.swapChain,
		ImageIndex:     f.imageIndex,
		WaitSemaphores: []gpucore.SemaphoreID{elem.semaphore},
	})
	if err != nil {
		return fmt.Errorf("render: present: %w", err)
	}
	return nil
}

// releaseImage unsignals the image-acquired semaphore after a frame that
// acquired an image but never submitted. An empty submission waits on it.
// When that fails too the semaphore is replaced.
func (c *Context) releaseImage() {
	err := c.device.Submit(&gpucore.SubmitDesc{
		Queue:          c.queue,
		WaitSemaphores: []gpucore.SemaphoreID{c.imageAcquired},
	})
	if err == nil {
		c.drained = false
		return
	}
	logging.L().Warn("render: replacing image semaphore", "error", err)
	c.device.DestroySemaphore(c.imageAcquired)
	sem, err := c.device.CreateSemaphore()
	if err != nil {
		logging.L().Error("render: create image semaphore", "error", err)
		sem = gpucore.InvalidID
	}
	c.imageAcquired = sem
}

// WaitIdle blocks until the queue has finished all submitted work.
func (c *Context) WaitIdle() error {
	if c.ring == nil {
		return ErrNotInitialized
	}
	if err := c.device.WaitQueueIdle(c.queue); err != nil {
		return fmt.Errorf("render: wait idle: %w", err)
	}
	c.ring.markIdle()
	c.drained = true
	return nil
}

// Drained reports whether no submitted work can still be running.
func (c *Context) Drained() bool { return c.drained }

// ToggleVSync switches the presentation mode. WaitIdle must be called first.
func (c *Context) ToggleVSync() error {
	if c.swapChain == gpucore.InvalidID {
		return ErrNoSwapChain
	}
	if !c.drained {
		return ErrNotIdle
	}
	enabled := !c.device.VSync(c.swapChain)
	if err := c.device.SetVSync(c.swapChain, enabled); err != nil {
		return fmt.Errorf("render: set vsync: %w", err)
	}
	c.opts.vsync = enabled
	logging.L().Info("render: vsync toggled", "enabled", enabled)
	return nil
}

// Load creates the swapchain and depth buffer when t includes Resize or
// RenderTarget.
func (c *Context) Load(t reload.Type) error {
	for _, s := range []reload.Step{reload.StepSwapChain, reload.StepDepthBuffer} {
		if err := c.LoadStep(s, t); err != nil {
			return err
		}
	}
	return nil
}

// Unload destroys the depth buffer and swapchain when t includes Resize or
// RenderTarget. WaitIdle must be called first.
func (c *Context) Unload(t reload.Type) error {
	for _, s := range []reload.Step{reload.StepDepthBuffer, reload.StepSwapChain} {
		if err := c.UnloadStep(s, t); err != nil {
			return err
		}
	}
	return nil
}

// LoadStep implements reload.System.
func (c *Context) LoadStep(s reload.Step, t reload.Type) error {
	if !t.Has(reload.Resize | reload.RenderTarget) {
		return nil
	}
	switch s {
	case reload.StepSwapChain:
		return c.addSwapChain()
	case reload.StepDepthBuffer:
		return c.addDepthBuffer()
	}
	return nil
}

// UnloadStep implements reload.System.
func (c *Context) UnloadStep(s reload.Step, t reload.Type) error {
	if !t.Has(reload.Resize | reload.RenderTarget) {
		return nil
	}
	if s != reload.StepSwapChain && s != reload.StepDepthBuffer {
		return nil
	}
	if !c.drained {
		return ErrNotIdle
	}
	switch s {
	case reload.StepDepthBuffer:
		if c.depth != gpucore.InvalidID {
			c.device.DestroyRenderTarget(c.depth)
			c.depth = gpucore.InvalidID
		}
	case reload.StepSwapChain:
		if c.swapChain != gpucore.InvalidID {
			c.device.DestroySwapChain(c.swapChain)
			c.swapChain = gpucore.InvalidID
		}
	}
	return nil
}

func (c *Context) addSwapChain() error {
	if c.ring == nil {
		return ErrNotInitialized
	}
	if c.swapChain != gpucore.InvalidID {
		return nil
	}
	sc, err := c.device.CreateSwapChain(&gpucore.SwapChainDesc{
		Label:       c.appName + " swapchain",
		Window:      c.opts.window,
		Queue:       c.queue,
		Width:       c.opts.width,
		Height:      c.opts.height,
		ImageCount:  uint32(c.ring.Len()),
		ColorFormat: c.opts.colorFormat,
		ClearColor:  c.opts.clearColor,
		VSync:       c.opts.vsync,
	})
	if err != nil {
		return errors.Join(ErrSwapChain, err)
	}
	c.swapChain = sc
	logging.L().Debug("render: swapchain created",
		"width", c.opts.width, "height", c.opts.height, "vsync", c.opts.vsync)
	return nil
}

func (c *Context) addDepthBuffer() error {
	if c.depth != gpucore.InvalidID {
		return nil
	}
	depth, err := c.device.CreateRenderTarget(&gpucore.RenderTargetDesc{
		Label:      "depth buffer",
		Width:      c.opts.width,
		Height:     c.opts.height,
		Format:     c.opts.depthFormat,
		ClearDepth: 0,
	})
	if err != nil {
		return errors.Join(ErrDepthBuffer, err)
	}
	c.depth = depth
	return nil
}
