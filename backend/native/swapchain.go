package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/internal/logging"
)

type renderTarget struct {
	tex        hal.Texture
	view       hal.TextureView
	format     gpucore.TextureFormat
	clearColor [4]float32
	clearDepth float32
}

// swapChain is a ring of offscreen color targets. Presentation only
// advances bookkeeping.
type swapChain struct {
	images    []gpucore.RenderTargetID
	next      uint32
	vsync     bool
	presented uint64
}

// CreateSwapChain implements gpucore.Device.
func (d *Device) CreateSwapChain(desc *gpucore.SwapChainDesc) (gpucore.SwapChainID, error) {
	if desc.Window != 0 {
		return gpucore.InvalidID, ErrWindowUnsupported
	}
	n := max(desc.ImageCount, 1)

	sc := &swapChain{vsync: desc.VSync}
	for i := uint32(0); i < n; i++ {
		rt, err := d.newRenderTarget(&gpucore.RenderTargetDesc{
			Label:  fmt.Sprintf("%s image %d", desc.Label, i),
			Width:  desc.Width,
			Height: desc.Height,
			Format: desc.ColorFormat,
		})
		if err != nil {
			for _, id := range sc.images {
				d.DestroyRenderTarget(id)
			}
			return gpucore.InvalidID, err
		}
		rt.clearColor = desc.ClearColor

		id := gpucore.RenderTargetID(d.newID())
		d.mu.Lock()
		d.renderTargets[id] = rt
		d.mu.Unlock()
		sc.images = append(sc.images, id)
	}

	id := gpucore.SwapChainID(d.newID())
	d.mu.Lock()
	d.swapChains[id] = sc
	d.mu.Unlock()
	return id, nil
}

// DestroySwapChain implements gpucore.Device.
func (d *Device) DestroySwapChain(id gpucore.SwapChainID) {
	d.mu.Lock()
	sc, ok := d.swapChains[id]
	delete(d.swapChains, id)
	d.mu.Unlock()
	if !ok {
		return
	}
	for _, img := range sc.images {
		d.DestroyRenderTarget(img)
	}
}

// SwapChainImage implements gpucore.Device.
func (d *Device) SwapChainImage(id gpucore.SwapChainID, index uint32) gpucore.RenderTargetID {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc, ok := d.swapChains[id]
	if !ok || int(index) >= len(sc.images) {
		return gpucore.InvalidID
	}
	return sc.images[index]
}

// AcquireNextImage implements gpucore.Device. Offscreen images are always
// available, so signal is considered signaled immediately.
func (d *Device) AcquireNextImage(id gpucore.SwapChainID, signal gpucore.SemaphoreID) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc, ok := d.swapChains[id]
	if !ok {
		return 0, fmt.Errorf("%w: swapchain %d", ErrUnknownID, id)
	}
	if _, ok := d.semaphores[signal]; signal != gpucore.InvalidID && !ok {
		return 0, fmt.Errorf("%w: semaphore %d", ErrUnknownID, signal)
	}
	index := sc.next
	sc.next = (sc.next + 1) % uint32(len(sc.images))
	return index, nil
}

// SetVSync implements gpucore.Device.
func (d *Device) SetVSync(id gpucore.SwapChainID, enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc, ok := d.swapChains[id]
	if !ok {
		return fmt.Errorf("%w: swapchain %d", ErrUnknownID, id)
	}
	sc.vsync = enabled
	return nil
}

// VSync implements gpucore.Device.
func (d *Device) VSync(id gpucore.SwapChainID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc, ok := d.swapChains[id]
	return ok && sc.vsync
}

// Presented returns the number of Present calls made on a swapchain.
func (d *Device) Presented(id gpucore.SwapChainID) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if sc, ok := d.swapChains[id]; ok {
		return sc.presented
	}
	return 0
}

// CreateRenderTarget implements gpucore.Device.
func (d *Device) CreateRenderTarget(desc *gpucore.RenderTargetDesc) (gpucore.RenderTargetID, error) {
	rt, err := d.newRenderTarget(desc)
	if err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.RenderTargetID(d.newID())
	d.mu.Lock()
	d.renderTargets[id] = rt
	d.mu.Unlock()
	return id, nil
}

func (d *Device) newRenderTarget(desc *gpucore.RenderTargetDesc) (*renderTarget, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("native: render target %s: dimensions must be positive", desc.Label)
	}
	format := convertTextureFormat(desc.Format)

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create render target %s: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + " view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("native: create render target view %s: %w", desc.Label, err)
	}
	logging.L().Debug("native: render target created",
		"label", desc.Label, "width", desc.Width, "height", desc.Height)
	return &renderTarget{
		tex:        tex,
		view:       view,
		format:     desc.Format,
		clearDepth: desc.ClearDepth,
	}, nil
}

// DestroyRenderTarget implements gpucore.Device.
func (d *Device) DestroyRenderTarget(id gpucore.RenderTargetID) {
	d.mu.Lock()
	rt, ok := d.renderTargets[id]
	delete(d.renderTargets, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyTextureView(rt.view)
		d.device.DestroyTexture(rt.tex)
	}
}
