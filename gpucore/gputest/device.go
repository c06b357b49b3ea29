// Package gputest provides a recording gpucore.Device for tests.
//
// The fake keeps an ordered log of every lifecycle call, counts calls per
// method, and models fences so that frame pacing can be observed. It also
// flags destroy calls issued while submitted work may still be running.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/modelview/gpucore"
)

// ErrInjected is the default error returned by methods listed in Device.Fail.
var ErrInjected = errors.New("gputest: injected failure")

// Device is a fake gpucore.Device.
//
// By default a submitted fence reads Incomplete for FenceLatency polls and
// then completes. With ManualFences set, fences stay incomplete until
// SignalFence or SignalAll is called, and WaitForFences blocks until then.
type Device struct {
	// FenceLatency is the number of FenceStatus polls a submitted fence
	// reports Incomplete before completing on its own.
	FenceLatency int

	// ManualFences keeps submitted fences pending until signaled by the test.
	ManualFences bool

	// ImageCount overrides the swapchain image count when non-zero.
	ImageCount uint32

	mu   sync.Mutex
	cond *sync.Cond

	nextID uint64
	calls  []string
	counts map[string]int
	fail   map[string]error

	live       map[uint64]string
	fences     map[gpucore.FenceID]*fence
	swapchains map[gpucore.SwapChainID]*swapChain
	semaphores map[gpucore.SemaphoreID]bool
	signaled   map[gpucore.SemaphoreID]bool

	pendingUploads int
	inFlight       bool
	violations     []string

	lastSubmit  *gpucore.SubmitDesc
	lastPresent *gpucore.PresentDesc

	// Recorded draw activity.
	draws     int
	drawCalls []DrawCall
	binds     []Bind
	viewports []Viewport
	pipelines []gpucore.PipelineDesc
	buffers   map[gpucore.BufferID][]byte
}

// DrawCall records one Draw or DrawIndexed call.
type DrawCall struct {
	Indexed bool
	Count   uint32
}

// Bind records one BindDescriptorSet call.
type Bind struct {
	Set   gpucore.DescriptorSetID
	Index uint32
}

// Viewport records one SetViewport call.
type Viewport struct {
	Width, Height      float32
	MinDepth, MaxDepth float32
}

type fence struct {
	submitted bool
	remaining int
	signaled  bool
}

type swapChain struct {
	desc   gpucore.SwapChainDesc
	images []gpucore.RenderTargetID
	next   uint32
}

var _ gpucore.Device = (*Device)(nil)

// NewDevice returns an empty fake device.
func NewDevice() *Device {
	d := &Device{
		counts:     make(map[string]int),
		fail:       make(map[string]error),
		live:       make(map[uint64]string),
		fences:     make(map[gpucore.FenceID]*fence),
		swapchains: make(map[gpucore.SwapChainID]*swapChain),
		semaphores: make(map[gpucore.SemaphoreID]bool),
		signaled:   make(map[gpucore.SemaphoreID]bool),
		buffers:    make(map[gpucore.BufferID][]byte),
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// Fail makes the named method return err (ErrInjected when nil).
func (d *Device) Fail(method string, err error) {
	if err == nil {
		err = ErrInjected
	}
	d.mu.Lock()
	d.fail[method] = err
	d.mu.Unlock()
}

// Recover undoes Fail for the named method.
func (d *Device) Recover(method string) {
	d.mu.Lock()
	delete(d.fail, method)
	d.mu.Unlock()
}

// Calls returns a copy of the call log.
func (d *Device) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Count returns how many times method was called.
func (d *Device) Count(method string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[method]
}

// ResetCalls clears the call log and counters.
func (d *Device) ResetCalls() {
	d.mu.Lock()
	d.calls = nil
	d.counts = make(map[string]int)
	d.mu.Unlock()
}

// Violations returns destroy calls that were issued while submitted work
// had not been waited for, and acquires that signaled a semaphore nothing
// had waited on yet.
func (d *Device) Violations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.violations...)
}

// Live returns the number of objects of the given kind still alive.
// Kinds are the type names without the ID suffix, e.g. "Pipeline".
func (d *Device) Live(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, k := range d.live {
		if k == kind {
			n++
		}
	}
	return n
}

// Draws returns the number of Draw and DrawIndexed calls.
func (d *Device) Draws() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws
}

// DrawCalls returns a copy of the recorded draws.
func (d *Device) DrawCalls() []DrawCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DrawCall(nil), d.drawCalls...)
}

// Binds returns a copy of the recorded descriptor set binds.
func (d *Device) Binds() []Bind {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Bind(nil), d.binds...)
}

// Viewports returns a copy of the recorded viewports.
func (d *Device) Viewports() []Viewport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Viewport(nil), d.viewports...)
}

// PipelineDescs returns copies of every pipeline descriptor created.
func (d *Device) PipelineDescs() []gpucore.PipelineDesc {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gpucore.PipelineDesc(nil), d.pipelines...)
}

// BufferData returns the bytes last written to buf, by creation data or
// UpdateBuffer at offset zero.
func (d *Device) BufferData(buf gpucore.BufferID) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.buffers[buf]...)
}

// ClearRecording forgets recorded draws, binds and viewports.
func (d *Device) ClearRecording() {
	d.mu.Lock()
	d.draws = 0
	d.drawCalls = nil
	d.binds = nil
	d.viewports = nil
	d.mu.Unlock()
}

// LastSubmit returns a copy of the most recent submission, or nil.
func (d *Device) LastSubmit() *gpucore.SubmitDesc {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSubmit
}

// LastPresent returns a copy of the most recent present request, or nil.
func (d *Device) LastPresent() *gpucore.PresentDesc {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastPresent
}

// QueueUpload marks a resource upload pending so that the next
// FlushResourceUpdates returns a semaphore.
func (d *Device) QueueUpload() {
	d.mu.Lock()
	d.pendingUploads++
	d.mu.Unlock()
}

// SignalFence completes a fence.
func (d *Device) SignalFence(id gpucore.FenceID) {
	d.mu.Lock()
	if f, ok := d.fences[id]; ok {
		f.signaled = true
		f.submitted = false
	}
	d.cond.Broadcast()
	d.mu.Unlock()
}

// SignalAll completes every fence.
func (d *Device) SignalAll() {
	d.mu.Lock()
	for _, f := range d.fences {
		f.signaled = true
		f.submitted = false
	}
	d.cond.Broadcast()
	d.mu.Unlock()
}

// FenceSignaled reports whether a fence has no outstanding submission.
func (d *Device) FenceSignaled(id gpucore.FenceID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.fences[id]
	return ok && !f.submitted
}

// record must be called with d.mu held.
func (d *Device) record(method string) error {
	d.calls = append(d.calls, method)
	d.counts[method]++
	return d.fail[method]
}

func (d *Device) create(method, kind string) (uint64, error) {
	if err := d.record(method); err != nil {
		return gpucore.InvalidID, fmt.Errorf("%s: %w", method, err)
	}
	d.nextID++
	d.live[d.nextID] = kind
	return d.nextID, nil
}

func (d *Device) destroy(method string, id uint64) {
	_ = d.record(method)
	if d.inFlight {
		d.violations = append(d.violations, method)
	}
	delete(d.live, id)
}

// === Queues ===

// CreateQueue implements gpucore.Device.
func (d *Device) CreateQueue() (gpucore.QueueID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateQueue", "Queue")
	return gpucore.QueueID(id), err
}

// DestroyQueue implements gpucore.Device.
func (d *Device) DestroyQueue(id gpucore.QueueID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyQueue", uint64(id))
}

// WaitQueueIdle implements gpucore.Device. It completes every fence.
func (d *Device) WaitQueueIdle(gpucore.QueueID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("WaitQueueIdle"); err != nil {
		return err
	}
	for _, f := range d.fences {
		f.signaled = true
		f.submitted = false
	}
	d.inFlight = false
	d.cond.Broadcast()
	return nil
}

// FlushResourceUpdates implements gpucore.Device.
func (d *Device) FlushResourceUpdates() (gpucore.SemaphoreID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("FlushResourceUpdates"); err != nil {
		return gpucore.InvalidID, err
	}
	if d.pendingUploads == 0 {
		return gpucore.InvalidID, nil
	}
	d.pendingUploads = 0
	d.nextID++
	id := gpucore.SemaphoreID(d.nextID)
	d.semaphores[id] = true
	return id, nil
}

// Submit implements gpucore.Device.
func (d *Device) Submit(desc *gpucore.SubmitDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("Submit"); err != nil {
		return err
	}
	for _, s := range desc.WaitSemaphores {
		if s != gpucore.InvalidID && !d.semaphores[s] {
			return fmt.Errorf("gputest: submit waits on unknown semaphore %d", s)
		}
	}
	for _, s := range desc.WaitSemaphores {
		delete(d.signaled, s)
	}
	cp := *desc
	d.lastSubmit = &cp
	if f, ok := d.fences[desc.SignalFence]; ok {
		f.submitted = true
		f.signaled = false
		f.remaining = d.FenceLatency
	}
	d.inFlight = true
	return nil
}

// Present implements gpucore.Device.
func (d *Device) Present(desc *gpucore.PresentDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("Present"); err != nil {
		return err
	}
	if _, ok := d.swapchains[desc.SwapChain]; !ok {
		return fmt.Errorf("gputest: present on unknown swapchain %d", desc.SwapChain)
	}
	cp := *desc
	d.lastPresent = &cp
	return nil
}

// === Swapchains ===

// CreateSwapChain implements gpucore.Device.
func (d *Device) CreateSwapChain(desc *gpucore.SwapChainDesc) (gpucore.SwapChainID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateSwapChain", "SwapChain")
	if err != nil {
		return gpucore.InvalidID, err
	}
	n := desc.ImageCount
	if d.ImageCount != 0 {
		n = d.ImageCount
	}
	sc := &swapChain{desc: *desc}
	for i := uint32(0); i < n; i++ {
		d.nextID++
		sc.images = append(sc.images, gpucore.RenderTargetID(d.nextID))
	}
	d.swapchains[gpucore.SwapChainID(id)] = sc
	return gpucore.SwapChainID(id), nil
}

// DestroySwapChain implements gpucore.Device.
func (d *Device) DestroySwapChain(id gpucore.SwapChainID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroySwapChain", uint64(id))
	delete(d.swapchains, id)
}

// SwapChainImage implements gpucore.Device.
func (d *Device) SwapChainImage(id gpucore.SwapChainID, index uint32) gpucore.RenderTargetID {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc, ok := d.swapchains[id]
	if !ok || int(index) >= len(sc.images) {
		return gpucore.InvalidID
	}
	return sc.images[index]
}

// AcquireNextImage implements gpucore.Device.
func (d *Device) AcquireNextImage(id gpucore.SwapChainID, signal gpucore.SemaphoreID) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("AcquireNextImage"); err != nil {
		return 0, err
	}
	sc, ok := d.swapchains[id]
	if !ok || len(sc.images) == 0 {
		return 0, fmt.Errorf("gputest: acquire on unknown swapchain %d", id)
	}
	if !d.semaphores[signal] {
		return 0, fmt.Errorf("gputest: acquire signals unknown semaphore %d", signal)
	}
	if d.signaled[signal] {
		d.violations = append(d.violations, "AcquireNextImage")
	}
	d.signaled[signal] = true
	idx := sc.next
	sc.next = (sc.next + 1) % uint32(len(sc.images))
	return idx, nil
}

// SetVSync implements gpucore.Device.
func (d *Device) SetVSync(id gpucore.SwapChainID, enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("SetVSync"); err != nil {
		return err
	}
	sc, ok := d.swapchains[id]
	if !ok {
		return fmt.Errorf("gputest: unknown swapchain %d", id)
	}
	if d.inFlight {
		d.violations = append(d.violations, "SetVSync")
	}
	sc.desc.VSync = enabled
	return nil
}

// VSync implements gpucore.Device.
func (d *Device) VSync(id gpucore.SwapChainID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc, ok := d.swapchains[id]
	return ok && sc.desc.VSync
}

// CreateRenderTarget implements gpucore.Device.
func (d *Device) CreateRenderTarget(*gpucore.RenderTargetDesc) (gpucore.RenderTargetID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateRenderTarget", "RenderTarget")
	return gpucore.RenderTargetID(id), err
}

// DestroyRenderTarget implements gpucore.Device.
func (d *Device) DestroyRenderTarget(id gpucore.RenderTargetID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyRenderTarget", uint64(id))
}

// === Resources ===

// CreateShader implements gpucore.Device.
func (d *Device) CreateShader(*gpucore.ShaderDesc) (gpucore.ShaderID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateShader", "Shader")
	return gpucore.ShaderID(id), err
}

// DestroyShader implements gpucore.Device.
func (d *Device) DestroyShader(id gpucore.ShaderID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyShader", uint64(id))
}

// CreateRootSignature implements gpucore.Device.
func (d *Device) CreateRootSignature(*gpucore.RootSignatureDesc) (gpucore.RootSignatureID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateRootSignature", "RootSignature")
	return gpucore.RootSignatureID(id), err
}

// DestroyRootSignature implements gpucore.Device.
func (d *Device) DestroyRootSignature(id gpucore.RootSignatureID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyRootSignature", uint64(id))
}

// CreateDescriptorSet implements gpucore.Device.
func (d *Device) CreateDescriptorSet(*gpucore.DescriptorSetDesc) (gpucore.DescriptorSetID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateDescriptorSet", "DescriptorSet")
	return gpucore.DescriptorSetID(id), err
}

// DestroyDescriptorSet implements gpucore.Device.
func (d *Device) DestroyDescriptorSet(id gpucore.DescriptorSetID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyDescriptorSet", uint64(id))
}

// UpdateDescriptorSet implements gpucore.Device.
func (d *Device) UpdateDescriptorSet(set gpucore.DescriptorSetID, _ uint32, _ []gpucore.DescriptorData) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("UpdateDescriptorSet"); err != nil {
		return err
	}
	if d.live[uint64(set)] != "DescriptorSet" {
		return fmt.Errorf("gputest: unknown descriptor set %d", set)
	}
	return nil
}

// CreatePipeline implements gpucore.Device.
func (d *Device) CreatePipeline(desc *gpucore.PipelineDesc) (gpucore.PipelineID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreatePipeline", "Pipeline")
	if err == nil {
		d.pipelines = append(d.pipelines, *desc)
	}
	return gpucore.PipelineID(id), err
}

// DestroyPipeline implements gpucore.Device.
func (d *Device) DestroyPipeline(id gpucore.PipelineID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyPipeline", uint64(id))
}

// CreateSampler implements gpucore.Device.
func (d *Device) CreateSampler(*gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateSampler", "Sampler")
	return gpucore.SamplerID(id), err
}

// DestroySampler implements gpucore.Device.
func (d *Device) DestroySampler(id gpucore.SamplerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroySampler", uint64(id))
}

// CreateBuffer implements gpucore.Device.
func (d *Device) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateBuffer", "Buffer")
	if err != nil {
		return gpucore.InvalidID, err
	}
	if desc.Data != nil {
		d.buffers[gpucore.BufferID(id)] = append([]byte(nil), desc.Data...)
	}
	return gpucore.BufferID(id), nil
}

// DestroyBuffer implements gpucore.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyBuffer", uint64(id))
	delete(d.buffers, id)
}

// UpdateBuffer implements gpucore.Device.
func (d *Device) UpdateBuffer(buf gpucore.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("UpdateBuffer"); err != nil {
		return err
	}
	if d.live[uint64(buf)] != "Buffer" {
		return fmt.Errorf("gputest: unknown buffer %d", buf)
	}
	if offset == 0 {
		d.buffers[buf] = append([]byte(nil), data...)
	}
	return nil
}

// CreateTexture implements gpucore.Device.
func (d *Device) CreateTexture(*gpucore.TextureDesc) (gpucore.TextureID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateTexture", "Texture")
	return gpucore.TextureID(id), err
}

// DestroyTexture implements gpucore.Device.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyTexture", uint64(id))
}

// === Commands ===

// CreateCommandPool implements gpucore.Device.
func (d *Device) CreateCommandPool(gpucore.QueueID) (gpucore.CommandPoolID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateCommandPool", "CommandPool")
	return gpucore.CommandPoolID(id), err
}

// DestroyCommandPool implements gpucore.Device.
func (d *Device) DestroyCommandPool(id gpucore.CommandPoolID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyCommandPool", uint64(id))
}

// ResetCommandPool implements gpucore.Device.
func (d *Device) ResetCommandPool(gpucore.CommandPoolID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record("ResetCommandPool")
}

// CreateCommandBuffer implements gpucore.Device.
func (d *Device) CreateCommandBuffer(gpucore.CommandPoolID) (gpucore.CommandBufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateCommandBuffer", "CommandBuffer")
	return gpucore.CommandBufferID(id), err
}

// DestroyCommandBuffer implements gpucore.Device.
func (d *Device) DestroyCommandBuffer(id gpucore.CommandBufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyCommandBuffer", uint64(id))
}

// BeginCommandBuffer implements gpucore.Device.
func (d *Device) BeginCommandBuffer(gpucore.CommandBufferID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record("BeginCommandBuffer")
}

// EndCommandBuffer implements gpucore.Device.
func (d *Device) EndCommandBuffer(gpucore.CommandBufferID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record("EndCommandBuffer")
}

// === Sync ===

// CreateFence implements gpucore.Device.
func (d *Device) CreateFence() (gpucore.FenceID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateFence", "Fence")
	if err != nil {
		return gpucore.InvalidID, err
	}
	d.fences[gpucore.FenceID(id)] = &fence{}
	return gpucore.FenceID(id), nil
}

// DestroyFence implements gpucore.Device.
func (d *Device) DestroyFence(id gpucore.FenceID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyFence", uint64(id))
	delete(d.fences, id)
}

// FenceStatus implements gpucore.Device.
func (d *Device) FenceStatus(id gpucore.FenceID) (gpucore.FenceStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("FenceStatus"); err != nil {
		return gpucore.FenceComplete, err
	}
	f, ok := d.fences[id]
	if !ok {
		return gpucore.FenceComplete, fmt.Errorf("gputest: unknown fence %d", id)
	}
	if !f.submitted {
		return gpucore.FenceComplete, nil
	}
	if d.ManualFences {
		return gpucore.FenceIncomplete, nil
	}
	if f.remaining > 0 {
		f.remaining--
		return gpucore.FenceIncomplete, nil
	}
	f.submitted = false
	f.signaled = true
	return gpucore.FenceComplete, nil
}

// WaitForFences implements gpucore.Device.
func (d *Device) WaitForFences(ids ...gpucore.FenceID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("WaitForFences"); err != nil {
		return err
	}
	for _, id := range ids {
		f, ok := d.fences[id]
		if !ok {
			return fmt.Errorf("gputest: unknown fence %d", id)
		}
		if !d.ManualFences {
			f.submitted = false
			f.signaled = true
			continue
		}
		for f.submitted {
			d.cond.Wait()
		}
	}
	return nil
}

// CreateSemaphore implements gpucore.Device.
func (d *Device) CreateSemaphore() (gpucore.SemaphoreID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, err := d.create("CreateSemaphore", "Semaphore")
	if err != nil {
		return gpucore.InvalidID, err
	}
	d.semaphores[gpucore.SemaphoreID(id)] = true
	return gpucore.SemaphoreID(id), nil
}

// DestroySemaphore implements gpucore.Device.
func (d *Device) DestroySemaphore(id gpucore.SemaphoreID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroySemaphore", uint64(id))
	delete(d.semaphores, id)
	delete(d.signaled, id)
}

// === Recording ===

// BeginRenderPass implements gpucore.Device.
func (d *Device) BeginRenderPass(gpucore.CommandBufferID, *gpucore.RenderPassDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record("BeginRenderPass")
}

// EndRenderPass implements gpucore.Device.
func (d *Device) EndRenderPass(gpucore.CommandBufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.record("EndRenderPass")
}

// SetViewport implements gpucore.Device.
func (d *Device) SetViewport(_ gpucore.CommandBufferID, _, _, w, h, minDepth, maxDepth float32) {
	d.mu.Lock()
	d.viewports = append(d.viewports, Viewport{Width: w, Height: h, MinDepth: minDepth, MaxDepth: maxDepth})
	d.mu.Unlock()
}

// SetScissor implements gpucore.Device.
func (d *Device) SetScissor(gpucore.CommandBufferID, uint32, uint32, uint32, uint32) {}

// BindPipeline implements gpucore.Device.
func (d *Device) BindPipeline(gpucore.CommandBufferID, gpucore.PipelineID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.record("BindPipeline")
}

// BindDescriptorSet implements gpucore.Device.
func (d *Device) BindDescriptorSet(_ gpucore.CommandBufferID, index uint32, set gpucore.DescriptorSetID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.record("BindDescriptorSet")
	d.binds = append(d.binds, Bind{Set: set, Index: index})
}

// BindVertexBuffers implements gpucore.Device.
func (d *Device) BindVertexBuffers(gpucore.CommandBufferID, ...gpucore.BufferID) {}

// BindIndexBuffer implements gpucore.Device.
func (d *Device) BindIndexBuffer(gpucore.CommandBufferID, gpucore.BufferID, gpucore.IndexFormat) {}

// Draw implements gpucore.Device.
func (d *Device) Draw(_ gpucore.CommandBufferID, vertexCount, _ uint32) {
	d.mu.Lock()
	d.draws++
	d.drawCalls = append(d.drawCalls, DrawCall{Count: vertexCount})
	d.mu.Unlock()
}

// DrawIndexed implements gpucore.Device.
func (d *Device) DrawIndexed(_ gpucore.CommandBufferID, indexCount, _ uint32, _ int32) {
	d.mu.Lock()
	d.draws++
	d.drawCalls = append(d.drawCalls, DrawCall{Indexed: true, Count: indexCount})
	d.mu.Unlock()
}
