package native

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/internal/cache"
	"github.com/gogpu/modelview/internal/logging"
)

// fenceWaitSlice is the step of an unbounded fence wait. A warning is
// logged after each step that ends with the fence still pending.
const fenceWaitSlice = time.Second

// DefaultModuleCacheSize is the number of compiled shaders kept across
// shader reloads.
const DefaultModuleCacheSize = 32

// Device implements gpucore.Device on a HAL device and queue.
//
// Each gpucore ID maps to a HAL object held in a per-kind table. The
// tables are guarded by a mutex so that Destroy and the introspection
// helpers are safe to call from tests running the frame loop elsewhere.
type Device struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue

	instance hal.Instance
	external bool
	timeout  time.Duration

	nextID  atomic.Uint64
	modules *cache.Cache[cache.Key, []uint32]

	queues         map[gpucore.QueueID]struct{}
	swapChains     map[gpucore.SwapChainID]*swapChain
	renderTargets  map[gpucore.RenderTargetID]*renderTarget
	shaders        map[gpucore.ShaderID]*shader
	rootSignatures map[gpucore.RootSignatureID]*rootSignature
	descriptorSets map[gpucore.DescriptorSetID]*descriptorSet
	pipelines      map[gpucore.PipelineID]*pipeline
	samplers       map[gpucore.SamplerID]hal.Sampler
	buffers        map[gpucore.BufferID]*buffer
	textures       map[gpucore.TextureID]*texture
	pools          map[gpucore.CommandPoolID]*commandPool
	cmds           map[gpucore.CommandBufferID]*commandBuffer
	fences         map[gpucore.FenceID]*fence
	semaphores     map[gpucore.SemaphoreID]struct{}
}

var _ gpucore.Device = (*Device)(nil)

// Option configures a Device.
type Option func(*Device)

// WithFenceTimeout bounds blocking fence waits. A wait that runs out
// returns ErrTimeout. By default waits are unbounded.
func WithFenceTimeout(d time.Duration) Option {
	return func(dev *Device) {
		if d > 0 {
			dev.timeout = d
		}
	}
}

// WithModuleCacheSize sets how many compiled shaders are kept.
func WithModuleCacheSize(n int) Option {
	return func(dev *Device) {
		dev.modules = cache.New[cache.Key, []uint32](n)
	}
}

// New wraps an open HAL device and queue. The device is not destroyed by
// Destroy.
func New(device hal.Device, queue hal.Queue, opts ...Option) *Device {
	d := &Device{
		device:         device,
		queue:          queue,
		external:       true,
		modules:        cache.New[cache.Key, []uint32](DefaultModuleCacheSize),
		queues:         make(map[gpucore.QueueID]struct{}),
		swapChains:     make(map[gpucore.SwapChainID]*swapChain),
		renderTargets:  make(map[gpucore.RenderTargetID]*renderTarget),
		shaders:        make(map[gpucore.ShaderID]*shader),
		rootSignatures: make(map[gpucore.RootSignatureID]*rootSignature),
		descriptorSets: make(map[gpucore.DescriptorSetID]*descriptorSet),
		pipelines:      make(map[gpucore.PipelineID]*pipeline),
		samplers:       make(map[gpucore.SamplerID]hal.Sampler),
		buffers:        make(map[gpucore.BufferID]*buffer),
		textures:       make(map[gpucore.TextureID]*texture),
		pools:          make(map[gpucore.CommandPoolID]*commandPool),
		cmds:           make(map[gpucore.CommandBufferID]*commandBuffer),
		fences:         make(map[gpucore.FenceID]*fence),
		semaphores:     make(map[gpucore.SemaphoreID]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	// IDs start at 1; 0 is InvalidID
	d.nextID.Store(1)
	return d
}

// NewFromProvider adopts the HAL device and queue of a host application.
// The provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return New(device, queue, opts...), nil
}

// Open creates a device on the registered HAL backend of the given kind.
// The backend package must be imported, e.g. github.com/gogpu/wgpu/hal/vulkan.
func Open(kind gputypes.Backend, opts ...Option) (*Device, error) {
	backend, ok := hal.GetBackend(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, kind)
	}
	return OpenBackend(backend, opts...)
}

// OpenBackend creates an instance on backend and opens its preferred
// adapter, favoring discrete then integrated GPUs.
func OpenBackend(backend hal.Backend, opts ...Option) (*Device, error) {
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	selected := &adapters[0]
	for _, want := range []gputypes.DeviceType{gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU} {
		found := false
		for i := range adapters {
			if adapters[i].Info.DeviceType == want {
				selected = &adapters[i]
				found = true
				break
			}
		}
		if found {
			break
		}
	}

	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open device: %w", err)
	}

	d := New(open.Device, open.Queue, opts...)
	d.instance = instance
	d.external = false
	logging.L().Info("native: device opened", "adapter", selected.Info.Name)
	return d, nil
}

// HAL returns the underlying device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.device, d.queue }

func (d *Device) newID() uint64 {
	return d.nextID.Add(1) - 1
}

// Live returns the number of live objects across all kinds.
func (d *Device) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues) + len(d.swapChains) + len(d.shaders) +
		len(d.rootSignatures) + len(d.descriptorSets) + len(d.pipelines) +
		len(d.samplers) + len(d.buffers) + len(d.textures) + len(d.pools) +
		len(d.cmds) + len(d.fences) + len(d.semaphores) +
		len(d.renderTargets) - d.swapChainImagesLocked()
}

func (d *Device) swapChainImagesLocked() int {
	n := 0
	for _, sc := range d.swapChains {
		n += len(sc.images)
	}
	return n
}

// Destroy releases every object still alive and, when the device was
// opened by this package, the HAL device and instance.
func (d *Device) Destroy() {
	for id := range snapshot(&d.mu, d.descriptorSets) {
		d.DestroyDescriptorSet(id)
	}
	for id := range snapshot(&d.mu, d.pipelines) {
		d.DestroyPipeline(id)
	}
	for id := range snapshot(&d.mu, d.rootSignatures) {
		d.DestroyRootSignature(id)
	}
	for id := range snapshot(&d.mu, d.shaders) {
		d.DestroyShader(id)
	}
	for id := range snapshot(&d.mu, d.samplers) {
		d.DestroySampler(id)
	}
	for id := range snapshot(&d.mu, d.buffers) {
		d.DestroyBuffer(id)
	}
	for id := range snapshot(&d.mu, d.textures) {
		d.DestroyTexture(id)
	}
	for id := range snapshot(&d.mu, d.swapChains) {
		d.DestroySwapChain(id)
	}
	for id := range snapshot(&d.mu, d.renderTargets) {
		d.DestroyRenderTarget(id)
	}
	for id := range snapshot(&d.mu, d.cmds) {
		d.DestroyCommandBuffer(id)
	}
	for id := range snapshot(&d.mu, d.pools) {
		d.DestroyCommandPool(id)
	}
	for id := range snapshot(&d.mu, d.fences) {
		d.DestroyFence(id)
	}

	d.mu.Lock()
	clear(d.semaphores)
	clear(d.queues)
	d.mu.Unlock()

	if !d.external && d.device != nil {
		d.device.Destroy()
		d.device = nil
		d.queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// snapshot copies the keys of m so that destroy calls may mutate it.
func snapshot[K comparable, V any](mu *sync.Mutex, m map[K]V) map[K]struct{} {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[K]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}
