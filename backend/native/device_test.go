package native

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/reload"
	"github.com/gogpu/modelview/render"
)

const testShader = `
@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	require.NoError(t, err)
	adapters := instance.EnumerateAdapters(nil)
	require.NotEmpty(t, adapters)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	d := New(device, queue)
	t.Cleanup(func() {
		d.Destroy()
		cleanup()
	})
	return d
}

func TestOpenBackend(t *testing.T) {
	d, err := OpenBackend(&noop.API{})
	require.NoError(t, err)
	assert.False(t, d.external)
	dev, queue := d.HAL()
	assert.NotNil(t, dev)
	assert.NotNil(t, queue)
	d.Destroy()
	dev, queue = d.HAL()
	assert.Nil(t, dev)
	assert.Nil(t, queue)
}

func TestOpenUnregisteredBackend(t *testing.T) {
	_, err := Open(gputypes.Backend(250))
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

type halProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p *halProvider) Device() gpucontext.Device             { return nil }
func (p *halProvider) Queue() gpucontext.Queue               { return nil }
func (p *halProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *halProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (p *halProvider) HalDevice() any                        { return p.device }
func (p *halProvider) HalQueue() any                         { return p.queue }

func TestNewFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	d, err := NewFromProvider(&halProvider{device: device, queue: queue})
	require.NoError(t, err)
	assert.True(t, d.external)
	d.Destroy()

	// The adopted device survives Destroy.
	dev, _ := d.HAL()
	assert.NotNil(t, dev)

	_, err = NewFromProvider(&halProvider{})
	assert.ErrorIs(t, err, ErrNoHAL)
}

func TestBufferLifecycle(t *testing.T) {
	d := newTestDevice(t)

	id, err := d.CreateBuffer(&gpucore.BufferDesc{
		Label: "vertices",
		Usage: gpucore.BufferUsageVertex,
		Data:  []byte{1, 2, 3, 4, 5},
	})
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, uint64(8), d.buffers[id].size)

	require.NoError(t, d.UpdateBuffer(id, 4, []byte{9, 9, 9, 9}))
	assert.Error(t, d.UpdateBuffer(id, 6, []byte{1, 2, 3, 4}))
	assert.ErrorIs(t, d.UpdateBuffer(gpucore.BufferID(999), 0, nil), ErrUnknownID)

	_, err = d.CreateBuffer(&gpucore.BufferDesc{Label: "empty"})
	assert.Error(t, err)

	d.DestroyBuffer(id)
	d.DestroyBuffer(id)
	assert.Zero(t, d.Live())
}

func TestAlignBufferSize(t *testing.T) {
	for in, want := range map[uint64]uint64{0: 0, 1: 4, 4: 4, 5: 8, 96: 96} {
		assert.Equal(t, want, alignBufferSize(in), "size %d", in)
	}
	assert.Len(t, padded([]byte{1, 2, 3}), 4)
}

func TestTextureLifecycle(t *testing.T) {
	d := newTestDevice(t)

	id, err := d.CreateTexture(&gpucore.TextureDesc{
		Label:  "face",
		Width:  2,
		Height: 2,
		Format: gpucore.TextureFormatRGBA8Unorm,
		Data:   make([]byte, 2*2*4),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Live())

	_, err = d.CreateTexture(&gpucore.TextureDesc{Label: "zero"})
	assert.Error(t, err)

	d.DestroyTexture(id)
	assert.Zero(t, d.Live())
}

func TestCompileWGSL(t *testing.T) {
	words, err := CompileWGSL(testShader)
	require.NoError(t, err)
	require.NotEmpty(t, words)
	assert.Equal(t, uint32(0x07230203), words[0], "SPIR-V magic")

	_, err = CompileWGSL("")
	assert.ErrorIs(t, err, ErrEmptyShader)
}

func TestShaderReloadReusesCompiledModule(t *testing.T) {
	d := newTestDevice(t)

	for i := 0; i < 2; i++ {
		sh, err := d.CreateShader(&gpucore.ShaderDesc{Label: "test", Source: testShader})
		require.NoError(t, err)
		d.DestroyShader(sh)
	}

	stats := d.ModuleCacheStats()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, 1, stats.Len)
	assert.Empty(t, d.shaders)
}

func TestPipelineObjects(t *testing.T) {
	d := newTestDevice(t)

	sh, err := d.CreateShader(&gpucore.ShaderDesc{Label: "test", Source: testShader})
	require.NoError(t, err)
	assert.Equal(t, "vs_main", d.shaders[sh].vertexEntry)

	rs, err := d.CreateRootSignature(&gpucore.RootSignatureDesc{
		Label:   "rs",
		Shaders: []gpucore.ShaderID{sh},
		Bindings: []gpucore.BindingDesc{
			{Name: "tex", Binding: 0, Type: gpucore.DescriptorTexture, Stages: gpucore.ShaderStageFragment},
			{Name: "smp", Binding: 1, Type: gpucore.DescriptorSampler, Stages: gpucore.ShaderStageFragment},
			{
				Name: "ubo", Binding: 0, Type: gpucore.DescriptorUniformBuffer,
				Stages: gpucore.ShaderStageVertex, Frequency: gpucore.UpdateFrequencyPerFrame,
			},
		},
	})
	require.NoError(t, err)
	assert.Len(t, d.rootSignatures[rs].groups, 2)

	p, err := d.CreatePipeline(&gpucore.PipelineDesc{
		Label:         "p",
		Shader:        sh,
		RootSignature: rs,
		VertexAttributes: []gpucore.VertexAttribute{
			{Location: 0, Format: gpucore.VertexFormatFloat32x4},
		},
		VertexStride: 16,
		ColorFormat:  gpucore.TextureFormatBGRA8Unorm,
		DepthFormat:  gpucore.TextureFormatDepth32Float,
		DepthTest:    true,
		DepthWrite:   true,
		DepthCompare: gpucore.CompareGreaterEqual,
	})
	require.NoError(t, err)

	_, err = d.CreatePipeline(&gpucore.PipelineDesc{Shader: sh, RootSignature: 12345})
	assert.ErrorIs(t, err, ErrUnknownID)

	set, err := d.CreateDescriptorSet(&gpucore.DescriptorSetDesc{
		Label:         "uniforms",
		RootSignature: rs,
		Frequency:     gpucore.UpdateFrequencyPerFrame,
		MaxSets:       4,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), d.descriptorSets[set].group)

	ubo, err := d.CreateBuffer(&gpucore.BufferDesc{Label: "ubo", Size: 64, Usage: gpucore.BufferUsageUniform})
	require.NoError(t, err)
	data := []gpucore.DescriptorData{{Binding: 0, Buffer: ubo}}
	require.NoError(t, d.UpdateDescriptorSet(set, 3, data))
	require.NoError(t, d.UpdateDescriptorSet(set, 3, data))
	assert.Error(t, d.UpdateDescriptorSet(set, 4, data))
	assert.Error(t, d.UpdateDescriptorSet(set, 0, []gpucore.DescriptorData{{Binding: 0}}))

	d.DestroyPipeline(p)
	d.DestroyDescriptorSet(set)
	d.DestroyRootSignature(rs)
	d.DestroyShader(sh)
	d.DestroyBuffer(ubo)
	assert.Zero(t, d.Live())
}

func TestSwapChainRequiresOffscreen(t *testing.T) {
	d := newTestDevice(t)
	_, err := d.CreateSwapChain(&gpucore.SwapChainDesc{Window: 1, Width: 4, Height: 4, ImageCount: 2})
	assert.ErrorIs(t, err, ErrWindowUnsupported)
}

func TestSwapChainRoundRobin(t *testing.T) {
	d := newTestDevice(t)
	sc, err := d.CreateSwapChain(&gpucore.SwapChainDesc{
		Label: "sc", Width: 4, Height: 4, ImageCount: 2,
		ColorFormat: gpucore.TextureFormatBGRA8Unorm,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Live())

	var got []uint32
	for i := 0; i < 4; i++ {
		idx, err := d.AcquireNextImage(sc, gpucore.InvalidID)
		require.NoError(t, err)
		got = append(got, idx)
	}
	assert.Equal(t, []uint32{0, 1, 0, 1}, got)
	assert.NotZero(t, d.SwapChainImage(sc, 1))
	assert.Zero(t, d.SwapChainImage(sc, 2))

	require.NoError(t, d.SetVSync(sc, true))
	assert.True(t, d.VSync(sc))

	d.DestroySwapChain(sc)
	assert.Zero(t, d.Live())
	assert.Empty(t, d.renderTargets)
}

func TestFenceNeverSubmittedIsComplete(t *testing.T) {
	d := newTestDevice(t)
	f, err := d.CreateFence()
	require.NoError(t, err)

	status, err := d.FenceStatus(f)
	require.NoError(t, err)
	assert.Equal(t, gpucore.FenceComplete, status)
	require.NoError(t, d.WaitForFences(f))

	_, err = d.FenceStatus(gpucore.FenceID(777))
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestFenceWaitsAreUnboundedByDefault(t *testing.T) {
	d := newTestDevice(t)
	assert.Zero(t, d.timeout)

	bounded := New(d.device, d.queue, WithFenceTimeout(2*time.Second))
	assert.Equal(t, 2*time.Second, bounded.timeout)

	// A fence that stays pending well past any single slice still completes.
	polls := 0
	err := waitLoop(func(limit time.Duration) (bool, error) {
		assert.Equal(t, time.Millisecond, limit)
		polls++
		return polls == 50, nil
	}, 0, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 50, polls)
}

func TestFenceWaitTimeout(t *testing.T) {
	pending := func(time.Duration) (bool, error) { return false, nil }
	assert.ErrorIs(t, waitLoop(pending, time.Millisecond, time.Second), ErrTimeout)

	lost := errors.New("device lost")
	failing := func(time.Duration) (bool, error) { return false, lost }
	assert.ErrorIs(t, waitLoop(failing, 0, time.Millisecond), lost)
}

func TestSubmitRequiresEndedBuffer(t *testing.T) {
	d := newTestDevice(t)
	q, err := d.CreateQueue()
	require.NoError(t, err)
	pool, err := d.CreateCommandPool(q)
	require.NoError(t, err)
	cmd, err := d.CreateCommandBuffer(pool)
	require.NoError(t, err)

	err = d.Submit(&gpucore.SubmitDesc{Queue: q, CommandBuffers: []gpucore.CommandBufferID{cmd}})
	assert.ErrorIs(t, err, ErrNotRecording)
	assert.ErrorIs(t, d.EndCommandBuffer(cmd), ErrNotRecording)

	d.DestroyCommandPool(pool)
	assert.Empty(t, d.cmds)
}

func TestRecordingOutsidePassIsDropped(t *testing.T) {
	d := newTestDevice(t)
	// No pass is open; these must not panic.
	d.Draw(gpucore.CommandBufferID(1), 3, 0)
	d.SetViewport(gpucore.CommandBufferID(1), 0, 0, 1, 1, 0, 1)
	d.EndRenderPass(gpucore.CommandBufferID(1))
}

func TestFrameLoop(t *testing.T) {
	d := newTestDevice(t)

	ctx := render.NewContext(d, render.WithSize(64, 48))
	require.NoError(t, ctx.Init("native test"))
	require.NoError(t, ctx.Load(reload.All))

	for i := 0; i < 5; i++ {
		f, err := ctx.BeginFrame()
		require.NoError(t, err)
		assert.Equal(t, uint32(i%2), f.Index())

		require.NoError(t, f.BeginRenderPass())
		d.SetViewport(f.Cmd(), 0, 0, 64, 48, 0, 1)
		d.Draw(f.Cmd(), 3, 0)
		f.EndRenderPass()

		require.NoError(t, ctx.EndFrame(f))
	}
	assert.Equal(t, uint64(5), ctx.Stats().Frames)
	assert.Equal(t, uint64(5), d.Presented(ctx.SwapChain()))

	for _, fence := range []gpucore.FenceID{ctx.Ring().Element(0).Fence(), ctx.Ring().Element(1).Fence()} {
		require.NoError(t, d.WaitForFences(fence))
		status, err := d.FenceStatus(fence)
		require.NoError(t, err)
		assert.Equal(t, gpucore.FenceComplete, status)
	}

	require.NoError(t, ctx.WaitIdle())
	require.NoError(t, ctx.ToggleVSync())
	assert.True(t, ctx.VSync())

	require.NoError(t, ctx.Unload(reload.All))
	ctx.Exit()
	assert.Zero(t, d.Live())
}

func TestDestroyReleasesEverything(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	d := New(device, queue)

	ctx := render.NewContext(d, render.WithSize(16, 16))
	require.NoError(t, ctx.Init("leak test"))
	require.NoError(t, ctx.Load(reload.Resize))
	_, err := d.CreateBuffer(&gpucore.BufferDesc{Label: "b", Size: 16})
	require.NoError(t, err)
	assert.NotZero(t, d.Live())

	d.Destroy()
	assert.Zero(t, d.Live())
}

func TestErrorsAreDistinct(t *testing.T) {
	all := []error{
		ErrNoAdapter, ErrBackendUnavailable, ErrNoHAL, ErrUnknownID,
		ErrWindowUnsupported, ErrNotRecording, ErrTimeout, ErrEmptyShader,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v is %v", a, b)
			}
		}
	}
}
