package scene

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/gpucore/gputest"
	"github.com/gogpu/modelview/internal/shaders"
	"github.com/gogpu/modelview/reload"
	"github.com/gogpu/modelview/render"
)

type fixture struct {
	dev   *gputest.Device
	ctx   *render.Context
	rs    *RenderSystem
	sky   *SkyBox
	scene *Scene
	coord *reload.Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := gputest.NewDevice()
	ctx := render.NewContext(dev, render.WithSize(640, 480))
	require.NoError(t, ctx.Init("scene test"))

	var faces [SideCount]gpucore.TextureID
	for i := range faces {
		id, err := dev.CreateTexture(&gpucore.TextureDesc{Width: 1, Height: 1, Format: gpucore.TextureFormatRGBA8Unorm})
		require.NoError(t, err)
		faces[i] = id
	}
	sky, err := NewSkyBox(dev, faces)
	require.NoError(t, err)

	vb, err := dev.CreateBuffer(&gpucore.BufferDesc{Size: VertexStride * 3, Usage: gpucore.BufferUsageVertex})
	require.NoError(t, err)
	ib, err := dev.CreateBuffer(&gpucore.BufferDesc{Size: 12, Usage: gpucore.BufferUsageIndex})
	require.NoError(t, err)

	rs := NewRenderSystem(ctx, shaders.NewLibrary(""))
	rs.SetSkyBox(sky)
	require.NoError(t, rs.Init())

	f := &fixture{
		dev:   dev,
		ctx:   ctx,
		rs:    rs,
		sky:   sky,
		scene: New(&Raw{VertexBuffer: vb, Index: ib, Count: 3}),
		coord: reload.NewCoordinator(ctx, ctx, rs),
	}
	require.NoError(t, f.coord.Load(reload.All))
	return f
}

func (f *fixture) teardown(t *testing.T) {
	t.Helper()
	require.NoError(t, f.coord.Unload(reload.All))
	f.rs.Exit()
	f.scene.Destroy(f.dev)
	f.sky.Destroy(f.dev)
	f.ctx.Exit()
}

func TestRenderSystemLoadCreatesEverything(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, 2, f.dev.Live("Shader"))
	assert.Equal(t, 1, f.dev.Live("RootSignature"))
	assert.Equal(t, 2, f.dev.Live("DescriptorSet"))
	assert.Equal(t, 2, f.dev.Live("Pipeline"))
	// 1 skybox vertex buffer, 2 mesh buffers, 2 uniform buffers per slot.
	assert.Equal(t, 3+2*render.DataBufferCount, f.dev.Live("Buffer"))

	// One texture-set update plus two uniform slots per ring slot.
	assert.Equal(t, 1+2*render.DataBufferCount, f.dev.Count("UpdateDescriptorSet"))

	f.teardown(t)
	assert.Zero(t, f.dev.Live("Pipeline"))
	assert.Zero(t, f.dev.Live("Shader"))
	assert.Zero(t, f.dev.Live("Buffer"))
	assert.Zero(t, f.dev.Live("Texture"))
	assert.Empty(t, f.dev.Violations())
}

func TestScenePipelineUsesReverseDepth(t *testing.T) {
	f := newFixture(t)
	defer f.teardown(t)

	var scene, sky *gpucore.PipelineDesc
	descs := f.dev.PipelineDescs()
	for i := range descs {
		switch descs[i].Label {
		case "scene pipeline":
			scene = &descs[i]
		case "skybox pipeline":
			sky = &descs[i]
		}
	}
	require.NotNil(t, scene)
	require.NotNil(t, sky)

	assert.True(t, scene.DepthTest)
	assert.True(t, scene.DepthWrite)
	assert.Equal(t, gpucore.CompareGreaterEqual, scene.DepthCompare)
	assert.Equal(t, uint32(VertexStride), scene.VertexStride)
	assert.False(t, sky.DepthTest)
	assert.Equal(t, uint32(16), sky.VertexStride)
}

func TestShaderReloadSkipsSwapChain(t *testing.T) {
	f := newFixture(t)
	defer f.teardown(t)

	sc := f.ctx.SwapChain()
	depth := f.ctx.DepthBuffer()
	f.dev.ResetCalls()

	require.NoError(t, f.coord.Reload(reload.Shader))

	assert.Equal(t, 2, f.dev.Count("CreateShader"))
	assert.Equal(t, 2, f.dev.Count("DestroyShader"))
	assert.Equal(t, 2, f.dev.Count("CreatePipeline"))
	assert.Equal(t, 1, f.dev.Count("CreateRootSignature"))
	assert.Zero(t, f.dev.Count("CreateSwapChain"))
	assert.Zero(t, f.dev.Count("DestroySwapChain"))
	assert.Zero(t, f.dev.Count("CreateRenderTarget"))
	assert.Zero(t, f.dev.Count("DestroyRenderTarget"))
	assert.Equal(t, sc, f.ctx.SwapChain())
	assert.Equal(t, depth, f.ctx.DepthBuffer())
}

func TestRenderTargetReloadRebuildsPipelinesOnly(t *testing.T) {
	f := newFixture(t)
	defer f.teardown(t)
	f.dev.ResetCalls()

	require.NoError(t, f.coord.Reload(reload.RenderTarget))

	assert.Equal(t, 2, f.dev.Count("CreatePipeline"))
	assert.Equal(t, 2, f.dev.Count("DestroyPipeline"))
	assert.Equal(t, 1, f.dev.Count("CreateSwapChain"))
	assert.Zero(t, f.dev.Count("CreateShader"))
	assert.Zero(t, f.dev.Count("CreateDescriptorSet"))
}

func TestResizeKeepsPipelines(t *testing.T) {
	f := newFixture(t)
	defer f.teardown(t)
	f.dev.ResetCalls()

	f.ctx.SetSize(800, 600)
	require.NoError(t, f.coord.Reload(reload.Resize))

	assert.Zero(t, f.dev.Count("CreatePipeline"))
	assert.Zero(t, f.dev.Count("DestroyPipeline"))
	assert.Equal(t, 1, f.dev.Count("CreateSwapChain"))
	// Descriptor sets are rebound after every reload.
	assert.Equal(t, 1+2*render.DataBufferCount, f.dev.Count("UpdateDescriptorSet"))
}

func TestDrawUsesSlotUniforms(t *testing.T) {
	f := newFixture(t)
	defer f.teardown(t)

	for i := 0; i < 4; i++ {
		f.dev.ClearRecording()
		frame, err := f.ctx.BeginFrame()
		require.NoError(t, err)
		slot := frame.Index()

		require.NoError(t, frame.BeginRenderPass())
		require.NoError(t, f.rs.Draw(frame, f.scene))
		frame.EndRenderPass()
		require.NoError(t, f.ctx.EndFrame(frame))

		binds := f.dev.Binds()
		require.Len(t, binds, 3)
		assert.Equal(t, uint32(0), binds[0].Index)
		assert.Equal(t, slot*2, binds[1].Index)
		assert.Equal(t, slot*2+1, binds[2].Index)

		calls := f.dev.DrawCalls()
		require.Len(t, calls, 2)
		assert.Equal(t, gputest.DrawCall{Count: SkyBoxVertexCount}, calls[0])
		assert.Equal(t, gputest.DrawCall{Indexed: true, Count: 3}, calls[1])

		vps := f.dev.Viewports()
		require.Len(t, vps, 2)
		assert.Equal(t, gputest.Viewport{Width: 640, Height: 480, MinDepth: 1, MaxDepth: 1}, vps[0])
		assert.Equal(t, gputest.Viewport{Width: 640, Height: 480, MinDepth: 0, MaxDepth: 1}, vps[1])
	}
}

func TestDrawWritesUniforms(t *testing.T) {
	f := newFixture(t)
	defer f.teardown(t)

	view := mgl32.Translate3D(1, 2, 3)
	proj := mgl32.Ident4()
	f.rs.UpdateViewProj(mgl32.Ident4(), view, proj)

	frame, err := f.ctx.BeginFrame()
	require.NoError(t, err)
	require.NoError(t, f.rs.Draw(frame, f.scene))
	require.NoError(t, f.ctx.EndFrame(frame))

	slot := frame.Index()
	scene := f.dev.BufferData(f.rs.sceneBuffers[slot])
	require.Len(t, scene, sceneUniformSize)
	assert.Equal(t, float32(1), floatAt(scene, 12))
	assert.Equal(t, float32(2), floatAt(scene, 13))
	assert.Equal(t, float32(3), floatAt(scene, 14))
	// Light color follows the matrix and the light position.
	assert.Equal(t, float32(0.9), floatAt(scene, 20))
	assert.Equal(t, float32(0.7), floatAt(scene, 22))

	sky := f.dev.BufferData(f.rs.skyBuffers[slot])
	require.Len(t, sky, skyUniformSize)
	assert.Zero(t, floatAt(sky, 12))
	assert.Zero(t, floatAt(sky, 13))
	assert.Zero(t, floatAt(sky, 14))
	assert.Equal(t, float32(1), floatAt(sky, 15))
}

func TestDrawBeforeLoad(t *testing.T) {
	dev := gputest.NewDevice()
	ctx := render.NewContext(dev)
	require.NoError(t, ctx.Init("t"))
	defer ctx.Exit()
	rs := NewRenderSystem(ctx, shaders.NewLibrary(""))
	assert.ErrorIs(t, rs.Draw(nil, nil), ErrNotLoaded)
}

func TestInitRequiresContext(t *testing.T) {
	ctx := render.NewContext(gputest.NewDevice())
	rs := NewRenderSystem(ctx, shaders.NewLibrary(""))
	assert.ErrorIs(t, rs.Init(), ErrNotInitialized)
}

func TestPrepareNeedsSkyBox(t *testing.T) {
	dev := gputest.NewDevice()
	ctx := render.NewContext(dev)
	require.NoError(t, ctx.Init("t"))
	defer ctx.Exit()

	rs := NewRenderSystem(ctx, shaders.NewLibrary(""))
	require.NoError(t, rs.Init())
	defer rs.Exit()

	err := reload.NewCoordinator(ctx, ctx, rs).Load(reload.All)
	assert.ErrorIs(t, err, ErrNoSkyBox)
}

func TestPipelineFailureAbortsLoad(t *testing.T) {
	dev := gputest.NewDevice()
	dev.Fail("CreatePipeline", nil)
	ctx := render.NewContext(dev)
	require.NoError(t, ctx.Init("t"))
	defer ctx.Exit()

	rs := NewRenderSystem(ctx, shaders.NewLibrary(""))
	err := reload.NewCoordinator(ctx, ctx, rs).Load(reload.All)
	require.ErrorIs(t, err, gputest.ErrInjected)
	assert.Zero(t, dev.Live("Pipeline"))
}

func floatAt(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}
