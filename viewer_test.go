package modelview

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/modelview/gpucore/gputest"
	"github.com/gogpu/modelview/gui"
	"github.com/gogpu/modelview/input"
	"github.com/gogpu/modelview/internal/assets"
	"github.com/gogpu/modelview/reload"
	"github.com/gogpu/modelview/scene"
)

const tick = float32(1) / 60

// testConfig writes a 2x2 skybox and a cube mesh into a temp dir and
// returns a config pointing at them.
func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	for _, name := range scene.DefaultFaceFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
	}

	buf.Reset()
	require.NoError(t, assets.WriteGeometry(&buf, assets.Cube()))
	mesh := filepath.Join(dir, "cube"+assets.GeometryExt)
	require.NoError(t, os.WriteFile(mesh, buf.Bytes(), 0o644))

	cfg := DefaultConfig()
	cfg.AppName = "viewer test"
	cfg.Width, cfg.Height = 320, 240
	cfg.Mesh = mesh
	cfg.SkyBoxDir = dir
	return cfg
}

// newLoadedViewer returns an initialized viewer with everything loaded.
func newLoadedViewer(t *testing.T, dev *gputest.Device, cfg Config, opts ...Option) *Viewer {
	t.Helper()
	v, err := NewViewer(dev, cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, v.Init())
	require.NoError(t, v.Load(reload.All))
	t.Cleanup(func() {
		_ = v.Unload(reload.All)
		v.Exit()
	})
	return v
}

func TestNewViewerErrors(t *testing.T) {
	_, err := NewViewer(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoDevice)

	cfg := DefaultConfig()
	cfg.Mesh = ""
	_, err = NewViewer(gputest.NewDevice(), cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestViewerRequiresInit(t *testing.T) {
	v, err := NewViewer(gputest.NewDevice(), testConfig(t))
	require.NoError(t, err)

	assert.ErrorIs(t, v.Draw(), ErrNotInitialized)
	assert.ErrorIs(t, v.Load(reload.All), ErrNotInitialized)
	assert.Nil(t, v.Scene())
	v.Exit()
}

func TestViewerDrawsSkyBoxSceneAndUI(t *testing.T) {
	dev := gputest.NewDevice()
	overlay := gui.NewHeadless()
	v := newLoadedViewer(t, dev, testConfig(t), WithOverlay(overlay))

	assert.Equal(t, scene.SideCount, dev.Live("Texture"))
	require.NotNil(t, v.Scene())

	for i := 0; i < 4; i++ {
		v.Update(tick)
		require.NoError(t, v.Draw())
	}

	assert.Equal(t, uint64(4), v.Context().Stats().Frames)
	// Skybox and mesh per frame.
	assert.Equal(t, 8, dev.Draws())
	assert.Equal(t, 4, overlay.Draws())
	assert.Equal(t, 4, dev.Count("Present"))
	assert.Empty(t, dev.Violations())
}

func TestViewerExitReleasesEverything(t *testing.T) {
	dev := gputest.NewDevice()
	v, err := NewViewer(dev, testConfig(t))
	require.NoError(t, err)
	require.NoError(t, v.Init())
	require.NoError(t, v.Load(reload.All))
	v.Update(tick)
	require.NoError(t, v.Draw())

	require.NoError(t, v.Unload(reload.All))
	v.Exit()

	for _, kind := range []string{
		"Texture", "Buffer", "Pipeline", "Shader", "DescriptorSet",
		"RootSignature", "SwapChain", "RenderTarget", "Queue", "Fence",
	} {
		assert.Zero(t, dev.Live(kind), kind)
	}
	assert.Empty(t, dev.Violations())
}

func TestViewerInitFailureLeaksNothing(t *testing.T) {
	dev := gputest.NewDevice()
	cfg := testConfig(t)
	cfg.Mesh = filepath.Join(t.TempDir(), "missing.bin")

	v, err := NewViewer(dev, cfg)
	require.NoError(t, err)
	require.Error(t, v.Init())

	assert.Zero(t, dev.Live("Texture"))
	assert.Zero(t, dev.Live("Buffer"))
	assert.Zero(t, dev.Live("Queue"))
}

func TestViewerZoomSettles(t *testing.T) {
	dev := gputest.NewDevice()
	script := input.NewScript(input.Hold(input.MoveY, -1, 30), input.Idle(120))
	v := newLoadedViewer(t, dev, testConfig(t), WithInput(script))

	start := v.Camera().Radius()
	for !script.Done() {
		v.Update(tick)
		require.NoError(t, v.Draw())
	}
	v.Update(tick)

	st := v.Camera().State()
	assert.Less(t, st.Radius, start)
	assert.Zero(t, st.Speed)
}

func TestViewerIgnoresInputWhileUIFocused(t *testing.T) {
	overlay := gui.NewHeadless()
	overlay.SetFocused(true)
	script := input.NewScript(input.Hold(input.MoveY, -1, 30), input.Hold(input.Exit, 1, 1))
	v := newLoadedViewer(t, gputest.NewDevice(), testConfig(t), WithInput(script), WithOverlay(overlay))

	start := v.Camera().Radius()
	for i := 0; i < 31; i++ {
		v.Update(tick)
	}
	assert.Equal(t, start, v.Camera().Radius())
	assert.False(t, v.ExitRequested())
}

func TestViewerButtonsAreEdgeTriggered(t *testing.T) {
	overlay := gui.NewHeadless()
	script := input.NewScript(input.Hold(input.ToggleFullscreen, 1, 3), input.Idle(1), input.Hold(input.ToggleUI, 1, 1))
	v := newLoadedViewer(t, gputest.NewDevice(), testConfig(t), WithInput(script), WithOverlay(overlay))

	for i := 0; i < 3; i++ {
		v.Update(tick)
	}
	assert.True(t, v.Fullscreen())
	assert.Equal(t, reload.Resize, v.coord.Pending())

	v.Update(tick)
	v.Update(tick)
	assert.True(t, v.Fullscreen())
	assert.False(t, overlay.Active())
}

func TestViewerShaderReloadKeepsSwapChain(t *testing.T) {
	dev := gputest.NewDevice()
	v := newLoadedViewer(t, dev, testConfig(t))

	v.Update(tick)
	require.NoError(t, v.Draw())
	shaders := dev.Count("CreateShader")

	v.RequestShadersReload()
	v.Update(tick)
	require.NoError(t, v.Draw())

	assert.Equal(t, 1, dev.Count("CreateSwapChain"))
	assert.Equal(t, 2*shaders, dev.Count("CreateShader"))
	assert.Zero(t, v.coord.Pending())
	assert.Empty(t, dev.Violations())
}

func TestViewerUIButtonRequestsShaderReload(t *testing.T) {
	overlay := gui.NewHeadless()
	v := newLoadedViewer(t, gputest.NewDevice(), testConfig(t), WithOverlay(overlay))

	v.UI().RequestShadersReload()
	assert.Equal(t, reload.Shader, v.coord.Pending())
}

func TestViewerResize(t *testing.T) {
	dev := gputest.NewDevice()
	v := newLoadedViewer(t, dev, testConfig(t))

	v.Resize(800, 600)
	v.Update(tick)
	require.NoError(t, v.Draw())

	assert.Equal(t, 2, dev.Count("CreateSwapChain"))
	w, h := v.Context().Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)
	assert.Empty(t, dev.Violations())

	v.Resize(0, 600)
	assert.Zero(t, v.coord.Pending())
}

func TestViewerVSyncFollowsSetting(t *testing.T) {
	dev := gputest.NewDevice()
	v := newLoadedViewer(t, dev, testConfig(t))
	require.False(t, v.Context().VSync())

	v.SetVSync(true)
	v.Update(tick)
	require.NoError(t, v.Draw())
	assert.True(t, v.Context().VSync())
	assert.Equal(t, 1, dev.Count("SetVSync"))

	v.Update(tick)
	require.NoError(t, v.Draw())
	assert.Equal(t, 1, dev.Count("SetVSync"))
	assert.Empty(t, dev.Violations())
}

func TestViewerTunablesReachScene(t *testing.T) {
	v := newLoadedViewer(t, gputest.NewDevice(), testConfig(t))

	v.Tunables().SceneScale = 3
	v.Tunables().CameraZoomSpeed = 42
	v.Update(tick)

	assert.Equal(t, float32(3), v.Scene().Scale)
	assert.Equal(t, float32(42), v.Camera().MotionParameters().MovementSpeed)
}

func TestRunStopsOnExitAction(t *testing.T) {
	dev := gputest.NewDevice()
	script := input.NewScript(input.Idle(3), input.Hold(input.Exit, 1, 1))
	v, err := NewViewer(dev, testConfig(t), WithInput(script))
	require.NoError(t, err)

	require.NoError(t, v.Run(context.Background(), 100, tick))
	assert.True(t, v.ExitRequested())
	assert.Equal(t, uint64(3), v.Context().Stats().Frames)
	assert.Zero(t, dev.Live("Texture"))
	assert.Zero(t, dev.Live("SwapChain"))
}

func TestRunFrameLimit(t *testing.T) {
	dev := gputest.NewDevice()
	v, err := NewViewer(dev, testConfig(t))
	require.NoError(t, err)

	require.NoError(t, v.Run(context.Background(), 5, tick))
	assert.Equal(t, uint64(5), v.Context().Stats().Frames)
	assert.Zero(t, dev.Live("Buffer"))
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := NewViewer(gputest.NewDevice(), testConfig(t))
	require.NoError(t, err)
	assert.ErrorIs(t, v.Run(ctx, 0, tick), context.Canceled)
}

func TestViewerWatchesShaderDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.ShaderDir = t.TempDir()
	cfg.WatchShaders = true
	v := newLoadedViewer(t, gputest.NewDevice(), cfg)
	require.NotNil(t, v.watcher)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.ShaderDir, "scene.wgsl"), []byte("// edited\n"), 0o644))
	assert.Eventually(t, func() bool {
		return v.coord.Pending().Has(reload.Shader)
	}, 5*time.Second, 10*time.Millisecond)
}
