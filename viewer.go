package modelview

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/modelview/camera"
	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/gui"
	"github.com/gogpu/modelview/input"
	"github.com/gogpu/modelview/internal/assets"
	"github.com/gogpu/modelview/internal/logging"
	"github.com/gogpu/modelview/internal/shaders"
	"github.com/gogpu/modelview/internal/watch"
	"github.com/gogpu/modelview/reload"
	"github.com/gogpu/modelview/render"
	"github.com/gogpu/modelview/scene"
)

// Tunables are the values the UI sliders edit. They are read once per
// Update.
type Tunables struct {
	SceneScale         float32
	CameraAcceleration float32
	CameraBraking      float32
	CameraZoomSpeed    float32
	CameraOrbitSpeed   float32
}

// Motion returns the camera motion parameters the tunables describe.
func (t *Tunables) Motion() camera.MotionParameters {
	return camera.MotionParameters{
		Acceleration:  t.CameraAcceleration,
		Braking:       t.CameraBraking,
		MovementSpeed: t.CameraZoomSpeed,
		RotationSpeed: t.CameraOrbitSpeed,
	}
}

// Viewer is the model viewer application: a mesh and a skybox viewed
// through an orbit camera, with a tuning UI.
//
// All methods must be called from one goroutine, the one running the
// frame loop. Reload requests from other goroutines go through
// RequestReload.
type Viewer struct {
	cfg  Config
	opts viewerOptions

	dev      gpucore.Device
	ctx      *render.Context
	coord    *reload.Coordinator
	renderer *scene.RenderSystem
	ui       *gui.System
	lib      *shaders.Library
	camera   *camera.OrbitController

	scene    *scene.Scene
	skyBox   *scene.SkyBox
	tunables Tunables

	watcher    *watch.Watcher
	stopWatch  context.CancelFunc
	watchDone  chan struct{}
	vsync      bool
	fullscreen bool
	exit       bool
	prev       input.Snapshot

	initialized bool
}

// NewViewer creates a viewer drawing through dev. cfg is validated.
func NewViewer(dev gpucore.Device, cfg Config, opts ...Option) (*Viewer, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultViewerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.overlay == nil {
		o.overlay = gui.NewHeadless()
	}

	v := &Viewer{
		cfg:   cfg,
		opts:  o,
		dev:   dev,
		vsync: cfg.VSync,
		tunables: Tunables{
			SceneScale:         cfg.SceneScale,
			CameraAcceleration: cfg.Camera.Motion.Acceleration,
			CameraBraking:      cfg.Camera.Motion.Braking,
			CameraZoomSpeed:    cfg.Camera.Motion.MovementSpeed,
			CameraOrbitSpeed:   cfg.Camera.Motion.RotationSpeed,
		},
	}

	v.ctx = render.NewContext(dev,
		render.WithWindow(o.window),
		render.WithSize(cfg.Width, cfg.Height),
		render.WithVSync(cfg.VSync),
	)
	v.lib = shaders.NewLibrary(cfg.ShaderDir)
	v.renderer = scene.NewRenderSystem(v.ctx, v.lib)

	ui, err := gui.NewSystem(o.overlay, v.ctx, gui.ModelView{
		SceneScale:         &v.tunables.SceneScale,
		CameraAcceleration: &v.tunables.CameraAcceleration,
		CameraBraking:      &v.tunables.CameraBraking,
		CameraZoomSpeed:    &v.tunables.CameraZoomSpeed,
		CameraOrbitSpeed:   &v.tunables.CameraOrbitSpeed,
	})
	if err != nil {
		return nil, err
	}
	v.ui = ui
	v.ui.OnShaderReload(v.RequestShadersReload)

	v.coord = reload.NewCoordinator(v.ctx, v.ctx, v.renderer, v.ui)

	eye, lookAt := cfg.Camera.Eye, cfg.Camera.LookAt
	v.camera = camera.NewOrbitController(
		mgl32.Vec3{eye[0], eye[1], eye[2]},
		mgl32.Vec3{lookAt[0], lookAt[1], lookAt[2]},
	)
	v.camera.SetMotionParameters(v.tunables.Motion())
	return v, nil
}

// Init creates the frame ring, the uniform buffers and loads the mesh and
// skybox. When configured it starts watching the shader directory.
func (v *Viewer) Init() error {
	if v.initialized {
		return nil
	}
	if err := v.ctx.Init(v.cfg.AppName); err != nil {
		return err
	}
	if err := v.renderer.Init(); err != nil {
		v.ctx.Exit()
		return err
	}
	if err := v.loadAssets(); err != nil {
		v.renderer.Exit()
		v.ctx.Exit()
		return err
	}
	if v.cfg.WatchShaders && v.cfg.ShaderDir != "" {
		if err := v.startWatcher(); err != nil {
			// hot reload is optional
			logging.L().Warn("modelview: shader watcher disabled", "dir", v.cfg.ShaderDir, "error", err)
		}
	}
	v.initialized = true
	logging.L().Info("modelview: initialized", "app", v.cfg.AppName, "mesh", v.cfg.Mesh)
	return nil
}

func (v *Viewer) loadAssets() error {
	loader := assets.NewLoader(v.dev)
	var faces [scene.SideCount]gpucore.TextureID
	for i, p := range v.cfg.FacePaths() {
		loader.LoadTexture(p, &faces[i])
	}
	var mesh scene.Mesh
	loader.LoadMesh(v.cfg.Mesh, &mesh)
	if err := loader.WaitAll(); err != nil {
		return fmt.Errorf("modelview: load assets: %w", err)
	}

	sky, err := scene.NewSkyBox(v.dev, faces)
	if err != nil {
		for _, f := range faces {
			v.dev.DestroyTexture(f)
		}
		if mesh != nil {
			mesh.Destroy(v.dev)
		}
		return err
	}
	v.skyBox = sky
	v.renderer.SetSkyBox(sky)

	v.scene = scene.New(mesh)
	v.scene.Scale = v.tunables.SceneScale
	return nil
}

func (v *Viewer) startWatcher() error {
	w, err := watch.New(v.cfg.ShaderDir, shaders.Ext, v.coord)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.L().Warn("modelview: shader watcher stopped", "error", err)
		}
	}()
	v.watcher = w
	v.stopWatch = cancel
	v.watchDone = done
	return nil
}

func (v *Viewer) stopWatcher() {
	if v.watcher == nil {
		return
	}
	v.stopWatch()
	<-v.watchDone
	if err := v.watcher.Close(); err != nil {
		logging.L().Warn("modelview: close shader watcher", "error", err)
	}
	v.watcher = nil
}

// Exit drains the GPU and releases everything Init created. Load-time
// objects must have been unloaded first.
func (v *Viewer) Exit() {
	if !v.initialized {
		return
	}
	v.stopWatcher()
	if err := v.ctx.WaitIdle(); err != nil {
		logging.L().Warn("modelview: wait idle on exit failed", "error", err)
	}
	if v.scene != nil {
		v.scene.Destroy(v.dev)
		v.scene = nil
	}
	if v.skyBox != nil {
		v.skyBox.Destroy(v.dev)
		v.renderer.SetSkyBox(nil)
		v.skyBox = nil
	}
	v.renderer.Exit()
	v.ctx.Exit()
	v.initialized = false
}

// Load creates the objects t covers, in dependency order.
func (v *Viewer) Load(t reload.Type) error {
	if !v.initialized {
		return ErrNotInitialized
	}
	return v.coord.Load(t)
}

// Unload drains the GPU and destroys the objects t covers in reverse
// dependency order.
func (v *Viewer) Unload(t reload.Type) error {
	if !v.initialized {
		return ErrNotInitialized
	}
	return v.coord.Unload(t)
}

// RequestReload queues a reload applied at the start of the next Draw.
// It is safe to call from any goroutine.
func (v *Viewer) RequestReload(t reload.Type) {
	v.coord.Request(t)
}

// RequestShadersReload queues a shader reload.
func (v *Viewer) RequestShadersReload() {
	v.RequestReload(reload.Shader)
}

// Resize records a new render size and queues a Resize reload.
func (v *Viewer) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	v.ctx.SetSize(width, height)
	v.RequestReload(reload.Resize)
}

// SetVSync sets the wanted presentation mode. The swapchain follows on
// the next Draw.
func (v *Viewer) SetVSync(enabled bool) { v.vsync = enabled }

// Update consumes one input snapshot and advances the camera by dt
// seconds. Input is ignored while the UI is focused.
func (v *Viewer) Update(dt float32) {
	snap := v.opts.input.Poll()
	if !v.ui.Focused() {
		v.camera.OnMove(mgl32.Vec2{snap.Value(input.MoveX), snap.Value(input.MoveY)})
		v.camera.OnRotate(mgl32.Vec2{snap.Value(input.LookX), snap.Value(input.LookY)})
		v.camera.OnMoveY(snap.Value(input.MoveUp))

		if v.pressed(&snap, input.ResetView) {
			v.camera.ResetView()
		}
		if v.pressed(&snap, input.ToggleFullscreen) {
			v.fullscreen = !v.fullscreen
			v.RequestReload(reload.Resize)
		}
		if v.pressed(&snap, input.ToggleUI) {
			v.ui.ToggleActive()
		}
		if v.pressed(&snap, input.DumpProfile) {
			v.dumpProfile()
		}
		if v.pressed(&snap, input.Exit) {
			v.exit = true
		}
	}
	v.prev = snap

	v.camera.SetMotionParameters(v.tunables.Motion())
	v.camera.Update(dt)

	if v.scene == nil {
		return
	}
	v.scene.Scale = v.tunables.SceneScale
	w, h := v.ctx.Size()
	v.renderer.UpdateViewProj(v.scene.Matrix(), v.camera.ViewMatrix(), scene.Projection(w, h))
}

// pressed reports a button going down this tick.
func (v *Viewer) pressed(s *input.Snapshot, a input.Action) bool {
	return s.Pressed(a) && !v.prev.Pressed(a)
}

func (v *Viewer) dumpProfile() {
	stats := v.ctx.Stats()
	st := v.camera.State()
	logging.L().Info("modelview: profile",
		"frames", stats.Frames,
		"fence_stalls", stats.FenceStalls,
		"radius", st.Radius,
		"yaw", st.Rotation.X(),
		"pitch", st.Rotation.Y())
}

// Draw applies pending reloads, follows the wanted vsync setting and
// renders one frame: skybox, mesh, then UI.
func (v *Viewer) Draw() error {
	if !v.initialized {
		return ErrNotInitialized
	}
	if _, err := v.coord.Flush(); err != nil {
		return err
	}
	if v.ctx.VSync() != v.vsync {
		if err := v.ctx.WaitIdle(); err != nil {
			return err
		}
		if err := v.ctx.ToggleVSync(); err != nil {
			return err
		}
	}

	f, err := v.ctx.BeginFrame()
	if err != nil {
		return err
	}
	if err := v.record(f); err != nil {
		return errors.Join(err, v.ctx.EndFrame(f))
	}
	return v.ctx.EndFrame(f)
}

func (v *Viewer) record(f *render.Frame) error {
	if err := f.BeginRenderPass(); err != nil {
		return fmt.Errorf("modelview: begin render pass: %w", err)
	}
	defer f.EndRenderPass()

	if err := v.renderer.Draw(f, v.scene); err != nil {
		return err
	}
	return v.ui.Draw(f)
}

// Run initializes and loads the viewer, then alternates Update and Draw
// with a fixed dt until the exit action fires, maxFrames frames were drawn
// (when positive) or ctx is done. Everything is torn down before Run
// returns.
func (v *Viewer) Run(ctx context.Context, maxFrames int, dt float32) (err error) {
	if err := v.Init(); err != nil {
		return err
	}
	defer v.Exit()
	if err := v.Load(reload.All); err != nil {
		return errors.Join(err, v.Unload(reload.All))
	}
	defer func() {
		err = errors.Join(err, v.Unload(reload.All))
	}()

	for frames := 0; maxFrames <= 0 || frames < maxFrames; frames++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		v.Update(dt)
		if v.exit {
			return nil
		}
		if err := v.Draw(); err != nil {
			return err
		}
	}
	return nil
}

// ExitRequested reports whether the exit action fired.
func (v *Viewer) ExitRequested() bool { return v.exit }

// Fullscreen reports the fullscreen state toggled by input.
func (v *Viewer) Fullscreen() bool { return v.fullscreen }

// Camera returns the orbit camera.
func (v *Viewer) Camera() *camera.OrbitController { return v.camera }

// Context returns the render context.
func (v *Viewer) Context() *render.Context { return v.ctx }

// UI returns the tuning UI.
func (v *Viewer) UI() *gui.System { return v.ui }

// Scene returns the loaded scene, or nil before Init.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Tunables returns the values the UI edits.
func (v *Viewer) Tunables() *Tunables { return &v.tunables }

// Config returns the validated configuration.
func (v *Viewer) Config() Config { return v.cfg }
