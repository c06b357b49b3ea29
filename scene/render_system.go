package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/internal/logging"
	"github.com/gogpu/modelview/internal/shaders"
	"github.com/gogpu/modelview/reload"
	"github.com/gogpu/modelview/render"
)

// Errors returned by RenderSystem.
var (
	ErrNotInitialized = errors.New("scene: render system not initialized")
	ErrNotLoaded      = errors.New("scene: render system not loaded")
	ErrNoSkyBox       = errors.New("scene: no skybox")
)

// Descriptor layout shared by the skybox and scene shaders.
const (
	// Set 0, written once after load.
	bindingFaceTextures = 0 // 0..5
	bindingFaceSampler  = SideCount

	// Set 1, one slot per uniform buffer.
	bindingUniforms = 0
)

// Uniform slots per ring element in the per-frame descriptor set.
const (
	uniformSlotSkyBox = 0
	uniformSlotScene  = 1
	uniformSlots      = 2
)

// UniformSetIndex returns the per-frame descriptor set slot holding the
// uniform buffer of kind slot (0 skybox, 1 scene) for ring slot frame.
func UniformSetIndex(frame, slot uint32) uint32 {
	return frame*uniformSlots + slot
}

// RenderSystem draws the skybox and the scene mesh.
//
// Init and Exit manage the per-frame uniform buffers. Everything else is
// created and destroyed through reload steps so that a shader reload
// rebuilds shaders, descriptors and pipelines without touching the
// swapchain.
type RenderSystem struct {
	ctx    *render.Context
	lib    *shaders.Library
	skyBox *SkyBox

	skyShader     gpucore.ShaderID
	sceneShader   gpucore.ShaderID
	rootSignature gpucore.RootSignatureID
	textureSet    gpucore.DescriptorSetID
	uniformSet    gpucore.DescriptorSetID
	skyPipeline   gpucore.PipelineID
	scenePipeline gpucore.PipelineID

	// Indexed by ring slot.
	sceneBuffers []gpucore.BufferID
	skyBuffers   []gpucore.BufferID

	sceneData sceneUniforms
	skyData   skyUniforms
}

var _ reload.System = (*RenderSystem)(nil)

// NewRenderSystem returns a render system drawing through ctx with
// shaders from lib.
func NewRenderSystem(ctx *render.Context, lib *shaders.Library) *RenderSystem {
	return &RenderSystem{
		ctx: ctx,
		lib: lib,
		sceneData: sceneUniforms{
			modelViewProj: mgl32.Ident4(),
			lightPosition: lightPosition,
			lightColor:    lightColor,
		},
		skyData: skyUniforms{viewProj: mgl32.Ident4()},
	}
}

// SetSkyBox sets the skybox bound by the next PrepareDescriptorSets step.
func (r *RenderSystem) SetSkyBox(s *SkyBox) { r.skyBox = s }

// Init creates one scene and one skybox uniform buffer per ring slot.
// The render context must be initialized.
func (r *RenderSystem) Init() error {
	ring := r.ctx.Ring()
	if ring == nil {
		return ErrNotInitialized
	}
	dev := r.ctx.Device()
	n := ring.Len()
	r.sceneBuffers = make([]gpucore.BufferID, 0, n)
	r.skyBuffers = make([]gpucore.BufferID, 0, n)
	for i := 0; i < n; i++ {
		scene, err := dev.CreateBuffer(&gpucore.BufferDesc{
			Label: fmt.Sprintf("scene uniforms %d", i),
			Size:  sceneUniformSize,
			Usage: gpucore.BufferUsageUniform | gpucore.BufferUsageCopyDst,
		})
		if err != nil {
			r.Exit()
			return fmt.Errorf("scene: create uniform buffer: %w", err)
		}
		r.sceneBuffers = append(r.sceneBuffers, scene)

		sky, err := dev.CreateBuffer(&gpucore.BufferDesc{
			Label: fmt.Sprintf("skybox uniforms %d", i),
			Size:  skyUniformSize,
			Usage: gpucore.BufferUsageUniform | gpucore.BufferUsageCopyDst,
		})
		if err != nil {
			r.Exit()
			return fmt.Errorf("scene: create uniform buffer: %w", err)
		}
		r.skyBuffers = append(r.skyBuffers, sky)
	}
	return nil
}

// Exit releases the uniform buffers.
func (r *RenderSystem) Exit() {
	dev := r.ctx.Device()
	for _, b := range r.sceneBuffers {
		dev.DestroyBuffer(b)
	}
	for _, b := range r.skyBuffers {
		dev.DestroyBuffer(b)
	}
	r.sceneBuffers = nil
	r.skyBuffers = nil
}

// LoadStep implements reload.System.
func (r *RenderSystem) LoadStep(s reload.Step, t reload.Type) error {
	switch s {
	case reload.StepShaders:
		if t.Has(reload.Shader) {
			return r.addShaders()
		}
	case reload.StepRootSignatures:
		if t.Has(reload.Shader) {
			return r.addRootSignature()
		}
	case reload.StepDescriptorSets:
		if t.Has(reload.Shader) {
			return r.addDescriptorSets()
		}
	case reload.StepPipelines:
		if t.Has(reload.Shader | reload.RenderTarget) {
			return r.addPipelines()
		}
	case reload.StepPrepareDescriptorSets:
		return r.prepareDescriptorSets()
	}
	return nil
}

// UnloadStep implements reload.System.
func (r *RenderSystem) UnloadStep(s reload.Step, t reload.Type) error {
	dev := r.ctx.Device()
	switch s {
	case reload.StepPipelines:
		if t.Has(reload.Shader | reload.RenderTarget) {
			destroy(&r.scenePipeline, dev.DestroyPipeline)
			destroy(&r.skyPipeline, dev.DestroyPipeline)
		}
	case reload.StepDescriptorSets:
		if t.Has(reload.Shader) {
			destroy(&r.uniformSet, dev.DestroyDescriptorSet)
			destroy(&r.textureSet, dev.DestroyDescriptorSet)
		}
	case reload.StepRootSignatures:
		if t.Has(reload.Shader) {
			destroy(&r.rootSignature, dev.DestroyRootSignature)
		}
	case reload.StepShaders:
		if t.Has(reload.Shader) {
			destroy(&r.sceneShader, dev.DestroyShader)
			destroy(&r.skyShader, dev.DestroyShader)
		}
	}
	return nil
}

func destroy[ID ~uint64](id *ID, fn func(ID)) {
	if *id != gpucore.InvalidID {
		fn(*id)
		*id = gpucore.InvalidID
	}
}

func (r *RenderSystem) addShaders() error {
	dev := r.ctx.Device()
	create := func(name string) (gpucore.ShaderID, error) {
		src, err := r.lib.Source(name)
		if err != nil {
			return gpucore.InvalidID, err
		}
		id, err := dev.CreateShader(&gpucore.ShaderDesc{
			Label:         name,
			Source:        src,
			VertexEntry:   "vs_main",
			FragmentEntry: "fs_main",
		})
		if err != nil {
			return gpucore.InvalidID, fmt.Errorf("scene: create %s shader: %w", name, err)
		}
		return id, nil
	}

	sky, err := create(shaders.SkyBox)
	if err != nil {
		return err
	}
	basic, err := create(shaders.Basic)
	if err != nil {
		dev.DestroyShader(sky)
		return err
	}
	r.skyShader = sky
	r.sceneShader = basic
	return nil
}

func (r *RenderSystem) addRootSignature() error {
	bindings := make([]gpucore.BindingDesc, 0, SideCount+2)
	for i := uint32(0); i < SideCount; i++ {
		bindings = append(bindings, gpucore.BindingDesc{
			Name:    fmt.Sprintf("face%d", i),
			Binding: bindingFaceTextures + i,
			Type:    gpucore.DescriptorTexture,
			Stages:  gpucore.ShaderStageFragment,
		})
	}
	bindings = append(bindings,
		gpucore.BindingDesc{
			Name:    "faceSampler",
			Binding: bindingFaceSampler,
			Type:    gpucore.DescriptorSampler,
			Stages:  gpucore.ShaderStageFragment,
		},
		gpucore.BindingDesc{
			Name:      "uniformBlock",
			Binding:   bindingUniforms,
			Type:      gpucore.DescriptorUniformBuffer,
			Stages:    gpucore.ShaderStageVertex | gpucore.ShaderStageFragment,
			Frequency: gpucore.UpdateFrequencyPerFrame,
		},
	)

	rs, err := r.ctx.Device().CreateRootSignature(&gpucore.RootSignatureDesc{
		Label:    "scene root signature",
		Shaders:  []gpucore.ShaderID{r.skyShader, r.sceneShader},
		Bindings: bindings,
	})
	if err != nil {
		return fmt.Errorf("scene: create root signature: %w", err)
	}
	r.rootSignature = rs
	return nil
}

func (r *RenderSystem) addDescriptorSets() error {
	dev := r.ctx.Device()
	textures, err := dev.CreateDescriptorSet(&gpucore.DescriptorSetDesc{
		Label:         "skybox textures",
		RootSignature: r.rootSignature,
		Frequency:     gpucore.UpdateFrequencyNone,
		MaxSets:       1,
	})
	if err != nil {
		return fmt.Errorf("scene: create texture descriptor set: %w", err)
	}
	uniforms, err := dev.CreateDescriptorSet(&gpucore.DescriptorSetDesc{
		Label:         "uniforms",
		RootSignature: r.rootSignature,
		Frequency:     gpucore.UpdateFrequencyPerFrame,
		MaxSets:       uint32(r.ctx.Ring().Len() * uniformSlots),
	})
	if err != nil {
		dev.DestroyDescriptorSet(textures)
		return fmt.Errorf("scene: create uniform descriptor set: %w", err)
	}
	r.textureSet = textures
	r.uniformSet = uniforms
	return nil
}

func (r *RenderSystem) addPipelines() error {
	dev := r.ctx.Device()
	sky, err := dev.CreatePipeline(&gpucore.PipelineDesc{
		Label:         "skybox pipeline",
		Shader:        r.skyShader,
		RootSignature: r.rootSignature,
		VertexAttributes: []gpucore.VertexAttribute{
			{Location: 0, Format: gpucore.VertexFormatFloat32x4, Offset: 0},
		},
		VertexStride: skyBoxVertexStride,
		ColorFormat:  r.ctx.ColorFormat(),
		DepthFormat:  r.ctx.DepthFormat(),
		DepthCompare: gpucore.CompareAlways,
		CullMode:     gpucore.CullNone,
	})
	if err != nil {
		return fmt.Errorf("scene: create skybox pipeline: %w", err)
	}

	scene, err := dev.CreatePipeline(&gpucore.PipelineDesc{
		Label:            "scene pipeline",
		Shader:           r.sceneShader,
		RootSignature:    r.rootSignature,
		VertexAttributes: sceneVertexAttributes(),
		VertexStride:     VertexStride,
		ColorFormat:      r.ctx.ColorFormat(),
		DepthFormat:      r.ctx.DepthFormat(),
		DepthTest:        true,
		DepthWrite:       true,
		DepthCompare:     gpucore.CompareGreaterEqual,
		CullMode:         gpucore.CullNone,
	})
	if err != nil {
		dev.DestroyPipeline(sky)
		return fmt.Errorf("scene: create scene pipeline: %w", err)
	}
	r.skyPipeline = sky
	r.scenePipeline = scene
	return nil
}

// prepareDescriptorSets binds the skybox faces into the texture set and
// each ring slot's uniform buffers into the per-frame set.
func (r *RenderSystem) prepareDescriptorSets() error {
	if r.textureSet == gpucore.InvalidID || r.uniformSet == gpucore.InvalidID {
		return ErrNotLoaded
	}
	if r.skyBox == nil {
		return ErrNoSkyBox
	}
	dev := r.ctx.Device()

	faces := r.skyBox.Textures()
	data := make([]gpucore.DescriptorData, 0, SideCount+1)
	for i, tex := range faces {
		data = append(data, gpucore.DescriptorData{
			Binding: bindingFaceTextures + uint32(i),
			Texture: tex,
		})
	}
	data = append(data, gpucore.DescriptorData{
		Binding: bindingFaceSampler,
		Sampler: r.skyBox.Sampler(),
	})
	if err := dev.UpdateDescriptorSet(r.textureSet, 0, data); err != nil {
		return fmt.Errorf("scene: update texture set: %w", err)
	}

	for i := range r.sceneBuffers {
		frame := uint32(i)
		sky := []gpucore.DescriptorData{{
			Binding: bindingUniforms,
			Buffer:  r.skyBuffers[i],
			Size:    skyUniformSize,
		}}
		if err := dev.UpdateDescriptorSet(r.uniformSet, UniformSetIndex(frame, uniformSlotSkyBox), sky); err != nil {
			return fmt.Errorf("scene: update uniform set: %w", err)
		}
		scene := []gpucore.DescriptorData{{
			Binding: bindingUniforms,
			Buffer:  r.sceneBuffers[i],
			Size:    sceneUniformSize,
		}}
		if err := dev.UpdateDescriptorSet(r.uniformSet, UniformSetIndex(frame, uniformSlotScene), scene); err != nil {
			return fmt.Errorf("scene: update uniform set: %w", err)
		}
	}
	return nil
}

// UpdateViewProj computes this tick's uniform data. The skybox uses the
// view rotation only.
func (r *RenderSystem) UpdateViewProj(model, view, proj mgl32.Mat4) {
	r.sceneData.modelViewProj = proj.Mul4(view).Mul4(model)
	r.skyData.viewProj = proj.Mul4(withoutTranslation(view))
}

// Draw writes the uniform buffers of the frame's ring slot and records
// the skybox followed by the scene. A render pass must be open. A nil
// scene draws the skybox only.
func (r *RenderSystem) Draw(f *render.Frame, s *Scene) error {
	if r.skyPipeline == gpucore.InvalidID || r.scenePipeline == gpucore.InvalidID {
		return ErrNotLoaded
	}
	slot := f.Index()
	if int(slot) >= len(r.sceneBuffers) {
		return ErrNotInitialized
	}
	dev := r.ctx.Device()

	if err := dev.UpdateBuffer(r.sceneBuffers[slot], 0, r.sceneData.bytes()); err != nil {
		return fmt.Errorf("scene: update uniforms: %w", err)
	}
	if err := dev.UpdateBuffer(r.skyBuffers[slot], 0, r.skyData.bytes()); err != nil {
		return fmt.Errorf("scene: update uniforms: %w", err)
	}

	w, h := r.ctx.Size()
	cmd := f.Cmd()
	dev.SetScissor(cmd, 0, 0, w, h)

	if r.skyBox != nil {
		dev.SetViewport(cmd, 0, 0, float32(w), float32(h), 1, 1)
		dev.BindPipeline(cmd, r.skyPipeline)
		dev.BindDescriptorSet(cmd, 0, r.textureSet)
		dev.BindDescriptorSet(cmd, UniformSetIndex(slot, uniformSlotSkyBox), r.uniformSet)
		dev.BindVertexBuffers(cmd, r.skyBox.VertexBuffer())
		dev.Draw(cmd, SkyBoxVertexCount, 0)
	}

	if s == nil || s.Mesh == nil || s.Mesh.IndexCount() == 0 {
		return nil
	}
	dev.SetViewport(cmd, 0, 0, float32(w), float32(h), 0, 1)
	dev.BindPipeline(cmd, r.scenePipeline)
	dev.BindDescriptorSet(cmd, UniformSetIndex(slot, uniformSlotScene), r.uniformSet)
	dev.BindVertexBuffers(cmd, s.Mesh.VertexBuffers()...)
	dev.BindIndexBuffer(cmd, s.Mesh.IndexBuffer(), s.Mesh.IndexFormat())
	dev.DrawIndexed(cmd, s.Mesh.IndexCount(), 0, 0)

	logging.L().Debug("scene: drawn",
		"slot", slot, "mesh", meshKind(s.Mesh), "indices", s.Mesh.IndexCount())
	return nil
}
