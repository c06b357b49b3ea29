package native

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/internal/cache"
)

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(source string) ([]uint32, error) {
	if source == "" {
		return nil, ErrEmptyShader
	}
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("native: compile shader: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("native: SPIR-V size %d is not word aligned", len(spirv))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}

type shader struct {
	module        hal.ShaderModule
	vertexEntry   string
	fragmentEntry string
}

// CreateShader implements gpucore.Device.
func (d *Device) CreateShader(desc *gpucore.ShaderDesc) (gpucore.ShaderID, error) {
	words, err := d.modules.GetOrCreate(cache.KeyOf(desc.Source), func() ([]uint32, error) {
		return CompileWGSL(desc.Source)
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("%s: %w", desc.Label, err)
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create shader module %s: %w", desc.Label, err)
	}

	s := &shader{
		module:        module,
		vertexEntry:   orDefault(desc.VertexEntry, "vs_main"),
		fragmentEntry: orDefault(desc.FragmentEntry, "fs_main"),
	}
	id := gpucore.ShaderID(d.newID())
	d.mu.Lock()
	d.shaders[id] = s
	d.mu.Unlock()
	return id, nil
}

// ModuleCacheStats reports compiled shader cache activity.
func (d *Device) ModuleCacheStats() cache.Stats { return d.modules.Stats() }

// DestroyShader implements gpucore.Device.
func (d *Device) DestroyShader(id gpucore.ShaderID) {
	d.mu.Lock()
	s, ok := d.shaders[id]
	delete(d.shaders, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyShaderModule(s.module)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
