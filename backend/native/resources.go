package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/modelview/gpucore"
)

type buffer struct {
	buf  hal.Buffer
	size uint64
}

type texture struct {
	tex  hal.Texture
	view hal.TextureView
}

// rootSignature holds one bind group layout per update frequency, in
// frequency order, and the pipeline layout over them.
type rootSignature struct {
	groups []hal.BindGroupLayout
	layout hal.PipelineLayout
}

type descriptorSet struct {
	group  uint32
	layout hal.BindGroupLayout
	slots  []hal.BindGroup
}

type pipeline struct {
	p hal.RenderPipeline
}

// alignBufferSize rounds size up to the 4-byte multiple queue writes need.
func alignBufferSize(size uint64) uint64 {
	return (size + 3) &^ 3
}

// CreateBuffer implements gpucore.Device.
func (d *Device) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	size := desc.Size
	if size == 0 {
		size = uint64(len(desc.Data))
	}
	if size == 0 {
		return gpucore.InvalidID, fmt.Errorf("native: buffer %s: size must be positive", desc.Label)
	}
	size = alignBufferSize(size)

	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  size,
		Usage: convertBufferUsage(desc.Usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create buffer %s: %w", desc.Label, err)
	}
	if len(desc.Data) > 0 {
		d.queue.WriteBuffer(buf, 0, padded(desc.Data))
	}

	id := gpucore.BufferID(d.newID())
	d.mu.Lock()
	d.buffers[id] = &buffer{buf: buf, size: size}
	d.mu.Unlock()
	return id, nil
}

func padded(data []byte) []byte {
	n := alignBufferSize(uint64(len(data)))
	if n == uint64(len(data)) {
		return data
	}
	out := make([]byte, n)
	copy(out, data)
	return out
}

// DestroyBuffer implements gpucore.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	d.mu.Lock()
	b, ok := d.buffers[id]
	delete(d.buffers, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyBuffer(b.buf)
	}
}

// UpdateBuffer implements gpucore.Device.
func (d *Device) UpdateBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	b, ok := d.buffers[id]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownID, id)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("native: write of %d bytes at %d overflows buffer of %d", len(data), offset, b.size)
	}
	if len(data) > 0 {
		d.queue.WriteBuffer(b.buf, offset, padded(data))
	}
	return nil
}

// CreateTexture implements gpucore.Device.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return gpucore.InvalidID, fmt.Errorf("native: texture %s: dimensions must be positive", desc.Label)
	}
	format := convertTextureFormat(desc.Format)
	size := hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create texture %s: %w", desc.Label, err)
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
		return gpucore.InvalidID, fmt.Errorf("native: create texture view %s: %w", desc.Label, err)
	}

	if len(desc.Data) > 0 {
		d.queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
			desc.Data,
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  desc.Width * 4,
				RowsPerImage: desc.Height,
			},
			&size,
		)
	}

	id := gpucore.TextureID(d.newID())
	d.mu.Lock()
	d.textures[id] = &texture{tex: tex, view: view}
	d.mu.Unlock()
	return id, nil
}

// DestroyTexture implements gpucore.Device.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	d.mu.Lock()
	t, ok := d.textures[id]
	delete(d.textures, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyTextureView(t.view)
		d.device.DestroyTexture(t.tex)
	}
}

// CreateSampler implements gpucore.Device.
func (d *Device) CreateSampler(desc *gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	filter := convertFilter(desc.Filter)
	address := convertAddressMode(desc.AddressMode)
	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: address,
		AddressModeV: address,
		AddressModeW: address,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: filter,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create sampler %s: %w", desc.Label, err)
	}
	id := gpucore.SamplerID(d.newID())
	d.mu.Lock()
	d.samplers[id] = s
	d.mu.Unlock()
	return id, nil
}

// DestroySampler implements gpucore.Device.
func (d *Device) DestroySampler(id gpucore.SamplerID) {
	d.mu.Lock()
	s, ok := d.samplers[id]
	delete(d.samplers, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroySampler(s)
	}
}

// CreateRootSignature implements gpucore.Device. Bindings are grouped by
// update frequency; every frequency up to the highest one used gets a
// layout, empty when it has no bindings.
func (d *Device) CreateRootSignature(desc *gpucore.RootSignatureDesc) (gpucore.RootSignatureID, error) {
	var maxFreq gpucore.UpdateFrequency
	for _, b := range desc.Bindings {
		maxFreq = max(maxFreq, b.Frequency)
	}
	entries := make([][]gputypes.BindGroupLayoutEntry, int(maxFreq)+1)
	for _, b := range desc.Bindings {
		entries[b.Frequency] = append(entries[b.Frequency], convertBindingLayout(b))
	}

	rs := &rootSignature{}
	for i, e := range entries {
		l, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s group %d", desc.Label, i),
			Entries: e,
		})
		if err != nil {
			d.destroyRootSignature(rs)
			return gpucore.InvalidID, fmt.Errorf("native: create bind group layout %d: %w", i, err)
		}
		rs.groups = append(rs.groups, l)
	}

	layout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: rs.groups,
	})
	if err != nil {
		d.destroyRootSignature(rs)
		return gpucore.InvalidID, fmt.Errorf("native: create pipeline layout %s: %w", desc.Label, err)
	}
	rs.layout = layout

	id := gpucore.RootSignatureID(d.newID())
	d.mu.Lock()
	d.rootSignatures[id] = rs
	d.mu.Unlock()
	return id, nil
}

func (d *Device) destroyRootSignature(rs *rootSignature) {
	if rs.layout != nil {
		d.device.DestroyPipelineLayout(rs.layout)
	}
	for _, l := range rs.groups {
		d.device.DestroyBindGroupLayout(l)
	}
}

// DestroyRootSignature implements gpucore.Device.
func (d *Device) DestroyRootSignature(id gpucore.RootSignatureID) {
	d.mu.Lock()
	rs, ok := d.rootSignatures[id]
	delete(d.rootSignatures, id)
	d.mu.Unlock()
	if ok {
		d.destroyRootSignature(rs)
	}
}

// CreateDescriptorSet implements gpucore.Device. Bind groups are created
// lazily by UpdateDescriptorSet.
func (d *Device) CreateDescriptorSet(desc *gpucore.DescriptorSetDesc) (gpucore.DescriptorSetID, error) {
	d.mu.Lock()
	rs, ok := d.rootSignatures[desc.RootSignature]
	d.mu.Unlock()
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: root signature %d", ErrUnknownID, desc.RootSignature)
	}
	group := uint32(desc.Frequency)
	if int(group) >= len(rs.groups) {
		return gpucore.InvalidID, fmt.Errorf("native: descriptor set %s: root signature has no bindings at frequency %d", desc.Label, group)
	}
	n := max(desc.MaxSets, 1)

	id := gpucore.DescriptorSetID(d.newID())
	d.mu.Lock()
	d.descriptorSets[id] = &descriptorSet{
		group:  group,
		layout: rs.groups[group],
		slots:  make([]hal.BindGroup, n),
	}
	d.mu.Unlock()
	return id, nil
}

// DestroyDescriptorSet implements gpucore.Device.
func (d *Device) DestroyDescriptorSet(id gpucore.DescriptorSetID) {
	d.mu.Lock()
	ds, ok := d.descriptorSets[id]
	delete(d.descriptorSets, id)
	d.mu.Unlock()
	if !ok {
		return
	}
	for _, g := range ds.slots {
		if g != nil {
			d.device.DestroyBindGroup(g)
		}
	}
}

// UpdateDescriptorSet implements gpucore.Device. The slot's bind group is
// rebuilt from data.
func (d *Device) UpdateDescriptorSet(id gpucore.DescriptorSetID, index uint32, data []gpucore.DescriptorData) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ds, ok := d.descriptorSets[id]
	if !ok {
		return fmt.Errorf("%w: descriptor set %d", ErrUnknownID, id)
	}
	if int(index) >= len(ds.slots) {
		return fmt.Errorf("native: descriptor set %d: slot %d out of range [0, %d)", id, index, len(ds.slots))
	}

	entries := make([]gputypes.BindGroupEntry, 0, len(data))
	for _, dd := range data {
		e, err := d.bindingLocked(dd)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}

	g, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   fmt.Sprintf("set %d slot %d", id, index),
		Layout:  ds.layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("native: create bind group: %w", err)
	}
	if old := ds.slots[index]; old != nil {
		d.device.DestroyBindGroup(old)
	}
	ds.slots[index] = g
	return nil
}

func (d *Device) bindingLocked(dd gpucore.DescriptorData) (gputypes.BindGroupEntry, error) {
	e := gputypes.BindGroupEntry{Binding: dd.Binding}
	switch {
	case dd.Buffer != gpucore.InvalidID:
		b, ok := d.buffers[dd.Buffer]
		if !ok {
			return e, fmt.Errorf("%w: buffer %d", ErrUnknownID, dd.Buffer)
		}
		size := dd.Size
		if size == 0 {
			size = b.size - dd.Offset
		}
		e.Resource = gputypes.BufferBinding{Buffer: b.buf.NativeHandle(), Offset: dd.Offset, Size: size}
	case dd.Texture != gpucore.InvalidID:
		t, ok := d.textures[dd.Texture]
		if !ok {
			return e, fmt.Errorf("%w: texture %d", ErrUnknownID, dd.Texture)
		}
		e.Resource = gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()}
	case dd.Sampler != gpucore.InvalidID:
		s, ok := d.samplers[dd.Sampler]
		if !ok {
			return e, fmt.Errorf("%w: sampler %d", ErrUnknownID, dd.Sampler)
		}
		e.Resource = gputypes.SamplerBinding{Sampler: s.NativeHandle()}
	default:
		return e, fmt.Errorf("native: binding %d has no resource", dd.Binding)
	}
	return e, nil
}

// CreatePipeline implements gpucore.Device.
func (d *Device) CreatePipeline(desc *gpucore.PipelineDesc) (gpucore.PipelineID, error) {
	d.mu.Lock()
	s, okShader := d.shaders[desc.Shader]
	rs, okRoot := d.rootSignatures[desc.RootSignature]
	d.mu.Unlock()
	if !okShader {
		return gpucore.InvalidID, fmt.Errorf("%w: shader %d", ErrUnknownID, desc.Shader)
	}
	if !okRoot {
		return gpucore.InvalidID, fmt.Errorf("%w: root signature %d", ErrUnknownID, desc.RootSignature)
	}

	attrs := make([]gputypes.VertexAttribute, 0, len(desc.VertexAttributes))
	for _, a := range desc.VertexAttributes {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         convertVertexFormat(a.Format),
			Offset:         uint64(a.Offset),
			ShaderLocation: a.Location,
		})
	}

	hdesc := &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: rs.layout,
		Vertex: hal.VertexState{
			Module:     s.module,
			EntryPoint: s.vertexEntry,
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: uint64(desc.VertexStride),
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes:  attrs,
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     s.module,
			EntryPoint: s.fragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    convertTextureFormat(desc.ColorFormat),
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: convertCullMode(desc.CullMode),
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if desc.DepthFormat != 0 {
		compare := gputypes.CompareFunctionAlways
		if desc.DepthTest {
			compare = convertCompare(desc.DepthCompare)
		}
		hdesc.DepthStencil = &hal.DepthStencilState{
			Format:            convertTextureFormat(desc.DepthFormat),
			DepthWriteEnabled: desc.DepthWrite,
			DepthCompare:      compare,
		}
	}

	p, err := d.device.CreateRenderPipeline(hdesc)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create pipeline %s: %w", desc.Label, err)
	}
	id := gpucore.PipelineID(d.newID())
	d.mu.Lock()
	d.pipelines[id] = &pipeline{p: p}
	d.mu.Unlock()
	return id, nil
}

// DestroyPipeline implements gpucore.Device.
func (d *Device) DestroyPipeline(id gpucore.PipelineID) {
	d.mu.Lock()
	p, ok := d.pipelines[id]
	delete(d.pipelines, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyRenderPipeline(p.p)
	}
}
