package native

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/modelview/gpucore"
)

func convertTextureFormat(f gpucore.TextureFormat) gputypes.TextureFormat {
	switch f {
	case gpucore.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	case gpucore.TextureFormatDepth32Float:
		return gputypes.TextureFormatDepth32Float
	case gpucore.TextureFormatDepth24PlusStencil8:
		return gputypes.TextureFormatDepth24PlusStencil8
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}

func convertBufferUsage(u gpucore.BufferUsage) gputypes.BufferUsage {
	// every buffer is written through the queue
	result := gputypes.BufferUsageCopyDst
	if u&gpucore.BufferUsageVertex != 0 {
		result |= gputypes.BufferUsageVertex
	}
	if u&gpucore.BufferUsageIndex != 0 {
		result |= gputypes.BufferUsageIndex
	}
	if u&gpucore.BufferUsageUniform != 0 {
		result |= gputypes.BufferUsageUniform
	}
	return result
}

func convertStages(s gpucore.ShaderStage) gputypes.ShaderStage {
	var result gputypes.ShaderStage
	if s&gpucore.ShaderStageVertex != 0 {
		result |= gputypes.ShaderStageVertex
	}
	if s&gpucore.ShaderStageFragment != 0 {
		result |= gputypes.ShaderStageFragment
	}
	return result
}

func convertBindingLayout(b gpucore.BindingDesc) gputypes.BindGroupLayoutEntry {
	e := gputypes.BindGroupLayoutEntry{
		Binding:    b.Binding,
		Visibility: convertStages(b.Stages),
	}
	switch b.Type {
	case gpucore.DescriptorUniformBuffer:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
	case gpucore.DescriptorTexture:
		e.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case gpucore.DescriptorSampler:
		e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	}
	return e
}

func convertVertexFormat(f gpucore.VertexFormat) gputypes.VertexFormat {
	switch f {
	case gpucore.VertexFormatFloat32x2:
		return gputypes.VertexFormatFloat32x2
	case gpucore.VertexFormatFloat32x4:
		return gputypes.VertexFormatFloat32x4
	default:
		return gputypes.VertexFormatFloat32x3
	}
}

func convertCompare(c gpucore.CompareFunction) gputypes.CompareFunction {
	switch c {
	case gpucore.CompareLess:
		return gputypes.CompareFunctionLess
	case gpucore.CompareLessEqual:
		return gputypes.CompareFunctionLessEqual
	case gpucore.CompareGreater:
		return gputypes.CompareFunctionGreater
	case gpucore.CompareGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	default:
		return gputypes.CompareFunctionAlways
	}
}

func convertCullMode(c gpucore.CullMode) gputypes.CullMode {
	switch c {
	case gpucore.CullFront:
		return gputypes.CullModeFront
	case gpucore.CullBack:
		return gputypes.CullModeBack
	default:
		return gputypes.CullModeNone
	}
}

func convertIndexFormat(f gpucore.IndexFormat) gputypes.IndexFormat {
	if f == gpucore.IndexFormatUint32 {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

func convertLoad(a gpucore.LoadAction) gputypes.LoadOp {
	if a == gpucore.LoadActionLoad {
		return gputypes.LoadOpLoad
	}
	// WebGPU has no don't-care load; clearing is the cheapest equivalent
	return gputypes.LoadOpClear
}

func convertFilter(f gpucore.FilterMode) gputypes.FilterMode {
	if f == gpucore.FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

func convertAddressMode(m gpucore.AddressMode) gputypes.AddressMode {
	if m == gpucore.AddressRepeat {
		return gputypes.AddressModeRepeat
	}
	return gputypes.AddressModeClampToEdge
}
