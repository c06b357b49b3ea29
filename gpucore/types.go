package gpucore

// Resource IDs
//
// These opaque IDs represent GPU objects. Each Device implementation
// maintains a mapping between IDs and actual backend objects.
// IDs are uint64 to accommodate various backend handle sizes.

// QueueID is an opaque handle to a command queue.
type QueueID uint64

// SwapChainID is an opaque handle to a presentation swapchain.
type SwapChainID uint64

// RenderTargetID is an opaque handle to a color or depth render target.
type RenderTargetID uint64

// ShaderID is an opaque handle to a compiled shader program.
type ShaderID uint64

// RootSignatureID is an opaque handle to a pipeline layout.
type RootSignatureID uint64

// DescriptorSetID is an opaque handle to a set of bind groups.
type DescriptorSetID uint64

// PipelineID is an opaque handle to a graphics pipeline.
type PipelineID uint64

// SamplerID is an opaque handle to a texture sampler.
type SamplerID uint64

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a sampled texture.
type TextureID uint64

// CommandPoolID is an opaque handle to a command allocator.
type CommandPoolID uint64

// CommandBufferID is an opaque handle to a recordable command buffer.
type CommandBufferID uint64

// FenceID is an opaque handle to a GPU-to-CPU completion signal.
type FenceID uint64

// SemaphoreID is an opaque handle to a GPU-side ordering signal.
type SemaphoreID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// WindowHandle identifies the native window a swapchain presents to.
// Zero means offscreen.
type WindowHandle uintptr

// FenceStatus reports whether the work guarded by a fence has finished.
type FenceStatus uint8

const (
	// FenceComplete means the fence was signaled or never submitted.
	FenceComplete FenceStatus = iota

	// FenceIncomplete means the GPU is still executing the guarded work.
	FenceIncomplete
)

// String returns the status name.
func (s FenceStatus) String() string {
	switch s {
	case FenceComplete:
		return "Complete"
	case FenceIncomplete:
		return "Incomplete"
	default:
		return "Unknown"
	}
}

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageVertex indicates the buffer can be used as a vertex buffer.
	BufferUsageVertex BufferUsage = 1 << iota

	// BufferUsageIndex indicates the buffer can be used as an index buffer.
	BufferUsageIndex

	// BufferUsageUniform indicates the buffer can be used as a uniform buffer.
	BufferUsageUniform

	// BufferUsageCopyDst indicates the buffer can be written from the CPU.
	BufferUsageCopyDst
)

// TextureFormat specifies the format of texture and render target data.
type TextureFormat uint32

// Texture formats.
const (
	// TextureFormatRGBA8Unorm is 8-bit RGBA, normalized unsigned integer.
	TextureFormatRGBA8Unorm TextureFormat = iota + 1

	// TextureFormatBGRA8Unorm is 8-bit BGRA, normalized unsigned integer.
	TextureFormatBGRA8Unorm

	// TextureFormatDepth32Float is a 32-bit float depth format.
	TextureFormatDepth32Float

	// TextureFormatDepth24PlusStencil8 is a combined depth/stencil format.
	TextureFormatDepth24PlusStencil8
)

// IsDepth reports whether the format is a depth format.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth32Float || f == TextureFormatDepth24PlusStencil8
}

// ShaderStage is a bitmask of programmable pipeline stages.
type ShaderStage uint32

// Shader stages.
const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

// DescriptorType classifies one binding in a root signature.
type DescriptorType uint8

// Descriptor types.
const (
	DescriptorUniformBuffer DescriptorType = iota + 1
	DescriptorTexture
	DescriptorSampler
)

// UpdateFrequency tells the device how often a descriptor set changes.
type UpdateFrequency uint8

const (
	// UpdateFrequencyNone marks sets written once after load.
	UpdateFrequencyNone UpdateFrequency = iota

	// UpdateFrequencyPerFrame marks sets with one slot per frame in flight.
	UpdateFrequencyPerFrame
)

// VertexFormat describes one vertex attribute.
type VertexFormat uint8

// Vertex formats.
const (
	VertexFormatFloat32x2 VertexFormat = iota + 1
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

// Size returns the attribute size in bytes.
func (f VertexFormat) Size() uint32 {
	switch f {
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	default:
		return 0
	}
}

// CullMode selects which triangle faces are discarded.
type CullMode uint8

// Cull modes.
const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// CompareFunction is a depth test comparison.
type CompareFunction uint8

// Compare functions.
const (
	CompareAlways CompareFunction = iota
	CompareLess
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual
)

// IndexFormat is the element size of an index buffer.
type IndexFormat uint8

// Index formats.
const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// LoadAction selects what happens to an attachment at the start of a pass.
type LoadAction uint8

// Load actions.
const (
	LoadActionDontCare LoadAction = iota
	LoadActionLoad
	LoadActionClear
)
