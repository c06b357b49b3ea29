package gpucore

// SwapChainDesc describes a presentation swapchain.
type SwapChainDesc struct {
	Label string

	// Window is the native window to present to. Zero renders offscreen.
	Window WindowHandle

	// Queue is the queue that presents the images.
	Queue QueueID

	Width, Height uint32

	// ImageCount is the number of presentable images.
	ImageCount uint32

	ColorFormat TextureFormat

	// ClearColor is the clear value used when a pass clears an image.
	ClearColor [4]float32

	VSync bool
}

// RenderTargetDesc describes an offscreen color or depth target.
type RenderTargetDesc struct {
	Label         string
	Width, Height uint32
	Format        TextureFormat

	// ClearDepth is the depth clear value. Reverse-Z projections clear to 0.
	ClearDepth float32
}

// ShaderDesc describes a shader program with a vertex and fragment stage.
type ShaderDesc struct {
	Label string

	// Source is WGSL text containing both stages.
	Source string

	VertexEntry   string
	FragmentEntry string
}

// BindingDesc describes one binding slot of a root signature.
type BindingDesc struct {
	Name    string
	Binding uint32
	Type    DescriptorType
	Stages  ShaderStage

	// Frequency selects the descriptor set the binding belongs to. Sets
	// are numbered by frequency: UpdateFrequencyNone is set 0 and
	// UpdateFrequencyPerFrame is set 1.
	Frequency UpdateFrequency
}

// RootSignatureDesc describes the resource layout shared by a set of shaders.
type RootSignatureDesc struct {
	Label    string
	Shaders  []ShaderID
	Bindings []BindingDesc
}

// DescriptorSetDesc describes a descriptor set.
type DescriptorSetDesc struct {
	Label         string
	RootSignature RootSignatureID
	Frequency     UpdateFrequency

	// MaxSets is the number of independently updatable slots.
	MaxSets uint32
}

// DescriptorData binds one resource to one binding of a descriptor set slot.
// Exactly one of Buffer, Texture and Sampler is set.
type DescriptorData struct {
	Binding uint32

	Buffer BufferID
	Offset uint64
	Size   uint64

	Texture TextureID
	Sampler SamplerID
}

// VertexAttribute describes one attribute of the single vertex stream.
type VertexAttribute struct {
	Location uint32
	Format   VertexFormat
	Offset   uint32
}

// PipelineDesc describes a graphics pipeline.
type PipelineDesc struct {
	Label         string
	Shader        ShaderID
	RootSignature RootSignatureID

	VertexAttributes []VertexAttribute
	VertexStride     uint32

	ColorFormat TextureFormat
	DepthFormat TextureFormat

	DepthTest    bool
	DepthWrite   bool
	DepthCompare CompareFunction

	CullMode CullMode
}

// FilterMode selects texel filtering.
type FilterMode uint8

// Filter modes.
const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// AddressMode selects texture coordinate wrapping.
type AddressMode uint8

// Address modes.
const (
	AddressClampToEdge AddressMode = iota
	AddressRepeat
)

// SamplerDesc describes a texture sampler.
type SamplerDesc struct {
	Label       string
	Filter      FilterMode
	AddressMode AddressMode
}

// BufferDesc describes a GPU buffer. Data, when set, is uploaded at creation.
type BufferDesc struct {
	Label string
	Size  uint64
	Usage BufferUsage
	Data  []byte
}

// TextureDesc describes a 2D sampled texture. Data holds tightly packed
// rows in Format and is uploaded at creation.
type TextureDesc struct {
	Label         string
	Width, Height uint32
	Format        TextureFormat
	Data          []byte
}

// RenderPassDesc describes the attachments of a render pass.
type RenderPassDesc struct {
	Color     RenderTargetID
	ColorLoad LoadAction

	// Depth is optional.
	Depth     RenderTargetID
	DepthLoad LoadAction

	ClearColor [4]float32
	ClearDepth float32
}

// SubmitDesc describes a queue submission.
type SubmitDesc struct {
	Queue            QueueID
	CommandBuffers   []CommandBufferID
	WaitSemaphores   []SemaphoreID
	SignalSemaphores []SemaphoreID
	SignalFence      FenceID
}

// PresentDesc describes a present request.
type PresentDesc struct {
	Queue          QueueID
	SwapChain      SwapChainID
	ImageIndex     uint32
	WaitSemaphores []SemaphoreID
}
