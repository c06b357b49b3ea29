package gpucore

// Device is the GPU collaborator used by the frame loop and render systems.
//
// Create methods return InvalidID together with a non-nil error on failure.
// Destroy methods ignore IDs they do not know.
//
// Device methods are called from the goroutine that owns the frame loop.
// Implementations are not required to be safe for concurrent use unless
// documented otherwise.
type Device interface {
	QueueManager
	SwapChainManager
	ResourceManager
	CommandManager
	SyncManager
	Recorder
}

// QueueManager creates queues and submits work to them.
type QueueManager interface {
	CreateQueue() (QueueID, error)
	DestroyQueue(QueueID)

	// WaitQueueIdle blocks until all work submitted to the queue completes.
	WaitQueueIdle(QueueID) error

	// FlushResourceUpdates commits pending resource uploads. It returns the
	// semaphore the next submission must wait on, or InvalidID when
	// nothing was pending.
	FlushResourceUpdates() (SemaphoreID, error)

	Submit(*SubmitDesc) error
	Present(*PresentDesc) error
}

// SwapChainManager manages presentation surfaces and render targets.
type SwapChainManager interface {
	CreateSwapChain(*SwapChainDesc) (SwapChainID, error)
	DestroySwapChain(SwapChainID)

	// SwapChainImage returns the render target backing image index.
	SwapChainImage(sc SwapChainID, index uint32) RenderTargetID

	// AcquireNextImage returns the next presentable image index and
	// arranges for signal to be signaled once the image is available.
	AcquireNextImage(sc SwapChainID, signal SemaphoreID) (uint32, error)

	// SetVSync switches the presentation mode. The queue must be idle.
	SetVSync(sc SwapChainID, enabled bool) error
	VSync(sc SwapChainID) bool

	CreateRenderTarget(*RenderTargetDesc) (RenderTargetID, error)
	DestroyRenderTarget(RenderTargetID)
}

// ResourceManager creates shader-facing objects.
type ResourceManager interface {
	CreateShader(*ShaderDesc) (ShaderID, error)
	DestroyShader(ShaderID)

	CreateRootSignature(*RootSignatureDesc) (RootSignatureID, error)
	DestroyRootSignature(RootSignatureID)

	CreateDescriptorSet(*DescriptorSetDesc) (DescriptorSetID, error)
	DestroyDescriptorSet(DescriptorSetID)

	// UpdateDescriptorSet (re)binds resources into slot index of set.
	UpdateDescriptorSet(set DescriptorSetID, index uint32, data []DescriptorData) error

	CreatePipeline(*PipelineDesc) (PipelineID, error)
	DestroyPipeline(PipelineID)

	CreateSampler(*SamplerDesc) (SamplerID, error)
	DestroySampler(SamplerID)

	CreateBuffer(*BufferDesc) (BufferID, error)
	DestroyBuffer(BufferID)

	// UpdateBuffer writes data at offset. The write is visible to the next
	// submission.
	UpdateBuffer(buf BufferID, offset uint64, data []byte) error

	CreateTexture(*TextureDesc) (TextureID, error)
	DestroyTexture(TextureID)
}

// CommandManager manages command pools and buffers.
type CommandManager interface {
	CreateCommandPool(QueueID) (CommandPoolID, error)
	DestroyCommandPool(CommandPoolID)

	// ResetCommandPool recycles every command buffer allocated from pool.
	ResetCommandPool(CommandPoolID) error

	CreateCommandBuffer(CommandPoolID) (CommandBufferID, error)
	DestroyCommandBuffer(CommandBufferID)

	BeginCommandBuffer(CommandBufferID) error
	EndCommandBuffer(CommandBufferID) error
}

// SyncManager manages fences and semaphores.
type SyncManager interface {
	CreateFence() (FenceID, error)
	DestroyFence(FenceID)

	// FenceStatus polls a fence without blocking.
	FenceStatus(FenceID) (FenceStatus, error)

	// WaitForFences blocks until every fence is signaled.
	WaitForFences(...FenceID) error

	CreateSemaphore() (SemaphoreID, error)
	DestroySemaphore(SemaphoreID)
}

// Recorder records commands into an open command buffer.
type Recorder interface {
	BeginRenderPass(cmd CommandBufferID, desc *RenderPassDesc) error
	EndRenderPass(cmd CommandBufferID)

	SetViewport(cmd CommandBufferID, x, y, width, height, minDepth, maxDepth float32)
	SetScissor(cmd CommandBufferID, x, y, width, height uint32)

	BindPipeline(cmd CommandBufferID, p PipelineID)
	BindDescriptorSet(cmd CommandBufferID, index uint32, set DescriptorSetID)
	BindVertexBuffers(cmd CommandBufferID, bufs ...BufferID)
	BindIndexBuffer(cmd CommandBufferID, buf BufferID, format IndexFormat)

	Draw(cmd CommandBufferID, vertexCount, firstVertex uint32)
	DrawIndexed(cmd CommandBufferID, indexCount, firstIndex uint32, firstVertex int32)
}
