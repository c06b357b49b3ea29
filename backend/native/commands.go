package native

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/internal/logging"
)

type commandPool struct {
	cmds []gpucore.CommandBufferID
}

// commandBuffer records through a HAL encoder between Begin and
// EndCommandBuffer. The finished HAL buffer is kept until the pool is reset.
type commandBuffer struct {
	pool     gpucore.CommandPoolID
	encoder  hal.CommandEncoder
	pass     hal.RenderPassEncoder
	recorded hal.CommandBuffer
}

// fence pairs a HAL fence with the value its last submission signals.
type fence struct {
	f     hal.Fence
	value uint64
}

// CreateQueue implements gpucore.Device. Every queue maps onto the single
// HAL queue.
func (d *Device) CreateQueue() (gpucore.QueueID, error) {
	id := gpucore.QueueID(d.newID())
	d.mu.Lock()
	d.queues[id] = struct{}{}
	d.mu.Unlock()
	return id, nil
}

// DestroyQueue implements gpucore.Device.
func (d *Device) DestroyQueue(id gpucore.QueueID) {
	d.mu.Lock()
	delete(d.queues, id)
	d.mu.Unlock()
}

// WaitQueueIdle implements gpucore.Device.
func (d *Device) WaitQueueIdle(id gpucore.QueueID) error {
	d.mu.Lock()
	_, ok := d.queues[id]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: queue %d", ErrUnknownID, id)
	}

	f, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("native: create fence: %w", err)
	}
	defer d.device.DestroyFence(f)

	if err := d.queue.Submit(nil, f, 1); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	err = d.waitFence(func(limit time.Duration) (bool, error) {
		return d.device.Wait(f, 1, limit)
	})
	if err != nil {
		return fmt.Errorf("native: wait idle: %w", err)
	}
	return nil
}

// FlushResourceUpdates implements gpucore.Device. Queue writes are ordered
// before the next submission, so there is never anything to wait on.
func (d *Device) FlushResourceUpdates() (gpucore.SemaphoreID, error) {
	return gpucore.InvalidID, nil
}

// Submit implements gpucore.Device.
func (d *Device) Submit(desc *gpucore.SubmitDesc) error {
	d.mu.Lock()
	if _, ok := d.queues[desc.Queue]; !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: queue %d", ErrUnknownID, desc.Queue)
	}
	bufs := make([]hal.CommandBuffer, 0, len(desc.CommandBuffers))
	for _, id := range desc.CommandBuffers {
		cb, ok := d.cmds[id]
		if !ok {
			d.mu.Unlock()
			return fmt.Errorf("%w: command buffer %d", ErrUnknownID, id)
		}
		if cb.recorded == nil {
			d.mu.Unlock()
			return fmt.Errorf("%w: command buffer %d was not ended", ErrNotRecording, id)
		}
		bufs = append(bufs, cb.recorded)
	}
	var (
		hf    hal.Fence
		value uint64
		sf    *fence
	)
	if desc.SignalFence != gpucore.InvalidID {
		var ok bool
		if sf, ok = d.fences[desc.SignalFence]; !ok {
			d.mu.Unlock()
			return fmt.Errorf("%w: fence %d", ErrUnknownID, desc.SignalFence)
		}
		hf = sf.f
		value = sf.value + 1
	}
	d.mu.Unlock()

	if err := d.queue.Submit(bufs, hf, value); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	if sf != nil {
		d.mu.Lock()
		sf.value = value
		d.mu.Unlock()
	}
	return nil
}

// Present implements gpucore.Device.
func (d *Device) Present(desc *gpucore.PresentDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc, ok := d.swapChains[desc.SwapChain]
	if !ok {
		return fmt.Errorf("%w: swapchain %d", ErrUnknownID, desc.SwapChain)
	}
	if int(desc.ImageIndex) >= len(sc.images) {
		return fmt.Errorf("native: present image %d out of range [0, %d)", desc.ImageIndex, len(sc.images))
	}
	sc.presented++
	return nil
}

// CreateCommandPool implements gpucore.Device.
func (d *Device) CreateCommandPool(queue gpucore.QueueID) (gpucore.CommandPoolID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.queues[queue]; !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: queue %d", ErrUnknownID, queue)
	}
	id := gpucore.CommandPoolID(d.newID())
	d.pools[id] = &commandPool{}
	return id, nil
}

// DestroyCommandPool implements gpucore.Device. Buffers allocated from the
// pool are destroyed with it.
func (d *Device) DestroyCommandPool(id gpucore.CommandPoolID) {
	d.mu.Lock()
	p, ok := d.pools[id]
	delete(d.pools, id)
	d.mu.Unlock()
	if !ok {
		return
	}
	for _, cmd := range p.cmds {
		d.DestroyCommandBuffer(cmd)
	}
}

// ResetCommandPool implements gpucore.Device.
func (d *Device) ResetCommandPool(id gpucore.CommandPoolID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pools[id]
	if !ok {
		return fmt.Errorf("%w: command pool %d", ErrUnknownID, id)
	}
	for _, cmd := range p.cmds {
		if cb, ok := d.cmds[cmd]; ok {
			d.resetLocked(cb)
		}
	}
	return nil
}

func (d *Device) resetLocked(cb *commandBuffer) {
	if cb.pass != nil {
		cb.pass.End()
		cb.pass = nil
	}
	if cb.encoder != nil {
		cb.encoder.DiscardEncoding()
		cb.encoder = nil
	}
	if cb.recorded != nil {
		d.device.FreeCommandBuffer(cb.recorded)
		cb.recorded = nil
	}
}

// CreateCommandBuffer implements gpucore.Device.
func (d *Device) CreateCommandBuffer(pool gpucore.CommandPoolID) (gpucore.CommandBufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pools[pool]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: command pool %d", ErrUnknownID, pool)
	}
	id := gpucore.CommandBufferID(d.newID())
	d.cmds[id] = &commandBuffer{pool: pool}
	p.cmds = append(p.cmds, id)
	return id, nil
}

// DestroyCommandBuffer implements gpucore.Device.
func (d *Device) DestroyCommandBuffer(id gpucore.CommandBufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb, ok := d.cmds[id]
	if !ok {
		return
	}
	d.resetLocked(cb)
	delete(d.cmds, id)
	if p, ok := d.pools[cb.pool]; ok {
		for i, c := range p.cmds {
			if c == id {
				p.cmds = append(p.cmds[:i], p.cmds[i+1:]...)
				break
			}
		}
	}
}

// BeginCommandBuffer implements gpucore.Device.
func (d *Device) BeginCommandBuffer(id gpucore.CommandBufferID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb, ok := d.cmds[id]
	if !ok {
		return fmt.Errorf("%w: command buffer %d", ErrUnknownID, id)
	}
	d.resetLocked(cb)

	label := fmt.Sprintf("cmd %d", id)
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}
	cb.encoder = enc
	return nil
}

// EndCommandBuffer implements gpucore.Device. An open render pass is ended.
func (d *Device) EndCommandBuffer(id gpucore.CommandBufferID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb, ok := d.cmds[id]
	if !ok {
		return fmt.Errorf("%w: command buffer %d", ErrUnknownID, id)
	}
	if cb.encoder == nil {
		return ErrNotRecording
	}
	if cb.pass != nil {
		cb.pass.End()
		cb.pass = nil
	}
	recorded, err := cb.encoder.EndEncoding()
	cb.encoder = nil
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	cb.recorded = recorded
	return nil
}

// CreateFence implements gpucore.Device.
func (d *Device) CreateFence() (gpucore.FenceID, error) {
	f, err := d.device.CreateFence()
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create fence: %w", err)
	}
	id := gpucore.FenceID(d.newID())
	d.mu.Lock()
	d.fences[id] = &fence{f: f}
	d.mu.Unlock()
	return id, nil
}

// DestroyFence implements gpucore.Device.
func (d *Device) DestroyFence(id gpucore.FenceID) {
	d.mu.Lock()
	f, ok := d.fences[id]
	delete(d.fences, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyFence(f.f)
	}
}

func (d *Device) fenceValue(id gpucore.FenceID) (hal.Fence, uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.fences[id]
	if !ok {
		return nil, 0, false
	}
	return f.f, f.value, true
}

// FenceStatus implements gpucore.Device. A fence that was never submitted
// is complete.
func (d *Device) FenceStatus(id gpucore.FenceID) (gpucore.FenceStatus, error) {
	hf, value, ok := d.fenceValue(id)
	if !ok {
		return gpucore.FenceComplete, fmt.Errorf("%w: fence %d", ErrUnknownID, id)
	}
	if value == 0 {
		return gpucore.FenceComplete, nil
	}
	done, err := d.device.Wait(hf, value, 0)
	if err != nil {
		return gpucore.FenceIncomplete, fmt.Errorf("native: poll fence: %w", err)
	}
	if done {
		return gpucore.FenceComplete, nil
	}
	return gpucore.FenceIncomplete, nil
}

// WaitForFences implements gpucore.Device.
func (d *Device) WaitForFences(ids ...gpucore.FenceID) error {
	for _, id := range ids {
		hf, value, ok := d.fenceValue(id)
		if !ok {
			return fmt.Errorf("%w: fence %d", ErrUnknownID, id)
		}
		if value == 0 {
			continue
		}
		err := d.waitFence(func(limit time.Duration) (bool, error) {
			return d.device.Wait(hf, value, limit)
		})
		if err != nil {
			return fmt.Errorf("native: wait fence %d: %w", id, err)
		}
	}
	return nil
}

// waitFence blocks until wait reports the fence signaled. Without a fence
// timeout it waits in fenceWaitSlice steps for as long as it takes.
func (d *Device) waitFence(wait func(limit time.Duration) (bool, error)) error {
	return waitLoop(wait, d.timeout, fenceWaitSlice)
}

func waitLoop(wait func(limit time.Duration) (bool, error), timeout, slice time.Duration) error {
	if timeout > 0 {
		done, err := wait(timeout)
		if err != nil {
			return err
		}
		if !done {
			return ErrTimeout
		}
		return nil
	}
	for waited := time.Duration(0); ; waited += slice {
		done, err := wait(slice)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		logging.L().Warn("native: slow fence wait", "waited", waited+slice)
	}
}

// CreateSemaphore implements gpucore.Device. A single HAL queue executes
// submissions in order, so semaphores carry no GPU state.
func (d *Device) CreateSemaphore() (gpucore.SemaphoreID, error) {
	id := gpucore.SemaphoreID(d.newID())
	d.mu.Lock()
	d.semaphores[id] = struct{}{}
	d.mu.Unlock()
	return id, nil
}

// DestroySemaphore implements gpucore.Device.
func (d *Device) DestroySemaphore(id gpucore.SemaphoreID) {
	d.mu.Lock()
	delete(d.semaphores, id)
	d.mu.Unlock()
}

// recordingPass returns the open render pass of cmd, or nil after logging
// why the command is dropped.
func (d *Device) recordingPass(cmd gpucore.CommandBufferID, op string) hal.RenderPassEncoder {
	d.mu.Lock()
	cb, ok := d.cmds[cmd]
	d.mu.Unlock()
	if !ok || cb.pass == nil {
		logging.L().Warn("native: command outside render pass dropped", "op", op, "cmd", cmd)
		return nil
	}
	return cb.pass
}

// BeginRenderPass implements gpucore.Device.
func (d *Device) BeginRenderPass(cmd gpucore.CommandBufferID, desc *gpucore.RenderPassDesc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cb, ok := d.cmds[cmd]
	if !ok {
		return fmt.Errorf("%w: command buffer %d", ErrUnknownID, cmd)
	}
	if cb.encoder == nil {
		return ErrNotRecording
	}
	color, ok := d.renderTargets[desc.Color]
	if !ok {
		return fmt.Errorf("%w: render target %d", ErrUnknownID, desc.Color)
	}

	c := desc.ClearColor
	rp := &hal.RenderPassDescriptor{
		Label: fmt.Sprintf("pass %d", cmd),
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       color.view,
			LoadOp:     convertLoad(desc.ColorLoad),
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])},
		}},
	}
	if desc.Depth != gpucore.InvalidID {
		depth, ok := d.renderTargets[desc.Depth]
		if !ok {
			return fmt.Errorf("%w: render target %d", ErrUnknownID, desc.Depth)
		}
		rp.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:            depth.view,
			DepthLoadOp:     convertLoad(desc.DepthLoad),
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: desc.ClearDepth,
		}
	}

	if cb.pass != nil {
		cb.pass.End()
	}
	cb.pass = cb.encoder.BeginRenderPass(rp)
	return nil
}

// EndRenderPass implements gpucore.Device.
func (d *Device) EndRenderPass(cmd gpucore.CommandBufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cb, ok := d.cmds[cmd]; ok && cb.pass != nil {
		cb.pass.End()
		cb.pass = nil
	}
}

// SetViewport implements gpucore.Device.
func (d *Device) SetViewport(cmd gpucore.CommandBufferID, x, y, width, height, minDepth, maxDepth float32) {
	if pass := d.recordingPass(cmd, "SetViewport"); pass != nil {
		pass.SetViewport(x, y, width, height, minDepth, maxDepth)
	}
}

// SetScissor implements gpucore.Device.
func (d *Device) SetScissor(cmd gpucore.CommandBufferID, x, y, width, height uint32) {
	if pass := d.recordingPass(cmd, "SetScissor"); pass != nil {
		pass.SetScissorRect(x, y, width, height)
	}
}

// BindPipeline implements gpucore.Device.
func (d *Device) BindPipeline(cmd gpucore.CommandBufferID, id gpucore.PipelineID) {
	pass := d.recordingPass(cmd, "BindPipeline")
	if pass == nil {
		return
	}
	d.mu.Lock()
	p, ok := d.pipelines[id]
	d.mu.Unlock()
	if !ok {
		logging.L().Warn("native: bind of unknown pipeline dropped", "pipeline", id)
		return
	}
	pass.SetPipeline(p.p)
}

// BindDescriptorSet implements gpucore.Device. The set binds at the group
// numbered by its update frequency; index selects the slot.
func (d *Device) BindDescriptorSet(cmd gpucore.CommandBufferID, index uint32, id gpucore.DescriptorSetID) {
	pass := d.recordingPass(cmd, "BindDescriptorSet")
	if pass == nil {
		return
	}
	d.mu.Lock()
	ds, ok := d.descriptorSets[id]
	var g hal.BindGroup
	if ok && int(index) < len(ds.slots) {
		g = ds.slots[index]
	}
	d.mu.Unlock()
	if g == nil {
		logging.L().Warn("native: bind of unwritten descriptor set slot dropped", "set", id, "slot", index)
		return
	}
	pass.SetBindGroup(ds.group, g, nil)
}

// BindVertexBuffers implements gpucore.Device.
func (d *Device) BindVertexBuffers(cmd gpucore.CommandBufferID, bufs ...gpucore.BufferID) {
	pass := d.recordingPass(cmd, "BindVertexBuffers")
	if pass == nil {
		return
	}
	for slot, id := range bufs {
		d.mu.Lock()
		b, ok := d.buffers[id]
		d.mu.Unlock()
		if !ok {
			logging.L().Warn("native: bind of unknown vertex buffer dropped", "buffer", id)
			continue
		}
		pass.SetVertexBuffer(uint32(slot), b.buf, 0)
	}
}

// BindIndexBuffer implements gpucore.Device.
func (d *Device) BindIndexBuffer(cmd gpucore.CommandBufferID, id gpucore.BufferID, format gpucore.IndexFormat) {
	pass := d.recordingPass(cmd, "BindIndexBuffer")
	if pass == nil {
		return
	}
	d.mu.Lock()
	b, ok := d.buffers[id]
	d.mu.Unlock()
	if !ok {
		logging.L().Warn("native: bind of unknown index buffer dropped", "buffer", id)
		return
	}
	pass.SetIndexBuffer(b.buf, convertIndexFormat(format), 0)
}

// Draw implements gpucore.Device.
func (d *Device) Draw(cmd gpucore.CommandBufferID, vertexCount, firstVertex uint32) {
	if pass := d.recordingPass(cmd, "Draw"); pass != nil {
		pass.Draw(vertexCount, 1, firstVertex, 0)
	}
}

// DrawIndexed implements gpucore.Device.
func (d *Device) DrawIndexed(cmd gpucore.CommandBufferID, indexCount, firstIndex uint32, firstVertex int32) {
	if pass := d.recordingPass(cmd, "DrawIndexed"); pass != nil {
		pass.DrawIndexed(indexCount, 1, firstIndex, firstVertex, 0)
	}
}
