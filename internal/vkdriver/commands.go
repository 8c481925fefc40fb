package vkdriver

import (
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/pongengine/pong/internal/renderer"
)

func (d *Driver) CreateCommandPool(device renderer.Device, family int) (renderer.CommandPool, error) {
	state, err := d.devices.Get(device)
	if err != nil {
		return 0, err
	}

	pool, res, err := state.driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: family,
	})
	if err != nil {
		return 0, vkErr(err, res, "vkCreateCommandPool")
	}
	return d.pools.Add(pool), nil
}

// DestroyCommandPool also drops the handles of buffers still allocated from
// the pool, since the device frees them with it.
func (d *Driver) DestroyCommandPool(device renderer.Device, pool renderer.CommandPool) {
	p, ok := d.pools.Remove(pool)
	if !ok {
		return
	}
	for _, buffer := range d.bufferPools.Release(pool) {
		d.buffers.Remove(buffer)
	}
	if state, err := d.devices.Get(device); err == nil {
		state.driver.DestroyCommandPool(p, nil)
	}
}

func (d *Driver) AllocateCommandBuffers(device renderer.Device, pool renderer.CommandPool, count int) ([]renderer.CommandBuffer, error) {
	state, err := d.devices.Get(device)
	if err != nil {
		return nil, err
	}
	p, err := d.pools.Get(pool)
	if err != nil {
		return nil, err
	}

	buffers, res, err := state.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        p,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	})
	if err != nil {
		return nil, vkErr(err, res, "vkAllocateCommandBuffers")
	}

	handles := make([]renderer.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		h := d.buffers.Add(buffer)
		d.bufferPools.Track(pool, h)
		handles = append(handles, h)
	}
	return handles, nil
}

// FreeCommandBuffers returns buffers to the pool they were allocated from.
func (d *Driver) FreeCommandBuffers(device renderer.Device, _ renderer.CommandPool, buffers ...renderer.CommandBuffer) {
	var freed []core1_0.CommandBuffer
	for _, h := range buffers {
		if buffer, ok := d.buffers.Remove(h); ok {
			d.bufferPools.Untrack(h)
			freed = append(freed, buffer)
		}
	}
	if len(freed) == 0 {
		return
	}
	if state, err := d.devices.Get(device); err == nil {
		state.driver.FreeCommandBuffers(freed...)
	}
}

func (d *Driver) commandBuffer(device renderer.Device, buffer renderer.CommandBuffer) (*deviceState, core1_0.CommandBuffer, error) {
	state, err := d.devices.Get(device)
	if err != nil {
		return nil, core1_0.CommandBuffer{}, err
	}
	buf, err := d.buffers.Get(buffer)
	if err != nil {
		return nil, core1_0.CommandBuffer{}, err
	}
	return state, buf, nil
}

func (d *Driver) BeginCommandBuffer(device renderer.Device, buffer renderer.CommandBuffer) error {
	state, buf, err := d.commandBuffer(device, buffer)
	if err != nil {
		return err
	}

	res, err := state.driver.BeginCommandBuffer(buf, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		return vkErr(err, res, "vkBeginCommandBuffer")
	}
	return nil
}

func (d *Driver) EndCommandBuffer(device renderer.Device, buffer renderer.CommandBuffer) error {
	state, buf, err := d.commandBuffer(device, buffer)
	if err != nil {
		return err
	}

	res, err := state.driver.EndCommandBuffer(buf)
	if err != nil {
		return vkErr(err, res, "vkEndCommandBuffer")
	}
	return nil
}

func (d *Driver) CmdBeginRenderPass(device renderer.Device, buffer renderer.CommandBuffer, info renderer.RenderPassBeginInfo) error {
	state, buf, err := d.commandBuffer(device, buffer)
	if err != nil {
		return err
	}
	pass, err := d.renderPasses.Get(info.RenderPass)
	if err != nil {
		return err
	}
	framebuffer, err := d.framebuffers.Get(info.Framebuffer)
	if err != nil {
		return err
	}

	c := info.ClearColor
	return state.driver.CmdBeginRenderPass(buf, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  pass,
			Framebuffer: framebuffer,
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: core1_0.Extent2D{Width: info.RenderArea.Width, Height: info.RenderArea.Height},
			},
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat{c[0], c[1], c[2], c[3]},
			},
		})
}

func (d *Driver) CmdEndRenderPass(device renderer.Device, buffer renderer.CommandBuffer) {
	state, buf, err := d.commandBuffer(device, buffer)
	if err != nil {
		return
	}
	state.driver.CmdEndRenderPass(buf)
}

func (d *Driver) CreateSemaphore(device renderer.Device) (renderer.Semaphore, error) {
	state, err := d.devices.Get(device)
	if err != nil {
		return 0, err
	}

	semaphore, res, err := state.driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return 0, vkErr(err, res, "vkCreateSemaphore")
	}
	return d.semaphores.Add(semaphore), nil
}

func (d *Driver) DestroySemaphore(device renderer.Device, semaphore renderer.Semaphore) {
	s, ok := d.semaphores.Remove(semaphore)
	if !ok {
		return
	}
	if state, err := d.devices.Get(device); err == nil {
		state.driver.DestroySemaphore(s, nil)
	}
}

func (d *Driver) QueueSubmit(device renderer.Device, queue renderer.Queue, info renderer.SubmitInfo) error {
	state, err := d.devices.Get(device)
	if err != nil {
		return err
	}
	q, err := d.queues.Get(queue)
	if err != nil {
		return err
	}

	var submit core1_0.SubmitInfo
	for _, h := range info.WaitSemaphores {
		semaphore, err := d.semaphores.Get(h)
		if err != nil {
			return err
		}
		submit.WaitSemaphores = append(submit.WaitSemaphores, semaphore)
	}
	for _, stage := range info.WaitDstStageMask {
		submit.WaitDstStageMask = append(submit.WaitDstStageMask, core1_0.PipelineStageFlags(stage))
	}
	for _, h := range info.CommandBuffers {
		buffer, err := d.buffers.Get(h)
		if err != nil {
			return err
		}
		submit.CommandBuffers = append(submit.CommandBuffers, buffer)
	}
	for _, h := range info.SignalSemaphores {
		semaphore, err := d.semaphores.Get(h)
		if err != nil {
			return err
		}
		submit.SignalSemaphores = append(submit.SignalSemaphores, semaphore)
	}

	res, err := state.driver.QueueSubmit(q, nil, submit)
	if err != nil {
		return vkErr(err, res, "vkQueueSubmit")
	}
	return nil
}
