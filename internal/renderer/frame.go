package renderer

import (
	"log/slog"

	"github.com/loov/hrtime"
)

// FrameState is the phase of the frame executor.
type FrameState int

const (
	FrameIdle FrameState = iota
	FrameAcquiring
	FrameRecording
	FrameSubmitted
	FramePresenting
	FrameWaitingIdle
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameAcquiring:
		return "acquiring"
	case FrameRecording:
		return "recording"
	case FrameSubmitted:
		return "submitted"
	case FramePresenting:
		return "presenting"
	case FrameWaitingIdle:
		return "waiting-idle"
	}
	return "unknown"
}

// FrameSync is the pair of binary semaphores reused by every frame: Acquire
// is signaled when the acquired image may be rendered to, Submit when the
// frame's rendering work has completed.
type FrameSync struct {
	Acquire Semaphore
	Submit  Semaphore
}

// FrameExecutor runs one frame at a time. Every frame ends with a full device
// idle wait, so frame N's GPU work is complete before frame N+1 records.
//
// TODO: replace the idle wait with per-frame fences and duplicated
// semaphores once frames need to overlap.
type FrameExecutor struct {
	drv        Driver
	device     LogicalDevice
	swapchain  Swapchain
	targets    *RenderTargetSet
	pool       CommandPool
	sync       FrameSync
	clearColor [4]float32

	state  FrameState
	failed error

	stats         FrameStats
	statsInterval int
	logger        *slog.Logger
}

func newFrameExecutor(drv Driver, device LogicalDevice, chain *PresentationChain, targets *RenderTargetSet, pool CommandPool, sync FrameSync, opts Options, logger *slog.Logger) *FrameExecutor {
	return &FrameExecutor{
		drv:           drv,
		device:        device,
		swapchain:     chain.Swapchain,
		targets:       targets,
		pool:          pool,
		sync:          sync,
		clearColor:    opts.ClearColor,
		state:         FrameIdle,
		statsInterval: opts.StatsInterval,
		logger:        logger,
	}
}

func (f *FrameExecutor) State() FrameState {
	return f.state
}

func (f *FrameExecutor) Stats() FrameStats {
	return f.stats
}

// Err returns the failure that stopped the executor, if any.
func (f *FrameExecutor) Err() error {
	return f.failed
}

// Render runs acquire, record, submit, present and the idle wait. The first
// failure is fatal: it is returned by this and every later call.
func (f *FrameExecutor) Render() error {
	if f.failed != nil {
		return f.failed
	}

	start := hrtime.Now()
	if err := f.render(); err != nil {
		f.failed = err
		f.logger.Error("frame failed", "state", f.state, "frame", f.stats.Frames, "err", err)
		return err
	}
	f.stats.record(hrtime.Since(start))

	if f.statsInterval > 0 && f.stats.Frames%uint64(f.statsInterval) == 0 {
		f.logger.Debug("frame stats",
			"frames", f.stats.Frames,
			"last", f.stats.Last,
			"avg", f.stats.Average(),
			"max", f.stats.Max)
	}
	return nil
}

func (f *FrameExecutor) render() error {
	drv, device := f.drv, f.device.Device

	f.state = FrameAcquiring
	imageIndex, err := drv.AcquireNextImage(device, f.swapchain, f.sync.Acquire)
	if err != nil {
		return frameErr(ErrAcquireFailed, err, "acquire next image")
	}
	if imageIndex < 0 || imageIndex >= len(f.targets.Framebuffers) {
		return frameErr(ErrAcquireFailed, nil, "acquired image %d of %d", imageIndex, len(f.targets.Framebuffers))
	}

	f.state = FrameRecording
	buffers, err := drv.AllocateCommandBuffers(device, f.pool, 1)
	if err != nil {
		return frameErr(ErrCommandRecordingFailed, err, "allocate command buffer")
	}
	cmd := buffers[0]

	if err := f.record(cmd, imageIndex); err != nil {
		drv.FreeCommandBuffers(device, f.pool, cmd)
		return err
	}

	f.state = FrameSubmitted
	err = drv.QueueSubmit(device, f.device.Queue, SubmitInfo{
		WaitSemaphores:   []Semaphore{f.sync.Acquire},
		WaitDstStageMask: []PipelineStage{PipelineStageColorAttachmentOutput},
		CommandBuffers:   []CommandBuffer{cmd},
		SignalSemaphores: []Semaphore{f.sync.Submit},
	})
	if err != nil {
		drv.FreeCommandBuffers(device, f.pool, cmd)
		return frameErr(ErrSubmitFailed, err, "submit image %d", imageIndex)
	}

	f.state = FramePresenting
	err = drv.QueuePresent(device, f.device.Queue, PresentInfo{
		WaitSemaphores: []Semaphore{f.sync.Submit},
		Swapchains:     []Swapchain{f.swapchain},
		ImageIndices:   []int{imageIndex},
	})
	if err != nil {
		f.releaseSubmitted(cmd)
		return frameErr(ErrPresentFailed, err, "present image %d", imageIndex)
	}

	f.state = FrameWaitingIdle
	if err := drv.DeviceWaitIdle(device); err != nil {
		return frameErr(ErrWaitIdleFailed, err, "wait idle after image %d", imageIndex)
	}

	drv.FreeCommandBuffers(device, f.pool, cmd)
	f.state = FrameIdle
	return nil
}

func (f *FrameExecutor) record(cmd CommandBuffer, imageIndex int) error {
	drv, device := f.drv, f.device.Device

	if err := drv.BeginCommandBuffer(device, cmd); err != nil {
		return frameErr(ErrCommandRecordingFailed, err, "begin command buffer")
	}

	err := drv.CmdBeginRenderPass(device, cmd, RenderPassBeginInfo{
		RenderPass:  f.targets.RenderPass,
		Framebuffer: f.targets.Framebuffers[imageIndex],
		RenderArea:  f.targets.Extent,
		ClearColor:  f.clearColor,
	})
	if err != nil {
		return frameErr(ErrCommandRecordingFailed, err, "begin render pass on framebuffer %d", imageIndex)
	}
	drv.CmdEndRenderPass(device, cmd)

	if err := drv.EndCommandBuffer(device, cmd); err != nil {
		return frameErr(ErrCommandRecordingFailed, err, "end command buffer")
	}
	return nil
}

// releaseSubmitted frees a command buffer that may still be executing. It is
// only freed once the device is idle; otherwise the pool's destruction
// releases it.
func (f *FrameExecutor) releaseSubmitted(cmd CommandBuffer) {
	if err := f.drv.DeviceWaitIdle(f.device.Device); err != nil {
		f.logger.Warn("command buffer left to pool teardown", "err", err)
		return
	}
	f.drv.FreeCommandBuffers(f.device.Device, f.pool, cmd)
}
