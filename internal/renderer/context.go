package renderer

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Context owns every GPU object the renderer creates. It belongs to a single
// goroutine for its whole life and is released with Destroy.
type Context struct {
	id     uuid.UUID
	drv    Driver
	logger *slog.Logger

	windowExtent Extent2D

	instance       Instance
	debugMessenger DebugMessenger
	surface        Surface
	selection      PhysicalDeviceSelection
	properties     DeviceProperties
	device         LogicalDevice
	chain          PresentationChain
	targets        RenderTargetSet
	commandPool    CommandPool
	sync           FrameSync

	frames    *FrameExecutor
	destroyed bool
}

// InitializeGraphics runs the full bootstrap against window: instance,
// optional debug messenger, surface, physical device selection, logical
// device, presentation chain, render targets, command pool and frame
// semaphores. Any failure releases what was created and is returned.
func InitializeGraphics(drv Driver, window Window, opts Options) (*Context, error) {
	id := uuid.New()
	c := &Context{
		id:        id,
		drv:       drv,
		logger:    Logger().With("context", id.String()),
		selection: noSelection,
	}

	width, height := window.ClientAreaSize()
	c.windowExtent = Extent2D{Width: width, Height: height}

	if err := c.initialize(window, opts); err != nil {
		c.Destroy()
		return nil, err
	}

	c.frames = newFrameExecutor(drv, c.device, &c.chain, &c.targets, c.commandPool, c.sync, opts, c.logger)
	return c, nil
}

func (c *Context) initialize(window Window, opts Options) error {
	var err error

	if err = c.createInstance(window, opts); err != nil {
		return err
	}

	c.surface, err = c.drv.CreateSurface(c.instance)
	if err != nil {
		return resourceErr(ErrSurfaceCreationFailed, err, "create surface")
	}

	c.selection, err = SelectPhysicalDevice(c.drv, c.instance, c.surface, opts.Limits)
	if err != nil {
		return err
	}

	c.properties, err = c.drv.PhysicalDeviceProperties(c.selection.GPU)
	if err != nil {
		return configErr(ErrDeviceQueryFailed, err, "physical device properties")
	}
	c.logger.Info("running on GPU",
		"name", c.properties.Name,
		"type", c.properties.Type,
		"vendorID", c.properties.VendorID,
		"deviceID", c.properties.DeviceID,
		"pipelineCacheUUID", c.properties.PipelineCacheUUID.String(),
		"queueFamily", c.selection.QueueFamily)

	c.device, err = CreateLogicalDevice(c.drv, c.selection)
	if err != nil {
		return err
	}

	c.chain, err = CreatePresentationChain(c.drv, c.device, c.selection, c.surface, c.windowExtent, opts)
	if err != nil {
		return err
	}

	c.targets, err = CreateRenderTargets(c.drv, c.device.Device, &c.chain, c.windowExtent)
	if err != nil {
		return err
	}

	c.commandPool, err = c.drv.CreateCommandPool(c.device.Device, c.selection.QueueFamily)
	if err != nil {
		return resourceErr(ErrCommandPoolCreationFailed, err, "create command pool")
	}

	c.sync.Acquire, err = c.drv.CreateSemaphore(c.device.Device)
	if err != nil {
		return resourceErr(ErrSyncPrimitiveCreationFailed, err, "create acquire semaphore")
	}
	c.sync.Submit, err = c.drv.CreateSemaphore(c.device.Device)
	if err != nil {
		return resourceErr(ErrSyncPrimitiveCreationFailed, err, "create submit semaphore")
	}

	return nil
}

func (c *Context) createInstance(window Window, opts Options) error {
	available, err := c.drv.AvailableInstanceExtensions()
	if err != nil {
		return configErr(ErrInstanceCreationFailed, err, "available instance extensions")
	}

	info := InstanceCreateInfo{
		ApplicationName: opts.ApplicationName,
		EngineName:      opts.EngineName,
	}

	extensions := append([]string(nil), window.RequiredInstanceExtensions()...)
	if opts.Validation {
		extensions = append(extensions, DebugUtilsExtension)
	}
	for _, ext := range extensions {
		if !available[ext] {
			return configErr(ErrMissingInstanceExtension, nil, "instance extension %s", ext)
		}
		info.Extensions = append(info.Extensions, ext)
	}

	var debugInfo DebugMessengerCreateInfo
	if opts.Validation {
		layers, err := c.drv.AvailableLayers()
		if err != nil {
			return configErr(ErrInstanceCreationFailed, err, "available layers")
		}
		if !layers[ValidationLayer] {
			err := configErr(ErrMissingLayer, nil, "layer %s", ValidationLayer)
			return errors.WithHint(err, "install the LunarG Vulkan SDK or disable validation")
		}
		info.Layers = append(info.Layers, ValidationLayer)

		debugInfo = DebugMessengerCreateInfo{
			Severities: DebugSeverityVerbose | DebugSeverityWarning | DebugSeverityError,
			Types:      DebugMessageGeneral | DebugMessageValidation,
			Callback:   c.logDebug,
		}
		info.Debug = &debugInfo
	}

	c.instance, err = c.drv.CreateInstance(info)
	if err != nil {
		return resourceErr(ErrInstanceCreationFailed, err, "create instance")
	}
	c.logger.Info("instance created", "extensions", info.Extensions, "layers", info.Layers)

	if !opts.Validation {
		return nil
	}

	c.debugMessenger, err = c.drv.CreateDebugMessenger(c.instance, debugInfo)
	if err != nil {
		return resourceErr(ErrDebugMessengerCreationFailed, err, "create debug messenger")
	}
	return nil
}

func (c *Context) logDebug(msg DebugMessage) {
	logDebugMessage(c.logger, msg)
}

// RenderFrame runs one frame. After a failure the Context is unusable and
// every call returns the original error.
func (c *Context) RenderFrame() error {
	if c.destroyed {
		return frameErr(ErrContextDestroyed, nil, "render frame")
	}
	return c.frames.Render()
}

func (c *Context) ID() uuid.UUID {
	return c.id
}

func (c *Context) FrameState() FrameState {
	return c.frames.State()
}

func (c *Context) Stats() FrameStats {
	return c.frames.Stats()
}

func (c *Context) Device() DeviceProperties {
	return c.properties
}

func (c *Context) SurfaceFormat() SurfaceFormat {
	return c.chain.Format
}

func (c *Context) ImageCount() int {
	return c.chain.Len()
}

// Destroy waits for the device to go idle and releases every object in
// reverse creation order. It is safe to call more than once and on a
// partially initialized Context.
func (c *Context) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true

	drv, device := c.drv, c.device.Device
	if device != 0 {
		if err := drv.DeviceWaitIdle(device); err != nil {
			c.logger.Warn("wait idle before shutdown", "err", err)
		}

		if c.sync.Submit != 0 {
			drv.DestroySemaphore(device, c.sync.Submit)
		}
		if c.sync.Acquire != 0 {
			drv.DestroySemaphore(device, c.sync.Acquire)
		}
		c.sync = FrameSync{}

		if c.commandPool != 0 {
			drv.DestroyCommandPool(device, c.commandPool)
			c.commandPool = 0
		}

		c.targets.Destroy(drv, device)
		c.chain.Destroy(drv, device)

		drv.DestroyDevice(device)
		c.device = LogicalDevice{}
	}

	if c.surface != 0 {
		drv.DestroySurface(c.instance, c.surface)
		c.surface = 0
	}
	if c.debugMessenger != 0 {
		drv.DestroyDebugMessenger(c.instance, c.debugMessenger)
		c.debugMessenger = 0
	}
	if c.instance != 0 {
		drv.DestroyInstance(c.instance)
		c.instance = 0
		c.logger.Info("graphics context destroyed")
	}
}
