package renderer

// Driver is the slice of the graphics API the renderer needs. Instance-level
// calls take the instance or physical device they operate on; device-level
// calls take the logical device.
type Driver interface {
	AvailableInstanceExtensions() (map[string]bool, error)
	AvailableLayers() (map[string]bool, error)

	CreateInstance(info InstanceCreateInfo) (Instance, error)
	DestroyInstance(instance Instance)

	CreateDebugMessenger(instance Instance, info DebugMessengerCreateInfo) (DebugMessenger, error)
	DestroyDebugMessenger(instance Instance, messenger DebugMessenger)

	// CreateSurface binds the instance to the window the driver was opened for.
	CreateSurface(instance Instance) (Surface, error)
	DestroySurface(instance Instance, surface Surface)

	EnumeratePhysicalDevices(instance Instance) ([]PhysicalDevice, error)
	PhysicalDeviceProperties(gpu PhysicalDevice) (DeviceProperties, error)
	QueueFamilies(gpu PhysicalDevice) ([]QueueFamily, error)
	SurfaceSupport(gpu PhysicalDevice, family int, surface Surface) (bool, error)
	SurfaceCapabilities(gpu PhysicalDevice, surface Surface) (SurfaceCapabilities, error)
	SurfaceFormats(gpu PhysicalDevice, surface Surface) ([]SurfaceFormat, error)
	SurfacePresentModes(gpu PhysicalDevice, surface Surface) ([]PresentMode, error)

	CreateDevice(gpu PhysicalDevice, info DeviceCreateInfo) (Device, error)
	DestroyDevice(device Device)
	GetQueue(device Device, family, index int) Queue
	DeviceWaitIdle(device Device) error

	CreateSwapchain(device Device, info SwapchainCreateInfo) (Swapchain, error)
	DestroySwapchain(device Device, swapchain Swapchain)
	SwapchainImages(device Device, swapchain Swapchain) ([]Image, error)
	// AcquireNextImage blocks without a timeout until an image is available
	// and arranges for signal to be signaled when it can be rendered to.
	AcquireNextImage(device Device, swapchain Swapchain, signal Semaphore) (int, error)

	CreateImageView(device Device, info ImageViewCreateInfo) (ImageView, error)
	DestroyImageView(device Device, view ImageView)

	CreateRenderPass(device Device, info RenderPassCreateInfo) (RenderPass, error)
	DestroyRenderPass(device Device, pass RenderPass)

	CreateFramebuffer(device Device, info FramebufferCreateInfo) (Framebuffer, error)
	DestroyFramebuffer(device Device, framebuffer Framebuffer)

	CreateCommandPool(device Device, family int) (CommandPool, error)
	DestroyCommandPool(device Device, pool CommandPool)
	AllocateCommandBuffers(device Device, pool CommandPool, count int) ([]CommandBuffer, error)
	FreeCommandBuffers(device Device, pool CommandPool, buffers ...CommandBuffer)

	BeginCommandBuffer(device Device, buffer CommandBuffer) error
	EndCommandBuffer(device Device, buffer CommandBuffer) error
	CmdBeginRenderPass(device Device, buffer CommandBuffer, info RenderPassBeginInfo) error
	CmdEndRenderPass(device Device, buffer CommandBuffer)

	CreateSemaphore(device Device) (Semaphore, error)
	DestroySemaphore(device Device, semaphore Semaphore)

	QueueSubmit(device Device, queue Queue, info SubmitInfo) error
	QueuePresent(device Device, queue Queue, info PresentInfo) error
}

// Window is the platform collaborator the renderer draws into.
type Window interface {
	// ClientAreaSize reports the drawable size in pixels.
	ClientAreaSize() (width, height int)
	// RequiredInstanceExtensions lists the instance extensions the window
	// system needs to create a surface.
	RequiredInstanceExtensions() []string
}
