package renderer

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

var errInjected = errors.New("injected driver failure")

type fakeGPU struct {
	name     string
	families []QueueFamily
	present  map[int]bool
}

// fakeDriver is an in-memory Driver. It records every call, counts live
// objects per kind and fails the n-th call of an operation on request.
type fakeDriver struct {
	gpus         []fakeGPU
	extensions   map[string]bool
	layers       map[string]bool
	windowExts   []string
	formats      []SurfaceFormat
	presentModes []PresentMode
	caps         SurfaceCapabilities
	extraImages  int
	acquireSeq   []int

	failAt map[string]int

	next      uint64
	callCount map[string]int
	calls     []string
	live      map[string]int
	created   map[string]int
	destroyed []string
	released  []uint64

	gpuIndex       map[PhysicalDevice]int
	images         map[Swapchain][]Image
	instanceInfo   InstanceCreateInfo
	debugInfo      DebugMessengerCreateInfo
	deviceInfo     DeviceCreateInfo
	deviceGPU      PhysicalDevice
	queueFamily    int
	swapchainInfo  SwapchainCreateInfo
	viewInfos      []ImageViewCreateInfo
	renderPassInfo RenderPassCreateInfo
	fbInfos        []FramebufferCreateInfo
	beginInfos     []RenderPassBeginInfo
	submits        []SubmitInfo
	presents       []PresentInfo
	supportQueries []string
	acquires       int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		gpus: []fakeGPU{
			{
				name:     "Fake GPU",
				families: []QueueFamily{{Flags: QueueGraphics | QueueCompute | QueueTransfer, Count: 16}},
				present:  map[int]bool{0: true},
			},
		},
		extensions: map[string]bool{
			"VK_KHR_surface":      true,
			"VK_KHR_xlib_surface": true,
			DebugUtilsExtension:   true,
		},
		layers:       map[string]bool{ValidationLayer: true},
		windowExts:   []string{"VK_KHR_surface", "VK_KHR_xlib_surface"},
		formats:      []SurfaceFormat{{Format: FormatB8G8R8A8UNorm}, PreferredSurfaceFormat},
		presentModes: []PresentMode{PresentModeFIFO, PresentModeMailbox},
		caps: SurfaceCapabilities{
			MinImageCount:    2,
			MaxImageCount:    3,
			CurrentExtent:    Extent2D{Width: 1600, Height: 720},
			CurrentTransform: SurfaceTransformIdentity,
		},
		failAt:    map[string]int{},
		callCount: map[string]int{},
		live:      map[string]int{},
		created:   map[string]int{},
		gpuIndex:  map[PhysicalDevice]int{},
		images:    map[Swapchain][]Image{},
	}
}

// failOn makes the n-th call (1-based) of op fail.
func (d *fakeDriver) failOn(op string, n int) *fakeDriver {
	d.failAt[op] = n
	return d
}

func (d *fakeDriver) call(op string) error {
	d.callCount[op]++
	d.calls = append(d.calls, op)
	if n, ok := d.failAt[op]; ok && n == d.callCount[op] {
		return errors.Wrap(errInjected, op)
	}
	return nil
}

func (d *fakeDriver) alloc(kind string) uint64 {
	d.next++
	d.live[kind]++
	d.created[kind]++
	return d.next
}

func (d *fakeDriver) release(kind string, h uint64) {
	d.live[kind]--
	d.destroyed = append(d.destroyed, kind)
	d.released = append(d.released, h)
	d.calls = append(d.calls, "Destroy"+kind)
}

func (d *fakeDriver) totalLive() int {
	total := 0
	for _, n := range d.live {
		total += n
	}
	return total
}

// destroyOrder lists the kinds in the order they were released, collapsing
// runs of the same kind.
func (d *fakeDriver) destroyOrder() []string {
	var kinds []string
	for _, kind := range d.destroyed {
		if len(kinds) == 0 || kinds[len(kinds)-1] != kind {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

func (d *fakeDriver) AvailableInstanceExtensions() (map[string]bool, error) {
	if err := d.call("AvailableInstanceExtensions"); err != nil {
		return nil, err
	}
	return d.extensions, nil
}

func (d *fakeDriver) AvailableLayers() (map[string]bool, error) {
	if err := d.call("AvailableLayers"); err != nil {
		return nil, err
	}
	return d.layers, nil
}

func (d *fakeDriver) CreateInstance(info InstanceCreateInfo) (Instance, error) {
	if err := d.call("CreateInstance"); err != nil {
		return 0, err
	}
	d.instanceInfo = info
	return Instance(d.alloc("Instance")), nil
}

func (d *fakeDriver) DestroyInstance(instance Instance) {
	d.release("Instance", uint64(instance))
}

func (d *fakeDriver) CreateDebugMessenger(_ Instance, info DebugMessengerCreateInfo) (DebugMessenger, error) {
	if err := d.call("CreateDebugMessenger"); err != nil {
		return 0, err
	}
	d.debugInfo = info
	return DebugMessenger(d.alloc("DebugMessenger")), nil
}

func (d *fakeDriver) DestroyDebugMessenger(_ Instance, messenger DebugMessenger) {
	d.release("DebugMessenger", uint64(messenger))
}

func (d *fakeDriver) CreateSurface(Instance) (Surface, error) {
	if err := d.call("CreateSurface"); err != nil {
		return 0, err
	}
	return Surface(d.alloc("Surface")), nil
}

func (d *fakeDriver) DestroySurface(_ Instance, surface Surface) {
	d.release("Surface", uint64(surface))
}

func (d *fakeDriver) EnumeratePhysicalDevices(Instance) ([]PhysicalDevice, error) {
	if err := d.call("EnumeratePhysicalDevices"); err != nil {
		return nil, err
	}
	var gpus []PhysicalDevice
	for idx := range d.gpus {
		gpu := PhysicalDevice(1000 + idx)
		d.gpuIndex[gpu] = idx
		gpus = append(gpus, gpu)
	}
	return gpus, nil
}

func (d *fakeDriver) PhysicalDeviceProperties(gpu PhysicalDevice) (DeviceProperties, error) {
	if err := d.call("PhysicalDeviceProperties"); err != nil {
		return DeviceProperties{}, err
	}
	return DeviceProperties{
		Name:              d.gpus[d.gpuIndex[gpu]].name,
		Type:              "DiscreteGPU",
		VendorID:          0x10de,
		DeviceID:          uint32(gpu),
		PipelineCacheUUID: uuid.New(),
	}, nil
}

func (d *fakeDriver) QueueFamilies(gpu PhysicalDevice) ([]QueueFamily, error) {
	if err := d.call("QueueFamilies"); err != nil {
		return nil, err
	}
	return d.gpus[d.gpuIndex[gpu]].families, nil
}

func (d *fakeDriver) SurfaceSupport(gpu PhysicalDevice, family int, _ Surface) (bool, error) {
	if err := d.call("SurfaceSupport"); err != nil {
		return false, err
	}
	idx := d.gpuIndex[gpu]
	d.supportQueries = append(d.supportQueries, fmt.Sprintf("%d/%d", idx, family))
	return d.gpus[idx].present[family], nil
}

func (d *fakeDriver) SurfaceCapabilities(PhysicalDevice, Surface) (SurfaceCapabilities, error) {
	if err := d.call("SurfaceCapabilities"); err != nil {
		return SurfaceCapabilities{}, err
	}
	return d.caps, nil
}

func (d *fakeDriver) SurfaceFormats(PhysicalDevice, Surface) ([]SurfaceFormat, error) {
	if err := d.call("SurfaceFormats"); err != nil {
		return nil, err
	}
	return d.formats, nil
}

func (d *fakeDriver) SurfacePresentModes(PhysicalDevice, Surface) ([]PresentMode, error) {
	if err := d.call("SurfacePresentModes"); err != nil {
		return nil, err
	}
	return d.presentModes, nil
}

func (d *fakeDriver) CreateDevice(gpu PhysicalDevice, info DeviceCreateInfo) (Device, error) {
	if err := d.call("CreateDevice"); err != nil {
		return 0, err
	}
	d.deviceGPU = gpu
	d.deviceInfo = info
	return Device(d.alloc("Device")), nil
}

func (d *fakeDriver) DestroyDevice(device Device) {
	d.release("Device", uint64(device))
}

func (d *fakeDriver) GetQueue(_ Device, family, _ int) Queue {
	d.calls = append(d.calls, "GetQueue")
	d.queueFamily = family
	return Queue(500 + family)
}

func (d *fakeDriver) DeviceWaitIdle(Device) error {
	return d.call("DeviceWaitIdle")
}

func (d *fakeDriver) CreateSwapchain(_ Device, info SwapchainCreateInfo) (Swapchain, error) {
	if err := d.call("CreateSwapchain"); err != nil {
		return 0, err
	}
	d.swapchainInfo = info
	swapchain := Swapchain(d.alloc("Swapchain"))

	var images []Image
	for i := 0; i < info.MinImageCount+d.extraImages; i++ {
		d.next++
		images = append(images, Image(d.next))
	}
	d.images[swapchain] = images
	return swapchain, nil
}

func (d *fakeDriver) DestroySwapchain(_ Device, swapchain Swapchain) {
	delete(d.images, swapchain)
	d.release("Swapchain", uint64(swapchain))
}

func (d *fakeDriver) SwapchainImages(_ Device, swapchain Swapchain) ([]Image, error) {
	if err := d.call("SwapchainImages"); err != nil {
		return nil, err
	}
	return d.images[swapchain], nil
}

func (d *fakeDriver) AcquireNextImage(_ Device, _ Swapchain, _ Semaphore) (int, error) {
	if err := d.call("AcquireNextImage"); err != nil {
		return 0, err
	}
	idx := 0
	if len(d.acquireSeq) > 0 {
		idx = d.acquireSeq[d.acquires%len(d.acquireSeq)]
	}
	d.acquires++
	return idx, nil
}

func (d *fakeDriver) CreateImageView(_ Device, info ImageViewCreateInfo) (ImageView, error) {
	if err := d.call("CreateImageView"); err != nil {
		return 0, err
	}
	d.viewInfos = append(d.viewInfos, info)
	return ImageView(d.alloc("ImageView")), nil
}

func (d *fakeDriver) DestroyImageView(_ Device, view ImageView) {
	d.release("ImageView", uint64(view))
}

func (d *fakeDriver) CreateRenderPass(_ Device, info RenderPassCreateInfo) (RenderPass, error) {
	if err := d.call("CreateRenderPass"); err != nil {
		return 0, err
	}
	d.renderPassInfo = info
	return RenderPass(d.alloc("RenderPass")), nil
}

func (d *fakeDriver) DestroyRenderPass(_ Device, pass RenderPass) {
	d.release("RenderPass", uint64(pass))
}

func (d *fakeDriver) CreateFramebuffer(_ Device, info FramebufferCreateInfo) (Framebuffer, error) {
	if err := d.call("CreateFramebuffer"); err != nil {
		return 0, err
	}
	d.fbInfos = append(d.fbInfos, info)
	return Framebuffer(d.alloc("Framebuffer")), nil
}

func (d *fakeDriver) DestroyFramebuffer(_ Device, framebuffer Framebuffer) {
	d.release("Framebuffer", uint64(framebuffer))
}

func (d *fakeDriver) CreateCommandPool(Device, int) (CommandPool, error) {
	if err := d.call("CreateCommandPool"); err != nil {
		return 0, err
	}
	return CommandPool(d.alloc("CommandPool")), nil
}

func (d *fakeDriver) DestroyCommandPool(_ Device, pool CommandPool) {
	d.release("CommandPool", uint64(pool))
}

func (d *fakeDriver) AllocateCommandBuffers(_ Device, _ CommandPool, count int) ([]CommandBuffer, error) {
	if err := d.call("AllocateCommandBuffers"); err != nil {
		return nil, err
	}
	var buffers []CommandBuffer
	for i := 0; i < count; i++ {
		buffers = append(buffers, CommandBuffer(d.alloc("CommandBuffer")))
	}
	return buffers, nil
}

func (d *fakeDriver) FreeCommandBuffers(_ Device, _ CommandPool, buffers ...CommandBuffer) {
	for _, buffer := range buffers {
		d.release("CommandBuffer", uint64(buffer))
	}
}

func (d *fakeDriver) BeginCommandBuffer(Device, CommandBuffer) error {
	return d.call("BeginCommandBuffer")
}

func (d *fakeDriver) EndCommandBuffer(Device, CommandBuffer) error {
	return d.call("EndCommandBuffer")
}

func (d *fakeDriver) CmdBeginRenderPass(_ Device, _ CommandBuffer, info RenderPassBeginInfo) error {
	if err := d.call("CmdBeginRenderPass"); err != nil {
		return err
	}
	d.beginInfos = append(d.beginInfos, info)
	return nil
}

func (d *fakeDriver) CmdEndRenderPass(Device, CommandBuffer) {
	d.calls = append(d.calls, "CmdEndRenderPass")
}

func (d *fakeDriver) CreateSemaphore(Device) (Semaphore, error) {
	if err := d.call("CreateSemaphore"); err != nil {
		return 0, err
	}
	return Semaphore(d.alloc("Semaphore")), nil
}

func (d *fakeDriver) DestroySemaphore(_ Device, semaphore Semaphore) {
	d.release("Semaphore", uint64(semaphore))
}

func (d *fakeDriver) QueueSubmit(_ Device, _ Queue, info SubmitInfo) error {
	if err := d.call("QueueSubmit"); err != nil {
		return err
	}
	d.submits = append(d.submits, info)
	return nil
}

func (d *fakeDriver) QueuePresent(_ Device, _ Queue, info PresentInfo) error {
	if err := d.call("QueuePresent"); err != nil {
		return err
	}
	d.presents = append(d.presents, info)
	return nil
}

type fakeWindow struct {
	width, height int
	extensions    []string
}

func (w fakeWindow) ClientAreaSize() (int, int) {
	return w.width, w.height
}

func (w fakeWindow) RequiredInstanceExtensions() []string {
	return w.extensions
}

func (d *fakeDriver) window() fakeWindow {
	return fakeWindow{width: 1600, height: 720, extensions: d.windowExts}
}
