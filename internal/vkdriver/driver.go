// Package vkdriver implements renderer.Driver on top of vkngwrapper, with
// surfaces created for an SDL2 window.
package vkdriver

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/pongengine/pong/internal/handle"
	"github.com/pongengine/pong/internal/renderer"
)

type instanceState struct {
	driver  core1_0.CoreInstanceDriver
	surface khr_surface.ExtensionDriver
	debug   ext_debug_utils.ExtensionDriver
}

type gpuState struct {
	instance *instanceState
	gpu      core1_0.PhysicalDevice
}

type deviceState struct {
	driver    core1_0.CoreDeviceDriver
	swapchain khr_swapchain.ExtensionDriver
}

// Driver is a renderer.Driver bound to one SDL window. Objects are handed
// to the renderer as integer handles and resolved through per-kind tables.
type Driver struct {
	window *sdl.Window
	global core1_0.GlobalDriver

	instances    *handle.Table[renderer.Instance, *instanceState]
	messengers   *handle.Table[renderer.DebugMessenger, ext_debug_utils.DebugUtilsMessenger]
	surfaces     *handle.Table[renderer.Surface, khr_surface.Surface]
	gpus         *handle.Table[renderer.PhysicalDevice, gpuState]
	devices      *handle.Table[renderer.Device, *deviceState]
	queues       *handle.Table[renderer.Queue, core1_0.Queue]
	swapchains   *handle.Table[renderer.Swapchain, khr_swapchain.Swapchain]
	images       *handle.Table[renderer.Image, core1_0.Image]
	views        *handle.Table[renderer.ImageView, core1_0.ImageView]
	renderPasses *handle.Table[renderer.RenderPass, core1_0.RenderPass]
	framebuffers *handle.Table[renderer.Framebuffer, core1_0.Framebuffer]
	pools        *handle.Table[renderer.CommandPool, core1_0.CommandPool]
	buffers      *handle.Table[renderer.CommandBuffer, core1_0.CommandBuffer]
	semaphores   *handle.Table[renderer.Semaphore, core1_0.Semaphore]

	// Command buffers still allocated from each pool. Destroying a pool
	// frees them on the device side.
	bufferPools *handle.Owners[renderer.CommandPool, renderer.CommandBuffer]

	swapchainImages map[renderer.Swapchain][]renderer.Image
}

var _ renderer.Driver = (*Driver)(nil)

// New loads the Vulkan loader through SDL. window must have been created
// with sdl.WINDOW_VULKAN.
func New(window *sdl.Window) (*Driver, error) {
	global, err := core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "load vulkan")
	}

	return &Driver{
		window: window,
		global: global,

		instances:    handle.NewTable[renderer.Instance, *instanceState]("instance"),
		messengers:   handle.NewTable[renderer.DebugMessenger, ext_debug_utils.DebugUtilsMessenger]("debug messenger"),
		surfaces:     handle.NewTable[renderer.Surface, khr_surface.Surface]("surface"),
		gpus:         handle.NewTable[renderer.PhysicalDevice, gpuState]("physical device"),
		devices:      handle.NewTable[renderer.Device, *deviceState]("device"),
		queues:       handle.NewTable[renderer.Queue, core1_0.Queue]("queue"),
		swapchains:   handle.NewTable[renderer.Swapchain, khr_swapchain.Swapchain]("swapchain"),
		images:       handle.NewTable[renderer.Image, core1_0.Image]("image"),
		views:        handle.NewTable[renderer.ImageView, core1_0.ImageView]("image view"),
		renderPasses: handle.NewTable[renderer.RenderPass, core1_0.RenderPass]("render pass"),
		framebuffers: handle.NewTable[renderer.Framebuffer, core1_0.Framebuffer]("framebuffer"),
		pools:        handle.NewTable[renderer.CommandPool, core1_0.CommandPool]("command pool"),
		buffers:      handle.NewTable[renderer.CommandBuffer, core1_0.CommandBuffer]("command buffer"),
		semaphores:   handle.NewTable[renderer.Semaphore, core1_0.Semaphore]("semaphore"),

		bufferPools: handle.NewOwners[renderer.CommandPool, renderer.CommandBuffer](),

		swapchainImages: make(map[renderer.Swapchain][]renderer.Image),
	}, nil
}

// Leaks reports objects that were created and never destroyed, by kind.
// Physical devices, queues and swapchain images are not owned by the
// application and are left out.
func (d *Driver) Leaks() map[string]int {
	leaks := make(map[string]int)
	count := func(kind string, live int) {
		if live > 0 {
			leaks[kind] = live
		}
	}

	count(d.instances.Kind(), d.instances.Live())
	count(d.messengers.Kind(), d.messengers.Live())
	count(d.surfaces.Kind(), d.surfaces.Live())
	count(d.devices.Kind(), d.devices.Live())
	count(d.swapchains.Kind(), d.swapchains.Live())
	count(d.views.Kind(), d.views.Live())
	count(d.renderPasses.Kind(), d.renderPasses.Live())
	count(d.framebuffers.Kind(), d.framebuffers.Live())
	count(d.pools.Kind(), d.pools.Live())
	count(d.buffers.Kind(), d.buffers.Live())
	count(d.semaphores.Kind(), d.semaphores.Live())
	return leaks
}

// vkErr attaches the API call and its result code to err.
func vkErr(err error, res common.VkResult, call string) error {
	return errors.WrapWithDepthf(1, err, "%s: %s", call, res)
}

func (d *Driver) AvailableInstanceExtensions() (map[string]bool, error) {
	extensions, res, err := d.global.AvailableExtensions()
	if err != nil {
		return nil, vkErr(err, res, "vkEnumerateInstanceExtensionProperties")
	}

	names := make(map[string]bool, len(extensions))
	for name := range extensions {
		names[name] = true
	}
	return names, nil
}

func (d *Driver) AvailableLayers() (map[string]bool, error) {
	layers, res, err := d.global.AvailableLayers()
	if err != nil {
		return nil, vkErr(err, res, "vkEnumerateInstanceLayerProperties")
	}

	names := make(map[string]bool, len(layers))
	for name := range layers {
		names[name] = true
	}
	return names, nil
}

func debugMessengerCreateInfo(info renderer.DebugMessengerCreateInfo) ext_debug_utils.DebugUtilsMessengerCreateInfo {
	callback := info.Callback
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.DebugUtilsMessageSeverityFlags(info.Severities),
		MessageType:     ext_debug_utils.DebugUtilsMessageTypeFlags(info.Types),
		UserCallback: func(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
			if callback != nil && data != nil {
				callback(renderer.DebugMessage{
					Severity: renderer.DebugSeverity(severity),
					Type:     renderer.DebugMessageType(msgType),
					Text:     data.Message,
				})
			}
			return false
		},
	}
}

func (d *Driver) CreateInstance(info renderer.InstanceCreateInfo) (renderer.Instance, error) {
	createInfo := core1_0.InstanceCreateInfo{
		ApplicationName:       info.ApplicationName,
		ApplicationVersion:    common.CreateVersion(1, 0, 0),
		EngineName:            info.EngineName,
		EngineVersion:         common.CreateVersion(1, 0, 0),
		APIVersion:            common.Vulkan1_2,
		EnabledExtensionNames: info.Extensions,
		EnabledLayerNames:     info.Layers,
	}
	if info.Debug != nil {
		// Covers messages emitted during instance creation and destruction.
		createInfo.Next = debugMessengerCreateInfo(*info.Debug)
	}

	instance, res, err := d.global.CreateInstance(nil, createInfo)
	if err != nil {
		return 0, vkErr(err, res, "vkCreateInstance")
	}

	instanceDriver, err := d.global.BuildInstanceDriver(instance)
	if err != nil {
		return 0, errors.Wrap(err, "load instance functions")
	}

	state := &instanceState{
		driver:  instanceDriver,
		surface: khr_surface.CreateExtensionDriverFromCoreDriver(instanceDriver),
	}
	if info.Debug != nil {
		state.debug = ext_debug_utils.CreateExtensionDriverFromCoreDriver(instanceDriver)
	}
	return d.instances.Add(state), nil
}

func (d *Driver) DestroyInstance(instance renderer.Instance) {
	state, ok := d.instances.Remove(instance)
	if !ok {
		return
	}
	state.driver.DestroyInstance(nil)
}

func (d *Driver) CreateDebugMessenger(instance renderer.Instance, info renderer.DebugMessengerCreateInfo) (renderer.DebugMessenger, error) {
	state, err := d.instances.Get(instance)
	if err != nil {
		return 0, err
	}
	if state.debug == nil {
		state.debug = ext_debug_utils.CreateExtensionDriverFromCoreDriver(state.driver)
	}

	messenger, res, err := state.debug.CreateDebugUtilsMessenger(nil, debugMessengerCreateInfo(info))
	if err != nil {
		return 0, vkErr(err, res, "vkCreateDebugUtilsMessengerEXT")
	}
	return d.messengers.Add(messenger), nil
}

func (d *Driver) DestroyDebugMessenger(instance renderer.Instance, messenger renderer.DebugMessenger) {
	m, ok := d.messengers.Remove(messenger)
	if !ok {
		return
	}
	state, err := d.instances.Get(instance)
	if err != nil || state.debug == nil {
		return
	}
	state.debug.DestroyDebugUtilsMessenger(m, nil)
}

func (d *Driver) DestroySurface(instance renderer.Instance, surface renderer.Surface) {
	s, ok := d.surfaces.Remove(surface)
	if !ok {
		return
	}
	state, err := d.instances.Get(instance)
	if err != nil {
		return
	}
	state.surface.DestroySurface(s, nil)
}

func (d *Driver) EnumeratePhysicalDevices(instance renderer.Instance) ([]renderer.PhysicalDevice, error) {
	state, err := d.instances.Get(instance)
	if err != nil {
		return nil, err
	}

	devices, res, err := state.driver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, vkErr(err, res, "vkEnumeratePhysicalDevices")
	}

	gpus := make([]renderer.PhysicalDevice, 0, len(devices))
	for _, device := range devices {
		gpus = append(gpus, d.gpus.Add(gpuState{instance: state, gpu: device}))
	}
	return gpus, nil
}

func (d *Driver) PhysicalDeviceProperties(gpu renderer.PhysicalDevice) (renderer.DeviceProperties, error) {
	state, err := d.gpus.Get(gpu)
	if err != nil {
		return renderer.DeviceProperties{}, err
	}

	props, err := state.instance.driver.GetPhysicalDeviceProperties(state.gpu)
	if err != nil {
		return renderer.DeviceProperties{}, errors.Wrap(err, "vkGetPhysicalDeviceProperties")
	}

	return renderer.DeviceProperties{
		Name:              props.DriverName,
		Type:              props.DriverType.String(),
		VendorID:          props.VendorID,
		DeviceID:          props.DeviceID,
		PipelineCacheUUID: props.PipelineCacheUUID,
	}, nil
}

func (d *Driver) QueueFamilies(gpu renderer.PhysicalDevice) ([]renderer.QueueFamily, error) {
	state, err := d.gpus.Get(gpu)
	if err != nil {
		return nil, err
	}

	var families []renderer.QueueFamily
	for _, family := range state.instance.driver.GetPhysicalDeviceQueueFamilyProperties(state.gpu) {
		families = append(families, renderer.QueueFamily{
			Flags: renderer.QueueFlags(family.QueueFlags),
			Count: int(family.QueueCount),
		})
	}
	return families, nil
}

func (d *Driver) CreateDevice(gpu renderer.PhysicalDevice, info renderer.DeviceCreateInfo) (renderer.Device, error) {
	state, err := d.gpus.Get(gpu)
	if err != nil {
		return 0, err
	}

	var queues []core1_0.DeviceQueueCreateInfo
	for _, queue := range info.Queues {
		queues = append(queues, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queue.FamilyIndex,
			QueuePriorities:  queue.Priorities,
		})
	}

	created, res, err := state.instance.driver.CreateDevice(state.gpu, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queues,
		EnabledExtensionNames: info.Extensions,
	})
	if err != nil {
		return 0, vkErr(err, res, "vkCreateDevice")
	}

	deviceDriver, err := state.instance.driver.BuildDeviceDriver(created)
	if err != nil {
		return 0, errors.Wrap(err, "load device functions")
	}

	return d.devices.Add(&deviceState{
		driver:    deviceDriver,
		swapchain: khr_swapchain.CreateExtensionDriverFromCoreDriver(deviceDriver),
	}), nil
}

func (d *Driver) DestroyDevice(device renderer.Device) {
	state, ok := d.devices.Remove(device)
	if !ok {
		return
	}
	state.driver.DestroyDevice(nil)
}

func (d *Driver) GetQueue(device renderer.Device, family, index int) renderer.Queue {
	state, err := d.devices.Get(device)
	if err != nil {
		return 0
	}
	return d.queues.Add(state.driver.GetQueue(family, index))
}

func (d *Driver) DeviceWaitIdle(device renderer.Device) error {
	state, err := d.devices.Get(device)
	if err != nil {
		return err
	}

	res, err := state.driver.DeviceWaitIdle()
	if err != nil {
		return vkErr(err, res, "vkDeviceWaitIdle")
	}
	return nil
}
