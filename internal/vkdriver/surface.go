package vkdriver

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"

	"github.com/pongengine/pong/internal/renderer"
)

func (d *Driver) CreateSurface(instance renderer.Instance) (renderer.Surface, error) {
	state, err := d.instances.Get(instance)
	if err != nil {
		return 0, err
	}

	surface, err := vkng_sdl2.CreateSurface(state.driver.Instance(), state.surface, d.window)
	if err != nil {
		return 0, errors.Wrap(err, "SDL_Vulkan_CreateSurface")
	}
	return d.surfaces.Add(surface), nil
}

// surfaceQuery resolves the pieces every surface query needs.
func (d *Driver) surfaceQuery(gpu renderer.PhysicalDevice, surface renderer.Surface) (gpuState, khr_surface.Surface, error) {
	state, err := d.gpus.Get(gpu)
	if err != nil {
		return gpuState{}, khr_surface.Surface{}, err
	}
	s, err := d.surfaces.Get(surface)
	if err != nil {
		return gpuState{}, khr_surface.Surface{}, err
	}
	return state, s, nil
}

func (d *Driver) SurfaceSupport(gpu renderer.PhysicalDevice, family int, surface renderer.Surface) (bool, error) {
	state, s, err := d.surfaceQuery(gpu, surface)
	if err != nil {
		return false, err
	}

	supported, res, err := state.instance.surface.GetPhysicalDeviceSurfaceSupport(s, state.gpu, family)
	if err != nil {
		return false, vkErr(err, res, "vkGetPhysicalDeviceSurfaceSupportKHR")
	}
	return supported, nil
}

func (d *Driver) SurfaceCapabilities(gpu renderer.PhysicalDevice, surface renderer.Surface) (renderer.SurfaceCapabilities, error) {
	state, s, err := d.surfaceQuery(gpu, surface)
	if err != nil {
		return renderer.SurfaceCapabilities{}, err
	}

	caps, res, err := state.instance.surface.GetPhysicalDeviceSurfaceCapabilities(s, state.gpu)
	if err != nil {
		return renderer.SurfaceCapabilities{}, vkErr(err, res, "vkGetPhysicalDeviceSurfaceCapabilitiesKHR")
	}

	return renderer.SurfaceCapabilities{
		MinImageCount: caps.MinImageCount,
		MaxImageCount: caps.MaxImageCount,
		CurrentExtent: renderer.Extent2D{
			Width:  extentDim(caps.CurrentExtent.Width),
			Height: extentDim(caps.CurrentExtent.Height),
		},
		CurrentTransform: renderer.SurfaceTransform(caps.CurrentTransform),
	}, nil
}

// extentDim maps the 0xFFFFFFFF "swapchain decides" value to -1.
func extentDim(v int) int {
	if uint32(v) == math.MaxUint32 {
		return -1
	}
	return v
}

func (d *Driver) SurfaceFormats(gpu renderer.PhysicalDevice, surface renderer.Surface) ([]renderer.SurfaceFormat, error) {
	state, s, err := d.surfaceQuery(gpu, surface)
	if err != nil {
		return nil, err
	}

	formats, res, err := state.instance.surface.GetPhysicalDeviceSurfaceFormats(s, state.gpu)
	if err != nil {
		return nil, vkErr(err, res, "vkGetPhysicalDeviceSurfaceFormatsKHR")
	}

	converted := make([]renderer.SurfaceFormat, 0, len(formats))
	for _, format := range formats {
		converted = append(converted, renderer.SurfaceFormat{
			Format:     renderer.Format(format.Format),
			ColorSpace: renderer.ColorSpace(format.ColorSpace),
		})
	}
	return converted, nil
}

func (d *Driver) SurfacePresentModes(gpu renderer.PhysicalDevice, surface renderer.Surface) ([]renderer.PresentMode, error) {
	state, s, err := d.surfaceQuery(gpu, surface)
	if err != nil {
		return nil, err
	}

	modes, res, err := state.instance.surface.GetPhysicalDeviceSurfacePresentModes(s, state.gpu)
	if err != nil {
		return nil, vkErr(err, res, "vkGetPhysicalDeviceSurfacePresentModesKHR")
	}

	converted := make([]renderer.PresentMode, 0, len(modes))
	for _, mode := range modes {
		converted = append(converted, renderer.PresentMode(mode))
	}
	return converted, nil
}
