package renderer

// PreferredSurfaceFormat is used whenever the surface offers it.
var PreferredSurfaceFormat = SurfaceFormat{Format: FormatB8G8R8A8SRGB, ColorSpace: ColorSpaceSRGBNonlinear}

// PresentationChain is the swapchain, its images in driver order and one
// view per image, index-aligned.
type PresentationChain struct {
	Swapchain   Swapchain
	Format      SurfaceFormat
	Extent      Extent2D
	PresentMode PresentMode
	Images      []Image
	Views       []ImageView
}

func (c *PresentationChain) Len() int {
	return len(c.Images)
}

// chooseSurfaceFormat picks the preferred sRGB format, or the first format
// the surface reports when the preferred one is missing.
func chooseSurfaceFormat(formats []SurfaceFormat) (SurfaceFormat, error) {
	if len(formats) == 0 {
		return SurfaceFormat{}, configErr(ErrNoSurfaceFormat, nil, "choose surface format")
	}

	for _, format := range formats {
		if format == PreferredSurfaceFormat {
			return format, nil
		}
	}

	return formats[0], nil
}

// imageCount asks for one image more than the minimum, bounded by the
// maximum. A maximum of zero means the surface sets no limit.
func imageCount(caps SurfaceCapabilities) int {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func choosePresentMode(preferred PresentMode, available []PresentMode) PresentMode {
	for _, mode := range available {
		if mode == preferred {
			return mode
		}
	}
	return PresentModeFIFO
}

// CreatePresentationChain negotiates the surface format, creates the
// swapchain and one 2D color view per image. On failure the returned chain
// holds whatever was created so the caller can release it.
func CreatePresentationChain(drv Driver, dev LogicalDevice, sel PhysicalDeviceSelection, surface Surface, window Extent2D, opts Options) (PresentationChain, error) {
	var chain PresentationChain
	logger := Logger()

	formats, err := drv.SurfaceFormats(sel.GPU, surface)
	if err != nil {
		return chain, configErr(ErrSurfaceQueryFailed, err, "surface formats")
	}
	if err := checkCapacity("surface formats", len(formats), opts.Limits.MaxSurfaceFormats); err != nil {
		return chain, err
	}
	chain.Format, err = chooseSurfaceFormat(formats)
	if err != nil {
		return chain, err
	}
	if chain.Format != PreferredSurfaceFormat {
		logger.Warn("preferred surface format unavailable", "format", chain.Format.Format, "colorSpace", chain.Format.ColorSpace)
	}

	caps, err := drv.SurfaceCapabilities(sel.GPU, surface)
	if err != nil {
		return chain, configErr(ErrSurfaceCapabilitiesQueryFailed, err, "surface capabilities")
	}

	chain.PresentMode = PresentModeFIFO
	if opts.PresentMode != PresentModeFIFO {
		modes, err := drv.SurfacePresentModes(sel.GPU, surface)
		if err != nil {
			return chain, configErr(ErrSurfaceQueryFailed, err, "surface present modes")
		}
		chain.PresentMode = choosePresentMode(opts.PresentMode, modes)
		if chain.PresentMode != opts.PresentMode {
			logger.Warn("present mode unavailable, using fifo", "requested", opts.PresentMode)
		}
	}

	chain.Extent = caps.CurrentExtent
	if chain.Extent.Width < 0 || chain.Extent.Height < 0 {
		// The surface lets the swapchain decide; follow the window.
		chain.Extent = window
	}

	requested := imageCount(caps)
	chain.Swapchain, err = drv.CreateSwapchain(dev.Device, SwapchainCreateInfo{
		Surface:        surface,
		MinImageCount:  requested,
		Format:         chain.Format,
		Extent:         chain.Extent,
		ArrayLayers:    1,
		Usage:          ImageUsageColorAttachment,
		PreTransform:   caps.CurrentTransform,
		CompositeAlpha: CompositeAlphaOpaque,
		PresentMode:    chain.PresentMode,
		Clipped:        true,
	})
	if err != nil {
		return chain, resourceErr(ErrSwapchainCreationFailed, err, "create swapchain with %d images", requested)
	}

	// The driver may hand back more images than requested.
	images, err := drv.SwapchainImages(dev.Device, chain.Swapchain)
	if err != nil {
		return chain, resourceErr(ErrSwapchainCreationFailed, err, "swapchain images")
	}
	if err := checkCapacity("swapchain images", len(images), opts.Limits.MaxSwapchainImages); err != nil {
		return chain, err
	}
	chain.Images = images

	for idx, image := range images {
		view, err := drv.CreateImageView(dev.Device, ImageViewCreateInfo{
			Image:      image,
			ViewType:   ImageViewType2D,
			Format:     chain.Format.Format,
			Aspect:     ImageAspectColor,
			LevelCount: 1,
			LayerCount: 1,
		})
		if err != nil {
			return chain, resourceErr(ErrImageViewCreationFailed, err, "image view %d", idx)
		}
		chain.Views = append(chain.Views, view)
	}

	logger.Info("presentation chain created",
		"images", len(images),
		"requested", requested,
		"minImages", caps.MinImageCount,
		"maxImages", caps.MaxImageCount,
		"format", chain.Format.Format,
		"extent", chain.Extent,
		"presentMode", chain.PresentMode)
	return chain, nil
}

// Destroy releases the views in reverse order, then the swapchain.
func (c *PresentationChain) Destroy(drv Driver, device Device) {
	for i := len(c.Views) - 1; i >= 0; i-- {
		drv.DestroyImageView(device, c.Views[i])
	}
	c.Views = nil

	if c.Swapchain != 0 {
		drv.DestroySwapchain(device, c.Swapchain)
		c.Swapchain = 0
	}
	c.Images = nil
}
