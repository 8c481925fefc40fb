package vkdriver

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/pongengine/pong/internal/renderer"
)

// outOfDate marks err so callers can tell a stale swapchain apart from other
// acquire and present failures.
func outOfDate(err error, res common.VkResult) error {
	if res == khr_swapchain.VKErrorOutOfDate {
		return errors.Mark(err, renderer.ErrSwapchainOutOfDate)
	}
	return err
}

func (d *Driver) CreateSwapchain(device renderer.Device, info renderer.SwapchainCreateInfo) (renderer.Swapchain, error) {
	state, err := d.devices.Get(device)
	if err != nil {
		return 0, err
	}
	surface, err := d.surfaces.Get(info.Surface)
	if err != nil {
		return 0, err
	}

	swapchain, res, err := state.swapchain.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: surface,

		MinImageCount:    info.MinImageCount,
		ImageFormat:      core1_0.Format(info.Format.Format),
		ImageColorSpace:  khr_surface.ColorSpace(info.Format.ColorSpace),
		ImageExtent:      core1_0.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageArrayLayers: info.ArrayLayers,
		ImageUsage:       core1_0.ImageUsageFlags(info.Usage),

		// One queue family serves graphics and present.
		ImageSharingMode: core1_0.SharingModeExclusive,

		PreTransform:   khr_surface.SurfaceTransformFlags(info.PreTransform),
		CompositeAlpha: khr_surface.CompositeAlphaFlags(info.CompositeAlpha),
		PresentMode:    khr_surface.PresentMode(info.PresentMode),
		Clipped:        info.Clipped,
	})
	if err != nil {
		return 0, vkErr(err, res, "vkCreateSwapchainKHR")
	}
	return d.swapchains.Add(swapchain), nil
}

func (d *Driver) DestroySwapchain(device renderer.Device, swapchain renderer.Swapchain) {
	for _, image := range d.swapchainImages[swapchain] {
		d.images.Remove(image)
	}
	delete(d.swapchainImages, swapchain)

	sc, ok := d.swapchains.Remove(swapchain)
	if !ok {
		return
	}
	state, err := d.devices.Get(device)
	if err != nil {
		return
	}
	state.swapchain.DestroySwapchain(sc, nil)
}

// SwapchainImages returns the same handles on every call for a given
// swapchain.
func (d *Driver) SwapchainImages(device renderer.Device, swapchain renderer.Swapchain) ([]renderer.Image, error) {
	if images, ok := d.swapchainImages[swapchain]; ok {
		return images, nil
	}

	state, err := d.devices.Get(device)
	if err != nil {
		return nil, err
	}
	sc, err := d.swapchains.Get(swapchain)
	if err != nil {
		return nil, err
	}

	images, res, err := state.swapchain.GetSwapchainImages(sc)
	if err != nil {
		return nil, vkErr(err, res, "vkGetSwapchainImagesKHR")
	}

	handles := make([]renderer.Image, 0, len(images))
	for _, image := range images {
		handles = append(handles, d.images.Add(image))
	}
	d.swapchainImages[swapchain] = handles
	return handles, nil
}

func (d *Driver) AcquireNextImage(device renderer.Device, swapchain renderer.Swapchain, signal renderer.Semaphore) (int, error) {
	state, err := d.devices.Get(device)
	if err != nil {
		return 0, err
	}
	sc, err := d.swapchains.Get(swapchain)
	if err != nil {
		return 0, err
	}
	semaphore, err := d.semaphores.Get(signal)
	if err != nil {
		return 0, err
	}

	idx, res, err := state.swapchain.AcquireNextImage(sc, common.NoTimeout, &semaphore, nil)
	if err != nil {
		return 0, outOfDate(vkErr(err, res, "vkAcquireNextImageKHR"), res)
	}
	return idx, nil
}

func (d *Driver) QueuePresent(device renderer.Device, queue renderer.Queue, info renderer.PresentInfo) error {
	state, err := d.devices.Get(device)
	if err != nil {
		return err
	}
	q, err := d.queues.Get(queue)
	if err != nil {
		return err
	}

	presentInfo := khr_swapchain.PresentInfo{ImageIndices: info.ImageIndices}
	for _, h := range info.WaitSemaphores {
		semaphore, err := d.semaphores.Get(h)
		if err != nil {
			return err
		}
		presentInfo.WaitSemaphores = append(presentInfo.WaitSemaphores, semaphore)
	}
	for _, h := range info.Swapchains {
		sc, err := d.swapchains.Get(h)
		if err != nil {
			return err
		}
		presentInfo.Swapchains = append(presentInfo.Swapchains, sc)
	}

	res, err := state.swapchain.QueuePresent(q, presentInfo)
	if err != nil {
		return outOfDate(vkErr(err, res, "vkQueuePresentKHR"), res)
	}
	return nil
}

func (d *Driver) CreateImageView(device renderer.Device, info renderer.ImageViewCreateInfo) (renderer.ImageView, error) {
	state, err := d.devices.Get(device)
	if err != nil {
		return 0, err
	}
	image, err := d.images.Get(info.Image)
	if err != nil {
		return 0, err
	}

	view, res, err := state.driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType(info.ViewType),
		Format:   core1_0.Format(info.Format),
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectFlags(info.Aspect),
			BaseMipLevel:   0,
			LevelCount:     info.LevelCount,
			BaseArrayLayer: 0,
			LayerCount:     info.LayerCount,
		},
	})
	if err != nil {
		return 0, vkErr(err, res, "vkCreateImageView")
	}
	return d.views.Add(view), nil
}

func (d *Driver) DestroyImageView(device renderer.Device, view renderer.ImageView) {
	v, ok := d.views.Remove(view)
	if !ok {
		return
	}
	if state, err := d.devices.Get(device); err == nil {
		state.driver.DestroyImageView(v, nil)
	}
}

func (d *Driver) CreateRenderPass(device renderer.Device, info renderer.RenderPassCreateInfo) (renderer.RenderPass, error) {
	state, err := d.devices.Get(device)
	if err != nil {
		return 0, err
	}

	var createInfo core1_0.RenderPassCreateInfo
	for _, attachment := range info.Attachments {
		createInfo.Attachments = append(createInfo.Attachments, core1_0.AttachmentDescription{
			Format:         core1_0.Format(attachment.Format),
			Samples:        core1_0.SampleCountFlags(attachment.Samples),
			LoadOp:         core1_0.AttachmentLoadOp(attachment.LoadOp),
			StoreOp:        core1_0.AttachmentStoreOp(attachment.StoreOp),
			StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
			StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
			InitialLayout:  core1_0.ImageLayout(attachment.InitialLayout),
			FinalLayout:    core1_0.ImageLayout(attachment.FinalLayout),
		})
	}
	for _, subpass := range info.Subpasses {
		description := core1_0.SubpassDescription{
			PipelineBindPoint: core1_0.PipelineBindPointGraphics,
		}
		for _, ref := range subpass.ColorAttachments {
			description.ColorAttachments = append(description.ColorAttachments, core1_0.AttachmentReference{
				Attachment: ref.Attachment,
				Layout:     core1_0.ImageLayout(ref.Layout),
			})
		}
		createInfo.Subpasses = append(createInfo.Subpasses, description)
	}
	for _, dep := range info.Dependencies {
		createInfo.SubpassDependencies = append(createInfo.SubpassDependencies, core1_0.SubpassDependency{
			SrcSubpass: subpassIndex(dep.SrcSubpass),
			DstSubpass: subpassIndex(dep.DstSubpass),

			SrcStageMask:  core1_0.PipelineStageFlags(dep.SrcStageMask),
			SrcAccessMask: core1_0.AccessFlags(dep.SrcAccessMask),

			DstStageMask:  core1_0.PipelineStageFlags(dep.DstStageMask),
			DstAccessMask: core1_0.AccessFlags(dep.DstAccessMask),
		})
	}

	pass, res, err := state.driver.CreateRenderPass(nil, createInfo)
	if err != nil {
		return 0, vkErr(err, res, "vkCreateRenderPass")
	}
	return d.renderPasses.Add(pass), nil
}

func subpassIndex(idx int) int {
	if idx == renderer.SubpassExternal {
		return core1_0.SubpassExternal
	}
	return idx
}

func (d *Driver) DestroyRenderPass(device renderer.Device, pass renderer.RenderPass) {
	p, ok := d.renderPasses.Remove(pass)
	if !ok {
		return
	}
	if state, err := d.devices.Get(device); err == nil {
		state.driver.DestroyRenderPass(p, nil)
	}
}

func (d *Driver) CreateFramebuffer(device renderer.Device, info renderer.FramebufferCreateInfo) (renderer.Framebuffer, error) {
	state, err := d.devices.Get(device)
	if err != nil {
		return 0, err
	}
	pass, err := d.renderPasses.Get(info.RenderPass)
	if err != nil {
		return 0, err
	}

	var attachments []core1_0.ImageView
	for _, h := range info.Attachments {
		view, err := d.views.Get(h)
		if err != nil {
			return 0, err
		}
		attachments = append(attachments, view)
	}

	framebuffer, res, err := state.driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass:  pass,
		Layers:      uint32(info.Layers),
		Attachments: attachments,
		Width:       info.Width,
		Height:      info.Height,
	})
	if err != nil {
		return 0, vkErr(err, res, "vkCreateFramebuffer")
	}
	return d.framebuffers.Add(framebuffer), nil
}

func (d *Driver) DestroyFramebuffer(device renderer.Device, framebuffer renderer.Framebuffer) {
	fb, ok := d.framebuffers.Remove(framebuffer)
	if !ok {
		return
	}
	if state, err := d.devices.Get(device); err == nil {
		state.driver.DestroyFramebuffer(fb, nil)
	}
}
