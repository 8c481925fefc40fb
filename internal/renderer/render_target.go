package renderer

// RenderTargetSet is the render pass shared by every frame and one
// framebuffer per presentation chain image, index-aligned with the chain.
type RenderTargetSet struct {
	RenderPass   RenderPass
	Framebuffers []Framebuffer
	Extent       Extent2D
}

func colorRenderPass(format Format) RenderPassCreateInfo {
	return RenderPassCreateInfo{
		Attachments: []AttachmentDescription{
			{
				Format:        format,
				Samples:       Samples1,
				LoadOp:        AttachmentLoadOpClear,
				StoreOp:       AttachmentStoreOpStore,
				InitialLayout: ImageLayoutUndefined,
				FinalLayout:   ImageLayoutPresentSrc,
			},
		},
		Subpasses: []SubpassDescription{
			{
				ColorAttachments: []AttachmentReference{
					{
						Attachment: 0,
						Layout:     ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		Dependencies: []SubpassDependency{
			{
				SrcSubpass: SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  PipelineStageColorAttachmentOutput,
				DstAccessMask: AccessColorAttachmentWrite,
			},
		},
	}
}

// CreateRenderTargets builds the single-attachment clear pass and one
// framebuffer per view, each sized to extent. On failure the returned set
// holds whatever was created so the caller can release it.
func CreateRenderTargets(drv Driver, device Device, chain *PresentationChain, extent Extent2D) (RenderTargetSet, error) {
	targets := RenderTargetSet{Extent: extent}

	var err error
	targets.RenderPass, err = drv.CreateRenderPass(device, colorRenderPass(chain.Format.Format))
	if err != nil {
		return targets, resourceErr(ErrRenderPassCreationFailed, err, "create render pass")
	}

	for idx, view := range chain.Views {
		framebuffer, err := drv.CreateFramebuffer(device, FramebufferCreateInfo{
			RenderPass:  targets.RenderPass,
			Attachments: []ImageView{view},
			Width:       extent.Width,
			Height:      extent.Height,
			Layers:      1,
		})
		if err != nil {
			return targets, resourceErr(ErrFramebufferCreationFailed, err, "framebuffer %d", idx)
		}
		targets.Framebuffers = append(targets.Framebuffers, framebuffer)
	}

	return targets, nil
}

// Destroy releases the framebuffers in reverse order, then the render pass.
func (t *RenderTargetSet) Destroy(drv Driver, device Device) {
	for i := len(t.Framebuffers) - 1; i >= 0; i-- {
		drv.DestroyFramebuffer(device, t.Framebuffers[i])
	}
	t.Framebuffers = nil

	if t.RenderPass != 0 {
		drv.DestroyRenderPass(device, t.RenderPass)
		t.RenderPass = 0
	}
}
