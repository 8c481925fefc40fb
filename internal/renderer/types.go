package renderer

import (
	"github.com/google/uuid"
)

// Opaque handles handed out by a Driver. The zero value of every handle means
// the object was never created.
type (
	Instance       uint64
	DebugMessenger uint64
	Surface        uint64
	PhysicalDevice uint64
	Device         uint64
	Queue          uint64
	Swapchain      uint64
	Image          uint64
	ImageView      uint64
	RenderPass     uint64
	Framebuffer    uint64
	CommandPool    uint64
	CommandBuffer  uint64
	Semaphore      uint64
)

// The enumerations below carry the numeric values of the corresponding
// Vulkan enums so a driver can convert them with a plain cast.

type Format int32

const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8UNorm Format = 37
	FormatR8G8B8A8SRGB  Format = 43
	FormatB8G8R8A8UNorm Format = 44
	FormatB8G8R8A8SRGB  Format = 50
)

type ColorSpace int32

const ColorSpaceSRGBNonlinear ColorSpace = 0

type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFIFO        PresentMode = 2
	PresentModeFIFORelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFIFO:
		return "fifo"
	case PresentModeFIFORelaxed:
		return "fifo-relaxed"
	}
	return "unknown"
}

type QueueFlags uint32

const (
	QueueGraphics QueueFlags = 0x1
	QueueCompute  QueueFlags = 0x2
	QueueTransfer QueueFlags = 0x4
)

type ImageUsage uint32

const ImageUsageColorAttachment ImageUsage = 0x10

type CompositeAlpha uint32

const CompositeAlphaOpaque CompositeAlpha = 0x1

type SurfaceTransform uint32

const SurfaceTransformIdentity SurfaceTransform = 0x1

type ImageViewType int32

const ImageViewType2D ImageViewType = 1

type ImageAspect uint32

const ImageAspectColor ImageAspect = 0x1

type AttachmentLoadOp int32

const (
	AttachmentLoadOpLoad     AttachmentLoadOp = 0
	AttachmentLoadOpClear    AttachmentLoadOp = 1
	AttachmentLoadOpDontCare AttachmentLoadOp = 2
)

type AttachmentStoreOp int32

const (
	AttachmentStoreOpStore    AttachmentStoreOp = 0
	AttachmentStoreOpDontCare AttachmentStoreOp = 1
)

type ImageLayout int32

const (
	ImageLayoutUndefined              ImageLayout = 0
	ImageLayoutColorAttachmentOptimal ImageLayout = 2
	ImageLayoutPresentSrc             ImageLayout = 1000001002
)

type SampleCount uint32

const Samples1 SampleCount = 0x1

type PipelineStage uint32

const PipelineStageColorAttachmentOutput PipelineStage = 0x400

type Access uint32

const AccessColorAttachmentWrite Access = 0x100

// SubpassExternal refers to operations outside the render pass in a
// SubpassDependency.
const SubpassExternal = -1

type DebugSeverity uint32

const (
	DebugSeverityVerbose DebugSeverity = 0x1
	DebugSeverityInfo    DebugSeverity = 0x10
	DebugSeverityWarning DebugSeverity = 0x100
	DebugSeverityError   DebugSeverity = 0x1000
)

type DebugMessageType uint32

const (
	DebugMessageGeneral     DebugMessageType = 0x1
	DebugMessageValidation  DebugMessageType = 0x2
	DebugMessagePerformance DebugMessageType = 0x4
)

type Extent2D struct {
	Width, Height int
}

type QueueFamily struct {
	Flags QueueFlags
	Count int
}

type DeviceProperties struct {
	Name              string
	Type              string
	VendorID          uint32
	DeviceID          uint32
	PipelineCacheUUID uuid.UUID
}

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type SurfaceCapabilities struct {
	MinImageCount    int
	MaxImageCount    int // zero means no upper limit
	CurrentExtent    Extent2D
	CurrentTransform SurfaceTransform
}

type DebugMessage struct {
	Severity DebugSeverity
	Type     DebugMessageType
	Text     string
}

type InstanceCreateInfo struct {
	ApplicationName string
	EngineName      string
	Extensions      []string
	Layers          []string

	// Debug, when non-nil, is chained into instance creation so messages
	// emitted while the instance itself is created are captured too.
	Debug *DebugMessengerCreateInfo
}

type DebugMessengerCreateInfo struct {
	Severities DebugSeverity
	Types      DebugMessageType
	Callback   func(DebugMessage)
}

type DeviceQueueCreateInfo struct {
	FamilyIndex int
	Priorities  []float32
}

type DeviceCreateInfo struct {
	Queues     []DeviceQueueCreateInfo
	Extensions []string
}

type SwapchainCreateInfo struct {
	Surface        Surface
	MinImageCount  int
	Format         SurfaceFormat
	Extent         Extent2D
	ArrayLayers    int
	Usage          ImageUsage
	PreTransform   SurfaceTransform
	CompositeAlpha CompositeAlpha
	PresentMode    PresentMode
	Clipped        bool
}

type ImageViewCreateInfo struct {
	Image      Image
	ViewType   ImageViewType
	Format     Format
	Aspect     ImageAspect
	LevelCount int
	LayerCount int
}

type AttachmentDescription struct {
	Format        Format
	Samples       SampleCount
	LoadOp        AttachmentLoadOp
	StoreOp       AttachmentStoreOp
	InitialLayout ImageLayout
	FinalLayout   ImageLayout
}

type AttachmentReference struct {
	Attachment int
	Layout     ImageLayout
}

type SubpassDescription struct {
	ColorAttachments []AttachmentReference
}

type SubpassDependency struct {
	SrcSubpass    int
	DstSubpass    int
	SrcStageMask  PipelineStage
	DstStageMask  PipelineStage
	SrcAccessMask Access
	DstAccessMask Access
}

type RenderPassCreateInfo struct {
	Attachments  []AttachmentDescription
	Subpasses    []SubpassDescription
	Dependencies []SubpassDependency
}

type FramebufferCreateInfo struct {
	RenderPass  RenderPass
	Attachments []ImageView
	Width       int
	Height      int
	Layers      int
}

type RenderPassBeginInfo struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	RenderArea  Extent2D
	ClearColor  [4]float32
}

type SubmitInfo struct {
	WaitSemaphores   []Semaphore
	WaitDstStageMask []PipelineStage
	CommandBuffers   []CommandBuffer
	SignalSemaphores []Semaphore
}

type PresentInfo struct {
	WaitSemaphores []Semaphore
	Swapchains     []Swapchain
	ImageIndices   []int
}
