package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ValidationLayer is the layer enabled when validation is requested.
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// DebugUtilsExtension is the instance extension backing the debug messenger.
const DebugUtilsExtension = "VK_EXT_debug_utils"

// SwapchainExtension is the only device extension the renderer enables.
const SwapchainExtension = "VK_KHR_swapchain"

// Limits bounds every list the driver reports. A longer list is rejected
// with ErrCapacityExceeded.
type Limits struct {
	MaxPhysicalDevices int
	MaxQueueFamilies   int
	MaxSurfaceFormats  int
	MaxSwapchainImages int
}

func DefaultLimits() Limits {
	return Limits{
		MaxPhysicalDevices: 10,
		MaxQueueFamilies:   10,
		MaxSurfaceFormats:  32,
		MaxSwapchainImages: 5,
	}
}

type Options struct {
	ApplicationName string
	EngineName      string

	// Validation enables the Khronos validation layer and a debug messenger
	// that forwards its output to the renderer logger.
	Validation bool

	// PresentMode is used when the surface supports it, FIFO otherwise.
	PresentMode PresentMode

	ClearColor mgl32.Vec4

	Limits Limits

	// StatsInterval is the number of frames between frame statistics log
	// lines. Zero disables them.
	StatsInterval int
}

func DefaultOptions() Options {
	return Options{
		ApplicationName: "Jay's Ping Pong From Scratch",
		EngineName:      "Pong Engine",
		Validation:      true,
		PresentMode:     PresentModeFIFO,
		ClearColor:      mgl32.Vec4{1, 1, 0, 1},
		Limits:          DefaultLimits(),
		StatsInterval:   600,
	}
}
