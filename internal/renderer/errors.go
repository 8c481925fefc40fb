package renderer

import (
	"github.com/cockroachdb/errors"
)

// Failure categories. Every error returned by this package matches exactly
// one of them with errors.Is.
var (
	// ErrConfiguration means the machine cannot run the renderer as
	// configured; startup must be aborted.
	ErrConfiguration = errors.New("configuration error")
	// ErrResourceCreation means a GPU object could not be created.
	ErrResourceCreation = errors.New("resource creation error")
	// ErrFrameOperation means a steady-state frame step failed.
	ErrFrameOperation = errors.New("frame operation error")
)

var (
	ErrNoSuitableDevice         = errors.New("no physical device supports graphics and presentation to the surface")
	ErrNoSurfaceFormat          = errors.New("surface reports no formats")
	ErrCapacityExceeded         = errors.New("capacity exceeded")
	ErrMissingInstanceExtension = errors.New("instance extension not available")
	ErrMissingLayer             = errors.New("instance layer not available")
	ErrDeviceQueryFailed        = errors.New("physical device query failed")

	ErrInstanceCreationFailed         = errors.New("instance creation failed")
	ErrDebugMessengerCreationFailed   = errors.New("debug messenger creation failed")
	ErrSurfaceCreationFailed          = errors.New("surface creation failed")
	ErrDeviceCreationFailed           = errors.New("device creation failed")
	ErrSurfaceCapabilitiesQueryFailed = errors.New("surface capabilities query failed")
	ErrSurfaceQueryFailed             = errors.New("surface query failed")
	ErrSwapchainCreationFailed        = errors.New("swapchain creation failed")
	ErrImageViewCreationFailed        = errors.New("image view creation failed")
	ErrRenderPassCreationFailed       = errors.New("render pass creation failed")
	ErrFramebufferCreationFailed      = errors.New("framebuffer creation failed")
	ErrCommandPoolCreationFailed      = errors.New("command pool creation failed")
	ErrSyncPrimitiveCreationFailed    = errors.New("semaphore creation failed")

	ErrAcquireFailed          = errors.New("acquire next image failed")
	ErrCommandRecordingFailed = errors.New("command recording failed")
	ErrSubmitFailed           = errors.New("queue submit failed")
	ErrPresentFailed          = errors.New("present failed")
	ErrWaitIdleFailed         = errors.New("device wait idle failed")
	ErrContextDestroyed       = errors.New("context destroyed")

	// ErrSwapchainOutOfDate is attached by drivers to acquire and present
	// failures caused by a surface that no longer matches the swapchain.
	// The renderer does not rebuild the swapchain, so it stays fatal.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")
)

// fail builds an error marked with both kind and category. cause may be nil
// when the failure is detected by the renderer itself.
func fail(category, kind, cause error, format string, args ...interface{}) error {
	if cause == nil {
		cause = errors.NewWithDepth(1, kind.Error())
	}
	err := errors.Mark(errors.Mark(cause, kind), category)
	return errors.WrapWithDepthf(1, err, format, args...)
}

func configErr(kind, cause error, format string, args ...interface{}) error {
	return fail(ErrConfiguration, kind, cause, format, args...)
}

func resourceErr(kind, cause error, format string, args ...interface{}) error {
	return fail(ErrResourceCreation, kind, cause, format, args...)
}

func frameErr(kind, cause error, format string, args ...interface{}) error {
	return fail(ErrFrameOperation, kind, cause, format, args...)
}

// checkCapacity rejects driver-reported lists longer than the configured
// bound instead of silently truncating them.
func checkCapacity(what string, n, limit int) error {
	if n > limit {
		return configErr(ErrCapacityExceeded, nil, "%s: %d reported, capacity is %d", what, n, limit)
	}
	return nil
}
