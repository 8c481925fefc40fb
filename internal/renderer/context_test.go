package renderer

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeGraphics(t *testing.T) {
	drv := newFakeDriver()

	ctx, err := InitializeGraphics(drv, drv.window(), DefaultOptions())
	require.NoError(t, err)
	defer ctx.Destroy()

	assert.Equal(t, "Fake GPU", ctx.Device().Name)
	assert.Equal(t, PreferredSurfaceFormat, ctx.SurfaceFormat())
	assert.Equal(t, 3, ctx.ImageCount())
	assert.Equal(t, FrameIdle, ctx.FrameState())
	assert.NotEqual(t, [16]byte{}, [16]byte(ctx.ID()))

	info := drv.instanceInfo
	assert.Equal(t, "Jay's Ping Pong From Scratch", info.ApplicationName)
	assert.Equal(t, "Pong Engine", info.EngineName)
	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xlib_surface", DebugUtilsExtension}, info.Extensions)
	assert.Equal(t, []string{ValidationLayer}, info.Layers)
	require.NotNil(t, info.Debug)
	assert.Equal(t, DebugSeverityVerbose|DebugSeverityWarning|DebugSeverityError, drv.debugInfo.Severities)
	assert.Equal(t, DebugMessageGeneral|DebugMessageValidation, drv.debugInfo.Types)

	assert.Equal(t, 1, drv.live["Instance"])
	assert.Equal(t, 1, drv.live["DebugMessenger"])
	assert.Equal(t, 1, drv.live["Surface"])
	assert.Equal(t, 1, drv.live["Device"])
	assert.Equal(t, 1, drv.live["Swapchain"])
	assert.Equal(t, 3, drv.live["ImageView"])
	assert.Equal(t, 1, drv.live["RenderPass"])
	assert.Equal(t, 3, drv.live["Framebuffer"])
	assert.Equal(t, 1, drv.live["CommandPool"])
	assert.Equal(t, 2, drv.live["Semaphore"])

	// The window's extension slice is not written through.
	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xlib_surface"}, drv.windowExts)
}

func TestInitializeGraphicsWithoutValidation(t *testing.T) {
	drv := newFakeDriver()
	drv.layers = map[string]bool{}
	opts := DefaultOptions()
	opts.Validation = false

	ctx, err := InitializeGraphics(drv, drv.window(), opts)
	require.NoError(t, err)
	defer ctx.Destroy()

	assert.Zero(t, drv.created["DebugMessenger"])
	assert.Zero(t, drv.callCount["AvailableLayers"])
	assert.Empty(t, drv.instanceInfo.Layers)
	assert.Nil(t, drv.instanceInfo.Debug)
	assert.NotContains(t, drv.instanceInfo.Extensions, DebugUtilsExtension)
}

func TestContextDestroyOrder(t *testing.T) {
	drv := newFakeDriver()

	ctx, err := InitializeGraphics(drv, drv.window(), DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, ctx.RenderFrame())
	drv.destroyed = nil

	ctx.Destroy()
	assert.Equal(t, []string{
		"Semaphore",
		"CommandPool",
		"Framebuffer",
		"RenderPass",
		"ImageView",
		"Swapchain",
		"Device",
		"Surface",
		"DebugMessenger",
		"Instance",
	}, drv.destroyOrder())
	assert.Zero(t, drv.totalLive())

	// Destroy is idempotent and rendering afterwards fails cleanly.
	ctx.Destroy()
	assert.Len(t, drv.destroyOrder(), 10)

	err = ctx.RenderFrame()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContextDestroyed))
	assert.True(t, errors.Is(err, ErrFrameOperation))
}

func TestInitializeGraphicsNoDevices(t *testing.T) {
	drv := newFakeDriver()
	drv.gpus = nil

	ctx, err := InitializeGraphics(drv, drv.window(), DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, ctx)
	assert.True(t, errors.Is(err, ErrNoSuitableDevice))
	assert.True(t, errors.Is(err, ErrConfiguration))

	assert.Zero(t, drv.created["Device"])
	assert.Zero(t, drv.created["Swapchain"])
	assert.Zero(t, drv.created["RenderPass"])
	assert.Zero(t, drv.totalLive())
	assert.Equal(t, []string{"Surface", "DebugMessenger", "Instance"}, drv.destroyOrder())
}

func TestInitializeGraphicsFailuresReleaseEverything(t *testing.T) {
	tests := []struct {
		op       string
		n        int
		kind     error
		category error
	}{
		{op: "CreateInstance", n: 1, kind: ErrInstanceCreationFailed, category: ErrResourceCreation},
		{op: "CreateDebugMessenger", n: 1, kind: ErrDebugMessengerCreationFailed, category: ErrResourceCreation},
		{op: "CreateSurface", n: 1, kind: ErrSurfaceCreationFailed, category: ErrResourceCreation},
		{op: "PhysicalDeviceProperties", n: 1, kind: ErrDeviceQueryFailed, category: ErrConfiguration},
		{op: "CreateDevice", n: 1, kind: ErrDeviceCreationFailed, category: ErrResourceCreation},
		{op: "SurfaceCapabilities", n: 1, kind: ErrSurfaceCapabilitiesQueryFailed, category: ErrConfiguration},
		{op: "CreateSwapchain", n: 1, kind: ErrSwapchainCreationFailed, category: ErrResourceCreation},
		{op: "CreateImageView", n: 3, kind: ErrImageViewCreationFailed, category: ErrResourceCreation},
		{op: "CreateRenderPass", n: 1, kind: ErrRenderPassCreationFailed, category: ErrResourceCreation},
		{op: "CreateFramebuffer", n: 2, kind: ErrFramebufferCreationFailed, category: ErrResourceCreation},
		{op: "CreateCommandPool", n: 1, kind: ErrCommandPoolCreationFailed, category: ErrResourceCreation},
		{op: "CreateSemaphore", n: 1, kind: ErrSyncPrimitiveCreationFailed, category: ErrResourceCreation},
		{op: "CreateSemaphore", n: 2, kind: ErrSyncPrimitiveCreationFailed, category: ErrResourceCreation},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			drv := newFakeDriver().failOn(tt.op, tt.n)

			ctx, err := InitializeGraphics(drv, drv.window(), DefaultOptions())
			require.Error(t, err)
			assert.Nil(t, ctx)
			assert.True(t, errors.Is(err, tt.kind), "%+v", err)
			assert.True(t, errors.Is(err, tt.category))
			assert.Zero(t, drv.totalLive(), "live objects: %v", drv.live)
		})
	}
}

func TestInitializeGraphicsMissingExtension(t *testing.T) {
	drv := newFakeDriver()
	delete(drv.extensions, DebugUtilsExtension)

	_, err := InitializeGraphics(drv, drv.window(), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInstanceExtension))
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), DebugUtilsExtension)
	assert.Zero(t, drv.created["Instance"])
}

func TestInitializeGraphicsMissingLayer(t *testing.T) {
	drv := newFakeDriver()
	drv.layers = map[string]bool{}

	_, err := InitializeGraphics(drv, drv.window(), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingLayer))
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.NotEmpty(t, errors.GetAllHints(err))
	assert.Zero(t, drv.created["Instance"])
}

func TestDebugMessagesAreLogged(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	drv := newFakeDriver()
	ctx, err := InitializeGraphics(drv, drv.window(), DefaultOptions())
	require.NoError(t, err)
	defer ctx.Destroy()

	require.NotNil(t, drv.debugInfo.Callback)
	drv.debugInfo.Callback(DebugMessage{
		Severity: DebugSeverityError,
		Type:     DebugMessageValidation,
		Text:     "vkCmdDraw: bad things",
	})

	out := buf.String()
	assert.Contains(t, out, "running on GPU")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "vkCmdDraw: bad things")
}

func TestDebugLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, debugLevel(DebugSeverityError|DebugSeverityWarning))
	assert.Equal(t, slog.LevelWarn, debugLevel(DebugSeverityWarning))
	assert.Equal(t, slog.LevelInfo, debugLevel(DebugSeverityInfo))
	assert.Equal(t, slog.LevelDebug, debugLevel(DebugSeverityVerbose))
}

func TestSetLoggerNilSilences(t *testing.T) {
	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
