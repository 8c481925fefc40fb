// Package platform owns the SDL2 window and its event pump.
package platform

import (
	"log/slog"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
)

type WindowOptions struct {
	Title         string
	X, Y          int
	Width, Height int
}

// Session is the window together with the run flag the event pump and the
// render loop share. PollEvents and every window call must happen on the
// thread that called Open; Stop and Running may be used from anywhere.
type Session struct {
	window *sdl.Window
	logger *slog.Logger

	running   atomic.Bool
	minimized bool
}

// Open initializes SDL video and creates a Vulkan-capable window.
func Open(opts WindowOptions, logger *slog.Logger) (*Session, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "SDL_Init")
	}

	window, err := sdl.CreateWindow(opts.Title,
		int32(opts.X), int32(opts.Y), int32(opts.Width), int32(opts.Height),
		sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN)
	if err != nil {
		sdl.Quit()
		return nil, errors.WithHint(errors.Wrap(err, "SDL_CreateWindow"),
			"a Vulkan loader must be installed for SDL to create the window")
	}

	s := &Session{
		window: window,
		logger: logger,
	}
	s.running.Store(true)

	logger.Info("window opened", "title", opts.Title, "width", opts.Width, "height", opts.Height)
	return s, nil
}

func (s *Session) Window() *sdl.Window {
	return s.window
}

func (s *Session) Running() bool {
	return s.running.Load()
}

// Stop clears the run flag. The render loop exits before its next frame.
func (s *Session) Stop() {
	if s.running.CompareAndSwap(true, false) {
		s.logger.Info("stop requested")
	}
}

// Visible reports whether frames should be rendered. Rendering pauses while
// the window is minimized.
func (s *Session) Visible() bool {
	return !s.minimized
}

// PollEvents drains every pending event without blocking.
func (s *Session) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		s.handleEvent(event)
	}
}

// WaitEvents blocks for at most timeoutMS waiting for an event, then drains
// the queue. Used instead of PollEvents while nothing is rendered.
func (s *Session) WaitEvents(timeoutMS int) {
	if event := sdl.WaitEventTimeout(timeoutMS); event != nil {
		s.handleEvent(event)
	}
	s.PollEvents()
}

func (s *Session) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		s.Stop()
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_CLOSE:
			s.Stop()
		case sdl.WINDOWEVENT_MINIMIZED:
			s.minimized = true
		case sdl.WINDOWEVENT_RESTORED:
			s.minimized = false
		}
	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE {
			s.Stop()
		}
	}
}

// ClientAreaSize is the drawable size in pixels, which differs from the
// window size on high-DPI displays.
func (s *Session) ClientAreaSize() (int, int) {
	w, h := s.window.VulkanGetDrawableSize()
	return int(w), int(h)
}

func (s *Session) RequiredInstanceExtensions() []string {
	return s.window.VulkanGetInstanceExtensions()
}

func (s *Session) Close() error {
	s.running.Store(false)
	err := s.window.Destroy()
	sdl.Quit()
	return errors.Wrap(err, "destroy window")
}
