package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/pongengine/pong/internal/config"
	"github.com/pongengine/pong/internal/logging"
	"github.com/pongengine/pong/internal/platform"
	"github.com/pongengine/pong/internal/renderer"
	"github.com/pongengine/pong/internal/vkdriver"
)

// idleWaitMS bounds how long a minimized window blocks on the event queue.
const idleWaitMS = 100

type application struct {
	cfg    config.Config
	logger *slog.Logger

	session  *platform.Session
	driver   *vkdriver.Driver
	graphics *renderer.Context
}

func (app *application) Run(ctx context.Context) error {
	err := app.initWindow()
	if err != nil {
		return err
	}
	defer app.closeWindow()

	err = app.initGraphics()
	if err != nil {
		return err
	}
	defer app.cleanup()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			app.logger.Info("signal received, shutting down")
			app.session.Stop()
		case <-done:
		}
		return nil
	})

	err = app.mainLoop()
	close(done)
	if waitErr := g.Wait(); err == nil {
		err = waitErr
	}
	return err
}

func (app *application) initWindow() error {
	session, err := platform.Open(platform.WindowOptions{
		Title:  app.cfg.Window.Title,
		X:      app.cfg.Window.X,
		Y:      app.cfg.Window.Y,
		Width:  app.cfg.Window.Width,
		Height: app.cfg.Window.Height,
	}, app.logger)
	if err != nil {
		return err
	}
	app.session = session
	return nil
}

func (app *application) initGraphics() error {
	drv, err := vkdriver.New(app.session.Window())
	if err != nil {
		return err
	}
	app.driver = drv

	graphics, err := renderer.InitializeGraphics(drv, app.session, app.cfg.RendererOptions())
	if err != nil {
		return err
	}
	app.graphics = graphics
	return nil
}

func (app *application) mainLoop() error {
	for app.session.Running() {
		app.session.PollEvents()
		if !app.session.Running() {
			break
		}

		if !app.session.Visible() {
			app.session.WaitEvents(idleWaitMS)
			continue
		}

		if err := app.graphics.RenderFrame(); err != nil {
			return err
		}
	}
	return nil
}

func (app *application) cleanup() {
	stats := app.graphics.Stats()
	app.graphics.Destroy()

	app.logger.Info("renderer stopped",
		"frames", stats.Frames,
		"avg", stats.Average(),
		"max", stats.Max)

	if leaks := app.driver.Leaks(); len(leaks) > 0 {
		app.logger.Warn("vulkan objects leaked", "leaks", leaks)
	}
}

func (app *application) closeWindow() {
	if err := app.session.Close(); err != nil {
		app.logger.Error("close window", "err", err)
	}
}

func main() {
	runtime.LockOSThread()

	// Until the configured logger exists, failures go to a plain text one.
	boot := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Resolve(os.Args[1:], os.LookupEnv)
	if err != nil {
		fail(boot, err)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fail(boot, err)
	}
	slog.SetDefault(logger)
	renderer.SetLogger(logger)

	app := &application{
		cfg:    cfg,
		logger: logger,
	}
	if err := app.Run(context.Background()); err != nil {
		fail(logger, err)
	}
}

func fail(logger *slog.Logger, err error) {
	logging.ReportError(logger, "fatal", err)
	os.Exit(1)
}
