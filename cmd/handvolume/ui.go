package main

import (
	"context"
	"image"
	"os"

	"github.com/ayusman/handvolume/internal/app"
	"github.com/ayusman/handvolume/internal/config"
	"github.com/ayusman/handvolume/internal/render"
	"github.com/ayusman/handvolume/internal/tray"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const windowTitle = "Hand Volume"

// runWindow runs the loop on the main goroutine, which drives HighGUI.
func runWindow(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, base app.Config) error {
	win := render.NewWindowDisplay(windowTitle, image.Pt(cfg.DisplayWidth, cfg.DisplayHeight), cancel)
	defer win.Close()
	base.Display = render.Multi{win, render.LogStatus(log.WithField("component", "status"))}

	ctrl, err := app.New(base)
	if err != nil {
		return errors.Wrap(err, "app.New")
	}
	return ctrl.Run(ctx)
}

// runTray runs the tray on the main goroutine and the loop on its own.
func runTray(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, base app.Config) error {
	tr := tray.New(app.StatusIdle)
	base.Display = render.Multi{
		render.StatusFunc(tr.SetStatus),
		render.LogStatus(log.WithField("component", "status")),
	}
	base.OnRunning = tr.SetRunning

	ctrl, err := app.New(base)
	if err != nil {
		return errors.Wrap(err, "app.New")
	}

	start := func() {
		if err := ctrl.Start(ctx); err != nil {
			log.WithError(err).Error("Start failed")
			tr.SetStatus(app.StatusCameraError)
		}
	}
	tr.OnStart(start)
	tr.OnStop(ctrl.Stop)
	tr.OnQuit(cancel)
	tr.OnReady(func() {
		if cfg.Autostart {
			start()
		}
	})

	go func() {
		<-ctx.Done()
		ctrl.Stop()
		tr.Quit()
	}()

	tr.Run()
	ctrl.Stop()
	return ctrl.Err()
}

// runTerminal prints status and ANSI frames, taking commands from the keyboard.
func runTerminal(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, base app.Config) error {
	disp := render.NewAnsiDisplay(os.Stdout, cfg.AnsiEvery)
	base.Display = disp

	ctrl, err := app.New(base)
	if err != nil {
		return errors.Wrap(err, "app.New")
	}

	g, ctx := errgroup.WithContext(ctx)

	keys := newKeyMap(ctrl, cancel)
	g.Go(func() error {
		return scanKeys(ctx, keys)
	})

	if cfg.Autostart {
		if err := ctrl.Start(ctx); err != nil {
			log.WithError(err).Error("Start failed")
		}
	} else {
		showStatus(disp, app.StatusIdle)
	}
	g.Go(func() error {
		<-ctx.Done()
		ctrl.Stop()
		return ctrl.Err()
	})

	return g.Wait()
}

// showStatus shows status without a frame, logging a display failure.
func showStatus(d render.Display, status string) {
	if err := d.Show(nil, nil, status); err != nil {
		log.WithError(err).Warn("Display failed")
	}
}
