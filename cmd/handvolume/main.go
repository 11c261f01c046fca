package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ayusman/handvolume/internal/app"
	"github.com/ayusman/handvolume/internal/audio"
	"github.com/ayusman/handvolume/internal/capture"
	"github.com/ayusman/handvolume/internal/config"
	"github.com/ayusman/handvolume/internal/detector"
	"github.com/ayusman/handvolume/internal/gesture"
	"github.com/ayusman/handvolume/internal/logger"
	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

var (
	flagUI      = flag.String("ui", "", "user interface: window, tray or terminal (overrides HANDVOLUME_UI)")
	flagCamera  = flag.Int("camera", -1, "camera device index (overrides HANDVOLUME_CAMERA)")
	flagAudio   = flag.String("audio", "", "audio backend: auto, pactl, osascript or dry-run (overrides HANDVOLUME_AUDIO)")
	flagEnvFile = flag.String("env-file", ".env", "dotenv file to load")
	flagDumpFSM = flag.Bool("dump-fsm", false, "write graphviz src of the mute debouncer and exit")
)

// HighGUI and the tray both need the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	flag.Parse()

	if *flagDumpFSM {
		fmt.Println(fsm.Visualize(gesture.NewDebouncer(nil, gesture.DefaultCooldownFrames).FSM()))
		return
	}

	cfg, err := config.Load(*flagEnvFile)
	if err != nil {
		log.WithError(err).Fatal("config.Load")
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.SetLevel(cfg.Level())

	ctx, ctxCancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, os.Interrupt,
	)
	defer func() {
		ctxCancel()
		log.Info("main exiting")
	}()
	ctx = logger.WithLogEntry(ctx, logrus.NewEntry(log))

	sink, err := audio.New(cfg.Audio(log.WithField("component", "audio")))
	if err != nil {
		log.WithError(err).Fatal("audio.New")
	}

	base := app.Config{
		Camera: capture.NewCamera(cfg.CameraID,
			capture.WithResolution(cfg.FrameWidth, cfg.FrameHeight),
			capture.WithFPS(cfg.FPS),
		),
		Detector:   newDetector(cfg),
		Sink:       sink,
		Gesture:    cfg.Gesture(),
		FrameDelay: cfg.FrameDelay,
	}

	log.WithFields(logrus.Fields{
		"ui":     cfg.UI,
		"camera": cfg.CameraID,
		"audio":  cfg.AudioBackend,
	}).Info("Hand volume control")

	switch cfg.UI {
	case config.UITray:
		err = runTray(ctx, ctxCancel, cfg, base)
	case config.UITerminal:
		err = runTerminal(ctx, ctxCancel, cfg, base)
	default:
		err = runWindow(ctx, ctxCancel, cfg, base)
	}
	if err != nil {
		log.Error(err)
		ctxCancel()
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ui":
			cfg.UI = *flagUI
		case "camera":
			cfg.CameraID = *flagCamera
		case "audio":
			cfg.AudioBackend = *flagAudio
		}
	})
}

// newDetector falls back to a detector that never sees a hand when the
// MediaPipe helper is not installed, so the UI still comes up.
func newDetector(cfg *config.Config) detector.Detector {
	d, err := detector.NewMediaPipeDetector(cfg.Detector())
	if err != nil {
		log.WithError(err).Warn("MediaPipe helper unavailable, no hands will be detected")
		return detector.NewMockDetector()
	}
	return d
}
