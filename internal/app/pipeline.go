package app

import (
	"context"
	"errors"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/abhinaya/internal/capture"
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/inject"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/log"
	"github.com/ayusman/abhinaya/internal/store"
)

// ErrDeviceEnded is returned by Step once the camera has failed to deliver
// MaxMissedFrames frames in a row.
var ErrDeviceEnded = errors.New("capture device ended")

// run ticks at the camera frame rate until ctx is canceled or the device ends.
// Timestamps handed to the engine are monotonic offsets from loop start.
func (a *App) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer a.finish()

	fps := a.config.Camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Step(ctx, time.Since(start)); err != nil {
				if errors.Is(err, ErrDeviceEnded) {
					log.Warn("stopping: camera stopped delivering frames")
					return
				}
				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}

// Step runs one tick at monotonic time now: read a frame, detect the face,
// advance the engine and inject the resulting commands. Transient capture,
// detection and injection failures are logged and do not stop the loop.
func (a *App) Step(ctx context.Context, now time.Duration) error {
	if !a.IsEnabled() {
		return nil
	}

	frame, err := a.config.Camera.ReadFrame()
	if err != nil {
		return a.missedFrame(err)
	}
	if frame == nil {
		return a.missedFrame(capture.ErrNoFrame)
	}
	a.mu.Lock()
	a.misses = 0
	a.mu.Unlock()

	face, err := a.detect(frame)
	if err != nil {
		log.Warn("face detection failed", "error", err)
		face = nil
	}

	cmds, err := a.tick(face, now)
	if err != nil {
		log.Warn("dropping frame", "error", err)
		return nil
	}
	if len(cmds) == 0 {
		return nil
	}

	if err := inject.InjectAll(ctx, a.config.Injector, cmds); err != nil {
		log.Warn("injection failed", "error", err)
	}
	a.record(cmds, now)
	return nil
}

func (a *App) detect(frame *gocv.Mat) (landmark.Frame, error) {
	defer frame.Close()
	return a.config.Detector.Detect(frame)
}

func (a *App) tick(face landmark.Frame, now time.Duration) ([]engine.Command, error) {
	a.engineMu.Lock()
	cmds, err := a.engine.Tick(face, now)
	a.engineMu.Unlock()

	a.mu.Lock()
	a.ticks++
	if face != nil {
		a.faceTicks++
	}
	a.mu.Unlock()

	return cmds, err
}

func (a *App) missedFrame(err error) error {
	a.mu.Lock()
	a.misses++
	misses := a.misses
	a.mu.Unlock()

	if misses >= a.config.MaxMissedFrames {
		return ErrDeviceEnded
	}
	if errors.Is(err, capture.ErrCameraNotOpen) {
		return err
	}
	log.Debug("no frame", "error", err, "misses", misses)
	return nil
}

// record updates the status, persists clicks and notifies listeners.
func (a *App) record(cmds []engine.Command, now time.Duration) {
	a.mu.Lock()
	a.lastCommand = cmds[len(cmds)-1].String()
	session := a.session
	listeners := a.listeners
	a.mu.Unlock()

	for _, cmd := range cmds {
		if cmd.Kind == engine.MoveTo {
			log.Debug("move", "x", cmd.Point.X, "y", cmd.Point.Y)
			continue
		}

		log.Info("click", "kind", cmd.Kind.String(), "at", now)
		a.mu.Lock()
		a.lastClick = cmd.Kind.String()
		a.mu.Unlock()

		if session == nil || a.config.Store == nil {
			continue
		}
		ev := &store.Event{SessionID: session.ID, Kind: cmd.Kind.String(), Offset: now}
		if err := a.config.Store.Events().Append(ev); err != nil {
			log.Warn("failed to record click", "kind", ev.Kind, "error", err)
		}
	}

	for _, l := range listeners {
		l(cmds)
	}
}
