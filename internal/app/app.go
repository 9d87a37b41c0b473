// Package app runs the control loop: capture, detect, engine tick, inject.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ayusman/abhinaya/internal/calibration"
	"github.com/ayusman/abhinaya/internal/capture"
	"github.com/ayusman/abhinaya/internal/detector"
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/inject"
	"github.com/ayusman/abhinaya/internal/log"
	"github.com/ayusman/abhinaya/internal/store"
)

// DefaultMaxMissedFrames is the number of consecutive empty reads after
// which the loop treats the device as ended.
const DefaultMaxMissedFrames = 30

// ErrAlreadyRunning is returned by Start when the loop is running.
var ErrAlreadyRunning = errors.New("app is already running")

// Config wires the collaborators of the control loop.
type Config struct {
	Engine   engine.Config
	Preset   string
	Camera   capture.Camera
	Detector detector.Detector
	Injector inject.Injector

	// Store is optional. When set, each run is recorded as a session and
	// fired clicks are appended as events.
	Store *store.Store

	// MaxMissedFrames defaults to DefaultMaxMissedFrames.
	MaxMissedFrames int
}

// Listener receives the commands of every tick that produced any.
type Listener func(cmds []engine.Command)

// Status is a point-in-time view of the app.
type Status struct {
	Running     bool            `json:"running"`
	Enabled     bool            `json:"enabled"`
	Preset      string          `json:"preset"`
	SessionID   string          `json:"session_id,omitempty"`
	Ticks       uint64          `json:"ticks"`
	FaceTicks   uint64          `json:"face_ticks"`
	LastCommand string          `json:"last_command,omitempty"`
	LastClick   string          `json:"last_click,omitempty"`
	Engine      engine.Snapshot `json:"engine"`
}

// App owns one engine instance and the loop that drives it.
type App struct {
	config Config

	engineMu sync.Mutex
	engine   *engine.Engine

	mu          sync.RWMutex
	enabled     bool
	running     bool
	session     *store.Session
	ticks       uint64
	faceTicks   uint64
	misses      int
	lastCommand string
	lastClick   string
	listeners   []Listener
	cancel      context.CancelFunc
	done        chan struct{}
}

// New validates the engine configuration and creates a stopped, enabled app.
func New(config Config) (*App, error) {
	if config.Camera == nil || config.Detector == nil || config.Injector == nil {
		return nil, errors.New("app requires a camera, a detector and an injector")
	}
	if config.MaxMissedFrames <= 0 {
		config.MaxMissedFrames = DefaultMaxMissedFrames
	}

	eng, err := engine.New(config.Engine)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	close(done)

	return &App{
		config:  config,
		engine:  eng,
		enabled: true,
		done:    done,
	}, nil
}

// SetEnabled turns pointer control on or off. Disabled ticks are skipped
// entirely and leave the engine state untouched.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if changed {
		log.Info("pointer control toggled", "enabled", enabled)
	}
}

// IsEnabled reports whether pointer control is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// IsRunning reports whether the loop is running.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// OnCommands registers a listener. Listeners are called from the loop
// goroutine and must not block.
func (a *App) OnCommands(l Listener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, l)
}

// ResetCalibration restarts calibration and clears the debouncers.
func (a *App) ResetCalibration() {
	a.engineMu.Lock()
	a.engine.Reset()
	a.engineMu.Unlock()
	log.Info("calibration reset")
	a.promptCalibration()
}

// Camera returns the capture device.
func (a *App) Camera() capture.Camera {
	return a.config.Camera
}

// Status returns the current status.
func (a *App) Status() Status {
	a.engineMu.Lock()
	snap := a.engine.Snapshot()
	a.engineMu.Unlock()

	a.mu.RLock()
	defer a.mu.RUnlock()

	st := Status{
		Running:     a.running,
		Enabled:     a.enabled,
		Preset:      a.config.Preset,
		Ticks:       a.ticks,
		FaceTicks:   a.faceTicks,
		LastCommand: a.lastCommand,
		LastClick:   a.lastClick,
		Engine:      snap,
	}
	if a.session != nil {
		st.SessionID = a.session.ID
	}
	return st
}

// Start opens the camera, records a session and runs the loop until ctx is
// canceled, Stop is called or the device stops delivering frames.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return ErrAlreadyRunning
	}

	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("failed to open camera: %w", err)
	}

	if a.config.Store != nil {
		sess, err := a.config.Store.Sessions().Start(a.config.Preset, string(a.config.Engine.Policy))
		if err != nil {
			a.config.Camera.Close()
			return fmt.Errorf("failed to start session: %w", err)
		}
		a.session = sess
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	a.running = true
	a.misses = 0

	log.Info("control loop started",
		"preset", a.config.Preset,
		"policy", a.config.Engine.Policy,
		"fps", a.config.Camera.FPS(),
	)
	a.promptCalibration()

	go a.run(ctx, a.done)
	return nil
}

// Stop cancels the loop, waits for it to exit and releases the camera and
// detector.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-done

	if err := a.config.Detector.Close(); err != nil {
		log.Warn("error closing detector", "error", err)
	}
}

// Done is closed when the loop exits.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

func (a *App) promptCalibration() {
	if a.config.Engine.Policy == calibration.PolicyFixedRegion {
		r := a.config.Engine.Region
		log.Info("keep your nose inside the control region",
			"x_min", r.XMin, "x_max", r.XMax, "y_min", r.YMin, "y_max", r.YMax)
		return
	}
	log.Info("calibrating: move your nose across the full range you want to use")
}

// finish runs once when the loop exits.
func (a *App) finish() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.running = false
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}

	if err := a.config.Camera.Close(); err != nil {
		log.Warn("error closing camera", "error", err)
	}

	if a.session != nil && a.config.Store != nil {
		if err := a.config.Store.Sessions().End(a.session.ID); err != nil {
			log.Warn("failed to end session", "session", a.session.ID, "error", err)
		}
	}

	log.Info("control loop stopped", "ticks", a.ticks, "face_ticks", a.faceTicks)
}
