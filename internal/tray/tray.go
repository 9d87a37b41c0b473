// Package tray provides the system tray menu: pointer-control toggle,
// recalibration, last click and calibration state, settings and quit.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray application.
type Tray struct {
	onToggle      func(enabled bool)
	onRecalibrate func()
	onSettings    func()
	onQuit        func()
	enabled       bool
	mu            sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuCalibration *systray.MenuItem
	menuLastClick   *systray.MenuItem
}

// New creates a Tray with pointer control enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback run when pointer control is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnRecalibrate sets the callback run when recalibration is requested.
func (t *Tray) OnRecalibrate(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRecalibrate = fn
}

// OnSettings sets the callback run when the settings item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback run when the quit item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Abhinaya")
	systray.SetTooltip("Abhinaya face pointer")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Turn pointer control on or off")
	systray.AddSeparator()

	t.menuCalibration = systray.AddMenuItem(calibrationTitle(false), "Calibration state")
	t.menuCalibration.Disable()
	t.menuLastClick = systray.AddMenuItem(lastClickTitle(""), "Last click")
	t.menuLastClick.Disable()
	t.mu.Unlock()

	menuRecalibrate := systray.AddMenuItem("Recalibrate", "Forget the calibrated range and start over")
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Abhinaya")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuRecalibrate.ClickedCh:
				t.call(t.recalibrateCallback())
			case <-menuSettings.ClickedCh:
				t.call(t.settingsCallback())
			case <-menuQuit.ClickedCh:
				t.call(t.quitCallback())
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) recalibrateCallback() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onRecalibrate
}

func (t *Tray) settingsCallback() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onSettings
}

func (t *Tray) quitCallback() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onQuit
}

func (t *Tray) call(fn func()) {
	if fn != nil {
		fn()
	}
}

// SetEnabled reflects a toggle made elsewhere without calling OnToggle.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetLastClick shows the last fired click.
func (t *Tray) SetLastClick(kind string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastClick != nil {
		t.menuLastClick.SetTitle(lastClickTitle(kind))
	}
}

// SetCalibrated shows whether the pointer range is calibrated.
func (t *Tray) SetCalibrated(calibrated bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuCalibration != nil {
		t.menuCalibration.SetTitle(calibrationTitle(calibrated))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Pointer control on"
	}
	return "○ Pointer control off"
}

func lastClickTitle(kind string) string {
	switch kind {
	case "":
		return "Last click: none"
	case "left_click":
		return "Last click: left (double blink)"
	case "right_click":
		return "Last click: right (mouth open)"
	default:
		return "Last click: " + kind
	}
}

func calibrationTitle(calibrated bool) string {
	if calibrated {
		return "Calibration: ready"
	}
	return "Calibration: move your nose around"
}
