package inject

import (
	"context"
	"sync"

	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/log"
)

// maxRecorded bounds the commands a Recorder keeps; older ones are dropped.
const maxRecorded = 4096

// Recorder logs and keeps the most recent commands instead of touching the
// pointer. It backs the "log" injector kind and tests.
type Recorder struct {
	mu       sync.Mutex
	width    int
	height   int
	commands []engine.Command
	err      error
}

// NewRecorder creates a recorder reporting the given screen size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

// Inject records cmd, or returns the error set with SetError.
func (r *Recorder) Inject(_ context.Context, cmd engine.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	if len(r.commands) == maxRecorded {
		r.commands = append(r.commands[:0], r.commands[1:]...)
	}
	r.commands = append(r.commands, cmd)
	log.Debug("inject", "command", cmd.String())
	return nil
}

// ScreenSize returns the size given to NewRecorder.
func (r *Recorder) ScreenSize() (int, int) {
	return r.width, r.height
}

// SetError makes subsequent Inject calls fail with err.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Commands returns a copy of the recorded commands.
func (r *Recorder) Commands() []engine.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]engine.Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Clicks returns only the recorded click commands.
func (r *Recorder) Clicks() []engine.Command {
	var clicks []engine.Command
	for _, c := range r.Commands() {
		if c.Kind != engine.MoveTo {
			clicks = append(clicks, c)
		}
	}
	return clicks
}
