package inject

import (
	"context"
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/abhinaya/internal/engine"
)

// mouse is the subset of robotgo the injector drives.
type mouse interface {
	Move(x, y int)
	Click(button string)
	ScreenSize() (int, int)
}

type robotgoMouse struct{}

func (robotgoMouse) Move(x, y int)          { robotgo.Move(x, y) }
func (robotgoMouse) Click(button string)    { robotgo.Click(button) }
func (robotgoMouse) ScreenSize() (int, int) { return robotgo.GetScreenSize() }

// Robotgo injects commands into the local display through robotgo.
type Robotgo struct {
	mouse mouse
}

// NewRobotgo creates an injector for the local display.
func NewRobotgo() *Robotgo {
	return &Robotgo{mouse: robotgoMouse{}}
}

// Inject moves or clicks the local pointer.
func (r *Robotgo) Inject(_ context.Context, cmd engine.Command) error {
	switch cmd.Kind {
	case engine.MoveTo:
		r.mouse.Move(cmd.Point.X, cmd.Point.Y)
	case engine.LeftClick:
		r.mouse.Click("left")
	case engine.RightClick:
		r.mouse.Click("right")
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedCommand, cmd.Kind)
	}
	return nil
}

// ScreenSize returns the main display size.
func (r *Robotgo) ScreenSize() (int, int) {
	return r.mouse.ScreenSize()
}
