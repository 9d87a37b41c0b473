// Package inject delivers engine commands to the operating system pointer.
package inject

import (
	"context"
	"errors"

	"github.com/ayusman/abhinaya/internal/engine"
)

var (
	// ErrUnsupportedCommand is returned for a command kind an injector cannot perform.
	ErrUnsupportedCommand = errors.New("unsupported command")
	// ErrPluginFailed is returned when a plugin answers with success=false.
	ErrPluginFailed = errors.New("plugin reported failure")
)

// Injector performs pointer commands.
type Injector interface {
	// Inject performs one command. Commands from one tick are injected in order.
	Inject(ctx context.Context, cmd engine.Command) error
	// ScreenSize reports the target display size, or zeros when unknown.
	ScreenSize() (width, height int)
}

// InjectAll injects cmds in order and stops at the first error.
func InjectAll(ctx context.Context, inj Injector, cmds []engine.Command) error {
	for _, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := inj.Inject(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}
