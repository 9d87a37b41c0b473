package inject

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/plugin"
)

// Plugin injects commands by running an external plugin once per command.
type Plugin struct {
	plugin   *plugin.Plugin
	executor *plugin.Executor
	config   json.RawMessage
}

// NewPlugin looks up the named plugin in mgr. The manager must already have
// discovered its plugins.
func NewPlugin(mgr *plugin.Manager, name string, executor *plugin.Executor, config json.RawMessage) (*Plugin, error) {
	p, err := mgr.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q in %s", err, name, mgr.PluginDir())
	}
	return &Plugin{plugin: p, executor: executor, config: config}, nil
}

// Inject sends cmd to the plugin and checks its response.
func (p *Plugin) Inject(ctx context.Context, cmd engine.Command) error {
	name := cmd.Kind.String()
	if !p.plugin.Manifest.Supports(name) {
		return fmt.Errorf("%w: plugin %s does not handle %s", ErrUnsupportedCommand, p.plugin.Manifest.Name, name)
	}

	req := &plugin.Request{Command: name, Config: p.config}
	if cmd.Kind == engine.MoveTo {
		req.X, req.Y = cmd.Point.X, cmd.Point.Y
	}

	resp, err := p.executor.Execute(ctx, p.plugin, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s: %s", ErrPluginFailed, p.plugin.Manifest.Name, resp.Error)
	}
	return nil
}

// ScreenSize is unknown for plugins; the configured size is used instead.
func (p *Plugin) ScreenSize() (int, int) {
	return 0, 0
}
