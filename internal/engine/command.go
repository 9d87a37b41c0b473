package engine

import (
	"fmt"

	"github.com/ayusman/abhinaya/internal/pointer"
)

// CommandKind identifies the pointer action a command requests.
type CommandKind int

const (
	// MoveTo moves the cursor to Command.Point.
	MoveTo CommandKind = iota
	// LeftClick presses and releases the primary button.
	LeftClick
	// RightClick presses and releases the secondary button.
	RightClick
)

var kindNames = map[CommandKind]string{
	MoveTo:     "move",
	LeftClick:  "left_click",
	RightClick: "right_click",
}

// String returns the wire name of the kind.
func (k CommandKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k CommandKind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown command kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a kind name.
func (k *CommandKind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown command kind %q", text)
}

// Command is a single pointer-control instruction for the input injector.
type Command struct {
	Kind  CommandKind         `json:"kind"`
	Point pointer.ScreenPoint `json:"point"` // Only meaningful for MoveTo
}

// Move returns a MoveTo command.
func Move(p pointer.ScreenPoint) Command {
	return Command{Kind: MoveTo, Point: p}
}

// String formats the command for logs.
func (c Command) String() string {
	if c.Kind == MoveTo {
		return fmt.Sprintf("move(%d,%d)", c.Point.X, c.Point.Y)
	}
	return c.Kind.String()
}
