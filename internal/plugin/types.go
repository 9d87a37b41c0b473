// Package plugin discovers and runs external pointer-injection plugins.
// A plugin is a directory holding a plugin.json manifest and an executable
// that reads one Request as JSON on stdin and writes one Response to stdout.
package plugin

import (
	"encoding/json"
	"slices"
)

// ManifestFile is the manifest file name looked up in each plugin directory.
const ManifestFile = "plugin.json"

// Manifest describes a plugin's metadata and the commands it accepts.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Commands    []string        `json:"commands"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Supports reports whether the manifest lists the command name.
func (m Manifest) Supports(command string) bool {
	return slices.Contains(m.Commands, command)
}

// Request is sent to a plugin for a single pointer command.
// X and Y are only meaningful for "move".
type Request struct {
	Command string          `json:"command"`
	X       int             `json:"x"`
	Y       int             `json:"y"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// Response is the result a plugin writes to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
