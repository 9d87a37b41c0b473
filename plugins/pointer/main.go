// Package main is the reference pointer plugin. It reads one command from
// stdin, drives the OS pointer through robotgo and answers on stdout.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-vgo/robotgo"
)

// Request is the input written by the plugin executor.
type Request struct {
	Command string          `json:"command"`
	X       int             `json:"x"`
	Y       int             `json:"y"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// Response is the output read back by the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if err := handle(req); err != nil {
		writeErrorResponse(err.Error())
		return
	}
	writeSuccessResponse()
}

func handle(req Request) error {
	switch req.Command {
	case "move":
		w, h := robotgo.GetScreenSize()
		if req.X < 0 || req.Y < 0 || (w > 0 && req.X > w) || (h > 0 && req.Y > h) {
			return fmt.Errorf("point (%d,%d) outside screen %dx%d", req.X, req.Y, w, h)
		}
		robotgo.Move(req.X, req.Y)
	case "left_click":
		robotgo.Click("left")
	case "right_click":
		robotgo.Click("right")
	default:
		return fmt.Errorf("unknown command: %s", req.Command)
	}
	return nil
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
