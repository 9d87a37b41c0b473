package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// Preview wraps a Camera and keeps a copy of the last frame read, so a
// viewer can watch the feed without taking frames away from the control loop.
type Preview struct {
	Camera

	mu   sync.Mutex
	last gocv.Mat
	has  bool
}

// NewPreview wraps c.
func NewPreview(c Camera) *Preview {
	return &Preview{Camera: c}
}

// ReadFrame reads from the wrapped camera and remembers a copy of the frame.
func (p *Preview) ReadFrame() (*gocv.Mat, error) {
	frame, err := p.Camera.ReadFrame()
	if err != nil || frame == nil {
		return frame, err
	}

	p.mu.Lock()
	if p.has {
		p.last.Close()
	}
	p.last = frame.Clone()
	p.has = true
	p.mu.Unlock()

	return frame, nil
}

// Latest returns a copy of the last frame read, or ErrNoFrame before the
// first read. The caller closes the result.
func (p *Preview) Latest() (*gocv.Mat, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.has {
		return nil, ErrNoFrame
	}
	frame := p.last.Clone()
	return &frame, nil
}

// Close drops the remembered frame and closes the wrapped camera.
func (p *Preview) Close() error {
	p.mu.Lock()
	if p.has {
		p.last.Close()
		p.has = false
	}
	p.mu.Unlock()

	return p.Camera.Close()
}
