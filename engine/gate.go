package engine

import (
	"context"
	"sync"
)

// Gate is a pause/resume checkpoint shared by a loop and the workers it
// spawns. Wait blocks while the gate is paused.
type Gate struct {
	mtx    sync.Mutex
	paused bool
	resume chan struct{}
}

func NewGate() *Gate {
	resume := make(chan struct{})
	close(resume)
	return &Gate{resume: resume}
}

func (g *Gate) Pause() {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if g.paused {
		return
	}
	g.paused = true
	g.resume = make(chan struct{})
}

func (g *Gate) Resume() {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if !g.paused {
		return
	}
	g.paused = false
	close(g.resume)
}

// Toggle flips the gate and reports whether it is now paused.
func (g *Gate) Toggle() bool {
	g.mtx.Lock()
	paused := g.paused
	g.mtx.Unlock()

	if paused {
		g.Resume()
	} else {
		g.Pause()
	}
	return !paused
}

func (g *Gate) Paused() bool {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	return g.paused
}

// Wait returns once the gate is open, or with ctx's error if ctx ends first.
func (g *Gate) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mtx.Lock()
	resume := g.resume
	g.mtx.Unlock()

	select {
	case <-resume:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
