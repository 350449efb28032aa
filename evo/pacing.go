package evo

import (
	"context"
	"sync"
	"time"
)

// Pacer gates the generation loop at its suspension points: before every
// tick and before every generation transition. It is the only part of the
// package that is safe to use from another goroutine, so a UI can pause,
// resume and single-step a running simulation.
//
// A Wait that returns an error has not let any work through, so the loop
// that called it can be resumed later exactly where it stopped.
type Pacer struct {
	mu                 sync.Mutex
	tickInterval       time.Duration
	generationInterval time.Duration
	paused             bool
	steps              int           // pending single-step grants
	wake               chan struct{} // closed and replaced on every state change
}

// NewPacer creates a running pacer. Zero intervals do not wait at all.
func NewPacer(tickInterval, generationInterval time.Duration) *Pacer {
	return &Pacer{
		tickInterval:       tickInterval,
		generationInterval: generationInterval,
		wake:               make(chan struct{}),
	}
}

// broadcast wakes every waiter. Callers hold p.mu.
func (p *Pacer) broadcast() {
	close(p.wake)
	p.wake = make(chan struct{})
}

// Pause stops the loop at its next suspension point.
func (p *Pacer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	p.broadcast()
}

// Resume lets the loop run freely again and drops pending steps.
func (p *Pacer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	p.steps = 0
	p.broadcast()
}

// Toggle switches between running and paused and returns the new paused state.
func (p *Pacer) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = !p.paused
	p.steps = 0
	p.broadcast()
	return p.paused
}

// Step lets one suspension point through while paused. It has no effect
// while running.
func (p *Pacer) Step() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return
	}
	p.steps++
	p.broadcast()
}

// Paused reports whether the pacer is paused.
func (p *Pacer) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// SetIntervals changes the pacing intervals.
func (p *Pacer) SetIntervals(tick, generation time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickInterval = tick
	p.generationInterval = generation
	p.broadcast()
}

// WaitTick blocks until the next tick may run.
func (p *Pacer) WaitTick(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	return p.wait(ctx, func() time.Duration { return p.tickInterval })
}

// WaitGeneration blocks until the next generation transition may run.
func (p *Pacer) WaitGeneration(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	return p.wait(ctx, func() time.Duration { return p.generationInterval })
}

// wait is called with interval reading p's state under p.mu.
func (p *Pacer) wait(ctx context.Context, interval func() time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for {
		p.mu.Lock()
		wake := p.wake
		if p.paused {
			if p.steps > 0 {
				p.steps--
				p.mu.Unlock()
				return nil
			}
			p.mu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-wake:
			}
			continue
		}

		d := interval()
		p.mu.Unlock()
		if d <= 0 {
			return nil
		}
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-wake:
			// Paused or retimed mid-wait; start over.
			timer.Stop()
		case <-timer.C:
			return nil
		}
	}
}
