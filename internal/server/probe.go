// internal/server/probe.go
// Package server checks that the inference server answers and, when it does
// not, makes one best-effort attempt to start it.
package server

import (
	"context"
	"log"
	"time"

	"github.com/mwiater/ollabench/internal/logging"
)

// DefaultSettle is how long EnsureStarted waits after launching the server before re-probing.
const DefaultSettle = 5 * time.Second

// Pinger is the subset of the inference client the probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
	Endpoint() string
}

// Launcher starts the inference server in the background.
type Launcher interface {
	Launch() error
}

// Probe checks reachability of an endpoint and can request a start.
type Probe struct {
	client   Pinger
	launcher Launcher
	settle   time.Duration
	sleep    func(context.Context, time.Duration)
}

// NewProbe builds a Probe. A nil launcher disables auto-start.
func NewProbe(client Pinger, launcher Launcher, settle time.Duration) *Probe {
	if settle < 0 {
		settle = 0
	}
	return &Probe{
		client:   client,
		launcher: launcher,
		settle:   settle,
		sleep:    sleepCtx,
	}
}

// IsReachable reports whether the listing request succeeds. It never fails loudly.
func (p *Probe) IsReachable(ctx context.Context) bool {
	if err := p.client.Ping(ctx); err != nil {
		log.Printf("Inference server at %s is not reachable: %v", p.client.Endpoint(), err)
		return false
	}
	return true
}

// EnsureStarted returns true if the server is reachable, launching it and
// waiting the settle period first when it is not.
func (p *Probe) EnsureStarted(ctx context.Context) bool {
	return p.IsReachable(ctx) || p.Start(ctx)
}

// Start launches the server, waits the settle period and re-probes once.
// Launch failures are logged and reported as false.
func (p *Probe) Start(ctx context.Context) bool {
	if p.launcher == nil {
		log.Printf("Auto-start disabled; start the server manually with 'ollama serve'")
		return false
	}

	log.Printf("Trying to start the inference server...")
	if err := p.launcher.Launch(); err != nil {
		log.Printf("Error starting the inference server: %v", err)
		log.Printf("Please start the server manually with 'ollama serve'")
		return false
	}

	log.Printf("Waiting %s for the inference server to start...", p.settle)
	began := time.Now()
	p.sleep(ctx, p.settle)
	logging.Debugf("settle wait for %s ended after %s (ctx err=%v)", p.client.Endpoint(), time.Since(began).Round(time.Millisecond), ctx.Err())

	if !p.IsReachable(ctx) {
		log.Printf("Inference server could not be started. Try starting it manually.")
		return false
	}
	log.Printf("Inference server was started successfully.")
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
