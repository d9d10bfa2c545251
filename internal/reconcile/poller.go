package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/dvloznov/ledgerbot/internal/logger"
)

// Poller drives the checker on a fixed interval. One pass runs at a
// time: a tick that fires while the previous pass is still going is
// skipped, and a pass error is logged but never stops the loop.
type Poller struct {
	checker  *Checker
	interval time.Duration

	mu       sync.Mutex
	inFlight bool
	started  bool

	closeChan chan struct{}
	wg        sync.WaitGroup
}

// NewPoller creates a stopped poller.
func NewPoller(checker *Checker, interval time.Duration) *Poller {
	return &Poller{
		checker:  checker,
		interval: interval,
	}
}

// Start launches the polling loop. The first pass runs immediately so
// the snapshot is seeded before the first interval elapses. Starting a
// started poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	log := logger.FromContext(ctx)
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		log.Warn().Msg("Poller already started")
		return
	}
	p.started = true
	p.closeChan = make(chan struct{})
	p.mu.Unlock()

	log.Info().
		Dur("interval", p.interval).
		Msg("Starting ledger poller")

	p.wg.Add(1)
	go p.loop(ctx, p.closeChan)
}

func (p *Poller) loop(ctx context.Context, closeChan <-chan struct{}) {
	defer p.wg.Done()

	p.runOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closeChan:
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

// ForceCheck runs one pass outside the schedule, used right after a
// local append to shorten notification latency. It respects the same
// no-overlap guard as scheduled ticks.
func (p *Poller) ForceCheck(ctx context.Context) {
	log := logger.FromContext(ctx)
	log.Debug().Msg("Forced reconciliation pass")
	p.runOnce(ctx)
}

func (p *Poller) runOnce(ctx context.Context) {
	log := logger.FromContext(ctx)
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		log.Warn().Msg("Previous pass still running, skipping tick")
		return
	}
	p.inFlight = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	// Absorbed here: one bad pass must not stop future ticks.
	if err := p.checker.Check(ctx); err != nil {
		log.Error().Err(err).Msg("Reconciliation pass failed")
	}
}

// Stop halts the loop and waits for an in-flight pass to finish.
// Stopping a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	close(p.closeChan)
	p.mu.Unlock()

	p.wg.Wait()
}
