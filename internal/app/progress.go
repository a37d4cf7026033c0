package app

import (
	"sync"

	"github.com/bft-labs/lectrec/internal/ports"
)

// progressReporter forwards monotonically non-decreasing fractions in
// [0, 1] and guarantees a final report of exactly 1 on success.
type progressReporter struct {
	mu   sync.Mutex
	fn   ports.ProgressFunc
	last float64
	sent bool
}

func newProgressReporter(fn ports.ProgressFunc) *progressReporter {
	return &progressReporter{fn: fn}
}

func (p *progressReporter) report(f float64) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	// 1 is reserved for done.
	f = min(max(f, p.last), 1)
	if f >= 1 || (p.sent && f == p.last) {
		return
	}
	p.last, p.sent = f, true
	p.fn(f)
}

func (p *progressReporter) done() {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last, p.sent = 1, true
	p.fn(1)
}
