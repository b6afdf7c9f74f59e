package cmd

import (
	"fmt"
	"sync"

	"dbf-pump/internal/engine"

	"github.com/gosuri/uiprogress"
)

// barProgress draws one terminal bar per tenant.
type barProgress struct {
	mu   sync.Mutex
	bars map[string]*uiprogress.Bar
}

func newBarProgress() *barProgress {
	uiprogress.Start()
	return &barProgress{bars: make(map[string]*uiprogress.Bar)}
}

func (p *barProgress) TenantStarted(tenant string, total int) {
	if total == 0 {
		return
	}
	bar := uiprogress.AddBar(total).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return fmt.Sprintf("Mandant %-3s %d/%d", tenant, b.Current(), total)
	})
	p.mu.Lock()
	p.bars[tenant] = bar
	p.mu.Unlock()
}

func (p *barProgress) RecordProcessed(tenant string, _ bool) {
	p.mu.Lock()
	bar := p.bars[tenant]
	p.mu.Unlock()
	if bar != nil {
		bar.Incr()
	}
}

func (p *barProgress) TenantDone(engine.TenantResult) {}

func (p *barProgress) TenantMissing(string, string) {}

func (p *barProgress) Stop() {
	uiprogress.Stop()
}
