package launcher

import (
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/shared/id"
)

// Page is one launcher page: its current document and the periodic timers
// running on it. Replacing the document stops every timer first, the way a
// page's intervals die with the page.
type Page struct {
	ID id.PageID

	mu       sync.Mutex
	document string
	replaced bool
	timers   map[string]chan struct{}
	wg       sync.WaitGroup
}

// NewPage creates a page showing document.
func NewPage(pageID id.PageID, document string) *Page {
	return &Page{
		ID:       pageID,
		document: document,
		timers:   make(map[string]chan struct{}),
	}
}

// Every runs fn every interval until the timer is stopped or the page is
// replaced. A timer with the same name is stopped first. Timers cannot be
// started on a replaced page.
func (p *Page) Every(name string, interval time.Duration, fn func(time.Time)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.replaced {
		return false
	}
	if stop, ok := p.timers[name]; ok {
		close(stop)
	}

	stop := make(chan struct{})
	p.timers[name] = stop
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				// A tick racing with Stop must not fire after Stop returns.
				select {
				case <-stop:
					return
				default:
				}
				fn(now)
			}
		}
	}()
	return true
}

// Stop cancels the named timer.
func (p *Page) Stop(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if stop, ok := p.timers[name]; ok {
		close(stop)
		delete(p.timers, name)
	}
}

// Timers lists the running timers.
func (p *Page) Timers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.timers))
	for name := range p.timers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Document returns the current document and whether it has been replaced.
func (p *Page) Document() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.document, p.replaced
}

// Replace stops every timer, waits for in-flight ticks, then swaps the
// document. Nothing of the old document survives.
func (p *Page) Replace(html string) {
	p.mu.Lock()
	for name, stop := range p.timers {
		close(stop)
		delete(p.timers, name)
	}
	p.replaced = true
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	p.document = html
	p.mu.Unlock()
}

// Close stops all timers without replacing the document.
func (p *Page) Close() {
	p.mu.Lock()
	for name, stop := range p.timers {
		close(stop)
		delete(p.timers, name)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
