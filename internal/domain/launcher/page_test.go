package launcher

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/shared/id"
	"github.com/stretchr/testify/assert"
)

func TestPageReplaceStopsTimers(t *testing.T) {
	p := NewPage(id.NewPageID(), "<p>launcher</p>")

	var ticks atomic.Int32
	assert.True(t, p.Every("clock", 5*time.Millisecond, func(time.Time) { ticks.Add(1) }))
	assert.True(t, p.Every("status", time.Hour, func(time.Time) {}))
	assert.Equal(t, []string{"clock", "status"}, p.Timers())

	assert.Eventually(t, func() bool { return ticks.Load() > 0 }, time.Second, time.Millisecond)

	p.Replace("<p>widget</p>")
	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, after, ticks.Load())
	assert.Empty(t, p.Timers())

	doc, replaced := p.Document()
	assert.Equal(t, "<p>widget</p>", doc)
	assert.True(t, replaced)
}

func TestPageNoTimersAfterReplace(t *testing.T) {
	p := NewPage(id.NewPageID(), "")
	p.Replace("<p/>")

	assert.False(t, p.Every("clock", time.Millisecond, func(time.Time) {}))
	assert.Empty(t, p.Timers())
}

func TestPageEverySameNameRestarts(t *testing.T) {
	p := NewPage(id.NewPageID(), "")
	defer p.Close()

	var first atomic.Int32
	p.Every("clock", time.Millisecond, func(time.Time) { first.Add(1) })
	p.Every("clock", time.Hour, func(time.Time) {})
	n := first.Load()
	time.Sleep(10 * time.Millisecond)

	// At most one tick can race with the restart.
	assert.LessOrEqual(t, first.Load(), n+1)
	assert.Equal(t, []string{"clock"}, p.Timers())
}

func TestPageStop(t *testing.T) {
	p := NewPage(id.NewPageID(), "")
	p.Every("clock", time.Hour, func(time.Time) {})
	p.Stop("clock")
	p.Stop("missing")

	assert.Empty(t, p.Timers())
	doc, replaced := p.Document()
	assert.Equal(t, "", doc)
	assert.False(t, replaced)
}
