package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		// Route template keeps label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordHTTPRequest(method, path, strconv.Itoa(c.Writer.Status()), time.Since(start), int64(c.Writer.Size()))
	}
}

// Timer measures an invocation.
type Timer struct {
	start   time.Time
	metrics *Metrics
	method  string
}

// NewTimer starts timing an invocation and marks it active.
func NewTimer(metrics *Metrics, method string) *Timer {
	if metrics != nil {
		metrics.InvocationsActive.Inc()
	}
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		method:  method,
	}
}

// Stop records the invocation outcome. Safe on a nil metrics collector.
func (t *Timer) Stop(outcome string) time.Duration {
	d := time.Since(t.start)
	if t.metrics != nil {
		t.metrics.InvocationsActive.Dec()
		t.metrics.RecordInvocation(t.method, outcome, d)
	}
	return d
}
