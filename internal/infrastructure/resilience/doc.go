/*
Package resilience provides the circuit breaker guarding calls to function
endpoints.

# Overview

The launcher never retries a failed invocation, but a dead endpoint should not
tie up a request for the full client timeout on every submission. The breaker
opens after repeated transport failures and fails fast until a trial request succeeds.

	Closed --[ReadyToTrip]-> Open --[Timeout]-> Half-Open --[MaxRequests ok]-> Closed
	                                               |
	                                           [failure]-> Open

# Usage

	breaker := resilience.New("function-endpoint", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 10
		},
		OnStateChange: func(name string, from, to resilience.State) {
			metrics.SetBreakerState(name, int(to))
		},
	})

	err := breaker.Execute(func() error {
		resp, err = req.Post(target)
		return err
	})

Settings.IsSuccessful decides which errors count. The default ignores
context cancellation so a user resubmitting a form cannot trip the breaker.
Resty reports an upstream HTTP status without an error, so only transport
failures reach the breaker. Open and half-open rejections return
ErrCircuitOpen and ErrTooManyRequests.
*/
package resilience
