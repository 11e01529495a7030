// Package client provides the outbound HTTP client used to invoke functions.
//
// Built on go-resty/resty with:
//   - A pooled transport from hashicorp/go-retryablehttp
//   - Optional retries (off by default, a failed invocation is reported, not repeated)
//   - A token-bucket rate limiter (unlimited by default)
//   - A circuit breaker that opens after repeated transport failures
//   - Trace header propagation
//
// Example Usage:
//
//	c := client.NewClient(client.DefaultOptions())
//	resp, err := c.Execute(ctx, func(req *resty.Request) (*resty.Response, error) {
//		return req.SetBody(body).Post(url)
//	})
package client
