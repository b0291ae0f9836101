// Package resilience provides retry and rate limiting for outbound calls.
//
// This package includes:
//   - Retry: retries failed operations with exponential backoff and jitter
//   - RateLimiter: controls request rate with a token bucket
//
// The correction backends combine both around each completion call:
//
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 2, Burst: 4})
//	resp, err := resilience.Retry(ctx, retryCfg, func() (*Response, error) {
//	    if err := rl.Wait(ctx); err != nil {
//	        return nil, err
//	    }
//	    return callService(ctx, req)
//	})
package resilience
