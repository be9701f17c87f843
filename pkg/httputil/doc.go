// Package httputil provides transport helpers shared by the appliance client.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only for errors
// explicitly marked transient with [RetryableError] (connection failures,
// 5xx responses). Everything else, including appliance-reported command
// failures, is returned on the first attempt:
//
//	err := httputil.Retry(ctx, httputil.Backoff{Attempts: 3, Delay: 500 * time.Millisecond}, func() error {
//	    return fetchListing(ctx)
//	})
//
// Mutating requests should not be wrapped in Retry: the appliance offers no
// idempotency keys, and a retried create after a lost response can place a
// second router.
package httputil
