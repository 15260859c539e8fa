// Package httputil fetches remote documents with retries.
//
// [Get] issues a GET request and classifies the response: 404 becomes an
// ErrCodeNotFound error, network failures and 5xx/429 responses are retried
// with exponential backoff through [Retry], and other statuses fail
// immediately.
//
//	data, err := httputil.Get(ctx, nil, "https://example.org/safety.json", nil)
//
// [Retry] can wrap any operation; only errors wrapped in [RetryableError]
// are retried.
package httputil
