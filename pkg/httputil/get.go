package httputil

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/safetymap/pkg/buildinfo"
	"github.com/matzehuels/safetymap/pkg/errors"
)

// MaxBodyBytes bounds the size of a fetched document.
const MaxBodyBytes = 16 << 20

// NewClient returns the HTTP client used when [Get] is passed nil.
func NewClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// Get fetches url and returns the response body. headers are added to the
// request. A nil client uses [NewClient].
func Get(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	if client == nil {
		client = NewClient()
	}

	var body []byte
	err := Retry(ctx, DefaultAttempts, DefaultDelay, func() error {
		var err error
		body, err = get(ctx, client, url, headers)
		return err
	})
	if err != nil {
		var re *RetryableError
		if stderrors.As(err, &re) {
			return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, re.Err, "fetch %s", url)
		}
		return nil, err
	}
	return body, nil
}

func get(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "invalid url %q", url)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(url, resp.StatusCode); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if len(data) > MaxBodyBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is larger than %d bytes", url, MaxBodyBytes)
	}
	return data, nil
}

func checkStatus(url string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s not found", url)
	case code == http.StatusTooManyRequests || code >= 500:
		return &RetryableError{Err: fmt.Errorf("%s: status %d", url, code)}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "%s: unexpected status %d", url, code)
	}
}
