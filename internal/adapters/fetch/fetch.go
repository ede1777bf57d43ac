// Package fetch implements the collaborator clients the recommendation
// façade fans out to: profile source, cinema catalog, movie metadata, and
// calendar busy events.
//
// All clients share the same shape: a resty client with a bounded
// timeout, a short exponential-backoff retry on transport errors and 5xx
// responses, and context propagation so the façade's per-fetch deadlines
// hold.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

// Shared client tuning.
const (
	defaultTimeout  = 10 * time.Second
	maxRetries      = 2
	initialInterval = 200 * time.Millisecond
	userAgent       = "matinee/1.0"
)

// newClient builds a resty client with the shared defaults.
func newClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
}

// doWithRetry runs req, retrying transport errors and 5xx responses with
// exponential backoff. 4xx responses are not retried; the upstream will
// not change its mind.
func doWithRetry(ctx context.Context, run func() (*resty.Response, error)) (*resty.Response, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initialInterval

	var resp *resty.Response
	op := func() error {
		var err error
		resp, err = run()
		if err != nil {
			return err
		}
		if resp.StatusCode() >= 500 {
			return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
		}
		if resp.StatusCode() >= 400 {
			return backoff.Permanent(fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode()))
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(exp, maxRetries), ctx)); err != nil {
		// resp is returned alongside the error so callers can special-case
		// statuses like 404.
		return resp, err
	}
	return resp, nil
}
