// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"net/http"
	"time"
)

// Probe reports whether a condition holds. An error aborts polling.
type Probe func(ctx context.Context) (bool, error)

// PollUntil checks probe immediately and then after each of up to attempts
// waits of interval, so it waits at most attempts*interval. It returns true
// as soon as probe does, and false once the attempts are spent.
func PollUntil(ctx context.Context, attempts int, interval time.Duration, probe Probe) (bool, error) {
	if attempts < 0 {
		attempts = 0
	}
	for i := 0; ; i++ {
		ok, err := probe(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if i >= attempts {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// EndpointProbe reports whether GET url answers 200. Connection errors mean
// "not yet" rather than failure, so a starting browser can be awaited.
func EndpointProbe(client *http.Client, url string) Probe {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return false, nil
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK, nil
	}
}
