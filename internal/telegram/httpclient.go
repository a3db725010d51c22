package telegram

import (
	"net"
	"net/http"
	"time"

	"shopbot/internal/telegram/netutil"
)

const (
	dialTimeout       = 5 * time.Second
	tlsHandshakeLimit = 5 * time.Second
	idleConnTimeout   = 30 * time.Second
	headerTimeout     = 5 * time.Second
	requestDeadline   = 30 * time.Second
	keepAlivePeriod   = 30 * time.Second
	apiRetryCount     = 3
	apiRetryStep      = 2 * time.Second
)

// BuildHTTPClient returns the client used for Bot API calls: connection
// pooling plus transparent retries on transient network errors.
func BuildHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlivePeriod}
	pooled := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshakeLimit,
		ResponseHeaderTimeout: headerTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   requestDeadline,
		Transport: &retryTransport{next: pooled, retries: apiRetryCount, step: apiRetryStep},
	}
}

// retryTransport re-sends requests that failed with a retryable network
// error, with linear backoff. Requests with a non-replayable body are
// never retried.
type retryTransport struct {
	next    http.RoundTripper
	retries int
	step    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	var lastErr error
	for attempt := 0; attempt <= t.retries; attempt++ {
		send := req
		if attempt > 0 {
			var err error
			if send, err = replay(req); err != nil {
				return nil, err
			}
			if send == nil {
				return nil, lastErr
			}
		}

		resp, err := next.RoundTrip(send)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == t.retries {
			break
		}
		if err := t.wait(req, attempt+1); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// replay clones the request with a fresh body, or returns nil when the body
// cannot be re-read.
func replay(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
		return clone, nil
	}
	if req.Body != nil {
		return nil, nil
	}
	return clone, nil
}

func (t *retryTransport) wait(req *http.Request, attempt int) error {
	delay := t.step * time.Duration(attempt)
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}
