package deepl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lexigo/deepl-go/internal/backoff"
	log "github.com/lexigo/deepl-go/internal/logging"
)

// executor runs a LogicalRequest against a Transport, retrying failed
// attempts under the backoff policy. Each invocation owns a fresh backoff
// timer and prepared request; the transport's connection pool is the only
// shared state.
type executor struct {
	transport  Transport
	maxRetries int
	minTimeout time.Duration

	// sleep suspends between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func newExecutor(transport Transport, maxRetries int, minTimeout time.Duration) *executor {
	return &executor{
		transport:  transport,
		maxRetries: maxRetries,
		minTimeout: minTimeout,
		sleep:      waitWithContext,
	}
}

// do prepares the request once and loops: send, classify, maybe retry. HTTP
// error statuses are returned as responses for the interpretation layer;
// only connectivity failures are recovered here.
func (e *executor) do(ctx context.Context, req *LogicalRequest) (*NormalizedResponse, error) {
	traceID := uuid.NewString()
	log.Infof("request %s: %s %s", traceID, req.Method, req.URL)

	prepared, err := prepareRequest(req)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("error occurred while preparing request: %v", err)}
	}

	timer := backoff.NewTimer(e.minTimeout)
	for {
		resp, sendErr := e.transport.Send(ctx, prepared, timer.Timeout())

		var connErr *ConnectionError
		if sendErr != nil && !errors.As(sendErr, &connErr) {
			return nil, &APIError{Message: fmt.Sprintf("unexpected error while sending request: %v", sendErr)}
		}

		if !retryEligible(resp, connErr, timer.NumRetries(), e.maxRetries) {
			if resp != nil {
				log.Infof("request %s: response status %d", traceID, resp.StatusCode)
				log.Debugf("request %s: response body %s", traceID, resp.Text)
				return resp, nil
			}
			return nil, connErr
		}

		if connErr != nil {
			log.Infof("request %s: retryable connection failure: %v", traceID, connErr)
		}
		log.Infof("request %s: starting retry %d for %s %s after sleeping %.2fs",
			traceID, timer.NumRetries()+1, req.Method, req.URL,
			timer.TimeUntilDeadline().Seconds())

		wait := timer.Advance()
		if err := e.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// retryEligible reproduces the retry policy exactly: a capped number of
// retries; connection failures retried only when flagged transient by the
// transport; responses retried on 429 and all 5xx statuses, 503 included.
func retryEligible(resp *NormalizedResponse, connErr *ConnectionError, numRetries, maxRetries int) bool {
	if numRetries >= maxRetries {
		return false
	}
	if connErr != nil {
		return connErr.ShouldRetry
	}
	return resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode >= http.StatusInternalServerError
}

// waitWithContext sleeps for d or until ctx ends, whichever comes first.
func waitWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
