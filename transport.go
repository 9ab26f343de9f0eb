package deepl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	xproxy "golang.org/x/net/proxy"
)

// Transport performs exactly one network round trip for a prepared request
// and normalizes the result. Connectivity failures are surfaced as
// *ConnectionError with ShouldRetry set according to the failure class.
//
// Implementations must never consume the prepared request: the same prepared
// request is re-sent on every retry attempt.
type Transport interface {
	Send(ctx context.Context, prepared *PreparedRequest, timeout time.Duration) (*NormalizedResponse, error)
}

// HTTPTransport is the production Transport backed by a pooled net/http
// client. It is safe for concurrent use; the connection pool is the only
// state shared between calls.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport returns a transport with its own pooled client.
// proxyURL may be empty, an http(s) proxy URL, or a socks5 URL.
func NewHTTPTransport(proxyURL string) (*HTTPTransport, error) {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("unexpected default transport type %T", http.DefaultTransport)
	}
	tr := base.Clone()
	// Compression is negotiated and decoded here so streamed downloads see
	// decoded bytes as well.
	tr.DisableCompression = true

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "socks5", "socks5h":
			dialer, err := xproxy.FromURL(u, xproxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("socks proxy: %w", err)
			}
			cd, ok := dialer.(xproxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("socks proxy dialer does not support contexts")
			}
			tr.Proxy = nil
			tr.DialContext = cd.DialContext
		default:
			tr.Proxy = http.ProxyURL(u)
		}
	}

	return &HTTPTransport{client: &http.Client{Transport: tr}}, nil
}

// NewHTTPTransportWithClient wraps a caller-provided http.Client. The client
// should not decompress or follow redirects differently from the default.
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// Send performs one attempt. The timeout bounds the whole round trip,
// including reading a buffered response body.
func (t *HTTPTransport) Send(ctx context.Context, prepared *PreparedRequest, timeout time.Duration) (*NormalizedResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lr := prepared.req
	httpReq, err := http.NewRequestWithContext(attemptCtx, lr.Method, prepared.url, bytes.NewReader(prepared.body))
	if err != nil {
		return nil, &ConnectionError{
			Message: fmt.Sprintf("building request: %v", err),
			Err:     err,
		}
	}
	for k, vs := range lr.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if prepared.contentType != "" {
		httpReq.Header.Set("Content-Type", prepared.contentType)
	}
	httpReq.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, classifyNetError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := decodeContent(resp)
	if err != nil {
		return nil, &ConnectionError{
			Message: fmt.Sprintf("decoding response: %v", err),
			Err:     err,
		}
	}

	if lr.Stream && resp.StatusCode >= 200 && resp.StatusCode < 400 {
		if err := streamChunks(body, lr.OnChunk); err != nil {
			return nil, err
		}
		return &NormalizedResponse{StatusCode: resp.StatusCode, Header: resp.Header}, nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, classifyNetError(ctx, err)
	}
	return &NormalizedResponse{
		StatusCode: resp.StatusCode,
		Text:       string(data),
		Header:     resp.Header,
	}, nil
}

func streamChunks(body io.Reader, onChunk func([]byte) error) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := body.Read(buf)
		if n > 0 && onChunk != nil {
			if cbErr := onChunk(buf[:n]); cbErr != nil {
				// A sink failure is a caller-side problem, not a server one.
				return &ConnectionError{
					Message: fmt.Sprintf("writing response chunk: %v", cbErr),
					Err:     cbErr,
				}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &ConnectionError{
				Message:     fmt.Sprintf("reading response stream: %v", err),
				ShouldRetry: true,
				Err:         err,
			}
		}
	}
}

func decodeContent(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

// classifyNetError maps native networking failures onto ConnectionError.
// Timeouts, refused connections and DNS failures are transient and
// retryable; cancellation by the caller and malformed requests are not.
func classifyNetError(ctx context.Context, err error) *ConnectionError {
	if ctx.Err() != nil {
		// The caller's context ended; retrying cannot help.
		return &ConnectionError{
			Message: fmt.Sprintf("request canceled: %v", err),
			Err:     err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ConnectionError{
			Message:     fmt.Sprintf("request timed out: %v", err),
			ShouldRetry: true,
			Err:         err,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		// The per-attempt timeout elapsed.
		return &ConnectionError{
			Message:     fmt.Sprintf("request timed out: %v", err),
			ShouldRetry: true,
			Err:         err,
		}
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ConnectionError{
			Message:     fmt.Sprintf("connection failed: %v", err),
			ShouldRetry: true,
			Err:         err,
		}
	}

	return &ConnectionError{
		Message: fmt.Sprintf("request failed: %v", err),
		Err:     err,
	}
}
