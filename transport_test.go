package deepl

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

func sendOnce(t *testing.T, serverURL string, req *LogicalRequest) (*NormalizedResponse, error) {
	t.Helper()
	tr, err := NewHTTPTransport("")
	if err != nil {
		t.Fatalf("NewHTTPTransport() error = %v", err)
	}
	req.URL = serverURL + req.URL
	prepared, err := prepareRequest(req)
	if err != nil {
		t.Fatalf("prepareRequest() error = %v", err)
	}
	return tr.Send(context.Background(), prepared, 10*time.Second)
}

func TestTransportDecodesGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "gzip, br" {
			t.Errorf("Accept-Encoding = %q", r.Header.Get("Accept-Encoding"))
		}
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write([]byte(`{"ok":true}`))
		gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	resp, err := sendOnce(t, server.URL, &LogicalRequest{Method: http.MethodGet, URL: "/"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if resp.Text != `{"ok":true}` {
		t.Errorf("Text = %q", resp.Text)
	}
}

func TestTransportStreamsSuccessfulResponses(t *testing.T) {
	payload := bytes.Repeat([]byte("translated document content\n"), 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	var out bytes.Buffer
	resp, err := sendOnce(t, server.URL, &LogicalRequest{
		Method: http.MethodPost,
		JSON:   []byte(`{"document_key":"k"}`),
		Stream: true,
		OnChunk: func(chunk []byte) error {
			_, err := out.Write(chunk)
			return err
		},
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if resp.Text != "" {
		t.Errorf("streamed response should not be buffered, got %d bytes", len(resp.Text))
	}
	if !bytes.Equal(out.Bytes(), payload) {
		t.Errorf("streamed %d bytes, want %d", out.Len(), len(payload))
	}
}

func TestTransportBuffersErrorBodyOnStreamRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"not ready"}`))
	}))
	defer server.Close()

	called := false
	resp, err := sendOnce(t, server.URL, &LogicalRequest{
		Method:  http.MethodPost,
		JSON:    []byte(`{}`),
		Stream:  true,
		OnChunk: func([]byte) error { called = true; return nil },
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if called {
		t.Error("OnChunk was invoked for an error response")
	}
	if resp.StatusCode != 503 || resp.Text != `{"message":"not ready"}` {
		t.Errorf("resp = %d %q", resp.StatusCode, resp.Text)
	}
}

func TestTransportConnectionRefused(t *testing.T) {
	// Reserve a port and close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, serr := sendOnce(t, "http://"+addr, &LogicalRequest{Method: http.MethodGet, URL: "/"})
	connErr, ok := serr.(*ConnectionError)
	if !ok {
		t.Fatalf("Send() error = %T, want *ConnectionError", serr)
	}
	if !connErr.ShouldRetry {
		t.Error("refused connection should be retryable")
	}
}

func TestTransportTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	tr, err := NewHTTPTransport("")
	if err != nil {
		t.Fatal(err)
	}
	prepared, err := prepareRequest(&LogicalRequest{Method: http.MethodGet, URL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	_, serr := tr.Send(context.Background(), prepared, 50*time.Millisecond)
	connErr, ok := serr.(*ConnectionError)
	if !ok {
		t.Fatalf("Send() error = %T, want *ConnectionError", serr)
	}
	if !connErr.ShouldRetry {
		t.Error("per-attempt timeout should be retryable")
	}
}

func TestTransportCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	tr, err := NewHTTPTransport("")
	if err != nil {
		t.Fatal(err)
	}
	prepared, err := prepareRequest(&LogicalRequest{Method: http.MethodGet, URL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, serr := tr.Send(ctx, prepared, 10*time.Second)
	connErr, ok := serr.(*ConnectionError)
	if !ok {
		t.Fatalf("Send() error = %T, want *ConnectionError", serr)
	}
	if connErr.ShouldRetry {
		t.Error("caller cancellation must not be retryable")
	}
}

func TestPrepareRequestQueryEncoding(t *testing.T) {
	prepared, err := prepareRequest(&LogicalRequest{
		Method: http.MethodGet,
		URL:    "https://example.invalid/v2/languages",
		Form:   map[string][]string{"type": {"target"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if prepared.url != "https://example.invalid/v2/languages?type=target" {
		t.Errorf("url = %q", prepared.url)
	}
	if prepared.Body() != nil {
		t.Errorf("GET request should not carry a body, got %q", prepared.Body())
	}
}

func TestPrepareRequestFormEncoding(t *testing.T) {
	prepared, err := prepareRequest(&LogicalRequest{
		Method: http.MethodPost,
		URL:    "https://example.invalid/v2/document",
		Form:   map[string][]string{"target_lang": {"DE"}, "formality": {"more"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if prepared.contentType != "application/x-www-form-urlencoded" {
		t.Errorf("contentType = %q", prepared.contentType)
	}
	if string(prepared.Body()) != "formality=more&target_lang=DE" {
		t.Errorf("body = %q", prepared.Body())
	}
}

func TestClassifyNetError(t *testing.T) {
	if err := classifyNetError(context.Background(), io.ErrUnexpectedEOF); !err.ShouldRetry {
		t.Error("unexpected EOF should be retryable")
	}
	if err := classifyNetError(context.Background(), context.DeadlineExceeded); !err.ShouldRetry {
		t.Error("deadline exceeded should be retryable")
	}
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := classifyNetError(canceled, context.Canceled); err.ShouldRetry {
		t.Error("canceled context must not be retryable")
	}
}
