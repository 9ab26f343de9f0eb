package deepl

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newScriptedClient(t *testing.T, tr *scriptedTransport) *Client {
	t.Helper()
	c, err := NewClient("test-key",
		WithServerURL("https://example.invalid"),
		WithTransport(tr),
		WithDocumentPollInterval(time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func statusResponse(body string) scriptedOutcome {
	return scriptedOutcome{resp: &NormalizedResponse{StatusCode: 200, Text: body}}
}

func TestWaitUntilDonePollsUntilDone(t *testing.T) {
	tr := &scriptedTransport{outcomes: []scriptedOutcome{
		statusResponse(`{"status":"queued"}`),
		statusResponse(`{"status":"translating","seconds_remaining":20}`),
		statusResponse(`{"status":"translating","seconds_remaining":10}`),
		statusResponse(`{"status":"done","billed_characters":42}`),
	}}
	c := newScriptedClient(t, tr)

	status, err := c.WaitUntilDone(context.Background(), DocumentHandle{DocumentID: "doc1", DocumentKey: "key1"})
	if err != nil {
		t.Fatalf("WaitUntilDone() error = %v", err)
	}
	if !status.Done() {
		t.Errorf("status = %q, want done", status.Status)
	}
	if status.BilledCharacters == nil || *status.BilledCharacters != 42 {
		t.Errorf("BilledCharacters = %v, want 42", status.BilledCharacters)
	}
	if tr.calls != 4 {
		t.Errorf("polled %d times, want 4", tr.calls)
	}
}

func TestWaitUntilDoneStopsOnError(t *testing.T) {
	tr := &scriptedTransport{outcomes: []scriptedOutcome{
		statusResponse(`{"status":"queued"}`),
		statusResponse(`{"status":"error","error_message":"source file is corrupt"}`),
		statusResponse(`{"status":"error"}`),
	}}
	c := newScriptedClient(t, tr)

	status, err := c.WaitUntilDone(context.Background(), DocumentHandle{DocumentID: "doc1", DocumentKey: "key1"})
	if err != nil {
		t.Fatalf("WaitUntilDone() error = %v", err)
	}
	if status.OK() {
		t.Errorf("status = %q, want error", status.Status)
	}
	if status.ErrorMessage != "source file is corrupt" {
		t.Errorf("ErrorMessage = %q", status.ErrorMessage)
	}
	if tr.calls != 2 {
		t.Errorf("polled %d times, want polling to stop at the error status", tr.calls)
	}
}

func TestTranslateDocumentFullFlow(t *testing.T) {
	tr := &scriptedTransport{outcomes: []scriptedOutcome{
		statusResponse(`{"document_id":"doc1","document_key":"key1"}`),
		statusResponse(`{"status":"queued"}`),
		statusResponse(`{"status":"translating"}`),
		statusResponse(`{"status":"done","billed_characters":7}`),
		statusResponse("Hallo Welt"),
	}}
	c := newScriptedClient(t, tr)

	var out bytes.Buffer
	err := c.TranslateDocument(context.Background(), &out,
		strings.NewReader("Hello world"), "greeting.txt", "EN", "DE", nil)
	if err != nil {
		t.Fatalf("TranslateDocument() error = %v", err)
	}
	if out.String() != "Hallo Welt" {
		t.Errorf("downloaded %q, want %q", out.String(), "Hallo Welt")
	}
	if tr.calls != 5 {
		t.Errorf("transport called %d times, want 5", tr.calls)
	}

	// The upload must be a multipart body containing the file content.
	upload := string(tr.bodies[0])
	if !strings.Contains(upload, "Hello world") || !strings.Contains(upload, `filename="greeting.txt"`) {
		t.Errorf("upload body missing file part:\n%s", upload)
	}
	if !strings.Contains(upload, `name="target_lang"`) {
		t.Errorf("upload body missing target_lang field:\n%s", upload)
	}
}

func TestTranslateDocumentReportsHandleOnFailure(t *testing.T) {
	tr := &scriptedTransport{outcomes: []scriptedOutcome{
		statusResponse(`{"document_id":"doc1","document_key":"key1"}`),
		statusResponse(`{"status":"error","error_message":"file too large"}`),
	}}
	c := newScriptedClient(t, tr)

	err := c.TranslateDocument(context.Background(), &bytes.Buffer{},
		strings.NewReader("x"), "a.txt", "", "DE", nil)
	var docErr *DocumentTranslationError
	if !errors.As(err, &docErr) {
		t.Fatalf("error = %v, want *DocumentTranslationError", err)
	}
	if docErr.Handle == nil || docErr.Handle.DocumentID != "doc1" {
		t.Errorf("Handle = %v, want doc1", docErr.Handle)
	}
	if !strings.Contains(docErr.Error(), "file too large") {
		t.Errorf("Error() = %q, want the server message", docErr.Error())
	}
	if !strings.Contains(docErr.Error(), "document handle") {
		t.Errorf("Error() = %q, want the handle included", docErr.Error())
	}
}

func TestTranslateDocumentUnknownErrorFallback(t *testing.T) {
	tr := &scriptedTransport{outcomes: []scriptedOutcome{
		statusResponse(`{"document_id":"doc1","document_key":"key1"}`),
		statusResponse(`{"status":"error"}`),
	}}
	c := newScriptedClient(t, tr)

	err := c.TranslateDocument(context.Background(), &bytes.Buffer{},
		strings.NewReader("x"), "a.txt", "", "DE", nil)
	var docErr *DocumentTranslationError
	if !errors.As(err, &docErr) {
		t.Fatalf("error = %v, want *DocumentTranslationError", err)
	}
	if docErr.Message != "unknown error" {
		t.Errorf("Message = %q, want %q", docErr.Message, "unknown error")
	}
}

func TestDownloadDocumentNotReady(t *testing.T) {
	tr := &scriptedTransport{outcomes: []scriptedOutcome{
		{resp: &NormalizedResponse{StatusCode: 503, Text: `{"message":"not done yet"}`}},
		{resp: &NormalizedResponse{StatusCode: 503, Text: `{"message":"not done yet"}`}},
		{resp: &NormalizedResponse{StatusCode: 503, Text: `{"message":"not done yet"}`}},
		{resp: &NormalizedResponse{StatusCode: 503, Text: `{"message":"not done yet"}`}},
		{resp: &NormalizedResponse{StatusCode: 503, Text: `{"message":"not done yet"}`}},
		{resp: &NormalizedResponse{StatusCode: 503, Text: `{"message":"not done yet"}`}},
	}}
	c, err := NewClient("test-key",
		WithServerURL("https://example.invalid"),
		WithTransport(tr),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	c.exec.sleep = func(context.Context, time.Duration) error { return nil }

	derr := c.DownloadDocument(context.Background(), &bytes.Buffer{},
		DocumentHandle{DocumentID: "doc1", DocumentKey: "key1"})
	var notReady *DocumentNotReadyError
	if !errors.As(derr, &notReady) {
		t.Fatalf("error = %v, want *DocumentNotReadyError", derr)
	}
}

func TestDocumentTranslationEndToEnd(t *testing.T) {
	statuses := []string{
		`{"status":"queued"}`,
		`{"status":"translating"}`,
		`{"status":"translating"}`,
		`{"status":"done","billed_characters":42}`,
	}
	var uploads, polls, retried int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v2/document":
			uploads++
			if uploads == 1 {
				// First upload attempt fails transiently.
				retried++
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"document_id":"doc1","document_key":"key1"}`))
		case r.URL.Path == "/v2/document/doc1":
			w.Write([]byte(statuses[polls]))
			polls++
		case r.URL.Path == "/v2/document/doc1/result":
			w.Write([]byte("translated bytes"))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c, err := NewClient("test-key",
		WithServerURL(server.URL),
		WithDocumentPollInterval(time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	c.exec.sleep = func(context.Context, time.Duration) error { return nil }

	handle, err := c.UploadDocument(context.Background(),
		strings.NewReader("content"), "file.txt", "EN", "DE", nil)
	if err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if retried != 1 || uploads != 2 {
		t.Errorf("uploads = %d (retried %d), want exactly one retry", uploads, retried)
	}

	status, err := c.WaitUntilDone(context.Background(), handle)
	if err != nil {
		t.Fatalf("WaitUntilDone() error = %v", err)
	}
	if polls != 4 {
		t.Errorf("polled %d times, want 4", polls)
	}
	if !status.Done() || status.BilledCharacters == nil || *status.BilledCharacters != 42 {
		t.Errorf("status = %+v, want done with 42 billed characters", status)
	}

	var out bytes.Buffer
	if err := c.DownloadDocument(context.Background(), &out, handle); err != nil {
		t.Fatalf("DownloadDocument() error = %v", err)
	}
	if out.String() != "translated bytes" {
		t.Errorf("downloaded %q", out.String())
	}
}

func TestParseDocumentStatus(t *testing.T) {
	status, err := parseDocumentStatus(`{"status":"translating","seconds_remaining":30}`)
	if err != nil {
		t.Fatalf("parseDocumentStatus() error = %v", err)
	}
	if status.Status != DocumentStatusTranslating {
		t.Errorf("Status = %q", status.Status)
	}
	if status.SecondsRemaining == nil || *status.SecondsRemaining != 30 {
		t.Errorf("SecondsRemaining = %v, want 30", status.SecondsRemaining)
	}
	if status.BilledCharacters != nil {
		t.Errorf("BilledCharacters = %v, want nil", status.BilledCharacters)
	}

	if _, err := parseDocumentStatus(`{}`); err == nil {
		t.Error("parseDocumentStatus() accepted a body without status")
	}
}
