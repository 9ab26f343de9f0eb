package deepl

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
)

// LogicalRequest describes one HTTP call independently of any particular
// HTTP client. It is immutable once prepared: the same request is resent
// verbatim on every retry attempt, so no send may consume or mutate it.
type LogicalRequest struct {
	Method string
	URL    string
	Header http.Header

	// JSON holds an already-encoded JSON body. Mutually exclusive with
	// Form/Files.
	JSON []byte

	// Form holds form fields, sent urlencoded, or as multipart fields when
	// Files is also set.
	Form url.Values

	// Files holds file parts for multipart uploads.
	Files []FormFile

	// Stream requests that a successful response body is delivered through
	// OnChunk instead of being buffered into NormalizedResponse.Text.
	Stream  bool
	OnChunk func(chunk []byte) error
}

// FormFile is one file part of a multipart upload. Content is fully
// materialized so the part can be re-sent on retries.
type FormFile struct {
	Field   string
	Name    string
	Content []byte
}

// PreparedRequest is the transport-ready encoding of a LogicalRequest, with
// any multipart boundary materialized exactly once. Owned by a single request
// execution; never shared across concurrent calls.
type PreparedRequest struct {
	req         *LogicalRequest
	url         string
	body        []byte
	contentType string
}

// NormalizedResponse is the transport-independent view of one HTTP response.
type NormalizedResponse struct {
	StatusCode int
	Text       string
	Header     http.Header
}

// prepareRequest encodes the body of a LogicalRequest. Preparation failures
// are not retryable.
func prepareRequest(req *LogicalRequest) (*PreparedRequest, error) {
	p := &PreparedRequest{req: req, url: req.URL}

	switch {
	case req.JSON != nil && (req.Form != nil || len(req.Files) > 0):
		return nil, fmt.Errorf("cannot accept both JSON and form data")

	case req.JSON != nil:
		p.body = req.JSON
		p.contentType = "application/json"

	case len(req.Files) > 0:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for field, values := range req.Form {
			for _, v := range values {
				if err := w.WriteField(field, v); err != nil {
					return nil, err
				}
			}
		}
		for _, f := range req.Files {
			part, err := w.CreateFormFile(f.Field, f.Name)
			if err != nil {
				return nil, err
			}
			if _, err := part.Write(f.Content); err != nil {
				return nil, err
			}
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		p.body = buf.Bytes()
		p.contentType = w.FormDataContentType()

	case len(req.Form) > 0:
		// Bodyless methods carry form parameters in the query string.
		if req.Method == http.MethodGet || req.Method == http.MethodDelete {
			p.url += "?" + req.Form.Encode()
		} else {
			p.body = []byte(req.Form.Encode())
			p.contentType = "application/x-www-form-urlencoded"
		}
	}

	return p, nil
}

// Body returns the encoded request body. Exposed for tests asserting that
// resends are byte-identical across attempts.
func (p *PreparedRequest) Body() []byte {
	return p.body
}
