package deepl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/lexigo/deepl-go/internal/json"
	"github.com/lexigo/deepl-go/internal/logging"
	"github.com/tidwall/gjson"
)

// DocumentTranslateOptions holds the optional parameters of a document
// upload.
type DocumentTranslateOptions struct {
	Formality    Formality
	GlossaryID   string
	OutputFormat string
}

// UploadDocument uploads a document for translation and returns the handle
// that identifies the job. filename determines how the server detects the
// document format, so it must carry the right extension.
func (c *Client) UploadDocument(ctx context.Context, content io.Reader, filename, sourceLang, targetLang string, opts *DocumentTranslateOptions) (DocumentHandle, error) {
	if opts == nil {
		opts = &DocumentTranslateOptions{}
	}
	sourceLang, targetLang, err := checkLanguages(sourceLang, targetLang, opts.GlossaryID)
	if err != nil {
		return DocumentHandle{}, err
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return DocumentHandle{}, fmt.Errorf("read document content: %w", err)
	}

	form := url.Values{}
	form.Set("target_lang", targetLang)
	if sourceLang != "" {
		form.Set("source_lang", sourceLang)
	}
	if opts.Formality != "" {
		form.Set("formality", string(opts.Formality))
	}
	if opts.GlossaryID != "" {
		form.Set("glossary_id", opts.GlossaryID)
	}
	if opts.OutputFormat != "" {
		form.Set("output_format", opts.OutputFormat)
	}

	resp, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodPost,
		URL:    "/v2/document",
		Form:   form,
		Files:  []FormFile{{Field: "file", Name: filename, Content: data}},
	}, statusContext{})
	if err != nil {
		return DocumentHandle{}, err
	}

	handle := DocumentHandle{
		DocumentID:  gjson.Get(resp.Text, "document_id").String(),
		DocumentKey: gjson.Get(resp.Text, "document_key").String(),
	}
	if handle.DocumentID == "" || handle.DocumentKey == "" {
		return DocumentHandle{}, fmt.Errorf("document upload response is missing document_id or document_key")
	}
	return handle, nil
}

type documentKeyRequest struct {
	DocumentKey string `json:"document_key"`
}

// DocumentStatus queries the current translation state of an uploaded
// document.
func (c *Client) DocumentStatus(ctx context.Context, handle DocumentHandle) (DocumentStatus, error) {
	payload, err := json.Marshal(documentKeyRequest{DocumentKey: handle.DocumentKey})
	if err != nil {
		return DocumentStatus{}, fmt.Errorf("marshal status request: %w", err)
	}
	resp, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodPost,
		URL:    "/v2/document/" + url.PathEscape(handle.DocumentID),
		JSON:   payload,
	}, statusContext{})
	if err != nil {
		return DocumentStatus{}, err
	}
	return parseDocumentStatus(resp.Text)
}

func parseDocumentStatus(body string) (DocumentStatus, error) {
	state := gjson.Get(body, "status").String()
	if state == "" {
		return DocumentStatus{}, fmt.Errorf("document status response is missing status")
	}
	status := DocumentStatus{
		Status:       DocumentState(state),
		ErrorMessage: gjson.Get(body, "error_message").String(),
	}
	if v := gjson.Get(body, "seconds_remaining"); v.Exists() {
		n := v.Int()
		status.SecondsRemaining = &n
	}
	if v := gjson.Get(body, "billed_characters"); v.Exists() {
		n := v.Int()
		status.BilledCharacters = &n
	}
	return status, nil
}

// WaitUntilDone polls the document status until translation completes or
// fails. Polling uses a fixed interval because the server's remaining-time
// estimate is not reliable enough to schedule against.
func (c *Client) WaitUntilDone(ctx context.Context, handle DocumentHandle) (DocumentStatus, error) {
	for {
		status, err := c.DocumentStatus(ctx, handle)
		if err != nil {
			return DocumentStatus{}, err
		}
		if status.Done() || !status.OK() {
			return status, nil
		}
		logging.Debugf("document %s status %s, polling again in %s",
			handle.DocumentID, status.Status, c.pollInterval)
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return DocumentStatus{}, err
		}
	}
}

// DownloadDocument streams the translated document into w. It must only be
// called once the translation is done; a DocumentNotReadyError is returned
// otherwise and the download may be retried later.
func (c *Client) DownloadDocument(ctx context.Context, w io.Writer, handle DocumentHandle) error {
	payload, err := json.Marshal(documentKeyRequest{DocumentKey: handle.DocumentKey})
	if err != nil {
		return fmt.Errorf("marshal download request: %w", err)
	}
	_, err = c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodPost,
		URL:    "/v2/document/" + url.PathEscape(handle.DocumentID) + "/result",
		JSON:   payload,
		Stream: true,
		OnChunk: func(chunk []byte) error {
			_, werr := w.Write(chunk)
			return werr
		},
	}, statusContext{downloadingDocument: true})
	return err
}

// TranslateDocument uploads a document, waits for the translation to finish
// and streams the result into w. All failures are reported as a
// DocumentTranslationError carrying the handle when one was issued, so the
// caller can still download or inspect the document later.
func (c *Client) TranslateDocument(ctx context.Context, w io.Writer, content io.Reader, filename, sourceLang, targetLang string, opts *DocumentTranslateOptions) error {
	handle, err := c.UploadDocument(ctx, content, filename, sourceLang, targetLang, opts)
	if err != nil {
		return &DocumentTranslationError{Message: err.Error(), Err: err}
	}
	return c.translateUploadedDocument(ctx, w, handle)
}

func (c *Client) translateUploadedDocument(ctx context.Context, w io.Writer, handle DocumentHandle) error {
	status, err := c.WaitUntilDone(ctx, handle)
	if err != nil {
		return &DocumentTranslationError{Message: err.Error(), Handle: &handle, Err: err}
	}
	if !status.OK() {
		message := status.ErrorMessage
		if message == "" {
			message = "unknown error"
		}
		return &DocumentTranslationError{Message: message, Handle: &handle}
	}
	if err := c.DownloadDocument(ctx, w, handle); err != nil {
		return &DocumentTranslationError{Message: err.Error(), Handle: &handle, Err: err}
	}
	return nil
}

// TranslateDocumentFromFilepath translates the document at inputPath and
// writes the result to outputPath. The partially written output file is
// removed when the translation fails.
func (c *Client) TranslateDocumentFromFilepath(ctx context.Context, inputPath, outputPath, sourceLang, targetLang string, opts *DocumentTranslateOptions) error {
	if opts != nil && opts.OutputFormat != "" {
		inExt := strings.TrimPrefix(filepath.Ext(inputPath), ".")
		outExt := strings.TrimPrefix(filepath.Ext(outputPath), ".")
		if !strings.EqualFold(opts.OutputFormat, outExt) && !strings.EqualFold(inExt, outExt) {
			return fmt.Errorf("outputPath extension %q does not match output format %q", outExt, opts.OutputFormat)
		}
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return &DocumentTranslationError{Message: err.Error(), Err: err}
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return &DocumentTranslationError{Message: err.Error(), Err: err}
	}

	terr := c.TranslateDocument(ctx, out, in, filepath.Base(inputPath), sourceLang, targetLang, opts)
	cerr := out.Close()
	if terr == nil && cerr != nil {
		terr = &DocumentTranslationError{Message: cerr.Error(), Err: cerr}
	}
	if terr != nil {
		os.Remove(outputPath)
		return terr
	}
	return nil
}
