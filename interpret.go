package deepl

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// HTTP status code used by the API to indicate the character limit for this
// billing period has been reached.
const statusQuotaExceeded = 456

const errorSnippetLimit = 200

// statusContext carries the flags that change how a status code is
// interpreted for certain operations.
type statusContext struct {
	glossaryManagement  bool
	downloadingDocument bool
}

// checkStatus converts a terminal response into nil for success or the typed
// error documented for its status code. Error messages are augmented with the
// "message" and "detail" fields of the JSON body when present.
func checkStatus(resp *NormalizedResponse, sc statusContext) error {
	message := ""
	if m := gjson.Get(resp.Text, "message"); m.Exists() {
		message += ", message: " + m.String()
	}
	if d := gjson.Get(resp.Text, "detail"); d.Exists() {
		message += ", detail: " + d.String()
	}

	code := resp.StatusCode
	switch {
	case code >= 200 && code < 400:
		return nil

	case code == http.StatusForbidden:
		return &AuthorizationError{APIError{
			Message:    "Authorization failure, check auth key" + message,
			StatusCode: code,
		}}

	case code == statusQuotaExceeded:
		return &QuotaExceededError{APIError{
			Message:    "Quota for this billing period has been exceeded" + message,
			StatusCode: code,
		}}

	case code == http.StatusNotFound:
		if sc.glossaryManagement {
			return &GlossaryNotFoundError{APIError{
				Message:    "Glossary not found" + message,
				StatusCode: code,
			}}
		}
		return &APIError{
			Message:    "Not found, check server URL" + message,
			StatusCode: code,
		}

	case code == http.StatusBadRequest:
		return &APIError{
			Message:    "Bad request" + message,
			StatusCode: code,
		}

	case code == http.StatusTooManyRequests:
		return &TooManyRequestsError{APIError{
			Message:    "Too many requests, servers are currently experiencing high load" + message,
			StatusCode: code,
			Retryable:  true,
		}}

	case code == http.StatusServiceUnavailable:
		if sc.downloadingDocument {
			return &DocumentNotReadyError{APIError{
				Message:    "Document not ready" + message,
				StatusCode: code,
				Retryable:  true,
			}}
		}
		return &APIError{
			Message:    "Service unavailable" + message,
			StatusCode: code,
			Retryable:  true,
		}

	default:
		snippet := resp.Text
		if len(snippet) > errorSnippetLimit {
			snippet = snippet[:errorSnippetLimit]
		}
		statusName := http.StatusText(code)
		if statusName == "" {
			statusName = "Unknown"
		}
		return &APIError{
			Message:    fmt.Sprintf("Unexpected status code: %d %s, content: %s", code, statusName, snippet),
			StatusCode: code,
		}
	}
}
