package deepl

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/lexigo/deepl-go/internal/json"
	"github.com/tidwall/gjson"
)

// WritingStyle selects a style for rephrased text. At most one of style and
// tone may be set per request.
type WritingStyle string

const (
	WritingStyleAcademic       WritingStyle = "academic"
	WritingStyleBusiness       WritingStyle = "business"
	WritingStyleCasual         WritingStyle = "casual"
	WritingStyleDefault        WritingStyle = "default"
	WritingStyleSimple         WritingStyle = "simple"
	WritingStylePreferAcademic WritingStyle = "prefer_academic"
	WritingStylePreferBusiness WritingStyle = "prefer_business"
	WritingStylePreferCasual   WritingStyle = "prefer_casual"
	WritingStylePreferSimple   WritingStyle = "prefer_simple"
)

// WritingTone selects a tone for rephrased text.
type WritingTone string

const (
	WritingToneConfident          WritingTone = "confident"
	WritingToneDefault            WritingTone = "default"
	WritingToneDiplomatic         WritingTone = "diplomatic"
	WritingToneEnthusiastic       WritingTone = "enthusiastic"
	WritingToneFriendly           WritingTone = "friendly"
	WritingTonePreferConfident    WritingTone = "prefer_confident"
	WritingTonePreferDiplomatic   WritingTone = "prefer_diplomatic"
	WritingTonePreferEnthusiastic WritingTone = "prefer_enthusiastic"
	WritingTonePreferFriendly     WritingTone = "prefer_friendly"
)

// RephraseTextOptions holds the optional parameters of a rephrase request.
type RephraseTextOptions struct {
	Style WritingStyle
	Tone  WritingTone
}

type rephraseRequest struct {
	Text         []string `json:"text"`
	TargetLang   string   `json:"target_lang,omitempty"`
	WritingStyle string   `json:"writing_style,omitempty"`
	Tone         string   `json:"tone,omitempty"`
}

// RephraseText rewrites the given texts to improve phrasing while keeping
// their language. targetLang may be empty to keep the detected language, or
// name a variant of it such as "EN-GB".
func (c *Client) RephraseText(ctx context.Context, texts []string, targetLang string, opts *RephraseTextOptions) ([]WriteResult, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts must not be empty")
	}
	if opts == nil {
		opts = &RephraseTextOptions{}
	}
	if opts.Style != "" && opts.Style != WritingStyleDefault &&
		opts.Tone != "" && opts.Tone != WritingToneDefault {
		return nil, fmt.Errorf("style and tone are mutually exclusive")
	}

	body := rephraseRequest{
		Text:         texts,
		TargetLang:   strings.ToUpper(strings.TrimSpace(targetLang)),
		WritingStyle: string(opts.Style),
		Tone:         string(opts.Tone),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal rephrase request: %w", err)
	}

	resp, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodPost,
		URL:    "/v2/write/rephrase",
		JSON:   payload,
	}, statusContext{})
	if err != nil {
		return nil, err
	}
	return parseWriteResults(resp.Text, len(texts))
}

func parseWriteResults(body string, want int) ([]WriteResult, error) {
	improvements := gjson.Get(body, "improvements")
	if !improvements.IsArray() {
		return nil, fmt.Errorf("rephrase response is missing improvements")
	}
	entries := improvements.Array()
	if len(entries) != want {
		return nil, fmt.Errorf("rephrase response has %d entries, expected %d", len(entries), want)
	}
	results := make([]WriteResult, 0, want)
	for _, entry := range entries {
		results = append(results, WriteResult{
			Text:               entry.Get("text").String(),
			DetectedSourceLang: strings.ToUpper(entry.Get("detected_source_language").String()),
			TargetLang:         strings.ToUpper(entry.Get("target_language").String()),
		})
	}
	return results, nil
}
