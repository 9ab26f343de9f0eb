package deepl

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/lexigo/deepl-go/internal/json"
	"github.com/tidwall/gjson"
)

// TranslateTextOptions holds the optional parameters of a text translation
// request. The zero value leaves every option at its server-side default.
type TranslateTextOptions struct {
	SplitSentences     SplitSentences
	PreserveFormatting bool
	Formality          Formality
	GlossaryID         string
	Context            string
	ModelType          string
	TagHandling        string
	OutlineDetection   *bool
	NonSplittingTags   []string
	SplittingTags      []string
	IgnoreTags         []string
}

type textRequest struct {
	Text                 []string `json:"text"`
	TargetLang           string   `json:"target_lang"`
	SourceLang           string   `json:"source_lang,omitempty"`
	ShowBilledCharacters bool     `json:"show_billed_characters"`
	SplitSentences       string   `json:"split_sentences,omitempty"`
	PreserveFormatting   bool     `json:"preserve_formatting,omitempty"`
	Formality            string   `json:"formality,omitempty"`
	GlossaryID           string   `json:"glossary_id,omitempty"`
	Context              string   `json:"context,omitempty"`
	ModelType            string   `json:"model_type,omitempty"`
	TagHandling          string   `json:"tag_handling,omitempty"`
	OutlineDetection     *bool    `json:"outline_detection,omitempty"`
	NonSplittingTags     []string `json:"non_splitting_tags,omitempty"`
	SplittingTags        []string `json:"splitting_tags,omitempty"`
	IgnoreTags           []string `json:"ignore_tags,omitempty"`
}

// TranslateText translates one or more texts into the target language. The
// results are returned in input order. sourceLang may be empty to let the
// server detect the source language.
func (c *Client) TranslateText(ctx context.Context, texts []string, sourceLang, targetLang string, opts *TranslateTextOptions) ([]TextResult, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts must not be empty")
	}
	for _, t := range texts {
		if t == "" {
			return nil, fmt.Errorf("texts must not contain empty strings")
		}
	}
	if opts == nil {
		opts = &TranslateTextOptions{}
	}
	sourceLang, targetLang, err := checkLanguages(sourceLang, targetLang, opts.GlossaryID)
	if err != nil {
		return nil, err
	}

	body := textRequest{
		Text:                 texts,
		TargetLang:           targetLang,
		SourceLang:           sourceLang,
		ShowBilledCharacters: true,
		SplitSentences:       string(opts.SplitSentences),
		PreserveFormatting:   opts.PreserveFormatting,
		Formality:            string(opts.Formality),
		GlossaryID:           opts.GlossaryID,
		Context:              opts.Context,
		ModelType:            opts.ModelType,
		TagHandling:          opts.TagHandling,
		OutlineDetection:     opts.OutlineDetection,
		NonSplittingTags:     opts.NonSplittingTags,
		SplittingTags:        opts.SplittingTags,
		IgnoreTags:           opts.IgnoreTags,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal translate request: %w", err)
	}

	resp, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodPost,
		URL:    "/v2/translate",
		JSON:   payload,
	}, statusContext{})
	if err != nil {
		return nil, err
	}
	return parseTextResults(resp.Text, len(texts))
}

// TranslateTextSingle translates one text and returns its single result.
func (c *Client) TranslateTextSingle(ctx context.Context, text, sourceLang, targetLang string, opts *TranslateTextOptions) (TextResult, error) {
	results, err := c.TranslateText(ctx, []string{text}, sourceLang, targetLang, opts)
	if err != nil {
		return TextResult{}, err
	}
	return results[0], nil
}

// TranslateTextWithGlossary translates texts using the given glossary. The
// languages are taken from the glossary, as the server requires them to
// match. Glossary language codes have no regional variant, so EN and PT are
// widened to a default variant accepted as a translation target.
func (c *Client) TranslateTextWithGlossary(ctx context.Context, texts []string, glossary GlossaryInfo, opts *TranslateTextOptions) ([]TextResult, error) {
	var o TranslateTextOptions
	if opts != nil {
		o = *opts
	}
	o.GlossaryID = glossary.GlossaryID
	targetLang := glossary.TargetLang
	switch targetLang {
	case "EN":
		targetLang = "EN-GB"
	case "PT":
		targetLang = "PT-PT"
	}
	return c.TranslateText(ctx, texts, glossary.SourceLang, targetLang, &o)
}

func parseTextResults(body string, want int) ([]TextResult, error) {
	translations := gjson.Get(body, "translations")
	if !translations.IsArray() {
		return nil, fmt.Errorf("translation response is missing translations")
	}
	entries := translations.Array()
	if len(entries) != want {
		return nil, fmt.Errorf("translation response has %d entries, expected %d", len(entries), want)
	}
	results := make([]TextResult, 0, want)
	for _, entry := range entries {
		results = append(results, TextResult{
			Text:               entry.Get("text").String(),
			DetectedSourceLang: strings.ToUpper(entry.Get("detected_source_language").String()),
			BilledCharacters:   entry.Get("billed_characters").Int(),
		})
	}
	return results, nil
}

// checkLanguages normalizes language codes and rejects combinations the
// server would refuse anyway, to fail before any characters are billed.
func checkLanguages(sourceLang, targetLang, glossaryID string) (string, string, error) {
	if sourceLang != "" {
		sourceLang = strings.ToUpper(strings.TrimSpace(sourceLang))
	}
	targetLang = strings.ToUpper(strings.TrimSpace(targetLang))
	if targetLang == "" {
		return "", "", fmt.Errorf("targetLang must not be empty")
	}
	switch targetLang {
	case "EN":
		return "", "", fmt.Errorf("targetLang=\"EN\" is deprecated, please use \"EN-GB\" or \"EN-US\" instead")
	case "PT":
		return "", "", fmt.Errorf("targetLang=\"PT\" is deprecated, please use \"PT-PT\" or \"PT-BR\" instead")
	}
	if glossaryID != "" && sourceLang == "" {
		return "", "", fmt.Errorf("sourceLang is required when using a glossary")
	}
	return sourceLang, targetLang, nil
}
