package deepl

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// SourceLanguages fetches the languages the translator accepts as input.
func (c *Client) SourceLanguages(ctx context.Context) ([]Language, error) {
	return c.languages(ctx, false)
}

// TargetLanguages fetches the languages the translator can output,
// including whether each supports the formality option.
func (c *Client) TargetLanguages(ctx context.Context) ([]Language, error) {
	return c.languages(ctx, true)
}

func (c *Client) languages(ctx context.Context, target bool) ([]Language, error) {
	form := url.Values{}
	if target {
		form.Set("type", "target")
	}
	resp, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodGet,
		URL:    "/v2/languages",
		Form:   form,
	}, statusContext{})
	if err != nil {
		return nil, err
	}

	var languages []Language
	for _, entry := range gjson.Parse(resp.Text).Array() {
		lang := Language{
			Code: strings.ToUpper(entry.Get("language").String()),
			Name: entry.Get("name").String(),
		}
		if v := entry.Get("supports_formality"); v.Exists() {
			supports := v.Bool()
			lang.SupportsFormality = &supports
		}
		languages = append(languages, lang)
	}
	return languages, nil
}
