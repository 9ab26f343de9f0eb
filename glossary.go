package deepl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lexigo/deepl-go/internal/json"
	"github.com/tidwall/gjson"
)

type createGlossaryRequest struct {
	Name          string `json:"name"`
	SourceLang    string `json:"source_lang"`
	TargetLang    string `json:"target_lang"`
	Entries       string `json:"entries"`
	EntriesFormat string `json:"entries_format"`
}

// CreateGlossary creates a glossary for the given language pair. Glossary
// language codes never carry regional variants, so any variant in
// sourceLang or targetLang is stripped.
func (c *Client) CreateGlossary(ctx context.Context, name, sourceLang, targetLang string, entries GlossaryEntries) (GlossaryInfo, error) {
	tsv, err := entries.ToTSV()
	if err != nil {
		return GlossaryInfo{}, err
	}
	return c.createGlossary(ctx, name, sourceLang, targetLang, tsv, "tsv")
}

// CreateGlossaryFromCSV creates a glossary from entries in the CSV upload
// format, validating them before any request is sent.
func (c *Client) CreateGlossaryFromCSV(ctx context.Context, name, sourceLang, targetLang string, csvData string) (GlossaryInfo, error) {
	if _, err := ParseCSVEntries(csvData); err != nil {
		return GlossaryInfo{}, err
	}
	return c.createGlossary(ctx, name, sourceLang, targetLang, csvData, "csv")
}

func (c *Client) createGlossary(ctx context.Context, name, sourceLang, targetLang, entries, format string) (GlossaryInfo, error) {
	if strings.TrimSpace(name) == "" {
		return GlossaryInfo{}, fmt.Errorf("glossary name must not be empty")
	}
	payload, err := json.Marshal(createGlossaryRequest{
		Name:          name,
		SourceLang:    RemoveRegionalVariant(sourceLang),
		TargetLang:    RemoveRegionalVariant(targetLang),
		Entries:       entries,
		EntriesFormat: format,
	})
	if err != nil {
		return GlossaryInfo{}, fmt.Errorf("marshal glossary request: %w", err)
	}
	resp, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodPost,
		URL:    "/v2/glossaries",
		JSON:   payload,
	}, statusContext{glossaryManagement: true})
	if err != nil {
		return GlossaryInfo{}, err
	}
	return parseGlossaryInfo(gjson.Parse(resp.Text))
}

// GetGlossary fetches details of one glossary.
func (c *Client) GetGlossary(ctx context.Context, glossaryID string) (GlossaryInfo, error) {
	resp, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodGet,
		URL:    "/v2/glossaries/" + url.PathEscape(glossaryID),
	}, statusContext{glossaryManagement: true})
	if err != nil {
		return GlossaryInfo{}, err
	}
	return parseGlossaryInfo(gjson.Parse(resp.Text))
}

// ListGlossaries fetches details of all glossaries of the account.
func (c *Client) ListGlossaries(ctx context.Context) ([]GlossaryInfo, error) {
	resp, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodGet,
		URL:    "/v2/glossaries",
	}, statusContext{glossaryManagement: true})
	if err != nil {
		return nil, err
	}
	var glossaries []GlossaryInfo
	for _, entry := range gjson.Get(resp.Text, "glossaries").Array() {
		info, err := parseGlossaryInfo(entry)
		if err != nil {
			return nil, err
		}
		glossaries = append(glossaries, info)
	}
	return glossaries, nil
}

// GetGlossaryEntries fetches the entries of a glossary.
func (c *Client) GetGlossaryEntries(ctx context.Context, glossaryID string) (GlossaryEntries, error) {
	header := http.Header{}
	header.Set("Accept", "text/tab-separated-values")
	resp, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodGet,
		URL:    "/v2/glossaries/" + url.PathEscape(glossaryID) + "/entries",
		Header: header,
	}, statusContext{glossaryManagement: true})
	if err != nil {
		return nil, err
	}
	return ParseTSVEntries(resp.Text)
}

// DeleteGlossary deletes a glossary.
func (c *Client) DeleteGlossary(ctx context.Context, glossaryID string) error {
	_, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodDelete,
		URL:    "/v2/glossaries/" + url.PathEscape(glossaryID),
	}, statusContext{glossaryManagement: true})
	return err
}

// GetGlossaryLanguagePairs fetches the language pairs glossaries may use.
func (c *Client) GetGlossaryLanguagePairs(ctx context.Context) ([]GlossaryLanguagePair, error) {
	resp, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodGet,
		URL:    "/v2/glossary-language-pairs",
	}, statusContext{})
	if err != nil {
		return nil, err
	}
	var pairs []GlossaryLanguagePair
	for _, entry := range gjson.Get(resp.Text, "supported_languages").Array() {
		pairs = append(pairs, GlossaryLanguagePair{
			SourceLang: strings.ToUpper(entry.Get("source_lang").String()),
			TargetLang: strings.ToUpper(entry.Get("target_lang").String()),
		})
	}
	return pairs, nil
}

func parseGlossaryInfo(entry gjson.Result) (GlossaryInfo, error) {
	info := GlossaryInfo{
		GlossaryID: entry.Get("glossary_id").String(),
		Name:       entry.Get("name").String(),
		Ready:      entry.Get("ready").Bool(),
		SourceLang: strings.ToUpper(entry.Get("source_lang").String()),
		TargetLang: strings.ToUpper(entry.Get("target_lang").String()),
		EntryCount: entry.Get("entry_count").Int(),
	}
	if info.GlossaryID == "" {
		return GlossaryInfo{}, fmt.Errorf("glossary response is missing glossary_id")
	}
	if raw := entry.Get("creation_time").String(); raw != "" {
		ts, err := parseGlossaryTime(raw)
		if err != nil {
			return GlossaryInfo{}, err
		}
		info.CreationTime = ts
	}
	return info, nil
}
