package deepl

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"
)

// GetUsage fetches the usage of the account in the current billing period.
func (c *Client) GetUsage(ctx context.Context) (Usage, error) {
	resp, err := c.callAPI(ctx, &LogicalRequest{
		Method: http.MethodGet,
		URL:    "/v2/usage",
	}, statusContext{})
	if err != nil {
		return Usage{}, err
	}

	body := gjson.Parse(resp.Text)
	return Usage{
		Character:    usageDetail(body, "character_count", "character_limit"),
		Document:     usageDetail(body, "document_count", "document_limit"),
		TeamDocument: usageDetail(body, "team_document_count", "team_document_limit"),
	}, nil
}

func usageDetail(body gjson.Result, countField, limitField string) UsageDetail {
	var d UsageDetail
	if v := body.Get(countField); v.Exists() {
		n := v.Int()
		d.Count = &n
	}
	if v := body.Get(limitField); v.Exists() {
		n := v.Int()
		d.Limit = &n
	}
	return d
}
