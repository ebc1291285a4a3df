// Package lookup queries the DuckDuckGo Instant Answer API for a short
// description and a URL matching the typed input.
package lookup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"beacon/internal/core/models"
)

const maxBody = 1 << 20

type DuckDuckGo struct {
	endpoint string
	client   *http.Client
}

func NewDuckDuckGo(endpoint string, timeout time.Duration) *DuckDuckGo {
	return &DuckDuckGo{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Query issues one instant-answer request. It reports false when the service
// has neither a description nor a URL for the input.
func (d *DuckDuckGo) Query(ctx context.Context, query string) (models.Answer, bool, error) {
	u := d.endpoint + "?q=" + url.QueryEscape(query) +
		"&format=json&no_html=1&no_redirect=1&skip_disambig=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Answer{}, false, err
	}
	req.Header.Set("User-Agent", "beacond")

	resp, err := d.client.Do(req)
	if err != nil {
		return models.Answer{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Answer{}, false, fmt.Errorf("lookup: HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return models.Answer{}, false, err
	}

	ans := parseAnswer(body)
	return ans, ans.Text != "" || ans.URL != "", nil
}

// parseAnswer extracts the abstract, falling back to the direct answer and
// then the first related topic, matching the zero-click-info shape.
func parseAnswer(body []byte) models.Answer {
	ans := models.Answer{
		Text: gjson.GetBytes(body, "AbstractText").String(),
		URL:  gjson.GetBytes(body, "AbstractURL").String(),
	}
	if ans.Text == "" {
		ans.Text = gjson.GetBytes(body, "Answer").String()
	}
	if ans.Text == "" && ans.URL == "" {
		topic := gjson.GetBytes(body, "RelatedTopics.0")
		ans.Text = topic.Get("Text").String()
		ans.URL = topic.Get("FirstURL").String()
	}
	return ans
}
