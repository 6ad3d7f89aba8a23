// Web search tool backed by the DuckDuckGo Instant Answer API.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const duckDuckGoBaseURL = "https://api.duckduckgo.com/"

// SearchTool answers queries via DuckDuckGo instant answers.
type SearchTool struct {
	client  *http.Client
	baseURL string
}

// NewSearchTool creates a search tool.
func NewSearchTool() *SearchTool {
	return &SearchTool{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: duckDuckGoBaseURL,
	}
}

// WithBaseURL overrides the upstream endpoint (used in tests).
func (t *SearchTool) WithBaseURL(u string) *SearchTool {
	t.baseURL = u
	return t
}

// Metadata returns the tool metadata.
func (t *SearchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "duckduckgo_search",
		Description: "Search the web via DuckDuckGo and return a short answer with related results",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The search query",
				},
			},
			"required": []string{"query"},
		},
	}
}

type searchArgs struct {
	Query string `json:"query"`
}

// instantAnswer mirrors the subset of the DuckDuckGo response we surface.
type instantAnswer struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Answer        string `json:"Answer"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

type searchResult struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

type searchOutput struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Results []searchResult `json:"results"`
}

// Execute performs the search.
func (t *SearchTool) Execute(ctx context.Context, args json.RawMessage) ToolResult {
	var a searchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err))
	}
	if a.Query == "" {
		return FailureResultf("query cannot be empty")
	}

	query := url.Values{}
	query.Set("q", a.Query)
	query.Set("format", "json")
	query.Set("no_html", "1")
	query.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return FailureResult(fmt.Errorf("search request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FailureResultf("search upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read response: %w", err))
	}

	var answer instantAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return FailureResult(fmt.Errorf("failed to decode search response: %w", err))
	}

	out := searchOutput{Query: a.Query, Results: []searchResult{}}
	if answer.Answer != "" {
		out.Answer = answer.Answer
	} else if answer.AbstractText != "" {
		out.Answer = answer.AbstractText
	}
	if answer.AbstractText != "" && answer.AbstractURL != "" {
		out.Results = append(out.Results, searchResult{Text: answer.AbstractText, URL: answer.AbstractURL})
	}
	for _, topic := range answer.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		out.Results = append(out.Results, searchResult{Text: topic.Text, URL: topic.FirstURL})
		if len(out.Results) >= 5 {
			break
		}
	}

	return SuccessResult(out)
}

// Verify SearchTool implements Tool
var _ Tool = (*SearchTool)(nil)
