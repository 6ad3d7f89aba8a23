// Stock price tool backed by the Alpha Vantage GLOBAL_QUOTE endpoint.
//
// Information Hiding:
// - HTTP client configuration and endpoint format hidden
// - Upstream failures surface as tool-result error payloads, never as
//   loop faults

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

const alphaVantageBaseURL = "https://www.alphavantage.co/query"

// StockPriceTool fetches the latest quote for a stock symbol.
type StockPriceTool struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewStockPriceTool creates a stock price tool with the given API key.
func NewStockPriceTool(apiKey string) *StockPriceTool {
	return &StockPriceTool{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: alphaVantageBaseURL,
	}
}

// WithBaseURL overrides the upstream endpoint (used in tests).
func (t *StockPriceTool) WithBaseURL(u string) *StockPriceTool {
	t.baseURL = u
	return t
}

// Metadata returns the tool metadata.
func (t *StockPriceTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "get_stock_price",
		Description: "Fetch latest stock price for a given symbol (e.g. 'AAPL', 'TSLA') using Alpha Vantage",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"symbol": map[string]interface{}{
					"type":        "string",
					"description": "The stock ticker symbol, e.g. AAPL",
				},
			},
			"required": []string{"symbol"},
		},
	}
}

type stockArgs struct {
	Symbol string `json:"symbol"`
}

// Execute fetches the quote and returns the upstream JSON document as the
// success payload.
func (t *StockPriceTool) Execute(ctx context.Context, args json.RawMessage) ToolResult {
	var a stockArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err))
	}
	if a.Symbol == "" {
		return FailureResultf("symbol cannot be empty")
	}

	query := url.Values{}
	query.Set("function", "GLOBAL_QUOTE")
	query.Set("symbol", a.Symbol)
	query.Set("apikey", t.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return FailureResult(fmt.Errorf("stock price request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FailureResultf("stock price upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read response: %w", err))
	}

	if !json.Valid(body) {
		return FailureResultf("stock price upstream returned invalid JSON")
	}

	return RawResult(body)
}

// Verify StockPriceTool implements Tool
var _ Tool = (*StockPriceTool)(nil)
