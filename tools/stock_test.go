package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStockPriceSuccess(t *testing.T) {
	quote := `{"Global Quote": {"01. symbol": "AAPL", "05. price": "232.1400"}}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "GLOBAL_QUOTE" {
			t.Errorf("expected function GLOBAL_QUOTE, got %q", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("expected symbol AAPL, got %q", got)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("expected apikey test-key, got %q", got)
		}
		w.Write([]byte(quote))
	}))
	defer server.Close()

	tool := NewStockPriceTool("test-key").WithBaseURL(server.URL)

	result := tool.Execute(context.Background(), json.RawMessage(`{"symbol": "AAPL"}`))
	if !result.Success() {
		t.Fatalf("unexpected failure: %v", result.Err)
	}

	// The upstream document passes through untouched.
	if string(result.Payload) != quote {
		t.Errorf("expected upstream payload, got %s", result.Payload)
	}
}

func TestStockPriceEmptySymbol(t *testing.T) {
	tool := NewStockPriceTool("test-key")

	result := tool.Execute(context.Background(), json.RawMessage(`{"symbol": ""}`))
	if result.Success() {
		t.Fatal("expected failure for empty symbol")
	}
}

func TestStockPriceUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tool := NewStockPriceTool("test-key").WithBaseURL(server.URL)

	result := tool.Execute(context.Background(), json.RawMessage(`{"symbol": "AAPL"}`))
	if result.Success() {
		t.Fatal("expected failure for upstream 503")
	}
}

func TestStockPriceInvalidUpstreamJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	tool := NewStockPriceTool("test-key").WithBaseURL(server.URL)

	result := tool.Execute(context.Background(), json.RawMessage(`{"symbol": "AAPL"}`))
	if result.Success() {
		t.Fatal("expected failure for invalid upstream JSON")
	}
}
