package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carebridge/carebridge-api/internal/service"
	"github.com/carebridge/carebridge-api/pkg/config"
)

func chatServiceFor(url string) service.ChatService {
	return service.NewChatService(config.ChatConfig{
		APIURL:  url,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

func TestChatAsk(t *testing.T) {
	var gotBody struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key query param = %q", r.URL.Query().Get("key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Drink fluids and rest."}]}}]}`))
	}))
	defer srv.Close()

	out, err := chatServiceFor(srv.URL).Ask(context.Background(), "What helps with a mild fever?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if out != "Drink fluids and rest." {
		t.Errorf("output = %q", out)
	}

	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatal("request must carry a single content part")
	}
	text := gotBody.Contents[0].Parts[0].Text
	if text == "What helps with a mild fever?" {
		t.Error("query must be wrapped with the assistant prompt")
	}
}

func TestChatAskEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	out, err := chatServiceFor(srv.URL).Ask(context.Background(), "hello")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if out != "No response" {
		t.Errorf("output = %q, want \"No response\"", out)
	}
}

func TestChatAskUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := chatServiceFor(srv.URL).Ask(context.Background(), "hello")
	var upstream *service.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
}

func TestChatAskConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	_, err := chatServiceFor(srv.URL).Ask(context.Background(), "hello")
	var upstream *service.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
}
