package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/carebridge/carebridge-api/pkg/config"
	"github.com/carebridge/carebridge-api/pkg/logger"
)

// ErrUpstream wraps any failure talking to the generative-text API so
// handlers can map it to a single generic 500.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("chat upstream: %v", e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

const assistantPrompt = "You are a helpful and empathetic healthcare assistant. " +
	"Your goal is to provide accurate, general health information and guidance, " +
	"but always advise users to consult with a qualified medical professional " +
	"for diagnosis and treatment. Respond to the following query in short:\n\n"

// ChatService is a stateless pass-through to the Gemini generateContent
// endpoint.
type ChatService interface {
	Ask(ctx context.Context, query string) (string, error)
}

type chatService struct {
	apiURL string
	apiKey string
	client *http.Client
}

func NewChatService(cfg config.ChatConfig) ChatService {
	return &chatService{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (s *chatService) Ask(ctx context.Context, query string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: assistantPrompt + query}}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}

	url := s.apiURL + "?key=" + s.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.ErrorContext(ctx, "Chat upstream returned non-2xx",
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return "", &UpstreamError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &UpstreamError{Err: err}
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "No response", nil
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
