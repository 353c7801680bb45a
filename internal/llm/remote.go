package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Prompt            string `json:"prompt"`
	SystemInstruction string `json:"systemInstruction"`
}

// GenerateResponse is the success body of POST /api/generate.
type GenerateResponse struct {
	Text string `json:"text"`
}

// ErrorBody is the failure body of POST /api/generate.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RemoteProvider calls a coacha server's text-generation proxy, so the
// terminal client can run without holding a model API key itself.
type RemoteProvider struct {
	url    string
	client *http.Client
}

// NewRemoteProvider creates a provider for the proxy at url.
func NewRemoteProvider(cfg RemoteConfig, client *http.Client) (*RemoteProvider, error) {
	if cfg.URL == "" {
		return nil, errors.New("remote provider: url is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	url := strings.TrimRight(cfg.URL, "/")
	if !strings.HasSuffix(url, "/api/generate") {
		url += "/api/generate"
	}
	return &RemoteProvider{url: url, client: client}, nil
}

func (p *RemoteProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(GenerateRequest{Prompt: req.Prompt(), SystemInstruction: req.System})
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}

	if httpResp.StatusCode != http.StatusOK {
		var eb ErrorBody
		msg := fmt.Sprintf("server responded with status %d", httpResp.StatusCode)
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			msg = eb.Error
			if eb.Details != "" {
				msg += ": " + eb.Details
			}
		}
		return nil, mapStatus(httpResp.StatusCode, errors.New(msg))
	}

	var out GenerateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ErrInvalidResponse{Err: err}
	}
	if strings.TrimSpace(out.Text) == "" {
		return nil, &ErrInvalidResponse{Err: errors.New("empty response text")}
	}
	return &Response{Text: out.Text, Model: p.ModelID(), StopReason: "end"}, nil
}

func (p *RemoteProvider) ModelID() string {
	return "remote"
}
