package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// HTTPSemanticClient calls the managed semantic-validation endpoint.
// Authentication uses OAuth2 client credentials when configured;
// otherwise requests go out bare (self-hosted deployments put the
// service behind their own network boundary).
type HTTPSemanticClient struct {
	endpoint string
	client   *http.Client
}

// SemanticConfig configures the remote client.
type SemanticConfig struct {
	Endpoint     string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// NewHTTPSemanticClient builds the remote client. The HTTP client
// always carries a timeout so a dead service can never hang a session.
func NewHTTPSemanticClient(cfg SemanticConfig) *HTTPSemanticClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.ClientID != "" && cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		httpClient = cc.Client(context.Background())
		httpClient.Timeout = timeout
	}

	return &HTTPSemanticClient{
		endpoint: cfg.Endpoint,
		client:   httpClient,
	}
}

type semanticRequest struct {
	UserAnswer     string `json:"userAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	TargetWord     string `json:"targetWord,omitempty"`
	WordType       string `json:"wordType,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	NativeLanguage string `json:"nativeLanguage,omitempty"`
}

type semanticResponse struct {
	Accepted    bool   `json:"accepted"`
	Explanation string `json:"explanation"`
}

// Validate performs one bounded call to the semantic service. HTTP 429
// maps to ErrRateLimited; every other failure is a transport error the
// validator recovers from locally.
func (c *HTTPSemanticClient) Validate(ctx context.Context, userAnswer, correctAnswer string, wc WordContext) (Result, error) {
	body, err := json.Marshal(semanticRequest{
		UserAnswer:     userAnswer,
		CorrectAnswer:  correctAnswer,
		TargetWord:     wc.TargetWord,
		WordType:       wc.WordType,
		TargetLanguage: wc.TargetLanguage,
		NativeLanguage: wc.NativeLanguage,
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("semantic service call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return Result{}, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("semantic service returned %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	return Result{Accepted: sr.Accepted, Explanation: sr.Explanation}, nil
}
