// Package ai provides the optional summary-enhancement step for enrichment
// items. Deployments without an API key simply run without summaries.
package ai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultModel is the default summarization model
	DefaultModel = "gpt-4o-mini"
	// DefaultBaseURL is the default API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds a single summarization call
	DefaultTimeout = 30 * time.Second
	// MaxSummaryTokens caps the summary length
	MaxSummaryTokens = 80
)

// Summarizer produces a short extractive summary for one item's text
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// OpenAISummarizer implements Summarizer on the OpenAI chat API
type OpenAISummarizer struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAISummarizer creates a summarizer. Empty baseURL and model fall
// back to defaults.
func NewOpenAISummarizer(apiKey, baseURL, model string, logger *zap.Logger) *OpenAISummarizer {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: DefaultTimeout}),
	)

	return &OpenAISummarizer{client: client, model: model, logger: logger}
}

// Summarize returns a one-sentence summary of the given text
func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You summarize short factual snippets. Respond with a single plain sentence, no preamble."),
			openai.UserMessage(text),
		},
		MaxTokens: openai.Int(MaxSummaryTokens),
	}

	resp, err := s.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
