// Package llm wraps chat completions with bounded retries and
// detection of network intermediaries that mangle API responses.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/FINSIGHT/finsight/internal/retry"
)

// intermediaryMarkers appear in error bodies when a proxy or firewall
// intercepts the API call and answers with its own page instead.
var intermediaryMarkers = []string{
	"sophos",
	"too many open files",
	"<html",
	"<!doctype",
}

// IntermediaryBlockedError means the completion failed because
// something between us and the API rewrote the response. Retrying
// won't help; the network path needs fixing.
type IntermediaryBlockedError struct {
	Marker string
	Err    error
}

func (e *IntermediaryBlockedError) Error() string {
	return fmt.Sprintf("llm call blocked by network intermediary (marker %q): %v", e.Marker, e.Err)
}

func (e *IntermediaryBlockedError) Unwrap() error { return e.Err }

// Recorder receives call outcome metrics.
type Recorder interface {
	RecordLLMCall(outcome string)
	RecordLLMRetry()
}

type nopRecorder struct{}

func (nopRecorder) RecordLLMCall(string) {}
func (nopRecorder) RecordLLMRetry()      {}

// completionAPI is the slice of the OpenAI client the completions use.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client issues chat completions with per-call timeouts and a bounded
// retry policy: three attempts total with doubling backoff.
type Client struct {
	api     completionAPI
	model   string
	timeout time.Duration
	policy  retry.Policy
	metrics Recorder
	logger  *slog.Logger
}

// NewClient builds a client for the given API key and chat model.
// A nil metrics recorder disables instrumentation.
func NewClient(apiKey, model string, timeout time.Duration, metrics Recorder, logger *slog.Logger) *Client {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Client{
		api:     openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
		policy:  retry.DefaultPolicy(),
		metrics: metrics,
		logger:  logger,
	}
}

// Complete sends a system+user prompt pair and returns the completion
// text. Transient failures are retried per the policy; after the final
// attempt the error is returned, typed as IntermediaryBlockedError
// when a proxy marker is detected in it.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	var out string
	attempt := 0

	err := retry.Do(ctx, c.policy, func() error {
		if attempt > 0 {
			c.metrics.RecordLLMRetry()
			c.logger.Warn("retrying llm call", "attempt", attempt+1)
		}
		attempt++

		apiCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.api.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: 0.3,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
		})
		if err != nil {
			return retry.Retryable(err)
		}
		if len(resp.Choices) == 0 {
			return retry.Retryable(errors.New("no completion choices returned"))
		}
		content := resp.Choices[0].Message.Content
		if content == "" {
			return retry.Retryable(fmt.Errorf("empty completion (finish reason %s)", resp.Choices[0].FinishReason))
		}

		out = content
		return nil
	})
	if err != nil {
		if marker := detectIntermediary(err); marker != "" {
			c.metrics.RecordLLMCall("blocked")
			return "", &IntermediaryBlockedError{Marker: marker, Err: err}
		}
		c.metrics.RecordLLMCall("failed")
		return "", fmt.Errorf("llm completion: %w", err)
	}

	c.metrics.RecordLLMCall("ok")
	return out, nil
}

func detectIntermediary(err error) string {
	msg := strings.ToLower(err.Error())
	for _, marker := range intermediaryMarkers {
		if strings.Contains(msg, marker) {
			return marker
		}
	}
	return ""
}
