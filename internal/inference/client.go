// Package inference wraps the Anthropic API behind a fail-open switch: when
// the capability is unconfigured or has failed terminally, every call returns
// an empty string instead of an error, and enrichment degrades to
// deterministic fields only.
package inference

import (
	"context"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/crm-cleaner/internal/resilience"
	"github.com/sells-group/crm-cleaner/pkg/anthropic"
)

const systemPrompt = "You are a helpful assistant for CRM data cleaning."

// Deterministic-leaning generation; prompts ask for short closed answers.
const temperature = 0.2

// Config holds inference client settings.
type Config struct {
	Model             string
	MaxTokens         int64
	RequestsPerSecond float64
}

// Client is the process-lifetime inference handle. It is an explicit object,
// injected where needed rather than read from package globals, and is safe
// to share across concurrently running jobs.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	breaker   *resilience.Breaker
}

// New creates a Client. A nil api (no credentials configured) yields a
// client that is disabled from the start.
func New(api anthropic.Client, cfg Config) *Client {
	c := &Client{
		api:       api,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	c.breaker = resilience.NewBreaker(func() {
		zap.L().Warn("inference: capability disabled for the rest of this process")
	})
	if api == nil {
		c.breaker.Trip()
	}
	return c
}

// Enabled reports whether Infer will attempt a backend call.
func (c *Client) Enabled() bool {
	return !c.breaker.Tripped()
}

// Infer sends a single prompt and returns the model's text response, or ""
// when the capability is disabled or the call fails. Terminal API failures
// (authentication, quota, backend down) disable the capability for the rest
// of the process; anything else degrades this call only.
func (c *Client) Infer(ctx context.Context, prompt string) string {
	if !c.Enabled() {
		return ""
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return ""
		}
	}

	temp := temperature
	resp, err := c.api.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		System:      systemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		var apierr *sdk.Error
		if errors.As(err, &apierr) && resilience.IsTerminalStatus(apierr.StatusCode) {
			zap.L().Error("inference: terminal backend error, tripping breaker",
				zap.Int("status", apierr.StatusCode),
				zap.Error(err),
			)
			c.breaker.Trip()
			return ""
		}
		zap.L().Warn("inference: call failed", zap.Error(err))
		return ""
	}

	return resp.Text()
}
