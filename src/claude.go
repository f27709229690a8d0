package bookforge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/opd-ai/bookforge/logger"
)

var ErrEmptyResponse = errors.New("empty response from claude")

type ClaudeClient struct {
	client     *anthropic.Client
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func NewClaudeClient(apiKey string, maxRetries int, log *logger.Logger) *ClaudeClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &ClaudeClient{
		client:     client,
		maxRetries: maxRetries,
		backoff:    2 * time.Second,
		log:        logger.OrNop(log).With("component", "claude"),
	}
}

// SendMessage retries failed calls up to maxRetries times, waiting a little
// longer after each failure.
func (c *ClaudeClient) SendMessage(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var (
		message *anthropic.Message
		err     error
	)
	for try := 1; ; try++ {
		message, err = c.client.Messages.New(
			ctx,
			anthropic.MessageNewParams{
				Model:     anthropic.F(anthropic.ModelClaude3_5SonnetLatest),
				MaxTokens: anthropic.F(int64(4096)),
				System: anthropic.F([]anthropic.TextBlockParam{
					anthropic.NewTextBlock(systemPrompt),
				}),
				Messages: anthropic.F([]anthropic.MessageParam{
					anthropic.NewUserMessage(
						anthropic.NewTextBlock(userPrompt),
					),
				}),
			},
		)
		if err == nil {
			break
		}
		if try >= c.maxRetries {
			return "", fmt.Errorf("claude api error after %d tries: %w", try, err)
		}
		c.log.Warn("claude request failed, retrying", "try", try, "error", err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(try) * c.backoff):
		}
	}

	if len(message.Content) == 0 {
		return "", ErrEmptyResponse
	}
	return message.Content[0].Text, nil
}
