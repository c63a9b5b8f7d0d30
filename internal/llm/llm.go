package llm

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/malonaz/specchat/internal/configuration"
)

// Opts for model.
type Opts struct {
	Model string
}

// GetOpts on the given command.
func GetOpts(cmd *cobra.Command, defaultModel string) *Opts {
	opts := &Opts{}
	cmd.Flags().StringVarP(&opts.Model, "model", "m", defaultModel, "specify a model")
	return opts
}

// NewClient instantiates a client for the configured gateway.
func NewClient(config *configuration.Config) Client {
	return NewOpenAIClient(config.Gateway.APIKey, config.Gateway.APIHost)
}

type Message struct {
	Role    string
	Content string
}

type CreateTextGenerationRequest struct {
	Model       string
	Messages    []*Message
	StopWords   []string
	MaxTokens   int
	Temperature float32
}

// Usage reports token consumption of a generation.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// StreamEvent carries a token, a finish reason, or the final usage.
type StreamEvent struct {
	Token        string
	FinishReason string
	Usage        *Usage
}

// Stream yields events until io.EOF.
type Stream interface {
	Recv() (*StreamEvent, error)
	Close()
}

type Client interface {
	CreateTextGeneration(context.Context, *CreateTextGenerationRequest) (Stream, error)
}
