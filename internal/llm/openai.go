package llm

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient for OpenAI-compatible gateways.
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey, apiHost string) *OpenAIClient {
	openAIConfig := openai.DefaultConfig(apiKey)
	openAIConfig.BaseURL = apiHost
	client := openai.NewClientWithConfig(openAIConfig)
	return &OpenAIClient{client: client}
}

type ChatCompletionStreamWrapper struct {
	stream *openai.ChatCompletionStream
}

func (s *ChatCompletionStreamWrapper) Close() { s.stream.Close() }
func (s *ChatCompletionStreamWrapper) Recv() (*StreamEvent, error) {
	for {
		response, err := s.stream.Recv()
		if err != nil {
			return nil, err
		}
		event := &StreamEvent{}
		if response.Usage != nil {
			event.Usage = &Usage{
				PromptTokens:     response.Usage.PromptTokens,
				CompletionTokens: response.Usage.CompletionTokens,
			}
		}
		if len(response.Choices) > 0 {
			event.Token = response.Choices[0].Delta.Content
			event.FinishReason = string(response.Choices[0].FinishReason)
		}
		if event.Token == "" && event.FinishReason == "" && event.Usage == nil {
			// Keep-alive or role-only chunk.
			continue
		}
		return event, nil
	}
}

func (c *OpenAIClient) CreateTextGeneration(ctx context.Context, request *CreateTextGenerationRequest) (Stream, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(request.Messages))
	for _, message := range request.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Content: message.Content, Role: message.Role})
	}
	openAIRequest := openai.ChatCompletionRequest{
		Model:         request.Model,
		Stop:          request.StopWords,
		MaxTokens:     request.MaxTokens,
		Temperature:   request.Temperature,
		Stream:        true,
		StreamOptions: &openai.StreamOptions{IncludeUsage: true},
		Messages:      messages,
	}
	stream, err := c.client.CreateChatCompletionStream(ctx, openAIRequest)
	if err != nil {
		return nil, errors.Wrap(err, "creating completion stream")
	}
	return &ChatCompletionStreamWrapper{stream}, nil
}
