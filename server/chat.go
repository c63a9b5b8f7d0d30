package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/malonaz/specchat/internal/catalog"
	"github.com/malonaz/specchat/internal/configuration"
	"github.com/malonaz/specchat/internal/llm"
	"github.com/malonaz/specchat/internal/message"
	"github.com/malonaz/specchat/internal/uistream"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []*message.Message `json:"messages" binding:"required"`
	Model    string             `json:"model"`
}

func (s *Server) handleChat(c *gin.Context) {
	request := &ChatRequest{}
	if err := c.ShouldBindJSON(request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(request.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no messages"})
		return
	}

	modelID := request.Model
	if modelID == "" {
		modelID = s.config.Chat.DefaultModel
	}
	model := s.config.ResolveModel(modelID)

	systemPrompt, err := s.catalog.Prompt(catalog.ModeChat)
	if err != nil {
		s.logger.Error("rendering system prompt", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rendering system prompt"})
		return
	}
	messages := []*llm.Message{{Role: message.RoleSystem, Content: systemPrompt}}
	for _, m := range request.Messages {
		if m.Role != message.RoleUser && m.Role != message.RoleAssistant {
			continue
		}
		content := m.ModelContent()
		if content == "" {
			continue
		}
		messages = append(messages, &llm.Message{Role: m.Role, Content: content})
	}

	timeout := time.Duration(s.config.Gateway.RequestTimeout) * time.Second
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	stream, err := s.client.CreateTextGeneration(ctx, &llm.CreateTextGenerationRequest{
		Model:     model.GatewayID,
		Messages:  messages,
		MaxTokens: s.config.Server.MaxOutputTokens,
	})
	if err != nil {
		s.logger.Error("opening generation stream", "model", model.GatewayID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer stream.Close()

	uistream.SetHeaders(c.Writer.Header())
	c.Status(http.StatusOK)
	writer := uistream.NewWriter(c.Writer)
	if err := s.streamReply(writer, stream, model); err != nil {
		s.logger.Warn("streaming reply", "model", model.GatewayID, "error", err)
	}
}

// streamReply relays a generation stream as UI message stream events.
func (s *Server) streamReply(writer *uistream.Writer, stream llm.Stream, model *configuration.Model) error {
	if err := writer.Send(uistream.Event{Type: uistream.EventStart, MessageID: uuid.NewString()}); err != nil {
		return errors.Wrap(err, "sending start")
	}

	pipe := uistream.NewPipe(writer)
	var usage *llm.Usage
	var finishReason string
	for {
		event, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Close the text part before reporting the error.
			if closeErr := pipe.Close(); closeErr != nil {
				return errors.Wrap(closeErr, "closing pipe")
			}
			if sendErr := writer.Send(uistream.Event{Type: uistream.EventError, ErrorText: err.Error()}); sendErr != nil {
				return errors.Wrap(sendErr, "sending error")
			}
			return writer.Done()
		}
		if event.Token != "" {
			if err := pipe.Write(event.Token); err != nil {
				return errors.Wrap(err, "writing token")
			}
		}
		if event.FinishReason != "" {
			finishReason = event.FinishReason
		}
		if event.Usage != nil {
			usage = event.Usage
		}
	}
	if err := pipe.Close(); err != nil {
		return errors.Wrap(err, "closing pipe")
	}

	metadata := &uistream.Metadata{Model: model.ID}
	if usage != nil {
		metadata.PromptTokens = usage.PromptTokens
		metadata.CompletionTokens = usage.CompletionTokens
		metadata.Cost = model.Cost(usage.PromptTokens, usage.CompletionTokens).String()
	}
	s.logger.Debug("reply streamed", "model", model.ID, "patches", pipe.Patches(), "finish_reason", finishReason)
	finish := uistream.Event{Type: uistream.EventFinish, FinishReason: finishReason, MessageMetadata: metadata}
	if err := writer.Send(finish); err != nil {
		return errors.Wrap(err, "sending finish")
	}
	return writer.Done()
}
