package store

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CreateChatRequest represents a request to create a new chat.
type CreateChatRequest struct {
	// Title of the chat. Defaults to DefaultTitle.
	Title string
	// Model the chat talks to.
	Model string
}

// CreateChat inserts a new chat with a fresh id.
func (s *Store) CreateChat(req *CreateChatRequest) (*Chat, error) {
	now := s.timestamp()
	chat := &Chat{
		ID:                uuid.NewString(),
		Title:             truncateTitle(req.Title),
		Model:             req.Model,
		CreationTimestamp: now,
		UpdateTimestamp:   now,
	}
	if strings.TrimSpace(chat.Title) == "" {
		chat.Title = DefaultTitle
	}

	_, err := s.db.Exec(`
INSERT INTO chats (
    id,
    title,
    model,
    creation_timestamp,
    update_timestamp
) VALUES (?, ?, ?, ?, ?)`,
		chat.ID,
		chat.Title,
		chat.Model,
		chat.CreationTimestamp,
		chat.UpdateTimestamp,
	)
	if err != nil {
		return nil, errors.Wrap(err, "inserting into chats table")
	}
	return chat, nil
}
