package store

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/malonaz/specchat/internal/spec"
)

// SaveMessageRequest represents a request to append a message to a chat.
type SaveMessageRequest struct {
	ChatID  string
	Role    string
	Content string
	// Spec is the final snapshot of the message's spec, if any.
	Spec *spec.Spec
}

// SaveMessage appends a message to a chat and bumps the chat's update time.
func (s *Store) SaveMessage(req *SaveMessageRequest) (*Message, error) {
	specJSON, err := marshalSpec(req.Spec)
	if err != nil {
		return nil, err
	}
	message := &Message{
		ID:                uuid.NewString(),
		ChatID:            req.ChatID,
		Role:              req.Role,
		Content:           req.Content,
		CreationTimestamp: s.timestamp(),
	}
	if specJSON.Valid {
		message.Spec = spec.Normalize(req.Spec)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE chats SET update_timestamp = ? WHERE id = ?`, message.CreationTimestamp, message.ChatID)
	if err != nil {
		return nil, errors.Wrap(err, "bumping chat")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "checking rows affected")
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	_, err = tx.Exec(`
INSERT INTO messages (
    id,
    chat_id,
    role,
    content,
    spec,
    creation_timestamp
) VALUES (?, ?, ?, ?, ?, ?)`,
		message.ID,
		message.ChatID,
		message.Role,
		message.Content,
		specJSON,
		message.CreationTimestamp,
	)
	if err != nil {
		return nil, errors.Wrap(err, "inserting into messages table")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing transaction")
	}
	return message, nil
}

// GetChatMessages returns the messages of a chat, oldest first.
func (s *Store) GetChatMessages(chatID string) ([]*Message, error) {
	rows, err := s.db.Query(`
        SELECT id, chat_id, role, content, spec, creation_timestamp
        FROM messages
        WHERE chat_id = ?
        ORDER BY creation_timestamp ASC
    `, chatID)
	if err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating message rows")
	}
	return messages, nil
}
