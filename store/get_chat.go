package store

import (
	"database/sql"

	"github.com/pkg/errors"
)

// GetChat returns the chat with the given id, or ErrNotFound.
func (s *Store) GetChat(chatID string) (*Chat, error) {
	row := s.db.QueryRow(`
        SELECT id, title, model, creation_timestamp, update_timestamp
        FROM chats
        WHERE id = ?
    `, chatID)

	chat, err := scanChat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "querying chat")
	}

	return chat, nil
}
