package store

import (
	"strings"

	"github.com/pkg/errors"
)

// UpdateChatTitleRequest represents a request to rename a chat.
type UpdateChatTitleRequest struct {
	ChatID string
	// Title is trimmed and truncated to MaxTitleLength runes.
	Title string
}

// UpdateChatTitle renames a chat and bumps its update time.
func (s *Store) UpdateChatTitle(req *UpdateChatTitleRequest) (*Chat, error) {
	title := truncateTitle(req.Title)
	if title == "" {
		return nil, errors.New("title cannot be empty")
	}

	result, err := s.db.Exec(`
        UPDATE chats SET title = ?, update_timestamp = ?
        WHERE id = ?
    `, title, s.timestamp(), req.ChatID)
	if err != nil {
		return nil, errors.Wrap(err, "updating chat title")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "checking rows affected")
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetChat(req.ChatID)
}

// truncateTitle trims a title and cuts it to MaxTitleLength runes.
func truncateTitle(title string) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) > MaxTitleLength {
		title = strings.TrimSpace(string(runes[:MaxTitleLength]))
	}
	return title
}
