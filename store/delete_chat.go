package store

import "github.com/pkg/errors"

// DeleteChat removes a chat and its messages from the database.
func (s *Store) DeleteChat(chatID string) error {
	// Begin transaction
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE chat_id = ?`, chatID); err != nil {
		return errors.Wrap(err, "deleting messages")
	}

	result, err := tx.Exec(`DELETE FROM chats WHERE id = ?`, chatID)
	if err != nil {
		return errors.Wrap(err, "deleting chat from database")
	}

	// Check if the chat existed
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "checking rows affected")
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}
