package store

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/malonaz/specchat/internal/spec"
)

type scanner interface{ Scan(...any) error }

func scanChat(row scanner) (*Chat, error) {
	chat := &Chat{}
	if err := row.Scan(&chat.ID, &chat.Title, &chat.Model, &chat.CreationTimestamp, &chat.UpdateTimestamp); err != nil {
		return nil, errors.Wrap(err, "scanning chat row")
	}
	return chat, nil
}

// scanChats helps avoid duplicate chat scanning code
func scanChats(rows *sql.Rows) ([]*Chat, error) {
	var chats []*Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating chat rows")
	}
	return chats, nil
}

func scanMessage(row scanner) (*Message, error) {
	message := &Message{}
	var specJSON sql.NullString
	if err := row.Scan(&message.ID, &message.ChatID, &message.Role, &message.Content, &specJSON, &message.CreationTimestamp); err != nil {
		return nil, errors.Wrap(err, "scanning message row")
	}
	if specJSON.Valid && specJSON.String != "" {
		s := &spec.Spec{}
		if err := json.Unmarshal([]byte(specJSON.String), s); err != nil {
			return nil, errors.Wrap(err, "unmarshaling spec")
		}
		message.Spec = spec.Normalize(s)
	}
	return message, nil
}

func marshalSpec(s *spec.Spec) (sql.NullString, error) {
	if s == nil || len(s.Elements) == 0 {
		return sql.NullString{}, nil
	}
	bytes, err := json.Marshal(spec.Normalize(s))
	if err != nil {
		return sql.NullString{}, errors.Wrap(err, "marshaling spec")
	}
	return sql.NullString{String: string(bytes), Valid: true}, nil
}
