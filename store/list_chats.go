package store

import "github.com/pkg/errors"

// ListChatsRequest contains parameters for listing chats.
type ListChatsRequest struct {
	// Page is 1-based. Defaults to 1.
	Page int
	// PageSize defaults to DefaultPageSize.
	PageSize int
}

// ListChatsResponse contains the result of a list chats operation.
type ListChatsResponse struct {
	Chats      []*Chat
	TotalCount int
	PageCount  int
}

// ListChats returns chats, most recently updated first.
func (s *Store) ListChats(req *ListChatsRequest) (*ListChatsResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := max(req.Page, 1)

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chats`).Scan(&total); err != nil {
		return nil, errors.Wrap(err, "counting chats")
	}

	rows, err := s.db.Query(`
        SELECT id, title, model, creation_timestamp, update_timestamp
        FROM chats
        ORDER BY update_timestamp DESC
        LIMIT ? OFFSET ?
    `, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "querying chats")
	}
	defer rows.Close()

	chats, err := scanChats(rows)
	if err != nil {
		return nil, err
	}

	return &ListChatsResponse{
		Chats:      chats,
		TotalCount: total,
		PageCount:  (total + pageSize - 1) / pageSize,
	}, nil
}
