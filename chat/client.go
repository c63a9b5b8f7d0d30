package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/malonaz/specchat/internal/message"
	"github.com/malonaz/specchat/internal/uistream"
)

// Request is sent to the chat gateway.
type Request struct {
	Messages []*message.Message `json:"messages"`
	Model    string             `json:"model,omitempty"`
}

// Client talks to the chat gateway.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient returns a client for the gateway at serverURL.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{},
	}
}

// Stream posts a request and calls handle with every event until the stream
// is done. It stops at the first error returned by handle.
func (c *Client) Stream(ctx context.Context, request *Request, handle func(uistream.Event) error) error {
	body, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "marshaling request")
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Accept", "text/event-stream")

	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return errors.Wrap(err, "posting chat request")
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		var errorResponse struct {
			Error string `json:"error"`
		}
		payload, _ := io.ReadAll(io.LimitReader(response.Body, 1<<16))
		if json.Unmarshal(payload, &errorResponse) == nil && errorResponse.Error != "" {
			return errors.Errorf("gateway returned %d: %s", response.StatusCode, errorResponse.Error)
		}
		return errors.Errorf("gateway returned %d", response.StatusCode)
	}

	reader := uistream.NewReader(response.Body)
	for {
		event, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading stream")
		}
		if err := handle(event); err != nil {
			return err
		}
	}
}
