package uistream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

var doneMarker = []byte("[DONE]")

// Sink receives stream events.
type Sink interface {
	Send(Event) error
}

// SetHeaders sets the response headers of a message stream.
func SetHeaders(header http.Header) {
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("Content-Encoding", "none")
	header.Set("X-Vercel-AI-UI-Message-Stream", "v1")
}

// Writer frames events as server-sent events.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter returns a writer on w. If w is an http.Flusher, every event is flushed.
func NewWriter(w io.Writer) *Writer {
	flusher, _ := w.(http.Flusher)
	return &Writer{w: w, flusher: flusher}
}

// Send writes one event.
func (w *Writer) Send(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshaling event")
	}
	if _, err := fmt.Fprintf(w.w, "data: %s\n\n", payload); err != nil {
		return errors.Wrap(err, "writing event")
	}
	w.flush()
	return nil
}

// Done writes the end-of-stream marker.
func (w *Writer) Done() error {
	if _, err := fmt.Fprintf(w.w, "data: %s\n\n", doneMarker); err != nil {
		return errors.Wrap(err, "writing done marker")
	}
	w.flush()
	return nil
}

func (w *Writer) flush() {
	if w.flusher != nil {
		w.flusher.Flush()
	}
}

// Reader parses server-sent events into Events.
type Reader struct {
	reader *bufio.Reader
}

// NewReader creates a new reader from an io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(r)}
}

// Recv returns the next event. It returns io.EOF at the done marker or at the
// end of the underlying stream.
func (r *Reader) Recv() (Event, error) {
	data, err := r.readData()
	if err != nil {
		return Event{}, err
	}
	if bytes.Equal(data, doneMarker) {
		return Event{}, io.EOF
	}
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, errors.Wrapf(err, "decoding event %q", data)
	}
	return event, nil
}

// readData returns the data of the next SSE event that has any.
func (r *Reader) readData() ([]byte, error) {
	var dataLines [][]byte
	for {
		line, err := r.reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		eof := err == io.EOF

		line = bytes.TrimRight(line, "\r\n")
		switch {
		case len(line) == 0:
			if len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
		case bytes.HasPrefix(line, []byte("data:")):
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
		// Other fields (event:, id:, retry:, comments) are ignored.

		if eof {
			if len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			return nil, io.EOF
		}
	}
}
