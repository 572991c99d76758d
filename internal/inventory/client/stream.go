package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Stream consumes the server's SSE inventory stream and feeds snapshots to
// a reconciler.
type Stream struct {
	url        string
	reconciler *Reconciler
	client     *http.Client
}

// NewStream constructs a stream consumer for the given stream URL.
func NewStream(url string, reconciler *Reconciler) (*Stream, error) {
	if url == "" {
		return nil, errors.New("client: empty stream url")
	}
	if reconciler == nil {
		return nil, errors.New("client: nil reconciler")
	}
	// No client timeout: the stream is long-lived and ended via ctx.
	return &Stream{url: url, reconciler: reconciler, client: &http.Client{}}, nil
}

// Run attaches to the stream and processes events until ctx is done or the
// server closes the connection. Connectivity transitions are the only
// failure signal; the reconciler's last-known records are never discarded
// on transport failure.
func (s *Stream) Run(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		s.reconciler.setState(StateError)
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		s.reconciler.setState(StateError)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.reconciler.setState(StateError)
		return fmt.Errorf("client: stream http %d", resp.StatusCode)
	}

	s.reconciler.setState(StateConnected)
	defer s.reconciler.setState(StateDisconnected)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 8<<20)

	event := ""
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			s.dispatch(event, data.String())
			event = ""
			data.Reset()
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (s *Stream) dispatch(event, data string) {
	if event != "inventory" || data == "" {
		return
	}
	_ = s.reconciler.Apply([]byte(data))
}
