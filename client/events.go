package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// LifecycleEvent mirrors service/events.Event as seen over the wire.
type LifecycleEvent struct {
	Kind      string         `json:"kind"`
	Signature string         `json:"signature"`
	Fields    map[string]any `json:"fields,omitempty"`
	Time      string         `json:"time"`
}

// StreamEvents connects to the gateway's SSE lifecycle-event endpoint and
// calls handle for each event received, until the context is cancelled or
// the stream ends. A non-nil return from handle stops the stream early.
func (c *Client) StreamEvents(ctx context.Context, handle func(LifecycleEvent) error) error {
	u := fmt.Sprintf("%s/api/v1/stream/events", strings.TrimSuffix(c.baseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to event stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("event stream returned status %d: %s", resp.StatusCode, string(body))
	}

	return c.parseSSEStream(ctx, resp.Body, handle)
}

func (c *Client) parseSSEStream(ctx context.Context, body io.Reader, handle func(LifecycleEvent) error) error {
	scanner := bufio.NewScanner(body)
	var currentEvent, currentData string

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if line == "" {
			if currentEvent == "lifecycle" && currentData != "" {
				var event LifecycleEvent
				if err := json.Unmarshal([]byte(currentData), &event); err != nil {
					c.logger.Warn("failed to unmarshal lifecycle event", "error", err)
				} else if err := handle(event); err != nil {
					return err
				}
			}
			currentEvent = ""
			currentData = ""
			continue
		}

		if strings.HasPrefix(line, "event:") {
			currentEvent = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		} else if strings.HasPrefix(line, "data:") {
			currentData = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("error reading event stream: %w", err)
	}

	return nil
}
