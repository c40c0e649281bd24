// Package synology delivers text messages to Synology Chat through its
// incoming-webhook endpoint.
package synology

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Sender posts messages to a configured incoming-webhook URL. One attempt
// per message, no retries; a lost ack or usage report is not worth a
// duplicate reply.
type Sender struct {
	webhookURL string
	client     *http.Client
}

func NewSender(webhookURL string) *Sender {
	return &Sender{
		webhookURL: strings.TrimSpace(webhookURL),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type chatPayload struct {
	Text    string `json:"text"`
	UserIDs []int  `json:"user_ids"`
}

// Send delivers text to one user. Empty text is skipped; there is nothing
// to deliver. The user id must be the numeric Synology id.
func (s *Sender) Send(ctx context.Context, userID, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	uid, err := strconv.Atoi(strings.TrimSpace(userID))
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	raw, err := json.Marshal(chatPayload{Text: text, UserIDs: []int{uid}})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Synology expects the JSON document wrapped in a single form field.
	form := url.Values{}
	form.Set("payload", string(raw))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return fmt.Errorf("synology webhook status %d: %s", res.StatusCode, string(body))
	}
	return nil
}
