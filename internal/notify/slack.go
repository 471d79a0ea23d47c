// Package notify announces releases in chat.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tyemirov/swrelease/internal/release"
)

const (
	headerFormat   = "🚀 New Plugin Release: %s v%s"
	downloadFormat = "*Download:*\n%s"
	tableFormat    = "```\n%s\n```"

	blockTypeHeader  = "header"
	blockTypeSection = "section"
	textTypePlain    = "plain_text"
	textTypeMarkdown = "mrkdwn"

	defaultTimeout = 10 * time.Second
	// responseExcerptLimit bounds the response body quoted in errors.
	responseExcerptLimit = 512
)

// ErrWebhookMissing is returned when no webhook URL is configured.
var ErrWebhookMissing = errors.New("slack webhook URL is not configured")

// Release is the content of one announcement.
type Release struct {
	Info        release.Info
	DownloadURL string
}

type text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type block struct {
	Type string `json:"type"`
	Text text   `json:"text"`
}

type message struct {
	Blocks []block `json:"blocks"`
}

// SlackNotifier posts to an incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	Client     *http.Client
}

// Message builds the webhook payload: a header, the release table and, when
// known, the download link.
func Message(announcement Release) ([]byte, error) {
	payload := message{Blocks: []block{
		{
			Type: blockTypeHeader,
			Text: text{Type: textTypePlain, Text: fmt.Sprintf(headerFormat, announcement.Info.Plugin, announcement.Info.Version)},
		},
		{
			Type: blockTypeSection,
			Text: text{Type: textTypeMarkdown, Text: fmt.Sprintf(tableFormat, announcement.Info.Render(release.StylePanel))},
		},
	}}
	if announcement.DownloadURL != "" {
		payload.Blocks = append(payload.Blocks, block{
			Type: blockTypeSection,
			Text: text{Type: textTypeMarkdown, Text: fmt.Sprintf(downloadFormat, announcement.DownloadURL)},
		})
	}
	return json.Marshal(payload)
}

// Notify posts the announcement. Non-2xx responses are errors.
func (notifier SlackNotifier) Notify(ctx context.Context, announcement Release) error {
	if notifier.WebhookURL == "" {
		return ErrWebhookMissing
	}
	body, encodeError := Message(announcement)
	if encodeError != nil {
		return fmt.Errorf("encode slack message: %w", encodeError)
	}
	request, requestError := http.NewRequestWithContext(ctx, http.MethodPost, notifier.WebhookURL, bytes.NewReader(body))
	if requestError != nil {
		return fmt.Errorf("build slack request: %w", requestError)
	}
	request.Header.Set("Content-Type", "application/json")

	client := notifier.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	response, sendError := client.Do(request)
	if sendError != nil {
		return fmt.Errorf("send slack message: %w", sendError)
	}
	defer response.Body.Close()
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		excerpt, _ := io.ReadAll(io.LimitReader(response.Body, responseExcerptLimit))
		return fmt.Errorf("slack responded %s: %s", response.Status, bytes.TrimSpace(excerpt))
	}
	return nil
}
