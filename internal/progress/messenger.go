package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sermonbench/internal/config"
	"sermonbench/internal/logging"
)

// Messenger posts and edits one progress message. Create returns the message
// ID used for subsequent edits.
type Messenger interface {
	Create(ctx context.Context, embed Embed) (string, error)
	Edit(ctx context.Context, id string, embed Embed) error
}

// NewMessenger builds a Discord webhook messenger, or a no-op messenger when
// no webhook is configured. Callers never need to check which one they got.
func NewMessenger(cfg config.Notifications, logger *slog.Logger) Messenger {
	webhook := strings.TrimSpace(cfg.DiscordWebhook)
	if webhook == "" {
		return noopMessenger{}
	}

	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &discordMessenger{
		webhook: strings.TrimRight(webhook, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(slog.String(logging.FieldComponent, "progress")),
	}
}

type noopMessenger struct{}

func (noopMessenger) Create(context.Context, Embed) (string, error) { return "", nil }
func (noopMessenger) Edit(context.Context, string, Embed) error     { return nil }

type discordMessenger struct {
	webhook string
	client  *http.Client
	logger  *slog.Logger
}

// Discord wire format.
type webhookPayload struct {
	Embeds []webhookEmbed `json:"embeds"`
}

type webhookEmbed struct {
	Title     string         `json:"title"`
	Color     int            `json:"color"`
	Fields    []webhookField `json:"fields,omitempty"`
	Footer    *webhookFooter `json:"footer,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

type webhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type webhookFooter struct {
	Text string `json:"text"`
}

// Create posts the embed with wait=true so Discord returns the created
// message, whose ID is needed for later edits.
func (d *discordMessenger) Create(ctx context.Context, embed Embed) (string, error) {
	body, err := d.send(ctx, http.MethodPost, d.webhook+"?wait=true", embed)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		return "", fmt.Errorf("decode webhook response: missing message id")
	}
	return created.ID, nil
}

// Edit patches the tracked message in place.
func (d *discordMessenger) Edit(ctx context.Context, id string, embed Embed) error {
	_, err := d.send(ctx, http.MethodPatch, d.webhook+"/messages/"+id, embed)
	return err
}

func (d *discordMessenger) send(ctx context.Context, method, url string, embed Embed) ([]byte, error) {
	payload := webhookPayload{Embeds: []webhookEmbed{encodeEmbed(embed)}}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send webhook request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return respBody, nil
}

func encodeEmbed(embed Embed) webhookEmbed {
	encoded := webhookEmbed{
		Title: embed.Title,
		Color: embed.Color,
	}
	for _, f := range embed.Fields {
		encoded.Fields = append(encoded.Fields, webhookField(f))
	}
	if embed.Footer != "" {
		encoded.Footer = &webhookFooter{Text: embed.Footer}
	}
	if !embed.Timestamp.IsZero() {
		encoded.Timestamp = embed.Timestamp.UTC().Format(time.RFC3339)
	}
	return encoded
}
