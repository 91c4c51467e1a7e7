package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"sonforge/internal/config"
)

const userAgent = "Sonforge/0.1.0"

// Service defines the notification surface exposed to conversion components.
type Service interface {
	NotifyConversionCompleted(ctx context.Context, outputPath string, duration time.Duration) error
	NotifyConversionFailed(ctx context.Context, inputPath, reason string) error
	NotifyBeatsStolen(ctx context.Context, sourceFile string, beatCount int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint:    topic,
		client:      client,
		conversions: cfg.Notifications.Conversions,
		beats:       cfg.Notifications.Beats,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	conversions bool
	beats       bool
	errors      bool
}

func (n *ntfyService) NotifyConversionCompleted(ctx context.Context, outputPath string, duration time.Duration) error {
	if !n.conversions {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	data := payload{
		title:   "Sonforge - Conversion Complete",
		message: fmt.Sprintf("Converted: %s in %s", filepath.Base(outputPath), duration),
		tags:    []string{"sonforge", "convert", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyConversionFailed(ctx context.Context, inputPath, reason string) error {
	if !n.errors {
		return nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Sonforge - Conversion Failed",
		message:  fmt.Sprintf("Failed: %s\nReason: %s", filepath.Base(inputPath), reason),
		tags:     []string{"sonforge", "convert", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBeatsStolen(ctx context.Context, sourceFile string, beatCount int) error {
	if !n.beats {
		return nil
	}
	data := payload{
		title:   "Sonforge - Beats Borrowed",
		message: fmt.Sprintf("Borrowed %d beat markers from %s", beatCount, filepath.Base(sourceFile)),
		tags:    []string{"sonforge", "beats", "loaded"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Sonforge - Test",
		message:  "Notification system test",
		tags:     []string{"sonforge", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyConversionCompleted(context.Context, string, time.Duration) error { return nil }
func (noopService) NotifyConversionFailed(context.Context, string, string) error           { return nil }
func (noopService) NotifyBeatsStolen(context.Context, string, int) error                   { return nil }
func (noopService) TestNotification(context.Context) error                                 { return nil }
