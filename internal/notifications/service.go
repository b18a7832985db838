package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gofmask/internal/config"
)

const userAgent = "gofmask"

// Batch summarizes a finished batch for notification purposes.
type Batch struct {
	Command   string
	Succeeded int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyBatchCompleted(ctx context.Context, batch Batch) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether svc delivers anything.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, batch Batch) error {
	duration := batch.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	total := batch.Succeeded + batch.Failed + batch.Skipped
	label := strings.TrimSpace(batch.Command)
	if label == "" {
		label = "batch"
	}

	data := payload{
		title:   "gofmask - Batch Complete",
		message: fmt.Sprintf("%s: %d of %d products masked in %s", label, batch.Succeeded, total, duration),
		tags:    []string{"gofmask", "batch", "completed"},
	}
	if batch.Failed > 0 || batch.Skipped > 0 {
		data.title = "gofmask - Batch Complete (with errors)"
		data.message = fmt.Sprintf("%s: %d succeeded, %d failed, %d skipped in %s",
			label, batch.Succeeded, batch.Failed, batch.Skipped, duration)
		data.tags = []string{"gofmask", "batch", "failed"}
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "gofmask - Test",
		message:  "Notification system test",
		tags:     []string{"gofmask", "test"},
		priority: "low",
	})
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

func (noopService) NotifyBatchCompleted(context.Context, Batch) error { return nil }
func (noopService) TestNotification(context.Context) error            { return nil }
