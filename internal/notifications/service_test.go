package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sonforge/internal/config"
	"sonforge/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyConversionCompleted(context.Background(), "song.sns", time.Second); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	type captured struct {
		title    string
		tags     string
		priority string
		body     string
	}

	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "conversion completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyConversionCompleted(context.Background(), "/out/battle_theme.sns", 90*time.Second)
			},
			expectTitle:   "Sonforge - Conversion Complete",
			expectMessage: "Converted: battle_theme.sns in 1m30s",
			expectTags:    "sonforge,convert,completed",
		},
		{
			name: "conversion failed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyConversionFailed(context.Background(), "/in/battle_theme.wav", "sample count mismatch")
			},
			expectTitle:    "Sonforge - Conversion Failed",
			expectMessage:  "Failed: battle_theme.wav\nReason: sample count mismatch",
			expectTags:     "sonforge,convert,failed",
			expectPriority: "high",
		},
		{
			name: "beats stolen",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBeatsStolen(context.Background(), "/cache/menu_theme.sns", 42)
			},
			expectTitle:   "Sonforge - Beats Borrowed",
			expectMessage: "Borrowed 42 beat markers from menu_theme.sns",
			expectTags:    "sonforge,beats,loaded",
		},
		{
			name: "test notification",
			notify: func(svc notifications.Service) error {
				return svc.TestNotification(context.Background())
			},
			expectTitle:    "Sonforge - Test",
			expectMessage:  "Notification system test",
			expectTags:     "sonforge,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got captured
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				got.title = r.Header.Get("Title")
				got.tags = r.Header.Get("Tags")
				got.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				got.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.Conversions = true
			cfg.Notifications.Beats = true
			cfg.Notifications.Errors = true

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			if got.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, got.body)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled notification: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Conversions = false
	cfg.Notifications.Beats = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyConversionCompleted(context.Background(), "song.sns", time.Second); err != nil {
		t.Fatalf("disabled conversion notification returned error: %v", err)
	}
	if err := svc.NotifyConversionFailed(context.Background(), "song.wav", "boom"); err != nil {
		t.Fatalf("disabled error notification returned error: %v", err)
	}
	if err := svc.NotifyBeatsStolen(context.Background(), "song.sns", 3); err != nil {
		t.Fatalf("disabled beats notification returned error: %v", err)
	}
}

func TestNtfyServiceSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
