package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gleamhunt/gleam-finder/internal/models"
)

func TestClient_FetchText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("User-Agent = %q", ua)
		}
		if accept := r.Header.Get("Accept"); accept != "text/html,text/plain" {
			t.Errorf("Accept = %q", accept)
		}
		w.Write([]byte("<html>hello</html>"))
	}))
	defer server.Close()

	c := New(5*time.Second, 0)
	body, err := c.FetchText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchText() error = %v", err)
	}
	if body != "<html>hello</html>" {
		t.Errorf("body = %q", body)
	}
}

func TestClient_FetchText_NonOKStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"rate limited", http.StatusTooManyRequests},
		{"server error", http.StatusInternalServerError},
		{"no content", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			c := New(5*time.Second, 0)
			_, err := c.FetchText(context.Background(), server.URL)
			if !errors.Is(err, models.ErrInvalidResponse) {
				t.Errorf("FetchText() error = %v, want ErrInvalidResponse", err)
			}
		})
	}
}

func TestClient_FetchText_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	c := New(time.Second, 0)
	_, err := c.FetchText(context.Background(), server.URL)
	if !errors.Is(err, models.ErrTimeout) {
		t.Errorf("FetchText() error = %v, want ErrTimeout", err)
	}
}

func TestClient_FetchText_NotText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xff, 0xfe, 0x00, 0x80})
	}))
	defer server.Close()

	c := New(5*time.Second, 0)
	_, err := c.FetchText(context.Background(), server.URL)
	if !errors.Is(err, models.ErrInvalidResponse) {
		t.Errorf("FetchText() error = %v, want ErrInvalidResponse", err)
	}
}

func TestClient_FetchText_CancelledContext(t *testing.T) {
	c := New(5*time.Second, time.Hour) // limiter will block
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchText(ctx, "https://example.com/")
	if !errors.Is(err, models.ErrTimeout) {
		t.Errorf("FetchText() error = %v, want ErrTimeout", err)
	}
}
