package httpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient_Timeout(t *testing.T) {
	c := NewClient(5 * time.Second)
	if c.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", c.Timeout)
	}
	if Client.Timeout != DefaultTimeout {
		t.Errorf("shared Client timeout = %v, want %v", Client.Timeout, DefaultTimeout)
	}
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"size":%d}`, len(body))
	}))
	defer srv.Close()

	var out struct {
		Size int `json:"size"`
	}
	err := PostJSON(context.Background(), srv.Client(), srv.URL, "image/jpeg", []byte("abc"), &out)
	if err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	if out.Size != 3 {
		t.Errorf("Size = %d, want 3", out.Size)
	}
}

func TestPostJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := PostJSON(context.Background(), srv.Client(), srv.URL, "image/jpeg", nil, nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable || se.Body != "model not loaded" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestPostJSON_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := PostJSON(ctx, nil, "http://127.0.0.1:1/detect", "image/jpeg", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
