package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestUploader(t *testing.T, endpoint, prefix string) *S3Uploader {
	t.Helper()
	u, err := NewS3Uploader(context.Background(), S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Prefix:          prefix,
		Endpoint:        endpoint,
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	})
	if err != nil {
		t.Fatalf("NewS3Uploader() error = %v", err)
	}
	return u
}

func TestKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "Run (voicestamped).mp3"},
		{"stamped", "stamped/Run (voicestamped).mp3"},
		{"stamped/", "stamped/Run (voicestamped).mp3"},
	}
	for _, tt := range tests {
		u := newTestUploader(t, "http://localhost:4566", tt.prefix)
		if got := u.Key("/music/Run (voicestamped).mp3"); got != tt.want {
			t.Errorf("Key() with prefix %q = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestUploadMockServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT method, got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/test-bucket/stamped/run.mp3") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		if !strings.Contains(string(body), "mp3 data") {
			t.Errorf("unexpected body: %s", string(body))
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	local := filepath.Join(t.TempDir(), "run.mp3")
	if err := os.WriteFile(local, []byte("mp3 data"), 0644); err != nil {
		t.Fatal(err)
	}

	u := newTestUploader(t, server.URL, "stamped")
	url, err := u.Upload(context.Background(), local)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	expectedURL := "https://test-bucket.s3.us-east-1.amazonaws.com/stamped/run.mp3"
	if url != expectedURL {
		t.Errorf("url = %v, want %v", url, expectedURL)
	}
}

func TestUploadMissingFile(t *testing.T) {
	u := newTestUploader(t, "http://localhost:4566", "")
	_, err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))
	if !errors.Is(err, ErrUpload) {
		t.Errorf("expected ErrUpload, got %v", err)
	}
}
