package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/jobpilot/internal/config"
)

func TestDetectStorageType(t *testing.T) {
	tests := []struct {
		endpoint string
		want     StorageType
	}{
		{"https://abc123.r2.cloudflarestorage.com", StorageTypeR2},
		{"s3.eu-north-1.amazonaws.com", StorageTypeS3},
		{"localhost:9000", StorageTypeS3Compatible},
	}
	for _, tc := range tests {
		t.Run(tc.endpoint, func(t *testing.T) {
			assert.Equal(t, tc.want, detectStorageType(tc.endpoint))
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "minio:9000", normalizeEndpoint("http://minio:9000/"))
	assert.Equal(t, "bucket.example.com", normalizeEndpoint("https://bucket.example.com/some/path"))
}

func TestNewStorage_Validation(t *testing.T) {
	_, err := NewStorage(&config.StorageConfig{Endpoint: "localhost:9000"})
	assert.Error(t, err, "bucket is required")

	_, err = NewStorage(&config.StorageConfig{Bucket: "resumes"})
	assert.Error(t, err, "endpoint is required")
}

func TestGetURL(t *testing.T) {
	withCDN, err := NewStorage(&config.StorageConfig{Endpoint: "localhost:9000", Bucket: "resumes", PublicURL: "https://cdn.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/resumes/1/cv.pdf", withCDN.GetURL("resumes/1/cv.pdf"))

	pathStyle, err := NewStorage(&config.StorageConfig{Endpoint: "localhost:9000", Bucket: "resumes"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/resumes/resumes/1/cv.pdf", pathStyle.GetURL("resumes/1/cv.pdf"))
}

// fakeS3 answers the handful of path-style S3 calls the client makes.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimPrefix(r.URL.Path, "/resumes/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = string(body)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Storage_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(&fakeS3{objects: map[string]string{}})
	t.Cleanup(srv.Close)

	store, err := NewStorage(&config.StorageConfig{
		Endpoint:  srv.URL,
		Bucket:    "resumes",
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "resumes/1/cv.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Upload(ctx, "resumes/1/cv.pdf", strings.NewReader("%PDF"), 4, "application/pdf"))

	exists, err = store.Exists(ctx, "resumes/1/cv.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := store.Download(ctx, "resumes/1/cv.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	_ = rc.Close()
	assert.Contains(t, string(body), "%PDF")

	require.NoError(t, store.Delete(ctx, "resumes/1/cv.pdf"))
	exists, err = store.Exists(ctx, "resumes/1/cv.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}
