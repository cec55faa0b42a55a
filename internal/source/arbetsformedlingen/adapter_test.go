package arbetsformedlingen

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/jobpilot/internal/source"
)

const samplePayload = `{
  "total": {"value": 3},
  "hits": [
    {
      "id": "28712345",
      "headline": "Python Developer",
      "employer": {"name": "Spotify AB"},
      "workplace_address": {"city": "Stockholm", "municipality": "Stockholm"},
      "remote_work": true,
      "description": {"text": "Build things"},
      "webpage_url": "https://arbetsformedlingen.se/platsbanken/annonser/28712345",
      "publication_date": "2026-10-01T08:00:00"
    },
    {
      "id": 28712346,
      "headline": "Backend Engineer",
      "employer": {},
      "workplace_address": {"municipality": "Göteborg"}
    },
    {
      "headline": "Data Engineer"
    }
  ]
}`

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch_MapsHits(t *testing.T) {
	var gotQuery, gotLimit, gotAccept string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	})

	a := NewAdapter(Config{BaseURL: srv.URL})
	jobs, err := a.Search(context.Background(), source.Query{Keywords: "python developer", Location: "Stockholm", Limit: 10})
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	assert.Equal(t, "python developer Stockholm", gotQuery)
	assert.Equal(t, "10", gotLimit)
	assert.Equal(t, "application/json", gotAccept)

	first := jobs[0]
	assert.Equal(t, SourceID, first.Source)
	assert.Equal(t, "28712345", first.SourceID)
	assert.Equal(t, "Python Developer", first.Title)
	assert.Equal(t, "Spotify AB", first.Company)
	assert.Equal(t, "Stockholm", first.Location)
	assert.True(t, first.IsRemote)
	assert.Equal(t, "Build things", first.Description)
	assert.Nil(t, first.SalaryMin)
	assert.Nil(t, first.SalaryMax)
	assert.Equal(t, "2026-10-01T08:00:00", first.PostedAt)

	second := jobs[1]
	assert.Equal(t, "28712346", second.SourceID, "numeric ids are stringified")
	assert.Equal(t, "Unknown", second.Company)
	assert.Equal(t, "Göteborg", second.Location, "falls back to municipality")
	assert.False(t, second.IsRemote)

	third := jobs[2]
	assert.Equal(t, "", third.SourceID)
	assert.Equal(t, "Unknown", third.Company)
	assert.Equal(t, DefaultLocation, third.Location)
	assert.Equal(t, "", third.Description)
}

func TestSearch_RespectsLimitAndTruncates(t *testing.T) {
	long := strings.Repeat("x", 900)
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits":[
			{"id":"1","headline":"a","description":{"text":"` + long + `"}},
			{"id":"2","headline":"b"},
			{"id":"3","headline":"c"}]}`))
	})

	a := NewAdapter(Config{BaseURL: srv.URL, DescriptionMaxLength: 500})
	jobs, err := a.Search(context.Background(), source.Query{Keywords: "go", Limit: 2})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Len(t, jobs[0].Description, 500)
}

func TestSearch_NonPositiveLimitSkipsRequest(t *testing.T) {
	hits := 0
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(samplePayload))
	})

	a := NewAdapter(Config{BaseURL: srv.URL})
	for _, limit := range []int{0, -1} {
		jobs, err := a.Search(context.Background(), source.Query{Keywords: "go", Limit: limit})
		require.NoError(t, err)
		assert.NotNil(t, jobs)
		assert.Empty(t, jobs)
	}
	assert.Zero(t, hits)
}

func TestSearch_FailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  string
	}{
		{
			name: "non-200",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			reason: source.ReasonStatus,
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"hits": "nope"`))
			},
			reason: source.ReasonPayload,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, tc.handler)
			jobs, err := NewAdapter(Config{BaseURL: srv.URL}).Search(context.Background(), source.Query{Keywords: "go", Limit: 5})
			assert.Empty(t, jobs)

			var fetchErr *source.FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, tc.reason, fetchErr.Reason)
			assert.Equal(t, SourceID, fetchErr.Source)
		})
	}
}

func TestSearch_TransportFailureAndTimeout(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"hits":[]}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	jobs, err := NewAdapter(Config{BaseURL: srv.URL}).Search(ctx, source.Query{Keywords: "go", Limit: 5})
	assert.Empty(t, jobs)

	var fetchErr *source.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, source.ReasonTransport, fetchErr.Reason)
}

func TestAdapterMetadata(t *testing.T) {
	a := NewAdapter(Config{})
	assert.Equal(t, "arbetsformedlingen", a.GetSourceID())
	assert.False(t, a.RemoteCapable())
}
