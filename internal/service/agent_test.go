package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/jobpilot/internal/domain"
	"github.com/timmy/jobpilot/internal/logger"
)

func newAgentServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestAgentRun_TailorStoresCoverLetter(t *testing.T) {
	f := newAppFixture(t, true)
	ctx := context.Background()
	app, err := f.svc.Create(ctx, &CreateApplicationRequest{JobTitle: "Backend"})
	require.NoError(t, err)

	var gotAuth string
	var gotBody AgentRunRequest
	srv := newAgentServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/agent/run", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(AgentRunResponse{
			Status: AgentStatusCompleted,
			Result: &AgentResult{
				CoverLetter: "Dear hiring manager",
				MatchScores: []MatchScore{{JobID: "j1", Score: 0.82, SkillsMatched: []string{"go"}}},
			},
		})
	})

	agent := NewAgentService(&AgentConfig{BaseURL: srv.URL + "/", APIKey: "secret"}, f.svc, logger.GetDefault())
	resp, err := agent.Run(ctx, &AgentRunRequest{
		Action: AgentActionTailorApplication,
		Params: map[string]interface{}{"application_id": app.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, AgentActionTailorApplication, gotBody.Action)
	assert.Equal(t, AgentStatusCompleted, resp.Status)
	assert.Equal(t, AgentActionTailorApplication, resp.Result.Action)
	require.Len(t, resp.Result.MatchScores, 1)
	assert.InDelta(t, 0.82, resp.Result.MatchScores[0].Score, 1e-9)

	got, err := f.svc.Get(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CoverLetter)
	assert.Equal(t, "Dear hiring manager", *got.CoverLetter)
	assert.Empty(t, got.Events)
}

func TestAgentRun_ResultErrorIsFailedStatus(t *testing.T) {
	srv := newAgentServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"completed","result":{"action":"match_jobs","error":"no resume on file"}}`))
	})

	agent := NewAgentService(&AgentConfig{BaseURL: srv.URL}, nil, logger.GetDefault())
	resp, err := agent.Run(context.Background(), &AgentRunRequest{Action: AgentActionMatchJobs})
	require.NoError(t, err)
	assert.Equal(t, AgentStatusFailed, resp.Status)
	assert.Equal(t, "no resume on file", resp.Result.Error)
	assert.Equal(t, AgentActionMatchJobs, resp.Result.Action)
}

func TestAgentRun_DecodesEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus string
		wantJobs   int
	}{
		{"completed with result", `{"status":"completed","result":{"jobs_found":[{"title":"a"},{"title":"b"},{"title":"c"}]}}`, AgentStatusCompleted, 3},
		{"upstream failed status kept", `{"status":"failed","result":{}}`, AgentStatusFailed, 0},
		{"missing status defaults to completed", `{"result":{"jobs_found":[{"title":"a"}]}}`, AgentStatusCompleted, 1},
		{"missing result", `{"status":"completed"}`, AgentStatusCompleted, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAgentServer(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			resp, err := NewAgentService(&AgentConfig{BaseURL: srv.URL}, nil, logger.GetDefault()).
				Run(context.Background(), &AgentRunRequest{Action: AgentActionSearchJobs})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.Status)
			require.NotNil(t, resp.Result)
			assert.Len(t, resp.Result.JobsFound, tt.wantJobs)
			assert.Equal(t, AgentActionSearchJobs, resp.Result.Action)
		})
	}
}

func TestAgentRun_Failures(t *testing.T) {
	srv := newAgentServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream model unavailable"))
	})

	var agentErr *domain.AgentError

	_, err := NewAgentService(&AgentConfig{BaseURL: srv.URL}, nil, logger.GetDefault()).
		Run(context.Background(), &AgentRunRequest{Action: AgentActionSearchJobs})
	require.True(t, errors.As(err, &agentErr))
	assert.Contains(t, agentErr.Message, "502")

	_, err = NewAgentService(&AgentConfig{}, nil, logger.GetDefault()).
		Run(context.Background(), &AgentRunRequest{Action: AgentActionSearchJobs})
	assert.True(t, errors.As(err, &agentErr))

	_, err = NewAgentService(&AgentConfig{BaseURL: "http://127.0.0.1:1"}, nil, logger.GetDefault()).
		Run(context.Background(), &AgentRunRequest{Action: AgentActionSearchJobs})
	require.True(t, errors.As(err, &agentErr))
	assert.NotNil(t, agentErr.Unwrap())

	_, err = NewAgentService(&AgentConfig{BaseURL: srv.URL}, nil, logger.GetDefault()).
		Run(context.Background(), &AgentRunRequest{})
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))
}
