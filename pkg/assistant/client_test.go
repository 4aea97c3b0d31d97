package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"market-sim-orchestrator/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushStatePutsToOrgScopedPath(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, 5*time.Second)

	err := c.PushState(context.Background(), "org-1", &dto.PushStateRequest{
		State:           "thinking",
		Stage:           "research_objectives",
		CompletedStages: []string{"organization_setup"},
		Context: dto.StateContext{
			Page:        "Research Objective",
			Route:       "/workspaces/w-1/research-objective",
			Description: "Defining the research objective for this exploration",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/organizations/org-1/omi/state", gotPath)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(gotBody, &body))
	assert.Equal(t, "thinking", body["state"])
	assert.Equal(t, []interface{}{"organization_setup"}, body["completed_stages"])
}

func TestRequestGuidancePostsIntent(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, 5*time.Second)

	err := c.RequestGuidance(context.Background(), "org-1", &dto.GuidanceRequest{
		Stage:     "organization_setup",
		UserInput: dto.GuidanceInput{Intent: "create_workspace"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/organizations/org-1/omi/guidance", gotPath)

	var body struct {
		Stage     string `json:"stage"`
		UserInput struct {
			Intent string `json:"intent"`
		} `json:"user_input"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &body))
	assert.Equal(t, "create_workspace", body.UserInput.Intent)
}

func TestPushStateValidatesBeforeSending(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, 5*time.Second)

	err := c.PushState(context.Background(), "org-1", &dto.PushStateRequest{})

	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestErrorIncludesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream assistant offline"))
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, 5*time.Second)

	err := c.PushState(context.Background(), "org-1", &dto.PushStateRequest{
		State: "thinking",
		Stage: "research_objectives",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "upstream assistant offline")
}

func TestChatDecodesReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reply":"Try narrowing the objective to one market."}`))
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, 5*time.Second)

	resp, err := c.Chat(context.Background(), "org-1", &dto.AssistantChatRequest{Message: "Any advice?"})
	require.NoError(t, err)
	assert.Equal(t, "Try narrowing the objective to one market.", resp.Reply)
}
