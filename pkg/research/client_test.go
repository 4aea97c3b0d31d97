package research

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"market-sim-orchestrator/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method string
	path   string
	query  string
	body   []byte
}

// newCaptureServer records every request and answers with the given body.
func newCaptureServer(t *testing.T, status int, responseBody string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = append(captured, capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   body,
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(responseBody))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func testScope() Scope {
	return Scope{WorkspaceId: "w-1", ExplorationId: "e-1"}
}

func TestSimulatePopulationRequest(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK,
		`{"status":"success","data":{"id":"sim-123","weighted_score":0.87,"status":"completed"}}`)
	c := NewClient(srv.URL, 5*time.Second)

	sim, err := c.SimulatePopulation(context.Background(), testScope(), &dto.SimulatePopulationRequest{
		ExplorationId:      "e-1",
		PersonaIds:         []string{"P1", "P2"},
		SampleDistribution: map[string]int{"P1": 30, "P2": 20},
	})
	require.NoError(t, err)
	assert.Equal(t, "sim-123", sim.Id)

	require.Len(t, *captured, 1)
	got := (*captured)[0]
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/workspaces/w-1/explorations/e-1/population/simulate", got.path)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(got.body, &body))
	assert.Equal(t, "e-1", body["exploration_id"])
	assert.Equal(t, []interface{}{"P1", "P2"}, body["persona_ids"])
}

func TestSimulatePopulationValidatesBeforeSending(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL, 5*time.Second)

	_, err := c.SimulatePopulation(context.Background(), testScope(), &dto.SimulatePopulationRequest{
		ExplorationId: "e-1",
	})

	require.Error(t, err)
	assert.Empty(t, *captured, "invalid requests must not reach the network")
}

func TestGenerateQuestionnaireThreadsSimulationId(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, `{"status":"success"}`)
	c := NewClient(srv.URL, 5*time.Second)

	err := c.GenerateQuestionnaire(context.Background(), testScope(), &dto.GenerateQuestionnaireRequest{
		ExplorationId: "e-1",
		PersonaIds:    []string{"P1"},
		SimulationId:  "sim-123",
	})
	require.NoError(t, err)

	require.Len(t, *captured, 1)
	got := (*captured)[0]
	assert.Equal(t, "/workspaces/w-1/explorations/e-1/questionnaire/generate", got.path)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(got.body, &body))
	assert.Equal(t, "sim-123", body["simulation_id"])
	assert.Equal(t, []interface{}{"P1"}, body["persona_id"])
}

func TestGetQuestionnaireBackfillsSimulationId(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK,
		`{"sections":[{"title":"Habits","questions":[{"id":"q-1","text":"How often?"}]}]}`)
	c := NewClient(srv.URL, 5*time.Second)

	q, err := c.GetQuestionnaire(context.Background(), testScope(), "sim-123")
	require.NoError(t, err)

	assert.Equal(t, "/workspaces/w-1/explorations/e-1/questionnaire/allquestionnaires/sim-123", (*captured)[0].path)
	assert.Equal(t, "sim-123", q.SimulationId)
	require.Len(t, q.Sections, 1)
	assert.Equal(t, "q-1", q.Sections[0].Questions[0].Id)
}

func TestErrorIncludesStatusAndBody(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusInternalServerError, `{"error":"population service down"}`)
	c := NewClient(srv.URL, 5*time.Second)

	_, err := c.GetQuestionnaire(context.Background(), testScope(), "sim-123")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "population service down")
}

func TestUploadQuestionnaireMultipart(t *testing.T) {
	var gotQuery, gotFilename, gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		content, _ := io.ReadAll(file)
		gotContent = string(content)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, 5*time.Second)

	err := c.UploadQuestionnaire(context.Background(), testScope(), "sim-123",
		"questionnaire.pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)

	assert.Equal(t, "simulation_id=sim-123", gotQuery)
	assert.Equal(t, "questionnaire.pdf", gotFilename)
	assert.Equal(t, "%PDF-1.7", gotContent)
}

func TestListRebuttalQuestionsQueryParams(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK,
		`{"status":"success","data":[{"id":"q-1","text":"How often?"}]}`)
	c := NewClient(srv.URL, 5*time.Second)

	questions, err := c.ListRebuttalQuestions(context.Background(), testScope(), &dto.RebuttalQuestionsRequest{
		SimulationId:       "sim-123",
		SurveySimulationId: "survey-sim-1",
	})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "q-1", questions[0].Id)

	got := (*captured)[0]
	assert.Equal(t, "/workspaces/w-1/explorations/e-1/rebuttal/questions", got.path)
	assert.Contains(t, got.query, "simulation_id=sim-123")
	assert.Contains(t, got.query, "survey_simulation_id=survey-sim-1")
}

func TestDownloadSurveyPDFReturnsRawBytes(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, "%PDF-1.7 binary payload")
	c := NewClient(srv.URL, 5*time.Second)

	data, err := c.DownloadSurveyPDF(context.Background(), testScope(), "sim-123")
	require.NoError(t, err)

	// Binary artifacts bypass envelope decoding entirely.
	assert.Equal(t, []byte("%PDF-1.7 binary payload"), data)
	assert.Equal(t, "/workspaces/w-1/explorations/e-1/questionnaire/simulation/sim-123/download", (*captured)[0].path)
}

func TestEndExplorationPostsToEnd(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, `{"status":"success"}`)
	c := NewClient(srv.URL, 5*time.Second)

	require.NoError(t, c.EndExploration(context.Background(), testScope()))

	got := (*captured)[0]
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/workspaces/w-1/explorations/e-1/end", got.path)
}
