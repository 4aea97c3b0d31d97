package survey

import (
	"context"
	"errors"
	"testing"

	"market-sim-orchestrator/internal/dto"
	"market-sim-orchestrator/internal/model"
	"market-sim-orchestrator/internal/pkg/logger"
	"market-sim-orchestrator/pkg/research"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurveyAPI struct {
	simulateCalls []dto.SimulateSurveyRequest
	previewCalls  int
	downloadCalls int

	simulateErr error
	result      model.SurveySimulationResult
	pdf         []byte
}

func (f *fakeSurveyAPI) SimulateSurvey(_ context.Context, _ research.Scope, req *dto.SimulateSurveyRequest) (*model.SurveySimulationResult, error) {
	f.simulateCalls = append(f.simulateCalls, *req)
	if f.simulateErr != nil {
		return nil, f.simulateErr
	}
	result := f.result
	return &result, nil
}

func (f *fakeSurveyAPI) PreviewSurvey(_ context.Context, _ research.Scope, simulationId string) (*dto.SurveyPreview, error) {
	f.previewCalls++
	return &dto.SurveyPreview{SimulationId: simulationId, Title: "Preview"}, nil
}

func (f *fakeSurveyAPI) DownloadSurveyPDF(_ context.Context, _ research.Scope, _ string) ([]byte, error) {
	f.downloadCalls++
	return f.pdf, nil
}

func executorConfig() *Config {
	return &Config{
		ExplorationId:      "e-1",
		PersonaIds:         []string{"P1"},
		PersonaNames:       []string{"Urban Professional"},
		SimulationId:       "sim-123",
		SampleDistribution: model.SampleDistribution{"P1": 50},
		TotalSampleSize:    50,
		QuestionnaireData: &model.Questionnaire{
			Sections: []model.QuestionnaireSection{{
				Title: "Habits",
				Questions: []model.Question{
					{Id: "q-1", Text: "How often?", Options: []string{"Daily", "Weekly"}},
					{Id: "q-2", Text: "Why?", Options: []string{"Price", "Quality"}},
				},
			}},
		},
	}
}

func TestExecutorRejectsMissingConfig(t *testing.T) {
	// Entering survey results without a confirmed pipeline is a routing
	// precondition failure: no executor, zero simulate calls.
	api := &fakeSurveyAPI{}

	_, err := NewExecutor(api, logger.NopLogger{}, research.Scope{}, nil)
	assert.ErrorIs(t, err, ErrMissingConfig)

	_, err = NewExecutor(api, logger.NopLogger{}, research.Scope{}, &Config{SimulationId: "sim-1"})
	assert.ErrorIs(t, err, ErrMissingConfig)

	assert.Empty(t, api.simulateCalls)
}

func TestRunSubmitsFlattenedQuestions(t *testing.T) {
	api := &fakeSurveyAPI{}
	e, err := NewExecutor(api, logger.NopLogger{}, research.Scope{WorkspaceId: "w-1", ExplorationId: "e-1"}, executorConfig())
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background()))

	require.Len(t, api.simulateCalls, 1)
	call := api.simulateCalls[0]
	assert.Equal(t, "sim-123", call.SimulationId, "simulation id must pass through unchanged")
	assert.Equal(t, []string{"P1"}, call.PersonaIds)
	require.Len(t, call.Questions, 2)
	assert.Equal(t, "q-1", call.Questions[0].Id)
	assert.Equal(t, "Why?", call.Questions[1].Text)
}

func TestRunActivatesFirstSection(t *testing.T) {
	api := &fakeSurveyAPI{result: model.SurveySimulationResult{
		Narrative: model.SurveyNarrative{Summary: "A summary."},
	}}
	e, err := NewExecutor(api, logger.NopLogger{}, research.Scope{}, executorConfig())
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, SectionSummary, e.ActiveSection())
	sections := e.Sections()
	require.NotEmpty(t, sections)
	assert.Equal(t, SectionSummary, sections[0].Title)
}

func TestSelectSectionIgnoresUnknownTitle(t *testing.T) {
	api := &fakeSurveyAPI{}
	e, err := NewExecutor(api, logger.NopLogger{}, research.Scope{}, executorConfig())
	require.NoError(t, err)
	require.NoError(t, e.Run(context.Background()))

	e.SelectSection(SectionDemographics)
	assert.Equal(t, SectionDemographics, e.ActiveSection())

	e.SelectSection("No Such Section")
	assert.Equal(t, SectionDemographics, e.ActiveSection())
}

func TestRunSurfacesSimulationFailure(t *testing.T) {
	api := &fakeSurveyAPI{simulateErr: errors.New("backend unavailable")}
	e, err := NewExecutor(api, logger.NopLogger{}, research.Scope{}, executorConfig())
	require.NoError(t, err)

	assert.Error(t, e.Run(context.Background()))
	assert.Empty(t, e.Sections())
}

func TestPreviewAndDownloadAreIndependent(t *testing.T) {
	api := &fakeSurveyAPI{pdf: []byte("%PDF-1.7")}
	e, err := NewExecutor(api, logger.NopLogger{}, research.Scope{}, executorConfig())
	require.NoError(t, err)

	preview, err := e.Preview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sim-123", preview.SimulationId)

	data, filename, err := e.DownloadPDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), data)
	assert.Equal(t, "survey-report-sim-123.pdf", filename)

	// Neither requires a prior Run.
	assert.Equal(t, 1, api.previewCalls)
	assert.Equal(t, 1, api.downloadCalls)
	assert.Empty(t, api.simulateCalls)
}
