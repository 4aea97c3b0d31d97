package survey

import (
	"context"
	"fmt"
	"sync"

	"market-sim-orchestrator/internal/dto"
	"market-sim-orchestrator/internal/model"
	"market-sim-orchestrator/internal/pkg/logger"
	"market-sim-orchestrator/pkg/research"
)

// surveyAPI is the slice of the research client the executor uses.
type surveyAPI interface {
	SimulateSurvey(ctx context.Context, scope research.Scope, req *dto.SimulateSurveyRequest) (*model.SurveySimulationResult, error)
	PreviewSurvey(ctx context.Context, scope research.Scope, simulationId string) (*dto.SurveyPreview, error)
	DownloadSurveyPDF(ctx context.Context, scope research.Scope, simulationId string) ([]byte, error)
}

// Executor runs the survey simulation for a confirmed pipeline and derives
// the display sections from the raw result. Preview and download are
// independent idempotent reads against the same simulation id.
type Executor struct {
	api   surveyAPI
	log   logger.ILogger
	scope research.Scope

	mu       sync.Mutex
	cfg      *Config
	result   *model.SurveySimulationResult
	sections []DisplaySection
	active   string
}

// NewExecutor refuses an incomplete config with ErrMissingConfig; the host
// treats that as a routing precondition and redirects to the population
// step.
func NewExecutor(api surveyAPI, log logger.ILogger, scope research.Scope, cfg *Config) (*Executor, error) {
	if !cfg.Complete() {
		return nil, ErrMissingConfig
	}
	return &Executor{
		api:   api,
		log:   log,
		scope: scope,
		cfg:   cfg,
	}, nil
}

// Run flattens the questionnaire, simulates the survey and builds the
// display sections. The first section becomes the active selection.
func (e *Executor) Run(ctx context.Context) error {
	questions := flattenQuestions(e.cfg.QuestionnaireData)

	result, err := e.api.SimulateSurvey(ctx, e.scope, &dto.SimulateSurveyRequest{
		ExplorationId: e.cfg.ExplorationId,
		PersonaIds:    e.cfg.PersonaIds,
		SimulationId:  e.cfg.SimulationId,
		Questions:     questions,
	})
	if err != nil {
		e.log.Error("survey-executor", "survey simulation failed", map[string]interface{}{
			"error":         err.Error(),
			"simulation_id": e.cfg.SimulationId,
		})
		return fmt.Errorf("simulate survey: %w", err)
	}

	sections := BuildSections(result, e.cfg)

	e.mu.Lock()
	e.result = result
	e.sections = sections
	if len(sections) > 0 {
		e.active = sections[0].Title
	}
	e.mu.Unlock()
	return nil
}

func flattenQuestions(q *model.Questionnaire) []dto.SurveyQuestion {
	flat := q.Flatten()
	out := make([]dto.SurveyQuestion, 0, len(flat))
	for _, question := range flat {
		out = append(out, dto.SurveyQuestion{
			Id:      question.Id,
			Text:    question.Text,
			Options: question.Options,
		})
	}
	return out
}

// Sections returns the derived display sections in display order.
func (e *Executor) Sections() []DisplaySection {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]DisplaySection, len(e.sections))
	copy(out, e.sections)
	return out
}

// ActiveSection returns the currently selected section title.
func (e *Executor) ActiveSection() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// SelectSection switches the active display selection. Unknown titles are
// ignored and the current selection stands.
func (e *Executor) SelectSection(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.sections {
		if s.Title == title {
			e.active = title
			return
		}
	}
}

// Result returns the raw server result of the last run.
func (e *Executor) Result() *model.SurveySimulationResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Preview reads the JSON preview of the compiled report.
func (e *Executor) Preview(ctx context.Context) (*dto.SurveyPreview, error) {
	preview, err := e.api.PreviewSurvey(ctx, e.scope, e.cfg.SimulationId)
	if err != nil {
		return nil, fmt.Errorf("preview survey: %w", err)
	}
	return preview, nil
}

// DownloadPDF fetches the compiled report. The caller is responsible for the
// client-side save of the artifact.
func (e *Executor) DownloadPDF(ctx context.Context) ([]byte, string, error) {
	data, err := e.api.DownloadSurveyPDF(ctx, e.scope, e.cfg.SimulationId)
	if err != nil {
		return nil, "", fmt.Errorf("download survey report: %w", err)
	}
	filename := fmt.Sprintf("survey-report-%s.pdf", e.cfg.SimulationId)
	return data, filename, nil
}
