package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"market-sim-orchestrator/internal/dto"
	"market-sim-orchestrator/internal/model"
	"market-sim-orchestrator/internal/pkg/logger"
	"market-sim-orchestrator/internal/repository/memory"
	"market-sim-orchestrator/pkg/events"
	"market-sim-orchestrator/pkg/research"
	"market-sim-orchestrator/pkg/survey"
)

// State of the simulation pipeline. Setup and Failed are editable;
// Simulating and Generating are the pending flags for the two network calls;
// Active means the questionnaire is readable.
type State string

const (
	StateSetup      State = "setup"
	StateSimulating State = "simulating"
	StateGenerating State = "generating"
	StateActive     State = "active"
	StateFailed     State = "failed"
)

// DefaultSampleSize seeds a newly selected persona.
const DefaultSampleSize = 50

// StageEventQuestionnaire is emitted on the notifier side-channel once a
// population simulation succeeds.
const StageEventQuestionnaire = "questionnaire"

// Client-side validation failures. These block ConfirmPopulation before any
// network traffic.
var (
	ErrNoPersonasSelected    = errors.New("no personas selected")
	ErrIncompleteSampleSizes = errors.New("every selected persona needs a sample size of at least 1")
	ErrNotEditable           = errors.New("population is confirmed; edit the configuration first")
	ErrNotActive             = errors.New("population has not been confirmed")
	ErrNotFailed             = errors.New("pipeline is not in a failed state")
	ErrUnsupportedFileType   = errors.New("questionnaire uploads must be PDF, DOCX or TXT")
)

// researchAPI is the slice of the research client the pipeline uses.
type researchAPI interface {
	SimulatePopulation(ctx context.Context, scope research.Scope, req *dto.SimulatePopulationRequest) (*model.PopulationSimulation, error)
	GenerateQuestionnaire(ctx context.Context, scope research.Scope, req *dto.GenerateQuestionnaireRequest) error
	GetQuestionnaire(ctx context.Context, scope research.Scope, simulationId string) (*model.Questionnaire, error)
	UploadQuestionnaire(ctx context.Context, scope research.Scope, simulationId, filename string, file io.Reader) error
}

type stagePublisher interface {
	PublishStage(ev events.StageEvent) error
}

// SimulationPipeline orchestrates persona selection, sample sizing,
// population simulation and questionnaire generation for one exploration.
// The simulation id returned by the population call threads unchanged
// through every later call of the run.
type SimulationPipeline struct {
	api   researchAPI
	bus   stagePublisher
	cache *memory.SnapshotStore
	log   logger.ILogger
	scope research.Scope
	orgId string

	mu         sync.Mutex
	state      State
	order      []string
	personas   map[string]model.Persona
	samples    model.SampleDistribution
	simulation *model.PopulationSimulation
	lastErr    error
}

func NewSimulationPipeline(
	api researchAPI,
	bus stagePublisher,
	cache *memory.SnapshotStore,
	log logger.ILogger,
	scope research.Scope,
	orgId string,
) *SimulationPipeline {
	return &SimulationPipeline{
		api:      api,
		bus:      bus,
		cache:    cache,
		log:      log,
		scope:    scope,
		orgId:    orgId,
		state:    StateSetup,
		personas: make(map[string]model.Persona),
		samples:  make(model.SampleDistribution),
	}
}

func (p *SimulationPipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastError returns the error that moved the pipeline to Failed, if any.
func (p *SimulationPipeline) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *SimulationPipeline) editable() bool {
	return p.state == StateSetup || p.state == StateFailed
}

// SelectPersona adds a persona to the population and seeds its sample size
// with the default. No-op outside an editable state.
func (p *SimulationPipeline) SelectPersona(persona model.Persona) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.editable() {
		return
	}
	if _, ok := p.personas[persona.Id]; ok {
		return
	}
	p.personas[persona.Id] = persona
	p.order = append(p.order, persona.Id)
	p.samples[persona.Id] = DefaultSampleSize
}

// DeselectPersona removes a persona and its sample-size entry.
func (p *SimulationPipeline) DeselectPersona(personaId string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.editable() {
		return
	}
	if _, ok := p.personas[personaId]; !ok {
		return
	}
	delete(p.personas, personaId)
	delete(p.samples, personaId)
	for i, id := range p.order {
		if id == personaId {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// SetSampleSize accepts the raw input value and applies it only when it
// parses to an integer >= 1 for a selected persona. Anything else is
// silently ignored; the current value stands.
func (p *SimulationPipeline) SetSampleSize(personaId, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.editable() {
		return
	}
	if _, ok := p.personas[personaId]; !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return
	}
	p.samples[personaId] = n
}

// SelectedPersonas returns the selection in selection order.
func (p *SimulationPipeline) SelectedPersonas() []model.Persona {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Persona, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.personas[id])
	}
	return out
}

// SampleDistribution returns a copy of the current persona -> size map.
func (p *SimulationPipeline) SampleDistribution() model.SampleDistribution {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(model.SampleDistribution, len(p.samples))
	for id, n := range p.samples {
		out[id] = n
	}
	return out
}

// Simulation returns the population record of the current run, if any.
func (p *SimulationPipeline) Simulation() *model.PopulationSimulation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.simulation
}

// ConfirmPopulation validates the selection, simulates the population and
// generates the questionnaire. The two network calls are strictly
// sequential: generation only starts after simulation resolves, carrying the
// simulation id it returned. Validation failures block the call with zero
// network traffic. Network failures move the pipeline to Failed, where
// Retry re-invokes this same flow.
func (p *SimulationPipeline) ConfirmPopulation(ctx context.Context) error {
	p.mu.Lock()
	if !p.editable() {
		p.mu.Unlock()
		return ErrNotEditable
	}
	if len(p.order) == 0 {
		p.mu.Unlock()
		return ErrNoPersonasSelected
	}
	for _, id := range p.order {
		if p.samples[id] < 1 {
			p.mu.Unlock()
			return ErrIncompleteSampleSizes
		}
	}
	personaIds := make([]string, len(p.order))
	copy(personaIds, p.order)
	distribution := make(map[string]int, len(p.samples))
	for id, n := range p.samples {
		distribution[id] = n
	}
	p.state = StateSimulating
	p.lastErr = nil
	p.mu.Unlock()

	sim, err := p.api.SimulatePopulation(ctx, p.scope, &dto.SimulatePopulationRequest{
		ExplorationId:      p.scope.ExplorationId,
		PersonaIds:         personaIds,
		SampleDistribution: distribution,
	})
	if err != nil {
		p.fail(fmt.Errorf("simulate population: %w", err))
		return fmt.Errorf("simulate population: %w", err)
	}

	p.mu.Lock()
	p.simulation = sim
	p.state = StateGenerating
	p.mu.Unlock()

	p.publishStageEvent()

	err = p.api.GenerateQuestionnaire(ctx, p.scope, &dto.GenerateQuestionnaireRequest{
		ExplorationId: p.scope.ExplorationId,
		PersonaIds:    personaIds,
		SimulationId:  sim.Id,
	})
	if err != nil {
		p.fail(fmt.Errorf("generate questionnaire: %w", err))
		return fmt.Errorf("generate questionnaire: %w", err)
	}

	p.mu.Lock()
	p.state = StateActive
	p.mu.Unlock()
	return nil
}

// Retry re-runs the confirm flow after a network failure.
func (p *SimulationPipeline) Retry(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateFailed {
		p.mu.Unlock()
		return ErrNotFailed
	}
	p.mu.Unlock()
	return p.ConfirmPopulation(ctx)
}

// EditConfiguration returns to Setup without clearing selections. The
// population simulation and questionnaire of the prior run are discarded.
func (p *SimulationPipeline) EditConfiguration() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateActive && p.state != StateFailed {
		return
	}
	if p.simulation != nil {
		p.cache.Invalidate(p.questionnaireKeyLocked())
	}
	p.simulation = nil
	p.lastErr = nil
	p.state = StateSetup
}

// Questionnaire reads the full questionnaire for the confirmed run. Reads go
// through the snapshot cache; an upload invalidates the snapshot so the next
// read refetches the superseding document.
func (p *SimulationPipeline) Questionnaire(ctx context.Context) (*model.Questionnaire, error) {
	p.mu.Lock()
	if p.state != StateActive || p.simulation == nil {
		p.mu.Unlock()
		return nil, ErrNotActive
	}
	key := p.questionnaireKeyLocked()
	simulationId := p.simulation.Id
	p.mu.Unlock()

	if cached, ok := p.cache.Get(key); ok {
		return cached.(*model.Questionnaire), nil
	}

	q, err := p.api.GetQuestionnaire(ctx, p.scope, simulationId)
	if err != nil {
		return nil, fmt.Errorf("read questionnaire: %w", err)
	}
	p.cache.Set(key, q)
	return q, nil
}

// UploadQuestionnaire replaces the generated questionnaire with an uploaded
// document, scoped to the current simulation id. Only PDF, DOCX and TXT are
// accepted, by extension or declared type.
func (p *SimulationPipeline) UploadQuestionnaire(ctx context.Context, filename, declaredType string, file io.Reader) error {
	p.mu.Lock()
	if p.state != StateActive || p.simulation == nil {
		p.mu.Unlock()
		return ErrNotActive
	}
	key := p.questionnaireKeyLocked()
	simulationId := p.simulation.Id
	p.mu.Unlock()

	if !validUploadType(filename, declaredType) {
		return ErrUnsupportedFileType
	}

	if err := p.api.UploadQuestionnaire(ctx, p.scope, simulationId, filename, file); err != nil {
		p.log.Error("simulation-pipeline", "questionnaire upload failed", map[string]interface{}{
			"error":         err.Error(),
			"simulation_id": simulationId,
		})
		return fmt.Errorf("upload questionnaire: %w", err)
	}

	p.cache.Invalidate(key)
	return nil
}

// SurveyConfig assembles the configuration the survey executor requires.
// Only available once the pipeline is Active.
func (p *SimulationPipeline) SurveyConfig(ctx context.Context) (*survey.Config, error) {
	q, err := p.Questionnaire(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// The questionnaire read dropped the lock; an EditConfiguration may have
	// discarded the run in the meantime.
	if p.state != StateActive || p.simulation == nil {
		return nil, ErrNotActive
	}
	personaIds := make([]string, len(p.order))
	copy(personaIds, p.order)
	personaNames := make([]string, 0, len(p.order))
	for _, id := range p.order {
		personaNames = append(personaNames, p.personas[id].Name)
	}
	distribution := make(model.SampleDistribution, len(p.samples))
	for id, n := range p.samples {
		distribution[id] = n
	}

	return &survey.Config{
		ExplorationId:      p.scope.ExplorationId,
		PersonaIds:         personaIds,
		PersonaNames:       personaNames,
		SimulationId:       p.simulation.Id,
		SampleDistribution: distribution,
		TotalSampleSize:    distribution.Total(),
		QuestionnaireData:  q,
	}, nil
}

func (p *SimulationPipeline) fail(err error) {
	p.mu.Lock()
	p.state = StateFailed
	p.lastErr = err
	p.mu.Unlock()
	p.log.Error("simulation-pipeline", "pipeline call failed", map[string]interface{}{
		"error": err.Error(),
	})
}

func (p *SimulationPipeline) publishStageEvent() {
	if p.bus == nil {
		return
	}
	ev := events.StageEvent{
		Stage:      StageEventQuestionnaire,
		OrgId:      p.orgId,
		OccurredAt: time.Now(),
	}
	if err := p.bus.PublishStage(ev); err != nil {
		p.log.Warn("simulation-pipeline", "stage event publish failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (p *SimulationPipeline) questionnaireKeyLocked() string {
	return memory.Key(p.scope.WorkspaceId, p.scope.ExplorationId, p.simulation.Id, "questionnaire")
}

var allowedUploadTypes = map[string]struct{}{
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain": {},
}

func validUploadType(filename, declaredType string) bool {
	if _, ok := allowedUploadTypes[declaredType]; ok {
		return true
	}
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".pdf") ||
		strings.HasSuffix(lower, ".docx") ||
		strings.HasSuffix(lower, ".txt")
}
