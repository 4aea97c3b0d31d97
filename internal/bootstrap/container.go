package bootstrap

import (
	"time"

	"market-sim-orchestrator/internal/config"
	"market-sim-orchestrator/internal/pkg/logger"
	"market-sim-orchestrator/internal/repository/memory"
	"market-sim-orchestrator/pkg/assistant"
	"market-sim-orchestrator/pkg/events"
	"market-sim-orchestrator/pkg/pipeline"
	"market-sim-orchestrator/pkg/rebuttal"
	"market-sim-orchestrator/pkg/research"
	"market-sim-orchestrator/pkg/survey"
	"market-sim-orchestrator/pkg/workflow"
)

// Container wires the orchestration graph: config, logger, the two backend
// clients, the in-process event bus, the workflow components and the
// simulation pipeline. Survey executors and rebuttal managers are created
// per run because they need ids the pipeline only produces at runtime.
type Container struct {
	Config *config.Config
	Logger logger.ILogger

	Research  *research.Client
	Assistant *assistant.Client

	Bus        *events.Bus
	Cache      *memory.SnapshotStore
	Resolver   *workflow.StageResolver
	Notifier   *workflow.WorkflowNotifier
	Guidance   *workflow.GuidanceTrigger
	Dispatcher *workflow.Dispatcher

	Pipeline *pipeline.SimulationPipeline
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Backend Clients
	researchClient := research.NewClient(
		cfg.Research.BaseURL,
		time.Duration(cfg.Research.TimeoutSeconds)*time.Second,
	)
	assistantClient := assistant.NewClient(
		cfg.Assistant.BaseURL,
		time.Duration(cfg.Assistant.TimeoutSeconds)*time.Second,
	)

	// 3. Event Bus & Caches
	bus := events.NewBus()
	cache := memory.NewSnapshotStore()

	// 4. Workflow Components
	// Assistant traffic logs to its own file so fire-and-forget push
	// failures do not drown the main log.
	assistantLogger := logger.NewIsolatedLogger("logs/assistant.log")
	resolver := workflow.NewStageResolver()
	notifier := workflow.NewWorkflowNotifier(resolver, assistantClient, assistantLogger)
	guidance := workflow.NewGuidanceTrigger(assistantClient, assistantLogger)
	dispatcher := workflow.NewDispatcher(bus, resolver, notifier, guidance, sysLogger)

	// 5. Simulation Pipeline
	scope := research.Scope{
		WorkspaceId:   cfg.Research.WorkspaceId,
		ExplorationId: cfg.Research.ExplorationId,
	}
	simPipeline := pipeline.NewSimulationPipeline(
		researchClient,
		bus,
		cache,
		sysLogger,
		scope,
		cfg.Assistant.OrgId,
	)

	return &Container{
		Config: cfg,
		Logger: sysLogger,

		Research:  researchClient,
		Assistant: assistantClient,

		Bus:        bus,
		Cache:      cache,
		Resolver:   resolver,
		Notifier:   notifier,
		Guidance:   guidance,
		Dispatcher: dispatcher,

		Pipeline: simPipeline,
	}
}

// Scope returns the workspace/exploration pair the container operates in.
func (c *Container) Scope() research.Scope {
	return research.Scope{
		WorkspaceId:   c.Config.Research.WorkspaceId,
		ExplorationId: c.Config.Research.ExplorationId,
	}
}

// NewSurveyExecutor builds an executor for a confirmed pipeline run.
func (c *Container) NewSurveyExecutor(cfg *survey.Config) (*survey.Executor, error) {
	return survey.NewExecutor(c.Research, c.Logger, c.Scope(), cfg)
}

// NewRebuttalManager builds a session manager for one persona's rebuttal
// round, after the survey simulation has produced its own id.
func (c *Container) NewRebuttalManager(personaId, simulationId, surveySimulationId string) *rebuttal.Manager {
	return rebuttal.NewManager(
		c.Research,
		c.Cache,
		c.Logger,
		c.Scope(),
		personaId, simulationId, surveySimulationId,
	)
}
