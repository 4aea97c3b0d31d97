package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"market-sim-orchestrator/internal/dto"
	"market-sim-orchestrator/internal/model"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Scope identifies the workspace/exploration pair every research endpoint is
// nested under. Callers supply it per call so one client serves any number of
// explorations.
type Scope struct {
	WorkspaceId   string
	ExplorationId string
}

// Client talks to the market-research backend. All responses pass through
// the envelope normalizer, so callers never see the {status, data} wrapper.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	validate *validator.Validate
	tracer   trace.Tracer
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: timeout,
		},
		validate: validator.New(),
		tracer:   otel.Tracer("research-client"),
	}
}

func (c *Client) scopeURL(scope Scope, suffix string) string {
	return fmt.Sprintf("%s/workspaces/%s/explorations/%s/%s",
		c.BaseURL, scope.WorkspaceId, scope.ExplorationId, suffix)
}

// SimulatePopulation issues POST .../population/simulate and returns the
// server's population record. The returned Id is the simulation id every
// later pipeline call must carry unchanged.
func (c *Client) SimulatePopulation(ctx context.Context, scope Scope, req *dto.SimulatePopulationRequest) (*model.PopulationSimulation, error) {
	ctx, span := c.tracer.Start(ctx, "population.simulate")
	defer span.End()

	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate population request: %w", err)
	}

	var sim model.PopulationSimulation
	if err := c.postJSON(ctx, c.scopeURL(scope, "population/simulate"), req, &sim); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("simulation_id", sim.Id))
	return &sim, nil
}

// GenerateQuestionnaire issues POST .../questionnaire/generate for the given
// simulation id.
func (c *Client) GenerateQuestionnaire(ctx context.Context, scope Scope, req *dto.GenerateQuestionnaireRequest) error {
	ctx, span := c.tracer.Start(ctx, "questionnaire.generate")
	defer span.End()

	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("validate questionnaire request: %w", err)
	}
	span.SetAttributes(attribute.String("simulation_id", req.SimulationId))

	return c.postJSON(ctx, c.scopeURL(scope, "questionnaire/generate"), req, nil)
}

// GetQuestionnaire issues GET .../questionnaire/allquestionnaires/{simulationId}.
func (c *Client) GetQuestionnaire(ctx context.Context, scope Scope, simulationId string) (*model.Questionnaire, error) {
	ctx, span := c.tracer.Start(ctx, "questionnaire.read")
	defer span.End()
	span.SetAttributes(attribute.String("simulation_id", simulationId))

	var q model.Questionnaire
	url := c.scopeURL(scope, "questionnaire/allquestionnaires/"+simulationId)
	if err := c.getJSON(ctx, url, &q); err != nil {
		return nil, err
	}
	if q.SimulationId == "" {
		q.SimulationId = simulationId
	}
	return &q, nil
}

// --- shared transport helpers ---

func (c *Client) postJSON(ctx context.Context, url string, payload interface{}, out interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("research request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("research error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if out == nil || len(bodyBytes) == 0 {
		return nil
	}
	if err := decodeEnvelope(bodyBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// doRaw returns the raw response body, for binary artifacts.
func (c *Client) doRaw(req *http.Request) ([]byte, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("research request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("research error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}
	return bodyBytes, nil
}
