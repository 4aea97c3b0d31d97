package research

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"market-sim-orchestrator/internal/dto"
	"market-sim-orchestrator/internal/model"

	"go.opentelemetry.io/otel/attribute"
)

// SimulateSurvey issues POST .../questionnaire/simulate and returns the raw
// survey result for section derivation.
func (c *Client) SimulateSurvey(ctx context.Context, scope Scope, req *dto.SimulateSurveyRequest) (*model.SurveySimulationResult, error) {
	ctx, span := c.tracer.Start(ctx, "survey.simulate")
	defer span.End()

	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate survey request: %w", err)
	}
	span.SetAttributes(
		attribute.String("simulation_id", req.SimulationId),
		attribute.Int("question_count", len(req.Questions)),
	)

	var result model.SurveySimulationResult
	if err := c.postJSON(ctx, c.scopeURL(scope, "questionnaire/simulate"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PreviewSurvey issues GET .../questionnaire/simulation/{id}/preview.
// Idempotent; safe to call repeatedly against the same simulation id.
func (c *Client) PreviewSurvey(ctx context.Context, scope Scope, simulationId string) (*dto.SurveyPreview, error) {
	ctx, span := c.tracer.Start(ctx, "survey.preview")
	defer span.End()
	span.SetAttributes(attribute.String("simulation_id", simulationId))

	var preview dto.SurveyPreview
	url := c.scopeURL(scope, "questionnaire/simulation/"+simulationId+"/preview")
	if err := c.getJSON(ctx, url, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// DownloadSurveyPDF issues GET .../questionnaire/simulation/{id}/download and
// returns the compiled report as a binary artifact.
func (c *Client) DownloadSurveyPDF(ctx context.Context, scope Scope, simulationId string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "survey.download")
	defer span.End()
	span.SetAttributes(attribute.String("simulation_id", simulationId))

	u := c.scopeURL(scope, "questionnaire/simulation/"+simulationId+"/download")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.doRaw(req)
}

// UploadQuestionnaire issues POST .../questionnaire/upload?simulation_id= as
// a multipart file. The uploaded document supersedes the generated
// questionnaire for that simulation id.
func (c *Client) UploadQuestionnaire(ctx context.Context, scope Scope, simulationId, filename string, file io.Reader) error {
	ctx, span := c.tracer.Start(ctx, "questionnaire.upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("simulation_id", simulationId),
		attribute.String("filename", filename),
	)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	u := c.scopeURL(scope, "questionnaire/upload") + "?simulation_id=" + url.QueryEscape(simulationId)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, nil)
}
