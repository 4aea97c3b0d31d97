package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"market-sim-orchestrator/internal/bootstrap"
	"market-sim-orchestrator/internal/config"
	"market-sim-orchestrator/internal/model"
	"market-sim-orchestrator/internal/tracer"
	"market-sim-orchestrator/pkg/events"

	"github.com/fatih/color"
)

// End-to-end harness: walks one full research run against live backends.
// Navigation events drive the workflow stage components, then the pipeline,
// survey and rebuttal steps run in product order.
func main() {
	color.Cyan("🚀 Market Research Simulation Walkthrough\n")

	// 0. Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Configuration & Container
	cfg := config.Load()
	if cfg.Research.WorkspaceId == "" || cfg.Research.ExplorationId == "" {
		log.Fatal("RESEARCH_WORKSPACE_ID and RESEARCH_EXPLORATION_ID must be set")
	}
	c := bootstrap.NewContainer(cfg)
	defer c.Logger.Sync()
	defer c.Bus.Close()

	ctx := context.Background()
	if err := c.Dispatcher.Run(ctx); err != nil {
		log.Fatalf("Failed to start dispatcher: %v", err)
	}

	// 2. Navigate through the setup stages
	color.Yellow("\n[WORKFLOW] 1. Walking the setup routes")
	routes := []string{
		"/organizations/" + cfg.Assistant.OrgId + "/workspaces",
		"/organizations/" + cfg.Assistant.OrgId + "/workspace-setup",
		"/workspaces/" + cfg.Research.WorkspaceId + "/research-objective",
		"/workspaces/" + cfg.Research.WorkspaceId + "/persona",
	}
	for _, route := range routes {
		if err := c.Bus.PublishNavigation(events.NavigationEvent{
			Path:       route,
			OrgId:      cfg.Assistant.OrgId,
			OccurredAt: time.Now(),
		}); err != nil {
			color.Red("Failed to publish %s: %v", route, err)
		}
		fmt.Printf("  → %s\n", route)
	}
	// Events dispatch asynchronously; give the consumers a beat.
	time.Sleep(200 * time.Millisecond)
	color.Green("Completed stages so far: %v", c.Resolver.CompletedStages())

	// 3. Population setup & confirmation
	color.Yellow("\n[PIPELINE] 2. Selecting personas and confirming the population")
	c.Pipeline.SelectPersona(model.Persona{Id: "P1", Name: "Urban Professional"})
	c.Pipeline.SelectPersona(model.Persona{Id: "P2", Name: "Rural Retiree"})
	c.Pipeline.SetSampleSize("P1", "30")
	c.Pipeline.SetSampleSize("P2", "20")

	if err := c.Pipeline.ConfirmPopulation(ctx); err != nil {
		color.Red("Population confirmation failed: %v", err)
		color.Yellow("Retrying once...")
		if err := c.Pipeline.Retry(ctx); err != nil {
			log.Fatalf("Retry failed: %v", err)
		}
	}
	sim := c.Pipeline.Simulation()
	color.Green("Population simulated: id=%s score=%.2f", sim.Id, sim.WeightedScore)

	// 4. Questionnaire
	color.Yellow("\n[PIPELINE] 3. Reading the generated questionnaire")
	questionnaire, err := c.Pipeline.Questionnaire(ctx)
	if err != nil {
		log.Fatalf("Questionnaire read failed: %v", err)
	}
	for _, section := range questionnaire.Sections {
		fmt.Printf("  Section %q: %d questions\n", section.Title, len(section.Questions))
	}

	// 5. Survey simulation
	color.Yellow("\n[SURVEY] 4. Running the survey simulation")
	surveyCfg, err := c.Pipeline.SurveyConfig(ctx)
	if err != nil {
		log.Fatalf("Survey config unavailable: %v", err)
	}
	executor, err := c.NewSurveyExecutor(surveyCfg)
	if err != nil {
		log.Fatalf("Survey executor rejected config: %v", err)
	}
	if err := executor.Run(ctx); err != nil {
		log.Fatalf("Survey simulation failed: %v", err)
	}
	for _, section := range executor.Sections() {
		fmt.Printf("  Section %q: %d questions, %d facts\n",
			section.Title, len(section.Questions), len(section.Facts))
	}

	// 6. Report download, saved client-side
	color.Yellow("\n[SURVEY] 5. Downloading the compiled report")
	data, filename, err := executor.DownloadPDF(ctx)
	if err != nil {
		color.Red("Download failed: %v", err)
	} else if err := os.WriteFile(filename, data, 0o644); err != nil {
		color.Red("Failed to save report: %v", err)
	} else {
		color.Green("Report saved to %s (%d bytes)", filename, len(data))
	}

	// 7. Rebuttal round for the first persona
	color.Yellow("\n[REBUTTAL] 6. Probing one survey answer in conversation")
	surveySimId := sim.Id
	if result := executor.Result(); result != nil && result.SimulationId != "" {
		surveySimId = result.SimulationId
	}
	manager := c.NewRebuttalManager("P1", sim.Id, surveySimId)
	if err := manager.Activate(ctx); err != nil {
		log.Fatalf("Rebuttal activation failed: %v", err)
	}
	catalog := manager.Catalog()
	if len(catalog) == 0 {
		color.Red("No rebuttal-eligible questions; skipping")
	} else {
		question := catalog[0]
		fmt.Printf("  Question: %s\n", question.Text)
		if err := manager.SelectQuestion(question.Id); err != nil {
			log.Fatalf("Question selection failed: %v", err)
		}
		if err := manager.StartRebuttal(ctx); err != nil {
			log.Fatalf("Session start failed: %v", err)
		}
		if err := manager.SendReply(ctx, "Can you explain what drove that answer?"); err != nil {
			color.Red("Reply failed: %v", err)
		}
		for _, msg := range manager.Messages() {
			fmt.Printf("  [%s] %s\n", msg.Sender, msg.Text)
		}
	}

	// 8. Leave the exploration
	color.Yellow("\n[REBUTTAL] 7. Ending the exploration")
	manager.EndExploration(ctx)
	if err := c.Bus.PublishNavigation(events.NavigationEvent{
		Path:       "/workspaces/" + cfg.Research.WorkspaceId + "/insights",
		OrgId:      cfg.Assistant.OrgId,
		OccurredAt: time.Now(),
	}); err != nil {
		color.Red("Failed to publish insights navigation: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	color.Cyan("\n✅ Walkthrough complete")
}
