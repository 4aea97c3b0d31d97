package survey

import (
	"fmt"
	"sort"

	"market-sim-orchestrator/internal/model"
)

// Fixed display section titles. Result sections from the server slot between
// Summary and Demographics in submission order.
const (
	SectionSummary         = "Summary"
	SectionDemographics    = "Demographics"
	SectionDetailedResults = "Detailed Results"
)

// DisplaySection is one named tab of the survey results view.
type DisplaySection struct {
	Title     string
	Summary   string
	Facts     []string
	Questions []QuestionView
}

// QuestionView is a question annotated for display: bar chart data, textual
// points and a generated strategic implication.
type QuestionView struct {
	QuestionId  string
	Text        string
	Chart       []ChartBar
	Points      []string
	Implication string
}

// ChartBar is one bar of a question's option chart.
type ChartBar struct {
	Label      string
	Percentage float64
	Count      int
}

// BuildSections derives the display sections from a raw survey result and
// the run's config. Pure and idempotent: same inputs, same sections, no side
// effects. Section order fixes the display order; the first section is the
// initial active selection.
func BuildSections(result *model.SurveySimulationResult, cfg *Config) []DisplaySection {
	var sections []DisplaySection

	sections = append(sections, DisplaySection{
		Title:   SectionSummary,
		Summary: result.Narrative.Summary,
	})

	for _, rs := range result.Sections {
		section := DisplaySection{Title: rs.Title}
		for _, q := range rs.Questions {
			section.Questions = append(section.Questions, buildQuestionView(q))
		}
		sections = append(sections, section)
	}

	sections = append(sections, demographicsSection(cfg))
	sections = append(sections, detailedResultsSection(result))

	return sections
}

func buildQuestionView(q model.SurveyQuestionResult) QuestionView {
	view := QuestionView{
		QuestionId: q.QuestionId,
		Text:       q.Text,
	}
	var top *model.OptionStat
	for i, opt := range q.Options {
		view.Chart = append(view.Chart, ChartBar{
			Label:      opt.Option,
			Percentage: opt.Percentage,
			Count:      opt.Count,
		})
		view.Points = append(view.Points, optionPoint(opt))
		if top == nil || opt.Percentage > top.Percentage {
			top = &q.Options[i]
		}
	}
	if top != nil {
		view.Implication = implication(*top)
	}
	return view
}

func optionPoint(opt model.OptionStat) string {
	return fmt.Sprintf("%s: %.0f%% (%d participants)", opt.Option, opt.Percentage, opt.Count)
}

func implication(top model.OptionStat) string {
	return fmt.Sprintf(
		"Strategic implication: %q is the leading response at %.0f%%; position messaging and product decisions around this preference.",
		top.Option, top.Percentage,
	)
}

// demographicsSection is synthesized from the run config; the server sends
// no demographic breakdown of its own.
func demographicsSection(cfg *Config) DisplaySection {
	section := DisplaySection{Title: SectionDemographics}
	if cfg == nil {
		return section
	}
	section.Facts = append(section.Facts,
		fmt.Sprintf("Total sample size: %d participants", cfg.TotalSampleSize))
	for i, id := range cfg.PersonaIds {
		name := id
		if i < len(cfg.PersonaNames) && cfg.PersonaNames[i] != "" {
			name = cfg.PersonaNames[i]
		}
		section.Facts = append(section.Facts,
			fmt.Sprintf("%s: %d participants", name, cfg.SampleDistribution[id]))
	}
	return section
}

// detailedResultsSection flattens the raw results map. Map iteration order
// is not stable, so entries are emitted in sorted question order.
func detailedResultsSection(result *model.SurveySimulationResult) DisplaySection {
	section := DisplaySection{Title: SectionDetailedResults}
	for _, question := range sortedKeys(result.Results) {
		view := QuestionView{Text: question}
		for _, opt := range result.Results[question] {
			view.Chart = append(view.Chart, ChartBar{
				Label:      opt.Option,
				Percentage: opt.Percentage,
				Count:      opt.Count,
			})
			view.Points = append(view.Points, optionPoint(opt))
		}
		section.Questions = append(section.Questions, view)
	}
	return section
}

func sortedKeys(m map[string][]model.OptionStat) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
