package model

// Persona is a simulated respondent archetype defined by the researcher.
// Ids are server-issued strings; the core never mints persona ids.
type Persona struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

// SampleDistribution maps persona id to the number of simulated respondents
// drawn from that persona. Every entry must be >= 1 and the key set must
// cover exactly the selected persona set before a population is confirmed.
type SampleDistribution map[string]int

// Total returns the combined sample size across all personas.
func (d SampleDistribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}
