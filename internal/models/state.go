package models

// AgentState is the single mutable record threaded through the pipeline
// stages. Each stage reads and extends it; nothing else mutates it.
type AgentState struct {
	Query          string
	SessionID      string
	Classification Classification
	FollowUp       bool
	Mode           Mode

	// Filled by the clarifier from stored preferences.
	Assumptions map[string]string

	// Filled by the data gatherer.
	Quotes          map[string]*Quote
	Fundamentals    map[string]*Fundamentals
	Technicals      map[string]*Technicals
	Recommendations map[string]*Recommendation
	Documents       []RankedDocument
	CacheHit        bool

	// Filled by the analyzer and memo writer.
	Answer         string
	Confidence     Confidence
	Contradictions []string
	Sources        []string

	// Set when the completion call fails after exhausting retries. The
	// pipeline still returns a structured result.
	Err error
}

// NewAgentState prepares an empty state for one request.
func NewAgentState(query, sessionID string) *AgentState {
	return &AgentState{
		Query:           query,
		SessionID:       sessionID,
		Assumptions:     make(map[string]string),
		Quotes:          make(map[string]*Quote),
		Fundamentals:    make(map[string]*Fundamentals),
		Technicals:      make(map[string]*Technicals),
		Recommendations: make(map[string]*Recommendation),
	}
}
