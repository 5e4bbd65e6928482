// Package match assigns issue keys to evidence signals that do not already
// carry one, using keyword-overlap scoring against candidate issues plus a
// participant-to-project affinity bonus.
package match

import (
	"fmt"
	"strings"

	"github.com/ptomasek/tally/internal/extract"
	"github.com/ptomasek/tally/internal/logging"
	"github.com/ptomasek/tally/pkg/models"
)

const (
	// AcceptThreshold is the minimum total score a candidate must reach for
	// the match to be accepted at all.
	AcceptThreshold = 0.3

	// HighThreshold is the total score above which a heuristic match is
	// reported at high confidence instead of medium.
	HighThreshold = 0.5
)

// Affinity bonus levels for participant-domain to project matching.
const (
	bonusExactKey    = 0.3
	bonusNameSubstr  = 0.2
	bonusWordOverlap = 0.1
)

// Matcher scores signals against a fixed candidate pool. The pool order is
// significant: ties are broken by first-encountered order, which keeps
// matching reproducible for identical inputs.
type Matcher struct {
	candidates []models.CandidateIssue
	projects   []models.Project
}

// New creates a Matcher over the given candidate pool and known projects.
func New(candidates []models.CandidateIssue, projects []models.Project) *Matcher {
	return &Matcher{
		candidates: candidates,
		projects:   projects,
	}
}

// Match assigns zero or one issue key to the signal.
//
// An explicit key in the title wins at high confidence, one in the body at
// medium, and the search stops at the first hit. Otherwise candidates are
// scored by keyword similarity plus project affinity; no candidate reaching
// AcceptThreshold means a null match at low confidence.
func (m *Matcher) Match(signal models.EvidenceSignal) models.MatchResult {
	// Explicit keys take precedence over any heuristic.
	if key := extract.FirstIssueKey(signal.Title); key != "" {
		return models.MatchResult{
			Signal:     signal,
			IssueKey:   key,
			Confidence: models.ConfidenceHigh,
			Rationale:  fmt.Sprintf("explicit key %s in title", key),
		}
	}
	if key := extract.FirstIssueKey(signal.Body); key != "" {
		return models.MatchResult{
			Signal:     signal,
			IssueKey:   key,
			Confidence: models.ConfidenceMedium,
			Rationale:  fmt.Sprintf("explicit key %s in body", key),
		}
	}

	bonuses := m.affinityBonuses(signal.Participants)
	signalTokens := Tokenize(signal.Title + " " + signal.Body)

	var (
		best      *models.CandidateIssue
		bestScore float64
		bestSim   float64
	)
	for i := range m.candidates {
		candidate := &m.candidates[i]
		sim := Similarity(signalTokens, Tokenize(candidate.Summary))
		// Affinity only ever lifts a keyword match; on its own it is no
		// evidence for any particular issue.
		if sim <= 0 {
			continue
		}
		score := sim + bonuses[candidate.Project]

		// Strictly greater keeps the first-encountered candidate on ties.
		if score > bestScore {
			best = candidate
			bestScore = score
			bestSim = sim
		}
	}

	if best == nil || bestScore < AcceptThreshold {
		return models.MatchResult{
			Signal:     signal,
			Confidence: models.ConfidenceLow,
			Rationale:  fmt.Sprintf("no candidate reached score %.2f", AcceptThreshold),
		}
	}

	confidence := models.ConfidenceMedium
	if bestScore > HighThreshold {
		confidence = models.ConfidenceHigh
	}

	logging.Debug("matched signal to candidate",
		"title", signal.Title,
		"issue", best.Key,
		"score", bestScore,
		"similarity", bestSim)

	return models.MatchResult{
		Signal:     signal,
		IssueKey:   best.Key,
		Confidence: confidence,
		Rationale: fmt.Sprintf("keyword similarity %.2f plus affinity %.2f against %q",
			bestSim, bestScore-bestSim, best.Summary),
	}
}

// affinityBonuses derives a per-project bonus from participant addresses.
// The company token of a participant's mail domain is fuzzy-matched against
// project keys and names; the strongest level found per project wins.
func (m *Matcher) affinityBonuses(participants []string) map[string]float64 {
	bonuses := make(map[string]float64)
	for _, participant := range participants {
		token := domainToken(participant)
		if token == "" {
			continue
		}

		for _, project := range m.projects {
			bonus := projectAffinity(token, project)
			if bonus > bonuses[project.Key] {
				bonuses[project.Key] = bonus
			}
		}
	}
	return bonuses
}

// projectAffinity grades how strongly a domain token points at a project:
// exact key match, substring of the project name, then word overlap.
func projectAffinity(token string, project models.Project) float64 {
	name := strings.ToLower(project.Name)

	switch {
	case token == strings.ToLower(project.Key):
		return bonusExactKey
	case strings.Contains(name, token):
		return bonusNameSubstr
	}

	for _, word := range strings.Fields(name) {
		if len(word) > 2 && (strings.Contains(token, word) || strings.Contains(word, token)) {
			return bonusWordOverlap
		}
	}
	return 0
}

// genericMailProviders are domains that say nothing about a company.
var genericMailProviders = map[string]bool{
	"gmail":      true,
	"googlemail": true,
	"outlook":    true,
	"hotmail":    true,
	"yahoo":      true,
	"icloud":     true,
	"proton":     true,
	"protonmail": true,
}

// domainToken extracts the company token from a mail address: the first
// label of the domain, lowercased. Generic providers yield "".
func domainToken(address string) string {
	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return ""
	}
	domain := strings.ToLower(address[at+1:])
	if dot := strings.Index(domain, "."); dot >= 0 {
		domain = domain[:dot]
	}
	if domain == "" || genericMailProviders[domain] {
		return ""
	}
	return domain
}
