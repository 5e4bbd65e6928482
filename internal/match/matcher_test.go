package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ptomasek/tally/pkg/models"
)

func signal(title, body string, participants ...string) models.EvidenceSignal {
	return models.EvidenceSignal{
		Date:         time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Kind:         models.SignalEmail,
		Title:        title,
		Body:         body,
		Participants: participants,
	}
}

func TestMatchExplicitKeyInTitle(t *testing.T) {
	m := New(nil, nil)

	result := m.Match(signal("ABC-12 deployment window", "also mentions DEF-9"))

	assert.Equal(t, "ABC-12", result.IssueKey)
	assert.Equal(t, models.ConfidenceHigh, result.Confidence)
}

func TestMatchExplicitKeyInBody(t *testing.T) {
	m := New(nil, nil)

	result := m.Match(signal("deployment window", "see DEF-9 for details"))

	assert.Equal(t, "DEF-9", result.IssueKey)
	assert.Equal(t, models.ConfidenceMedium, result.Confidence)
}

func TestMatchTitlePrecedesBody(t *testing.T) {
	m := New(nil, nil)

	result := m.Match(signal("ABC-12 rollout", "relates to DEF-9"))

	assert.Equal(t, "ABC-12", result.IssueKey)
	assert.Equal(t, models.ConfidenceHigh, result.Confidence)
}

func TestMatchKeywordSimilarity(t *testing.T) {
	candidates := []models.CandidateIssue{
		{Key: "OPS-3", Summary: "Rotate kubernetes certificates", Project: "OPS"},
		{Key: "PAY-7", Summary: "Fix invoice rounding in payment export", Project: "PAY"},
	}
	m := New(candidates, nil)

	result := m.Match(signal("Invoice rounding problems", "payment export numbers look wrong"))

	assert.Equal(t, "PAY-7", result.IssueKey)
	assert.Equal(t, models.ConfidenceHigh, result.Confidence)
	assert.Contains(t, result.Rationale, "similarity")
}

func TestMatchBelowThresholdReturnsNull(t *testing.T) {
	candidates := []models.CandidateIssue{
		{Key: "OPS-3", Summary: "Rotate kubernetes certificates", Project: "OPS"},
	}
	m := New(candidates, nil)

	result := m.Match(signal("Lunch plans", "anyone up for pizza today"))

	assert.Empty(t, result.IssueKey)
	assert.Equal(t, models.ConfidenceLow, result.Confidence)
	assert.NotEmpty(t, result.Rationale)
}

func TestMatchTieBrokenByPoolOrder(t *testing.T) {
	candidates := []models.CandidateIssue{
		{Key: "AAA-1", Summary: "Upgrade billing gateway timeout handling", Project: "AAA"},
		{Key: "BBB-2", Summary: "Upgrade billing gateway timeout handling", Project: "BBB"},
	}
	m := New(candidates, nil)

	first := m.Match(signal("billing gateway timeout", ""))
	second := m.Match(signal("billing gateway timeout", ""))

	assert.Equal(t, "AAA-1", first.IssueKey)
	assert.Equal(t, first, second)
}

func TestMatchAffinityBonusLiftsCandidate(t *testing.T) {
	candidates := []models.CandidateIssue{
		{Key: "ACM-4", Summary: "Alpha migration for reporting cluster", Project: "ACM"},
	}
	projects := []models.Project{
		{Key: "ACM", Name: "Acme Platform"},
	}
	m := New(candidates, projects)

	// Similarity alone (one exact token out of four) stays below the
	// acceptance threshold; the participant domain supplies the rest.
	weak := m.Match(signal("alpha rollout checklist review", ""))
	assert.Empty(t, weak.IssueKey)

	lifted := m.Match(signal("alpha rollout checklist review", "", "bob@acme.com"))
	assert.Equal(t, "ACM-4", lifted.IssueKey)
	assert.Equal(t, models.ConfidenceMedium, lifted.Confidence)
}

func TestMatchAffinityAloneNeverAccepts(t *testing.T) {
	candidates := []models.CandidateIssue{
		{Key: "PAY-7", Summary: "invoice rounding in payment export", Project: "PAY"},
	}
	projects := []models.Project{
		{Key: "PAY", Name: "Payment Platform"},
	}
	m := New(candidates, projects)

	// The participant domain matches the project key exactly, but the text
	// shares no keywords with any candidate. Without keyword evidence the
	// bonus points at nothing.
	result := m.Match(signal("Lunch plans", "anyone up for pizza today", "bob@pay.example.com"))

	assert.Empty(t, result.IssueKey)
	assert.Equal(t, models.ConfidenceLow, result.Confidence)

	empty := m.Match(signal("", "", "bob@pay.example.com"))
	assert.Empty(t, empty.IssueKey)
}

func TestMatchNeverAcceptsBelowThreshold(t *testing.T) {
	candidates := []models.CandidateIssue{
		{Key: "OPS-3", Summary: "certificate rotation", Project: "OPS"},
		{Key: "PAY-7", Summary: "invoice rounding", Project: "PAY"},
	}
	m := New(candidates, nil)

	signals := []models.EvidenceSignal{
		signal("weekly newsletter", "company updates and announcements"),
		signal("parking garage closed", "use the side entrance"),
		signal("", ""),
	}
	for _, sig := range signals {
		result := m.Match(sig)
		if result.IssueKey != "" {
			t.Fatalf("accepted %q for signal %q below threshold", result.IssueKey, sig.Title)
		}
	}
}

func TestDomainToken(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"bob@acme.com", "acme"},
		{"alice@sub.initech.io", "sub"},
		{"carol@gmail.com", ""},
		{"Dave@ACME.COM", "acme"},
		{"not-an-address", ""},
		{"trailing@", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domainToken(tt.address), tt.address)
	}
}

func TestProjectAffinityLevels(t *testing.T) {
	project := models.Project{Key: "ACME", Name: "Acme Payment Platform"}

	assert.Equal(t, bonusExactKey, projectAffinity("acme", project))
	assert.Equal(t, bonusNameSubstr, projectAffinity("payment", models.Project{Key: "PAY", Name: "Payment Platform"}))
	assert.Equal(t, bonusWordOverlap, projectAffinity("paymentsystems", models.Project{Key: "PAY", Name: "Payment Platform"}))
	assert.Equal(t, 0.0, projectAffinity("unrelated", project))
}
