package intelligence

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"m3allem/models"
)

// Keyword tables mix French and Darija written in Latin script, already normalized
// (lowercase, no accents).
var (
	emergencyWords = []string{"urgent", "urgence", "immediatement", "tout de suite", "inondation",
		"inonde", "danger", "etincelle", "fumee", "odeur de gaz", "daba", "fissa", "db"}
	highWords = []string{"rapidement", "vite", "aujourd hui", "ce soir", "des que possible", "bzerba"}
	lowWords  = []string{"pas presse", "quand vous pouvez", "flexible", "semaine prochaine", "mois prochain", "machi mezrob"}

	complexWords = []string{"renovation", "complet", "complete", "toute la maison", "tout l appartement",
		"remplacement", "installation", "plusieurs", "refaire"}
	simpleWords = []string{"petit", "petite", "simple", "juste", "rapide", "changer une", "changer un", "sghir"}
)

// RuleAnalyzer classifies text with keyword tables. It needs no network and never fails
// on non-empty text.
type RuleAnalyzer struct{}

func NewRuleAnalyzer() *RuleAnalyzer {
	return &RuleAnalyzer{}
}

func (r *RuleAnalyzer) Analyze(ctx context.Context, in models.AnalysisInput) (models.AnalysisSignal, error) {
	if err := ctx.Err(); err != nil {
		return models.AnalysisSignal{}, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return models.AnalysisSignal{}, ErrEmptyInput
	}
	text := normalizeText(in.Text)

	best, bestHits := "", 0
	for _, s := range models.Services {
		hits := 0
		for _, kw := range s.Keywords {
			if containsKeyword(text, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = s.ID, hits
		}
	}

	urgency := models.UrgencyNormal
	switch {
	case containsAny(text, emergencyWords):
		urgency = models.UrgencyEmergency
	case containsAny(text, highWords):
		urgency = models.UrgencyHigh
	case containsAny(text, lowWords):
		urgency = models.UrgencyLow
	}

	complexity, explicit := models.ComplexityModerate, false
	switch {
	case containsAny(text, complexWords):
		complexity, explicit = models.ComplexityComplex, true
	case containsAny(text, simpleWords):
		complexity, explicit = models.ComplexitySimple, true
	}

	confidence := 0.3
	switch {
	case bestHits >= 2:
		confidence = 0.75
	case bestHits == 1:
		confidence = 0.6
	}

	return models.AnalysisSignal{
		Service:    best,
		Urgency:    urgency,
		Complexity: complexity,
		Confidence: confidence,
		Summary:    summarize(in.Text, 120),
		Source:     "rules",
		Explicit:   explicit,
	}, nil
}

// normalizeText strips accents and punctuation and pads with spaces so that
// keywords can be matched on word boundaries.
func normalizeText(s string) string {
	s = models.NormalizeKey(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return ' '
	}, s)
	return " " + strings.Join(strings.Fields(s), " ") + " "
}

// containsKeyword matches short keywords as whole words and longer ones as word
// prefixes, so "fuite" also finds "fuites" but "do" does not find "douche".
func containsKeyword(text, kw string) bool {
	if utf8.RuneCountInString(kw) <= 3 {
		return strings.Contains(text, " "+kw+" ")
	}
	return strings.Contains(text, " "+kw)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if containsKeyword(text, kw) {
			return true
		}
	}
	return false
}

func summarize(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
