package services

import (
	"regexp"
	"strings"

	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

// WarnNoVocabularyMatch flags queries routed to the SQL path without any
// schema vocabulary hit. Defaulting to SQL is a known heuristic
// limitation; the warning makes it visible to callers.
const WarnNoVocabularyMatch = "no_vocabulary_match"

// documentKeywords signal questions about ingested files rather than
// database rows.
var documentKeywords = map[string]bool{
	"document":    true,
	"documents":   true,
	"resume":      true,
	"resumes":     true,
	"review":      true,
	"note":        true,
	"notes":       true,
	"certificate": true,
	"policy":      true,
}

var (
	fileMentionPattern = regexp.MustCompile(`\b(pdf|docx|file|files)\b`)
	sqlCuePatterns     = []*regexp.Regexp{
		regexp.MustCompile(`\bhow many\b`),
		regexp.MustCompile(`\baverage\b`),
		regexp.MustCompile(`\btop \d+\b`),
		regexp.MustCompile(`\breport(s)? to\b`),
		regexp.MustCompile(`\b(count|sum|total|highest|lowest|maximum|minimum)\b`),
		regexp.MustCompile(`\b(select|from|where|group|join|order)\b`),
	}
	tokenSplitPattern = regexp.MustCompile(`\W+`)
)

// Classifier routes queries between the SQL and document paths using only
// the query text and the discovered schema. No model calls; identical
// input always classifies identically.
type Classifier struct{}

// NewClassifier creates a classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classification is the routing decision plus any advisory warnings.
type Classification struct {
	Type         models.QueryType
	TableMatches map[string][]string
	Warnings     []string
}

// Classify decides the execution path for a query.
func (c *Classifier) Classify(query string, schema *models.SchemaModel) Classification {
	normalized := strings.ToLower(query)
	tokens := Tokenize(query)

	hasDocumentCue := fileMentionPattern.MatchString(normalized)
	if !hasDocumentCue {
		for _, token := range tokens {
			if documentKeywords[token] {
				hasDocumentCue = true
				break
			}
		}
	}

	hasSQLCue := false
	for _, pattern := range sqlCuePatterns {
		if pattern.MatchString(normalized) {
			hasSQLCue = true
			break
		}
	}

	var matches map[string][]string
	if schema != nil {
		matches = schema.MatchVocabulary(tokens)
	}
	hasSchemaHit := len(matches) > 0

	result := Classification{TableMatches: matches}
	switch {
	case hasDocumentCue && (hasSQLCue || hasSchemaHit):
		result.Type = models.QueryTypeHybrid
	case hasDocumentCue:
		result.Type = models.QueryTypeDocument
	default:
		result.Type = models.QueryTypeSQL
		if !hasSQLCue && !hasSchemaHit {
			result.Warnings = append(result.Warnings, WarnNoVocabularyMatch)
		}
	}
	return result
}

// Tokenize splits a query into lowercase word tokens, adding the
// singular form of each token so plural phrasing still hits singular
// vocabulary entries.
func Tokenize(query string) []string {
	raw := tokenSplitPattern.Split(strings.ToLower(query), -1)
	tokens := make([]string, 0, len(raw)*2)
	seen := map[string]bool{}
	for _, token := range raw {
		if token == "" {
			continue
		}
		for _, form := range []string{token, NormalizeToken(token)} {
			if !seen[form] {
				seen[form] = true
				tokens = append(tokens, form)
			}
		}
	}
	return tokens
}
