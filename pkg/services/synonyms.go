// Package services contains the engine's domain services: schema
// discovery, document ingestion, query classification and orchestration.
package services

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jinzhu/inflection"
	"gopkg.in/yaml.v3"
)

// defaultAliases maps canonical HR vocabulary to the variants users
// actually type. Discovery folds these into per-table synonym sets.
var defaultAliases = map[string][]string{
	"employee":   {"employee", "employees", "emp", "staff", "person", "personnel"},
	"department": {"department", "dept", "division", "team"},
	"salary":     {"salary", "compensation", "pay", "pay_rate", "annual_salary"},
	"manager":    {"manager", "lead", "supervisor", "head"},
	"hire_date":  {"hire_date", "hired_on", "start_date", "join_date"},
	"location":   {"location", "office", "city"},
	"skills":     {"skill", "skills", "competency"},
	"title":      {"title", "role", "position"},
}

// AliasDictionary maps canonical terms to their accepted variants.
type AliasDictionary map[string][]string

// LoadAliases returns the built-in dictionary, optionally merged with a
// YAML override file of the same shape. Override entries replace built-in
// entries with the same canonical key.
func LoadAliases(path string) (AliasDictionary, error) {
	dict := make(AliasDictionary, len(defaultAliases))
	for canonical, variants := range defaultAliases {
		dict[canonical] = append([]string(nil), variants...)
	}

	if path == "" {
		return dict, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases file: %w", err)
	}

	var override map[string][]string
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse aliases file: %w", err)
	}
	for canonical, variants := range override {
		dict[NormalizeToken(canonical)] = variants
	}

	return dict, nil
}

// NormalizeToken folds a vocabulary token to its canonical comparison
// form: lowercase, spaces as underscores, plural folded to singular.
func NormalizeToken(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	token = strings.ReplaceAll(token, " ", "_")
	return inflection.Singular(token)
}

// BuildSynonyms derives per-table synonym sets: the table name, its
// column names, and every alias variant whose canonical term appears in
// the table or column names.
func (d AliasDictionary) BuildSynonyms(tables []tableVocabulary) map[string][]string {
	result := make(map[string][]string, len(tables))

	for _, table := range tables {
		seen := map[string]struct{}{}
		add := func(token string) {
			token = strings.ToLower(strings.TrimSpace(token))
			if token == "" {
				return
			}
			seen[token] = struct{}{}
		}

		add(table.name)
		add(inflection.Singular(strings.ToLower(table.name)))
		d.expandInto(add, table.name)

		for _, column := range table.columns {
			add(column)
			d.expandInto(add, column)
		}

		synonyms := make([]string, 0, len(seen))
		for token := range seen {
			synonyms = append(synonyms, token)
		}
		// Sorted so repeated discovery yields structurally equal models.
		sort.Strings(synonyms)
		result[table.name] = synonyms
	}

	return result
}

// expandInto adds all variants of any canonical term embedded in name.
func (d AliasDictionary) expandInto(add func(string), name string) {
	lower := strings.ToLower(name)
	for canonical, variants := range d {
		matched := strings.Contains(lower, canonical)
		if !matched {
			for _, variant := range variants {
				if strings.Contains(lower, strings.ToLower(variant)) {
					matched = true
					break
				}
			}
		}
		if matched {
			add(canonical)
			for _, variant := range variants {
				add(variant)
			}
		}
	}
}

// tableVocabulary is the minimal table shape synonym building needs.
type tableVocabulary struct {
	name    string
	columns []string
}
