package issues

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/localaudit/localaudit/internal/model"
)

//go:embed library.yaml
var libraryYAML []byte

// Definition is one static issue template. The catalogue order of
// definitions within a severity is preserved in detector output.
type Definition struct {
	ID             string         `yaml:"id"`
	Section        string         `yaml:"section"`
	Name           string         `yaml:"name"`
	Severity       model.Severity `yaml:"severity"`
	Trigger        Predicate      `yaml:"trigger"`
	Description    string         `yaml:"description"`
	WhyItMatters   string         `yaml:"why_it_matters"`
	HowToFix       []string       `yaml:"how_to_fix"`
	TimeToFix      string         `yaml:"time_to_fix"`
	ExpectedImpact string         `yaml:"expected_impact"`
	TimeToResults  string         `yaml:"time_to_results"`
}

// Library is the full issue catalogue, loaded once at process start
type Library struct {
	Issues []Definition `yaml:"issues"`
}

// LoadLibrary parses and validates the embedded issue catalogue
func LoadLibrary() (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(libraryYAML, &lib); err != nil {
		return nil, fmt.Errorf("parse issue library: %w", err)
	}
	if err := lib.validate(); err != nil {
		return nil, fmt.Errorf("invalid issue library: %w", err)
	}
	return &lib, nil
}

func (l *Library) validate() error {
	seen := make(map[string]bool)
	for i := range l.Issues {
		def := &l.Issues[i]
		if def.ID == "" {
			return fmt.Errorf("issue at index %d has no id", i)
		}
		if seen[def.ID] {
			return fmt.Errorf("duplicate issue id %q", def.ID)
		}
		seen[def.ID] = true
		if def.Severity.Rank() > 3 {
			return fmt.Errorf("issue %q has unknown severity %q", def.ID, def.Severity)
		}
		if !knownPredicate(def.Trigger.Kind) {
			return fmt.Errorf("issue %q has unknown trigger kind %q", def.ID, def.Trigger.Kind)
		}
		if def.Name == "" || def.Description == "" {
			return fmt.Errorf("issue %q is missing name or description", def.ID)
		}
	}
	return nil
}
