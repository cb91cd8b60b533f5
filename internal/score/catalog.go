package score

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// RuleLabel describes one scoring tier of a check for report display
type RuleLabel struct {
	Points int    `yaml:"points"`
	Label  string `yaml:"label"`
}

// CheckDefinition is the static metadata of a single weighted check
type CheckDefinition struct {
	ID           string      `yaml:"id"`
	Name         string      `yaml:"name"`
	MaxPoints    int         `yaml:"max_points"`
	DataCitation string      `yaml:"data_citation"`
	Rules        []RuleLabel `yaml:"rules"`
}

// LabelFor returns the rule label matching an awarded score, or "" when no
// tier carries that exact point value.
func (c *CheckDefinition) LabelFor(points int) string {
	for _, r := range c.Rules {
		if r.Points == points {
			return r.Label
		}
	}
	return ""
}

// Section groups checks under one of the six fixed scoring categories
type Section struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name"`
	MaxPoints int               `yaml:"max_points"`
	Checks    []CheckDefinition `yaml:"checks"`
}

// Catalog is the full scoring rule set, loaded once at process start and
// read-only for the process lifetime.
type Catalog struct {
	Sections []Section `yaml:"sections"`
}

// LoadCatalog parses and validates the embedded scoring catalogue
func LoadCatalog() (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(rulesYAML, &cat); err != nil {
		return nil, fmt.Errorf("parse scoring catalogue: %w", err)
	}
	if err := cat.validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring catalogue: %w", err)
	}
	return &cat, nil
}

// validate enforces the structural invariants the engine relies on: check
// ceilings sum to their section ceiling and section ceilings sum to 100.
func (c *Catalog) validate() error {
	total := 0
	seen := make(map[string]bool)
	for _, section := range c.Sections {
		sectionSum := 0
		for _, check := range section.Checks {
			if check.ID == "" {
				return fmt.Errorf("section %q contains a check without an id", section.ID)
			}
			if seen[check.ID] {
				return fmt.Errorf("duplicate check id %q", check.ID)
			}
			seen[check.ID] = true
			if check.MaxPoints <= 0 {
				return fmt.Errorf("check %q has non-positive max_points", check.ID)
			}
			sectionSum += check.MaxPoints
		}
		if sectionSum != section.MaxPoints {
			return fmt.Errorf("section %q checks sum to %d, ceiling is %d",
				section.ID, sectionSum, section.MaxPoints)
		}
		total += section.MaxPoints
	}
	if total != 100 {
		return fmt.Errorf("section ceilings sum to %d, want 100", total)
	}
	return nil
}
