package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/bankfeed/internal/model"
)

// File is the on-disk shape of rules/categorization-rules.yaml. Rule order
// in the file is precedence order.
type File struct {
	Rules []model.Rule `yaml:"rules"`
}

// Load reads a rules file.
func Load(path string) ([]model.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	return f.Rules, nil
}

// Save writes rules to path.
func Save(path string, rules []model.Rule) error {
	if rules == nil {
		rules = []model.Rule{}
	}
	data, err := yaml.Marshal(File{Rules: rules})
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
