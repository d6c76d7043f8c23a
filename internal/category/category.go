// Package category holds the per-category form configuration: which
// categories exist, what metadata fields each one collects and which status
// a new post starts in.
package category

import (
	"fmt"
	"slices"
	"sync"
)

// Option is a selectable value with a display label.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// MetadataField describes one category-specific input. Type is a form
// control hint ("text", "textarea", "select", "date", "url").
type MetadataField struct {
	Key          string   `json:"key" yaml:"key"`
	Label        string   `json:"label" yaml:"label"`
	Type         string   `json:"type" yaml:"type"`
	Required     bool     `json:"required,omitempty" yaml:"required"`
	Placeholder  string   `json:"placeholder,omitempty" yaml:"placeholder"`
	HelperText   string   `json:"helperText,omitempty" yaml:"helperText"`
	Options      []Option `json:"options,omitempty" yaml:"options"`
	DefaultValue string   `json:"defaultValue,omitempty" yaml:"defaultValue"`
}

// Config is the form configuration of one category.
type Config struct {
	Key            string          `json:"key" yaml:"key"`
	Label          string          `json:"label" yaml:"label"`
	Icon           string          `json:"icon,omitempty" yaml:"icon"`
	Description    string          `json:"description,omitempty" yaml:"description"`
	MetadataFields []MetadataField `json:"metadataFields" yaml:"metadataFields"`
	StatusOptions  []Option        `json:"statusOptions,omitempty" yaml:"statusOptions"`
	DefaultStatus  string          `json:"defaultStatus" yaml:"defaultStatus"`
}

// Validate checks that configs is usable: at least one category, unique
// non-empty keys and a default status on each.
func Validate(configs []Config) error {
	if len(configs) == 0 {
		return fmt.Errorf("no categories defined")
	}
	seen := make(map[string]bool, len(configs))
	for i, c := range configs {
		if c.Key == "" {
			return fmt.Errorf("category %d: key is required", i)
		}
		if seen[c.Key] {
			return fmt.Errorf("category %q defined twice", c.Key)
		}
		seen[c.Key] = true
		if c.DefaultStatus == "" {
			return fmt.Errorf("category %q: defaultStatus is required", c.Key)
		}
	}
	return nil
}

// Registry is the live, swappable set of category configurations.
type Registry struct {
	mu      sync.RWMutex
	configs []Config
}

// NewRegistry creates a registry. It falls back to Defaults when configs is
// empty.
func NewRegistry(configs []Config) (*Registry, error) {
	if len(configs) == 0 {
		configs = Defaults()
	}
	if err := Validate(configs); err != nil {
		return nil, err
	}
	return &Registry{configs: slices.Clone(configs)}, nil
}

// All returns the configurations in declaration order.
func (r *Registry) All() []Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.configs)
}

// Get returns the configuration for key.
func (r *Registry) Get(key string) (Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.configs {
		if c.Key == key {
			return c, true
		}
	}
	return Config{}, false
}

// Keys returns every category key in declaration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, len(r.configs))
	for i, c := range r.configs {
		keys[i] = c.Key
	}
	return keys
}

// Replace swaps in a new set after validating it. On error the current set
// is kept.
func (r *Registry) Replace(configs []Config) error {
	if err := Validate(configs); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = slices.Clone(configs)
	return nil
}
