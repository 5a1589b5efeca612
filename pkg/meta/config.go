package meta

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/toyz/metamodel/internal/utils"
	"github.com/toyz/metamodel/pkg/meta/validate"
)

// Config holds the engine options
type Config struct {
	// Parallelism bounds how many types are introspected at once during bootstrap
	Parallelism int              `yaml:"parallelism" json:"parallelism"`
	Validation  ValidationConfig `yaml:"validation" json:"validation"`
	// ValueTypes are resolved as values instead of domain types, e.g. uuid.UUID
	ValueTypes []string `yaml:"value_types" json:"value_types"`
}

// ValidationConfig selects the metamodel validation rules. Failures reported
// while introspecting are always fatal.
type ValidationConfig struct {
	Enabled                   bool `yaml:"enabled" json:"enabled"`
	FailFast                  bool `yaml:"fail_fast" json:"fail_fast"`
	OrphanedSupportingMethods bool `yaml:"orphaned_supporting_methods" json:"orphaned_supporting_methods"`
	DuplicateMemberIDs        bool `yaml:"duplicate_member_ids" json:"duplicate_member_ids"`
	ConflictingFacets         bool `yaml:"conflicting_facets" json:"conflicting_facets"`
	// ExplicitActions requires every action to be annotated as one
	ExplicitActions bool `yaml:"explicit_actions" json:"explicit_actions"`
}

// DefaultConfig returns the default engine options
func DefaultConfig() Config {
	return Config{
		Parallelism: runtime.NumCPU(),
		Validation: ValidationConfig{
			Enabled:                   true,
			OrphanedSupportingMethods: true,
			DuplicateMemberIDs:        true,
			ConflictingFacets:         true,
		},
	}
}

// Validate checks the options
func (c Config) Validate() error {
	if err := errors.Join(
		utils.AtLeast("parallelism", 1)(c.Parallelism),
		utils.Each("value_types", utils.NotEmpty("value type"))(c.ValueTypes),
	); err != nil {
		return fmt.Errorf("invalid metamodel config: %w", err)
	}
	return nil
}

// Rules returns the validation rules the options select
func (c Config) Rules() []validate.Rule {
	v := c.Validation
	if !v.Enabled {
		return nil
	}
	var rules []validate.Rule
	if v.OrphanedSupportingMethods {
		rules = append(rules, validate.OrphanedSupportingMethods{})
	}
	if v.DuplicateMemberIDs {
		rules = append(rules, validate.DuplicateMemberIDs{})
	}
	if v.ConflictingFacets {
		rules = append(rules, validate.ConflictingExplicitFacets{})
	}
	if v.ExplicitActions {
		rules = append(rules, validate.ExplicitActions{})
	}
	return rules
}
