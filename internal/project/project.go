package project

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tessera/internal/trait"
)

// Project is the on-disk project file model.
type Project struct {
	// Name is the collection name.
	Name string `yaml:"name" json:"name"`

	// Description is copied into every token's metadata.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Size is the collection size.
	Size int `yaml:"size" json:"size"`

	// Seed is the master seed for the whole collection.
	Seed string `yaml:"seed" json:"seed"`

	// Width and Height are composite dimensions in pixels.
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`

	// Classes lists trait classes in declaration order.
	Classes []Class `yaml:"classes" json:"classes"`

	// Rules lists constraints in declaration order.
	Rules []Rule `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// Class is one trait class declaration.
type Class struct {
	ID      string       `yaml:"id" json:"id"`
	Name    string       `yaml:"name" json:"name"`
	ZIndex  int          `yaml:"z_index" json:"z_index"`
	Blend   string       `yaml:"blend,omitempty" json:"blend,omitempty"`
	Opacity float64      `yaml:"opacity,omitempty" json:"opacity,omitempty"`
	Traits  []ClassTrait `yaml:"traits" json:"traits"`
}

// ClassTrait is one trait declaration within a class.
type ClassTrait struct {
	ID     string  `yaml:"id" json:"id"`
	Name   string  `yaml:"name" json:"name"`
	Source string  `yaml:"source" json:"source"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Rule is one constraint declaration.
type Rule struct {
	ID        string `yaml:"id" json:"id"`
	Type      string `yaml:"type" json:"type"`
	Condition string `yaml:"condition" json:"condition"`
	Target    string `yaml:"target" json:"target"`
}

// Load reads and decodes a project file. Schema validation is a
// separate step (Validate); Load fails only on IO and YAML syntax
// errors.
func Load(path string) (*Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse project file %s: %w", path, err)
	}
	return &p, nil
}

// ToClasses converts the file model into the pipeline's trait classes,
// preserving declaration order and stamping each trait with its owning
// class ID.
func (p *Project) ToClasses() []trait.TraitClass {
	classes := make([]trait.TraitClass, 0, len(p.Classes))
	for _, c := range p.Classes {
		class := trait.TraitClass{
			ID:      c.ID,
			Name:    c.Name,
			ZIndex:  c.ZIndex,
			Blend:   c.Blend,
			Opacity: c.Opacity,
		}
		for _, t := range c.Traits {
			class.Traits = append(class.Traits, trait.Trait{
				ID:      t.ID,
				Name:    t.Name,
				Source:  t.Source,
				Weight:  t.Weight,
				ClassID: c.ID,
			})
		}
		classes = append(classes, class)
	}
	return classes
}

// ToRules converts the file model into the pipeline's rules,
// preserving declaration order.
func (p *Project) ToRules() []trait.Rule {
	out := make([]trait.Rule, 0, len(p.Rules))
	for _, r := range p.Rules {
		out = append(out, trait.Rule{
			ID:        r.ID,
			Type:      trait.RuleType(r.Type),
			Condition: r.Condition,
			Target:    r.Target,
		})
	}
	return out
}
