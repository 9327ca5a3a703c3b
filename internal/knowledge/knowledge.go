// Package knowledge holds the static reference tables: common
// conditions, wellness tips and the health resource directory.
package knowledge

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// ErrInvalidData is returned when a reference table fails validation.
var ErrInvalidData = errors.New("invalid reference data")

// Condition is a common condition with its symptom set and guidance.
type Condition struct {
	Name            string   `yaml:"name" json:"name"`
	Symptoms        []string `yaml:"symptoms" json:"symptoms"`
	Duration        string   `yaml:"duration" json:"duration"`
	Contagiousness  string   `yaml:"contagiousness" json:"contagiousness"`
	Severity        string   `yaml:"severity" json:"severity"`
	SelfCare        []string `yaml:"self_care" json:"self_care"`
	WhenToSeeDoctor []string `yaml:"when_to_see_doctor" json:"when_to_see_doctor"`
}

// Tip is a wellness tip.
type Tip struct {
	Tip     string `yaml:"tip" json:"tip"`
	Benefit string `yaml:"benefit" json:"benefit"`
}

// TipCategory groups tips.
type TipCategory struct {
	Name string `yaml:"name" json:"name"`
	Tips []Tip  `yaml:"tips" json:"tips"`
}

// Resource is an external health information link.
type Resource struct {
	Name        string `yaml:"name" json:"name"`
	URL         string `yaml:"url" json:"url"`
	Description string `yaml:"description" json:"description"`
}

// ResourceCategory groups resources.
type ResourceCategory struct {
	Name      string     `yaml:"name" json:"name"`
	Resources []Resource `yaml:"resources" json:"resources"`
}

type conditionsFile struct {
	Conditions []Condition `yaml:"conditions"`
}

type tipsFile struct {
	Categories []TipCategory `yaml:"categories"`
}

type resourcesFile struct {
	Categories []ResourceCategory `yaml:"categories"`
}

// Base is the loaded reference data. It is read-only after Load.
type Base struct {
	conditions []Condition
	tips       []TipCategory
	resources  []ResourceCategory
}

// Load reads the embedded tables.
func Load() (*Base, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadDir reads tables from a directory on disk. Files missing from the
// directory fall back to the embedded copy.
func LoadDir(dir string) (*Base, error) {
	return LoadFS(overlayFS{primary: os.DirFS(dir)})
}

// LoadFS reads conditions.yaml, tips.yaml and resources.yaml from fsys.
func LoadFS(fsys fs.FS) (*Base, error) {
	var cf conditionsFile
	if err := decode(fsys, "conditions.yaml", &cf); err != nil {
		return nil, err
	}
	var tf tipsFile
	if err := decode(fsys, "tips.yaml", &tf); err != nil {
		return nil, err
	}
	var rf resourcesFile
	if err := decode(fsys, "resources.yaml", &rf); err != nil {
		return nil, err
	}

	b := &Base{conditions: cf.Conditions, tips: tf.Categories, resources: rf.Categories}
	if err := b.validate(); err != nil {
		return nil, err
	}
	b.normalize()
	return b, nil
}

func decode(fsys fs.FS, name string, out interface{}) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (b *Base) validate() error {
	if len(b.conditions) == 0 {
		return fmt.Errorf("%w: no conditions", ErrInvalidData)
	}
	seen := make(map[string]bool)
	for i, c := range b.conditions {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: condition %d has no name", ErrInvalidData, i)
		}
		if len(c.Symptoms) == 0 {
			return fmt.Errorf("%w: condition %q has no symptoms", ErrInvalidData, c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate condition %q", ErrInvalidData, c.Name)
		}
		seen[c.Name] = true
	}
	for _, cat := range b.tips {
		if cat.Name == "" || len(cat.Tips) == 0 {
			return fmt.Errorf("%w: empty tip category %q", ErrInvalidData, cat.Name)
		}
	}
	return nil
}

// symptoms are matched lowercase
func (b *Base) normalize() {
	for i := range b.conditions {
		for j, s := range b.conditions[i].Symptoms {
			b.conditions[i].Symptoms[j] = strings.ToLower(strings.TrimSpace(s))
		}
	}
}

// Conditions returns a copy of the condition table in file order.
func (b *Base) Conditions() []Condition {
	out := make([]Condition, len(b.conditions))
	for i, c := range b.conditions {
		out[i] = c.clone()
	}
	return out
}

// Condition looks a condition up by name.
func (b *Base) Condition(name string) (Condition, bool) {
	for _, c := range b.conditions {
		if strings.EqualFold(c.Name, name) {
			return c.clone(), true
		}
	}
	return Condition{}, false
}

func (c Condition) clone() Condition {
	c.Symptoms = slices.Clone(c.Symptoms)
	c.SelfCare = slices.Clone(c.SelfCare)
	c.WhenToSeeDoctor = slices.Clone(c.WhenToSeeDoctor)
	return c
}

// Symptoms returns every distinct symptom across all conditions.
func (b *Base) Symptoms() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range b.conditions {
		for _, s := range c.Symptoms {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// TipCategories returns tip category names in file order.
func (b *Base) TipCategories() []string {
	out := make([]string, len(b.tips))
	for i, c := range b.tips {
		out[i] = c.Name
	}
	return out
}

// Tips returns the tips for a category.
func (b *Base) Tips(category string) ([]Tip, bool) {
	for _, c := range b.tips {
		if c.Name == category {
			return slices.Clone(c.Tips), true
		}
	}
	return nil, false
}

// Resources returns the links for a resource category.
func (b *Base) Resources(category string) ([]Resource, bool) {
	for _, c := range b.resources {
		if c.Name == category {
			return slices.Clone(c.Resources), true
		}
	}
	return nil, false
}

// overlayFS serves files from primary and falls back to the embedded tables.
type overlayFS struct {
	primary fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return embedded.Open("data/" + name)
}
