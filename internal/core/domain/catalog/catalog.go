package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plugin is a single installable entry. The name is opaque to us; only the
// agent CLI knows what it resolves to.
type Plugin struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"-"`
	Marketplace string `yaml:"marketplace,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Ref returns the identifier handed to the agent CLI, qualified with the
// marketplace when one is declared.
func (p Plugin) Ref() string {
	if p.Marketplace != "" {
		return p.Name + "@" + p.Marketplace
	}
	return p.Name
}

// Category groups plugins under a human-readable label. Order of plugins is
// the declared install order.
type Category struct {
	Name    string   `yaml:"name"`
	Plugins []Plugin `yaml:"plugins"`
}

// Marketplace is a registry the agent CLI reads plugin definitions from.
// Source is passed to the agent verbatim (path or URL).
type Marketplace struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
}

// Prerequisite is a command run during preflight, before any install attempt.
type Prerequisite struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
}

// Catalog is the full declaration of what an install run provisions.
// Ordering is significant everywhere: categories in file order, plugins in
// list order within each category.
type Catalog struct {
	Categories    []Category     `yaml:"categories"`
	Marketplaces  []Marketplace  `yaml:"marketplaces,omitempty"`
	Prerequisites []Prerequisite `yaml:"prerequisites,omitempty"`
}

// Finding is a non-fatal catalog issue reported by Lint.
type Finding struct {
	Category string
	Plugin   string
	Message  string
}

func (f Finding) String() string {
	if f.Plugin != "" {
		return fmt.Sprintf("%s/%s: %s", f.Category, f.Plugin, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Category, f.Message)
}

// Parse decodes a YAML catalog, normalizes whitespace, and validates it.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c.normalize()

	if err := c.validate(); err != nil {
		return Catalog{}, err
	}

	return c, nil
}

// Load reads and parses a catalog file.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}

	return c, nil
}

// normalize trims names and stamps each plugin with its category label so a
// flattened entry still knows its grouping.
func (c *Catalog) normalize() {
	for i := range c.Categories {
		cat := &c.Categories[i]
		cat.Name = strings.TrimSpace(cat.Name)
		for j := range cat.Plugins {
			p := &cat.Plugins[j]
			p.Name = strings.TrimSpace(p.Name)
			p.Marketplace = strings.TrimSpace(p.Marketplace)
			p.Category = cat.Name
		}
	}
	for i := range c.Marketplaces {
		c.Marketplaces[i].Name = strings.TrimSpace(c.Marketplaces[i].Name)
		c.Marketplaces[i].Source = strings.TrimSpace(c.Marketplaces[i].Source)
	}
	for i := range c.Prerequisites {
		c.Prerequisites[i].Name = strings.TrimSpace(c.Prerequisites[i].Name)
	}
}

// validate rejects structurally broken catalogs. Duplicate plugin names are
// deliberately not an error; Lint reports them and the install loop attempts
// each occurrence.
func (c Catalog) validate() error {
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("catalog contains a category with an empty name")
		}
		for _, p := range cat.Plugins {
			if p.Name == "" {
				return fmt.Errorf("category %q contains a plugin with an empty name", cat.Name)
			}
		}
	}
	for _, m := range c.Marketplaces {
		if m.Name == "" {
			return fmt.Errorf("catalog contains a marketplace with an empty name")
		}
		if m.Source == "" {
			return fmt.Errorf("marketplace %q has an empty source", m.Name)
		}
	}
	for _, pre := range c.Prerequisites {
		if pre.Name == "" {
			return fmt.Errorf("catalog contains a prerequisite with an empty name")
		}
		if len(pre.Command) == 0 {
			return fmt.Errorf("prerequisite %q has an empty command", pre.Name)
		}
	}
	return nil
}

// Plugins returns the flattened entry list in install order: categories in
// declared order, plugins in list order within each.
func (c Catalog) Plugins() []Plugin {
	var out []Plugin
	for _, cat := range c.Categories {
		out = append(out, cat.Plugins...)
	}
	return out
}

// Total returns the number of install entries. Always equal to the sum of
// the per-category counts.
func (c Catalog) Total() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Plugins)
	}
	return n
}

// Category returns the named category and whether it exists.
func (c Catalog) Category(name string) (Category, bool) {
	for _, cat := range c.Categories {
		if strings.EqualFold(cat.Name, name) {
			return cat, true
		}
	}
	return Category{}, false
}

// Filter returns the subset of entries selected by category labels and/or
// plugin names, preserving catalog order. Empty filters select everything.
func (c Catalog) Filter(categories []string, names []string) []Plugin {
	wantCategory := make(map[string]bool, len(categories))
	for _, name := range categories {
		wantCategory[strings.ToLower(strings.TrimSpace(name))] = true
	}
	wantName := make(map[string]bool, len(names))
	for _, name := range names {
		wantName[strings.TrimSpace(name)] = true
	}

	var out []Plugin
	for _, p := range c.Plugins() {
		if len(wantCategory) > 0 && !wantCategory[strings.ToLower(p.Category)] {
			continue
		}
		if len(wantName) > 0 && !wantName[p.Name] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Lint reports non-fatal findings: duplicate plugin names, duplicate
// categories, entries referencing undeclared marketplaces, and missing
// descriptions.
func (c Catalog) Lint() []Finding {
	var findings []Finding

	declared := make(map[string]bool, len(c.Marketplaces))
	for _, m := range c.Marketplaces {
		declared[m.Name] = true
	}

	seenCategory := make(map[string]bool)
	seenPlugin := make(map[string]string)
	for _, cat := range c.Categories {
		key := strings.ToLower(cat.Name)
		if seenCategory[key] {
			findings = append(findings, Finding{Category: cat.Name, Message: "duplicate category name"})
		}
		seenCategory[key] = true

		for _, p := range cat.Plugins {
			if first, ok := seenPlugin[p.Name]; ok {
				findings = append(findings, Finding{
					Category: cat.Name,
					Plugin:   p.Name,
					Message:  fmt.Sprintf("duplicate of entry in category %q; both will be attempted", first),
				})
			} else {
				seenPlugin[p.Name] = cat.Name
			}
			if p.Marketplace != "" && !declared[p.Marketplace] {
				findings = append(findings, Finding{
					Category: cat.Name,
					Plugin:   p.Name,
					Message:  fmt.Sprintf("references undeclared marketplace %q", p.Marketplace),
				})
			}
			if p.Description == "" {
				findings = append(findings, Finding{Category: cat.Name, Plugin: p.Name, Message: "missing description"})
			}
		}
	}

	return findings
}
