// Package skills bundles reference skill documents and installs them into
// the agent's skills directory. Each skill is a markdown file with YAML
// frontmatter, laid out as <skills-dir>/<slug>/SKILL.md the way the agent
// expects.
package skills

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed library
var bundled embed.FS

// Skill is one bundled document, identified by its folder slug.
type Skill struct {
	Slug        string
	Name        string
	Description string
}

// Metadata is the YAML frontmatter of a skill document.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// List returns every bundled skill in slug order.
func List() ([]Skill, error) {
	entries, err := bundled.ReadDir("library")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled skills: %w", err)
	}

	var out []Skill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skill, err := load(entry.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, skill)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// Read returns the full document for one bundled skill.
func Read(slug string) ([]byte, error) {
	data, err := bundled.ReadFile(path.Join("library", slug, "SKILL.md"))
	if err != nil {
		return nil, fmt.Errorf("skill %s is not bundled", slug)
	}
	return data, nil
}

// Install writes the skill into the provided base directory and returns the
// on-disk path. Overwriting an existing copy is the intended behavior.
func Install(baseDir, slug string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("skills: base directory is empty")
	}
	data, err := Read(slug)
	if err != nil {
		return "", err
	}
	targetDir := filepath.Join(baseDir, slug)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("failed to prepare skill directory %s: %w", targetDir, err)
	}
	targetPath := filepath.Join(targetDir, "SKILL.md")
	if err := os.WriteFile(targetPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write skill %s: %w", slug, err)
	}
	return targetPath, nil
}

// Installed reports whether a copy of the skill exists under baseDir.
func Installed(baseDir, slug string) bool {
	if baseDir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(baseDir, slug, "SKILL.md"))
	return err == nil
}

// load reads one skill's frontmatter.
func load(slug string) (Skill, error) {
	data, err := Read(slug)
	if err != nil {
		return Skill{}, err
	}
	meta, err := parseFrontmatter(data)
	if err != nil {
		return Skill{}, fmt.Errorf("skill %s: %w", slug, err)
	}
	skill := Skill{Slug: slug, Name: meta.Name, Description: meta.Description}
	if skill.Name == "" {
		skill.Name = slug
	}
	return skill, nil
}

// parseFrontmatter extracts the YAML block between the leading `---` fences.
func parseFrontmatter(data []byte) (Metadata, error) {
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		return Metadata{}, fmt.Errorf("missing frontmatter")
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return Metadata{}, fmt.Errorf("unterminated frontmatter")
	}

	var meta Metadata
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return Metadata{}, fmt.Errorf("invalid frontmatter: %w", err)
	}
	return meta, nil
}
