package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tutor.yaml
var defaultTutorYAML []byte

// TutorConfig is the persona prompt plus the course catalog. Each course entry
// carries the instruction block the tutor adds when a chat is scoped to it.
type TutorConfig struct {
	BasePrompt string        `yaml:"base_prompt"`
	Courses    []CourseEntry `yaml:"courses"`
}

type CourseEntry struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Category     string `yaml:"category"`
	ImageURL     string `yaml:"image_url"`
	Instructions string `yaml:"instructions"`
}

// LoadTutorConfig parses the file at path, or the embedded default when path is empty.
func LoadTutorConfig(path string) (*TutorConfig, error) {
	data := defaultTutorYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read tutor config: %w", err)
		}
		data = b
	}
	return ParseTutorConfig(data)
}

func ParseTutorConfig(data []byte) (*TutorConfig, error) {
	var cfg TutorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse tutor config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *TutorConfig) Validate() error {
	if strings.TrimSpace(c.BasePrompt) == "" {
		return fmt.Errorf("tutor config: base_prompt cannot be empty")
	}
	seen := make(map[string]bool, len(c.Courses))
	for i, course := range c.Courses {
		id := strings.TrimSpace(course.ID)
		if id == "" {
			return fmt.Errorf("tutor config: course %d has no id", i)
		}
		if seen[id] {
			return fmt.Errorf("tutor config: duplicate course id %q", id)
		}
		seen[id] = true
		if strings.TrimSpace(course.Title) == "" {
			return fmt.Errorf("tutor config: course %q has no title", id)
		}
	}
	return nil
}

// CoursePromptMap returns id -> instructions for courses that define instructions.
func (c *TutorConfig) CoursePromptMap() map[string]string {
	out := make(map[string]string, len(c.Courses))
	for _, course := range c.Courses {
		text := strings.TrimSpace(course.Instructions)
		if text == "" {
			continue
		}
		out[strings.TrimSpace(course.ID)] = text
	}
	return out
}
