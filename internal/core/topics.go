package core

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var defaultTopicsYAML []byte

type Topic struct {
	Name      string   `yaml:"name"`
	Subtopics []string `yaml:"subtopics"`
}

// Catalogue is the ordered list of conversation topics.
type Catalogue struct {
	Topics []Topic `yaml:"topics"`
}

func LoadDefaultCatalogue() (*Catalogue, error) {
	return ParseCatalogue(defaultTopicsYAML)
}

func ParseCatalogue(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse topic catalogue: %w", err)
	}
	if len(c.Topics) == 0 {
		return nil, fmt.Errorf("topic catalogue is empty")
	}
	for _, t := range c.Topics {
		if t.Name == "" || len(t.Subtopics) == 0 {
			return nil, fmt.Errorf("topic %q has no subtopics", t.Name)
		}
	}
	return &c, nil
}

func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.Topics))
	for _, t := range c.Topics {
		names = append(names, t.Name)
	}
	return names
}

// Resolve maps a (possibly unknown) selection onto the catalogue. An unknown
// topic falls back to the first topic, an unknown subtopic to the first
// subtopic of the resolved topic.
func (c *Catalogue) Resolve(topic, subtopic string) (Topic, string) {
	selected := c.Topics[0]
	for _, t := range c.Topics {
		if t.Name == topic {
			selected = t
			break
		}
	}
	for _, sub := range selected.Subtopics {
		if sub == subtopic {
			return selected, sub
		}
	}
	return selected, selected.Subtopics[0]
}
