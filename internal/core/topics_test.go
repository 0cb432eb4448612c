package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogue(t *testing.T) {
	c, err := LoadDefaultCatalogue()
	require.NoError(t, err)
	require.Len(t, c.Topics, 10)
	for _, topic := range c.Topics {
		assert.Len(t, topic.Subtopics, 3, topic.Name)
	}
	assert.Equal(t, "Mentale Gesundheit & Wohlbefinden", c.Names()[0])
	assert.Equal(t, []string{"Gender", "LGBTQIA+", "Anti-Rassismus"}, c.Topics[3].Subtopics)
}

func TestCatalogueResolve(t *testing.T) {
	c, err := LoadDefaultCatalogue()
	require.NoError(t, err)

	topic, sub := c.Resolve("Digitale Gesellschaft & KI", "Social Media")
	assert.Equal(t, "Digitale Gesellschaft & KI", topic.Name)
	assert.Equal(t, "Social Media", sub)

	topic, sub = c.Resolve("Digitale Gesellschaft & KI", "Stress")
	assert.Equal(t, "Digitale Gesellschaft & KI", topic.Name)
	assert.Equal(t, "Datenschutz", sub)

	topic, sub = c.Resolve("", "")
	assert.Equal(t, "Mentale Gesundheit & Wohlbefinden", topic.Name)
	assert.Equal(t, "Stress", sub)
}

func TestParseCatalogueRejectsInvalid(t *testing.T) {
	_, err := ParseCatalogue([]byte("topics: []"))
	assert.Error(t, err)

	_, err = ParseCatalogue([]byte("topics:\n  - name: Leer\n    subtopics: []\n"))
	assert.Error(t, err)

	_, err = ParseCatalogue([]byte("topics: [unclosed"))
	assert.Error(t, err)
}

func TestSystemPrompt(t *testing.T) {
	prompt := SystemPrompt("Nachhaltigkeit & Klimawandel", "Zero Waste")
	assert.Contains(t, prompt, "Du bist Sokrates")
	assert.Contains(t, prompt, "Thema: Nachhaltigkeit & Klimawandel")
	assert.Contains(t, prompt, "Unterthema: Zero Waste")
}
