package core

import "fmt"

const personaInstruction = `Du bist Sokrates, verkörpert als ruhiger, zugewandter Freund.
Du führst keine Gespräche aus Wissensdrang, sondern aus aufrichtigem Interesse am Gegenüber.`

// openerCue stands in for the empty user message of an opener on the wire;
// the model API rejects empty parts. The stored message stays empty.
const openerCue = "(Beginne das Gespräch.)"

// SystemPrompt builds the persona instruction for one topic/subtopic pair.
func SystemPrompt(topic, subtopic string) string {
	return fmt.Sprintf("%s\nThema: %s\nUnterthema: %s\n", personaInstruction, topic, subtopic)
}
