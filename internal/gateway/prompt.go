package gateway

import (
	"strings"

	"github.com/matheus3301/inbox/internal/inbox"
)

const instruction = "You are a support assistant."

// BuildPrompt renders the text sent to the model: the assistant instruction,
// the conversation as "sender: text" lines, then the question.
func BuildPrompt(prompt string, contextMessages []inbox.Message) string {
	lines := make([]string, 0, len(contextMessages))
	for _, m := range contextMessages {
		lines = append(lines, string(m.Sender)+": "+m.Text)
	}

	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString(" Context:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(prompt)
	return b.String()
}
