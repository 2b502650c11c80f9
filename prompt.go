package docqa

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are a helpful assistant. Answer the question ONLY using the context below.

Context:
%s

Question: %s
Answer:`

// BuildPrompt grounds the question in the retrieved passages, kept in
// retrieval order and separated by blank lines.
func BuildPrompt(passages []Passage, question string) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	context := strings.Join(texts, "\n\n")
	return fmt.Sprintf(promptTemplate, context, question)
}
