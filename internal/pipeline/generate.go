package pipeline

import (
	"fmt"
	"strings"

	"github.com/jbarrena/calverify/internal/model"
)

const draftSystemInstruction = `You are a legal research assistant for California law. Answer using only the provided sources and, when enabled, live web results. Cite sources inline with bracketed numbers like [1] matching the source list. State California law precisely: name the code and section for statutory rules and the case name for judicial holdings. If the sources do not answer the question, say so rather than speculating. You provide legal information, not legal advice.`

// buildDraftPrompt assembles the drafting prompt: numbered sources, any raw
// retrieved content, then the question.
func buildDraftPrompt(question string, sources []model.Source, content string) string {
	var b strings.Builder

	if len(sources) > 0 {
		b.WriteString("Sources:\n")
		for _, src := range sources {
			fmt.Fprintf(&b, "[%d] %s\n", src.ID, src.Title)
			if src.URL != "" {
				fmt.Fprintf(&b, "    %s\n", src.URL)
			}
			if src.Excerpt != "" {
				fmt.Fprintf(&b, "    %s\n", src.Excerpt)
			}
		}
		b.WriteString("\n")
	}

	if content != "" {
		b.WriteString("Additional retrieved content:\n")
		b.WriteString(content)
		b.WriteString("\n\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
