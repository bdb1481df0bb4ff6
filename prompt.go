package spyder

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs a chat model to answer from retrieved entries only.
const SystemPrompt = "You are a helpful assistant answering questions about an ingested document collection. " +
	"Answer based only on the excerpts provided. If the answer is not in the excerpts, say so."

// BuildUserPrompt builds the user prompt containing retrieved excerpts and
// the question.
func BuildUserPrompt(results []SearchResult, question string) string {
	var sb strings.Builder
	sb.WriteString("<excerpts>\n")
	for i, r := range results {
		sb.WriteString("<excerpt>\n")
		fmt.Fprintf(&sb, "<index>%d</index>\n", i+1)
		fmt.Fprintf(&sb, "<title>%s</title>\n", entryLabel(r.Entry))
		fmt.Fprintf(&sb, "<source>%s</source>\n", r.Entry.Source)
		fmt.Fprintf(&sb, "<content>%s</content>\n", r.Entry.Text)
		sb.WriteString("</excerpt>\n")
	}
	sb.WriteString("</excerpts>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}
