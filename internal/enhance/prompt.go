package enhance

import (
	"encoding/json"
	"fmt"
	"strings"

	"notesync-core/internal/entity"
)

// promptBuilder assembles the system/user message pair for one
// enhancement run.
type promptBuilder struct {
	connectionType string
	config         *entity.Config
	participants   []entity.Human
	rawContent     string
	words          []entity.Word
}

func (b *promptBuilder) BuildSystem() string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("You rewrite a meeting note. You are given the attendee's own raw note and the full transcript of the meeting.\n")
	prompt.WriteString("Produce a polished, well-structured markdown document that preserves every decision and action item.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("- Keep the author's voice; do not invent facts absent from the note or transcript\n")
	prompt.WriteString("- Use headings and bullet lists; keep it scannable\n")
	prompt.WriteString("- The raw note wins over the transcript when they conflict\n")
	if b.config != nil && b.config.SummaryLanguage != "" {
		fmt.Fprintf(&prompt, "- Write the output in %s\n", b.config.SummaryLanguage)
	}
	if b.config != nil && len(b.config.JargonWords) > 0 {
		fmt.Fprintf(&prompt, "- Spell these domain terms exactly as given: %s\n", strings.Join(b.config.JargonWords, ", "))
	}
	prompt.WriteString("</guidelines>\n")

	if b.connectionType != "" {
		fmt.Fprintf(&prompt, "\n<connection>%s</connection>\n", b.connectionType)
	}

	return prompt.String()
}

func (b *promptBuilder) BuildUser() (string, error) {
	serialized, err := json.Marshal(b.words)
	if err != nil {
		return "", fmt.Errorf("serialize transcript words: %w", err)
	}

	var prompt strings.Builder

	if len(b.participants) > 0 {
		prompt.WriteString("<participants>\n")
		for _, p := range b.participants {
			if p.JobTitle != "" {
				fmt.Fprintf(&prompt, "- %s (%s)\n", p.FullName, p.JobTitle)
			} else {
				fmt.Fprintf(&prompt, "- %s\n", p.FullName)
			}
		}
		prompt.WriteString("</participants>\n\n")
	}

	prompt.WriteString("<raw_note>\n")
	prompt.WriteString(b.rawContent)
	prompt.WriteString("\n</raw_note>\n\n")

	prompt.WriteString("<transcript>\n")
	prompt.Write(serialized)
	prompt.WriteString("\n</transcript>\n")

	return prompt.String(), nil
}
