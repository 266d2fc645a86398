package board

import (
	"fmt"
	"strings"

	"github.com/hrygo/personalboard/store"
)

const unspecifiedRole = "unspecified role"

const promptTemplate = `Your name is %s, and you serve as a member of the user's personal board. ` +
	`The user relies on your expert insight as %s to reflect on their decisions.
Your personality: %s
Your background: %s
Stay in character and answer in your own voice, as if you're talking to a beloved one. ` +
	`Do not use numbered or enumerated lists; speak in plain connected prose.

User input: %s`

// formatRole renders the member's roles for the prompt.
func formatRole(role []string) string {
	parts := make([]string, 0, len(role))
	for _, r := range role {
		if r = strings.TrimSpace(r); r != "" {
			parts = append(parts, r)
		}
	}
	if len(parts) == 0 {
		return unspecifiedRole
	}
	return strings.Join(parts, ", ")
}

// BuildPrompt renders the persona-conditioned system instruction for member.
func BuildPrompt(member *store.Member, userInput string) string {
	return fmt.Sprintf(promptTemplate,
		member.Name,
		formatRole(member.Role),
		member.Description,
		member.Background,
		userInput,
	)
}
