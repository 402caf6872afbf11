package search

import (
	"strings"
)

const DefaultLimit = 20

// MessageQuery represents the structured parameters of a message search.
// It decouples the raw user input from the index requirements.
type MessageQuery struct {
	RawInput string
	Terms    string
	Lang     string
	Limit    int
}

// ParseMessageQuery extracts command-line style flags from the raw input.
// Example: invoice --lang en
func ParseMessageQuery(input string) MessageQuery {
	query := MessageQuery{RawInput: input, Limit: DefaultLimit}

	parts := strings.Fields(input)
	var textTerms []string
	for i := 0; i < len(parts); i++ {
		part := parts[i]

		// Flags like --lang fr, unknown flags are dropped with their value
		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			if strings.TrimPrefix(part, "--") == "lang" {
				query.Lang = strings.ToLower(parts[i+1])
			}
			i++ // Skip the value part in next iteration
			continue
		}
		textTerms = append(textTerms, part)
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}
