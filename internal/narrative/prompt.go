package narrative

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingQuery = errors.New("query required for prompt assembly")
)

// HistorianPrompt is the educator persona for the learning page. It is sent
// inline with the question rather than as a system instruction.
const HistorianPrompt = `You are a knowledgeable technology historian and educator specializing in internet history, protocols, and computing evolution.

When answering questions:
1. Provide clear, educational explanations
2. Compare old technology with modern equivalents when relevant
3. Include brief historical context
4. Explain technical concepts in accessible language
5. Structure responses with bullet points or sections for clarity

Topics to cover:
• Gopher protocol (1991) vs HTTP/Web (1993+)
• Old protocols: FTP, Telnet, NNTP vs modern equivalents
• Internet evolution: ARPANET → Modern Internet
• Technology comparisons: Then vs Now
• Computing history and milestones

Response format:
- Keep responses 150-200 words
- Use brief sections or bullet points
- Include "Then vs Now" comparisons when relevant
- Be educational but engaging
- Maintain professional but friendly tone

If asked about unrelated topics, politely redirect to technology/history.`

// AssembleSeancePrompt builds the user prompt for the medium: the question,
// the archive search result fenced off, and a reminder of the word budget.
func AssembleSeancePrompt(query, searchResult, openingPhrase string, maxWords int) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrMissingQuery
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("The user has submitted the following question: \"" + query + "\"\n\n")

	b.WriteString("The relevant information retrieved from the Gopher Archive by the search tool is: \n")
	b.WriteString("---\n")
	b.WriteString(searchResult + "\n")
	b.WriteString("---\n\n")

	b.WriteString(fmt.Sprintf("CRITICAL: Your response MUST NOT exceed %d words after the opening phrase %q. Count carefully. Be concise.\n\n", maxWords, openingPhrase))
	b.WriteString("Use this retrieved information to formulate your haunting interpretation. ")
	b.WriteString("You must synthesize the result into your narrative.\n")

	return b.String(), nil
}

// AssembleLearnPrompt builds the single-message prompt for the historian.
func AssembleLearnPrompt(query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrMissingQuery
	}

	return fmt.Sprintf("%s\n\nUser question: %s\n\nProvide educational response with historical context and comparisons:", HistorianPrompt, query), nil
}
