package ai

import (
	"fmt"
	"strings"
)

const chatPreamble = `You are LexAssist, an assistant that provides general legal information.
You do not provide legal advice and you do not create an attorney-client relationship.
Laws differ between jurisdictions; say so when the answer depends on where the user lives,
and suggest consulting a licensed lawyer for decisions about a specific case.
Be concise, cite statutes or cases only when you are sure they exist, and never invent citations.`

// ChatSystemPrompt is the system instruction for chat sessions.
func ChatSystemPrompt() string {
	return chatPreamble
}

// FAQDraftPrompt asks the model to answer a submitted question and rate itself.
func FAQDraftPrompt(question, category, jurisdiction string) string {
	var b strings.Builder
	b.WriteString("Write a plain-language answer for a public legal FAQ.\n")
	if category != "" {
		fmt.Fprintf(&b, "Category: %s\n", category)
	}
	if jurisdiction != "" {
		fmt.Fprintf(&b, "Jurisdiction: %s\n", jurisdiction)
	} else {
		b.WriteString("Jurisdiction: not specified; note where the answer varies by jurisdiction.\n")
	}
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	b.WriteString("Keep it under 300 words. Cite statutes, sections or cases only if certain.\n")
	b.WriteString("End with a final line of the form CONFIDENCE: <number between 0 and 1> ")
	b.WriteString("stating how confident you are that the answer is accurate.")
	return b.String()
}
