package models

// AITurn is one exchange kept in the short-lived conversation context.
type AITurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AIContext is the cached conversation state for a chat session.
type AIContext struct {
	SessionID string   `json:"sessionId"`
	Turns     []AITurn `json:"turns"`
}

// Trim keeps at most the last n turns.
func (c *AIContext) Trim(n int) {
	if n <= 0 || len(c.Turns) <= n {
		return
	}
	c.Turns = append([]AITurn(nil), c.Turns[len(c.Turns)-n:]...)
}
