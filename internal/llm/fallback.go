package llm

import "fmt"

var fallbackTemplates = map[string]string{
	ModeMath:    "I apologize, but I'm having trouble accessing the math tutoring system right now. However, I'd be happy to help you with your math question: '%s'. Could you please try again in a moment?",
	ModeEnglish: "I'm experiencing some technical difficulties with the English teaching system. Your question about '%s' is important to me. Please try again shortly.",
	ModeHistory: "I'm having trouble accessing the history teaching resources at the moment. Your question about '%s' deserves a proper historical perspective. Please try again soon.",
	ModeGeneral: "I'm experiencing some technical issues right now, but I want to help you with '%s'. Please try again in a moment.",
}

// Fallback returns the mode's canned reply with the user's message echoed
// back. It is pure so callers can always produce a response even when the
// hosted model is unreachable.
func Fallback(mode, userMessage string) string {
	return fmt.Sprintf(fallbackTemplates[NormalizeMode(mode)], userMessage)
}
