package llm

import (
	"fmt"
	"strings"

	"github.com/n0b0dy-ai/assistant-backend/internal/model"
)

// AssistantName is the persona used across all system prompts.
const AssistantName = "N0b0dy"

// maxHistoryTurns bounds how much conversation history is rendered into a prompt.
const maxHistoryTurns = 10

var systemPrompts = map[string]string{
	ModeMath: `You are N0b0dy, an expert mathematics tutor. Your role is to:
- Help students understand mathematical concepts step by step
- Provide clear explanations with examples
- Break down complex problems into manageable steps
- Use appropriate mathematical notation and terminology
- Encourage learning and build confidence
- Always show your work and explain your reasoning
- Be patient and supportive in your teaching approach`,

	ModeEnglish: `You are N0b0dy, an expert English language teacher. Your role is to:
- Help students improve their English language skills
- Explain grammar rules clearly with examples
- Provide vocabulary definitions and usage examples
- Help with pronunciation, writing, and communication
- Correct mistakes gently and explain why
- Encourage practice and provide constructive feedback
- Use appropriate teaching methods for different skill levels
- Be encouraging and supportive in your approach`,

	ModeHistory: `You are N0b0dy, an expert history teacher. Your role is to:
- Help students understand historical events and their significance
- Provide context and background information
- Explain cause-and-effect relationships in history
- Discuss different perspectives and interpretations
- Connect historical events to modern times
- Use engaging storytelling techniques
- Encourage critical thinking about historical sources
- Make history relevant and interesting for students`,

	ModeGeneral: `You are N0b0dy, a helpful AI assistant. Your role is to:
- Provide accurate and helpful information
- Answer questions clearly and comprehensively
- Be friendly and approachable in your responses
- Offer practical advice and solutions
- Maintain a professional yet conversational tone
- Help users with a wide variety of topics
- Be honest about limitations when you don't know something`,
}

// SystemPrompt returns the mode's persona template; unknown modes get the
// general assistant.
func SystemPrompt(mode string) string {
	return systemPrompts[NormalizeMode(mode)]
}

// PromptInput carries everything BuildPrompt may fold into a prompt.
// ContextDocs takes precedence over History when both are present.
type PromptInput struct {
	Mode        string
	Message     string
	History     []model.Message
	ContextDocs []string
}

// BuildPrompt assembles the final prompt string for one generation call.
func BuildPrompt(in PromptInput) string {
	if len(in.ContextDocs) > 0 {
		return buildGroundedPrompt(in.Message, in.ContextDocs)
	}
	if len(in.History) > 0 {
		return buildHistoryPrompt(in.Mode, in.Message, in.History)
	}
	return fmt.Sprintf("%s\n\nUser: %s\n%s:", SystemPrompt(in.Mode), in.Message, AssistantName)
}

func buildGroundedPrompt(question string, docs []string) string {
	var context strings.Builder
	for i, doc := range docs {
		if i > 0 {
			context.WriteString("\n\n")
		}
		fmt.Fprintf(&context, "Document %d:\n%s", i+1, doc)
	}

	return fmt.Sprintf(`Based on the following context documents, please answer the question.
If the answer cannot be found in the context, say "I don't have enough information to answer that question."

Context:
%s

Question: %s

Answer:`, context.String(), question)
}

func buildHistoryPrompt(mode, message string, history []model.Message) string {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	var b strings.Builder
	b.WriteString(SystemPrompt(mode))
	b.WriteString("\n\nConversation History:\n")
	for _, msg := range history {
		role := AssistantName
		if msg.Sender == model.SenderUser {
			role = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, msg.Content)
	}
	fmt.Fprintf(&b, "\nCurrent User Message: %s", message)
	return b.String()
}
