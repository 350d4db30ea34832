package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/n0b0dy-ai/assistant-backend/internal/llm"
	"github.com/n0b0dy-ai/assistant-backend/internal/model"
	"github.com/n0b0dy-ai/assistant-backend/internal/rag"
	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
	"github.com/n0b0dy-ai/assistant-backend/pkg/metrics"
)

// defaultTopK is how many documents ground a retrieval-augmented answer.
const defaultTopK = 3

// Reply is one assistant turn, flagged when it came from the canned
// fallback instead of the hosted model.
type Reply struct {
	Text     string `json:"response"`
	Mode     string `json:"mode"`
	Fallback bool   `json:"fallback"`
}

// GroundedReply is a retrieval-augmented answer with its supporting matches.
type GroundedReply struct {
	Text     string      `json:"response"`
	Matches  []rag.Match `json:"matches"`
	Fallback bool        `json:"fallback"`
}

// Assistant turns user messages into replies. It assembles the prompt from
// history or retrieved documents, calls the hosted model once, and degrades
// to mode-specific fallback text when the call fails.
type Assistant struct {
	generator llm.Generator
	index     *rag.Index
	logger    *logger.Logger
}

// NewAssistant wires the assistant with its generator and optional index.
func NewAssistant(generator llm.Generator, index *rag.Index, log *logger.Logger) *Assistant {
	return &Assistant{
		generator: generator,
		index:     index,
		logger:    log,
	}
}

// Respond answers a user message in the given mode using the supplied
// conversation history. It never returns an error text-free reply.
func (a *Assistant) Respond(ctx context.Context, message, mode string, history []model.Message) Reply {
	mode = llm.NormalizeMode(mode)
	prompt := llm.BuildPrompt(llm.PromptInput{
		Mode:    mode,
		Message: message,
		History: history,
	})

	text, err := a.generator.Generate(ctx, prompt, mode)
	if err != nil {
		a.logger.Warn("generation failed, serving fallback",
			zap.String("mode", mode),
			zap.Error(err),
		)
		metrics.LLMFallbacksTotal.WithLabelValues(mode).Inc()
		return Reply{Text: llm.Fallback(mode, message), Mode: mode, Fallback: true}
	}
	return Reply{Text: text, Mode: mode, Fallback: false}
}

// Answer answers a question grounded on the top index matches. With an empty
// index it still calls the model with an ungrounded prompt.
func (a *Assistant) Answer(ctx context.Context, question string, topK int) (GroundedReply, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	matches := []rag.Match{}
	if a.index != nil {
		found, err := a.index.Search(ctx, question, topK)
		if err != nil {
			return GroundedReply{}, err
		}
		matches = found
	}

	docs := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.TrimSpace(m.Document.Text) != "" {
			docs = append(docs, m.Document.Text)
		}
	}

	prompt := llm.BuildPrompt(llm.PromptInput{
		Mode:        llm.ModeGeneral,
		Message:     question,
		ContextDocs: docs,
	})

	text, err := a.generator.Generate(ctx, prompt, llm.ModeGeneral)
	if err != nil {
		a.logger.Warn("grounded generation failed, serving fallback", zap.Error(err))
		metrics.LLMFallbacksTotal.WithLabelValues(llm.ModeGeneral).Inc()
		return GroundedReply{
			Text:     llm.Fallback(llm.ModeGeneral, question),
			Matches:  matches,
			Fallback: true,
		}, nil
	}
	return GroundedReply{Text: text, Matches: matches, Fallback: false}, nil
}

// TestCredentials smoke-tests every mode's credentials.
func (a *Assistant) TestCredentials(ctx context.Context) map[string]bool {
	results := make(map[string]bool, len(llm.Modes))
	for _, mode := range llm.Modes {
		results[mode] = a.generator.TestCredentials(ctx, mode)
	}
	return results
}
