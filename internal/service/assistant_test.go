package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/n0b0dy-ai/assistant-backend/internal/llm"
	"github.com/n0b0dy-ai/assistant-backend/internal/model"
	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
)

// fakeGenerator returns a fixed reply or fails every call.
type fakeGenerator struct {
	reply      string
	fail       bool
	lastPrompt string
	lastMode   string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt, mode string) (string, error) {
	f.lastPrompt = prompt
	f.lastMode = mode
	if f.fail {
		return "", fmt.Errorf("%w: unavailable", llm.ErrUpstream)
	}
	return f.reply, nil
}

func (f *fakeGenerator) TestCredentials(_ context.Context, _ string) bool {
	return !f.fail
}

func TestRespondSuccess(t *testing.T) {
	gen := &fakeGenerator{reply: "4"}
	assistant := NewAssistant(gen, nil, logger.NewNop())

	reply := assistant.Respond(context.Background(), "what is 2+2", "math", nil)
	if reply.Fallback {
		t.Fatal("successful generation flagged as fallback")
	}
	if reply.Text != "4" {
		t.Fatalf("reply = %q, want 4", reply.Text)
	}
	if reply.Mode != "math" {
		t.Fatalf("mode = %q, want math", reply.Mode)
	}
	if gen.lastMode != "math" {
		t.Fatalf("generator called with mode %q", gen.lastMode)
	}
}

func TestRespondFallbackOnFailure(t *testing.T) {
	gen := &fakeGenerator{fail: true}
	assistant := NewAssistant(gen, nil, logger.NewNop())

	reply := assistant.Respond(context.Background(), "what is 2+2", "math", nil)
	if !reply.Fallback {
		t.Fatal("failed generation not flagged as fallback")
	}
	if reply.Text != llm.Fallback("math", "what is 2+2") {
		t.Fatalf("fallback text mismatch: %q", reply.Text)
	}
}

func TestRespondNormalizesMode(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	assistant := NewAssistant(gen, nil, logger.NewNop())

	reply := assistant.Respond(context.Background(), "hi", "chemistry", nil)
	if reply.Mode != llm.ModeGeneral {
		t.Fatalf("mode = %q, want general", reply.Mode)
	}
}

func TestRespondIncludesHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	assistant := NewAssistant(gen, nil, logger.NewNop())

	history := []model.Message{{Content: "earlier question", Sender: model.SenderUser}}
	assistant.Respond(context.Background(), "follow up", "general", history)
	if !strings.Contains(gen.lastPrompt, "earlier question") {
		t.Fatalf("prompt missing history: %q", gen.lastPrompt)
	}
}

func TestAnswerWithoutIndex(t *testing.T) {
	gen := &fakeGenerator{reply: "an answer"}
	assistant := NewAssistant(gen, nil, logger.NewNop())

	reply, err := assistant.Answer(context.Background(), "a question", 0)
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	if reply.Text != "an answer" {
		t.Fatalf("reply = %q", reply.Text)
	}
	if len(reply.Matches) != 0 {
		t.Fatalf("got %d matches without an index", len(reply.Matches))
	}
}

func TestAnswerFallbackOnFailure(t *testing.T) {
	gen := &fakeGenerator{fail: true}
	assistant := NewAssistant(gen, nil, logger.NewNop())

	reply, err := assistant.Answer(context.Background(), "a question", 3)
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	if !reply.Fallback {
		t.Fatal("failed generation not flagged as fallback")
	}
	if reply.Text != llm.Fallback(llm.ModeGeneral, "a question") {
		t.Fatalf("fallback text mismatch: %q", reply.Text)
	}
}

func TestTestCredentialsCoversAllModes(t *testing.T) {
	assistant := NewAssistant(&fakeGenerator{reply: "ok"}, nil, logger.NewNop())

	results := assistant.TestCredentials(context.Background())
	if len(results) != len(llm.Modes) {
		t.Fatalf("got %d modes, want %d", len(results), len(llm.Modes))
	}
	for _, mode := range llm.Modes {
		ok, present := results[mode]
		if !present || !ok {
			t.Fatalf("mode %s missing or failed: %v", mode, results)
		}
	}
}
