// Package llm provides prompt assembly and hosted-model access.
package llm

import (
	"context"
	"errors"
)

// ErrUpstream reports a failed hosted-model call. The gateway makes exactly
// one attempt; converting the failure into user-facing fallback text is the
// caller's job (see Fallback).
var ErrUpstream = errors.New("hosted model request failed")

// Assistant modes. Each mode selects its own credentials and system prompt.
const (
	ModeMath    = "math"
	ModeEnglish = "english"
	ModeHistory = "history"
	ModeGeneral = "general"
)

// Modes lists every supported assistant mode.
var Modes = []string{ModeMath, ModeEnglish, ModeHistory, ModeGeneral}

// NormalizeMode maps unknown modes to the general assistant.
func NormalizeMode(mode string) string {
	switch mode {
	case ModeMath, ModeEnglish, ModeHistory, ModeGeneral:
		return mode
	default:
		return ModeGeneral
	}
}

// Generator sends assembled prompts to a hosted generation API.
type Generator interface {
	// Generate makes a single generation attempt and returns the model's
	// text, or an error wrapping ErrUpstream.
	Generate(ctx context.Context, prompt, mode string) (string, error)

	// TestCredentials sends a fixed smoke-test prompt and reports whether a
	// non-empty response came back. All errors are swallowed as false.
	TestCredentials(ctx context.Context, mode string) bool
}
