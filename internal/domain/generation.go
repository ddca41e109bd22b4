// Package domain provides shared domain types for the prmptr chain runner.
package domain

import "time"

// GenRequest contains the parameters for a single generation request.
// This is passed to ai.Generator implementations once a fragment's
// template has had all dependency values substituted in.
//
// Example JSON representation:
//
//	{
//	    "fragment": "summary",
//	    "prompt": "Summarize the following text: ...",
//	    "model": "gpt-4o-mini",
//	    "system_prompt": "You are a helpful assistant...",
//	    "timeout": "2m"
//	}
type GenRequest struct {
	// Fragment names the chain fragment this request resolves.
	Fragment string `json:"fragment"`

	// Prompt is the fully substituted fragment template.
	Prompt string `json:"prompt"`

	// Model specifies which model to use.
	Model string `json:"model"`

	// SystemPrompt overrides the default system prompt.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Timeout is the maximum duration for the generation call.
	Timeout time.Duration `json:"timeout"`
}

// GenResult captures the outcome of a generation request.
// This is returned by ai.Generator implementations after the call.
//
// Example JSON representation:
//
//	{
//	    "output": "The text describes...",
//	    "model": "gpt-4o-mini",
//	    "duration_ms": 1450
//	}
type GenResult struct {
	// Output contains the completion text, trimmed of surrounding whitespace.
	Output string `json:"output"`

	// Model is the model that produced the completion.
	Model string `json:"model"`

	// DurationMs is how long the generation call took in milliseconds.
	DurationMs int `json:"duration_ms"`
}
