package chain

import (
	"fmt"
	"strings"
	"sync"
)

// entrySeparator joins rendered step entries in the chain log file.
const entrySeparator = "\n\n====================\n\n"

// Entry records one resolved fragment: whether it was static, the fully
// substituted prompt sent for generation (dynamic only), and the value
// produced.
type Entry struct {
	// Name is the fragment name.
	Name string `json:"name"`

	// Static is true when the fragment had no references and its raw
	// template was used directly, with no generation call.
	Static bool `json:"static"`

	// Prompt is the substituted text sent to the generator. Empty for
	// static fragments.
	Prompt string `json:"prompt,omitempty"`

	// Value is the resolved value.
	Value string `json:"value"`
}

// Text renders the entry in the chain log format.
func (e Entry) Text() string {
	if e.Static {
		return fmt.Sprintf(
			"--- Step: [[%s]] (Static) ---\n\nCONTENT USED DIRECTLY:\n---\n%s\n---\n",
			e.Name, e.Value)
	}
	return fmt.Sprintf(
		"--- Step: [[%s]] ---\n\nPROMPT SENT TO LLM:\n---\n%s\n---\n\nRESPONSE RECEIVED:\n---\n%s\n---\n",
		e.Name, e.Prompt, e.Value)
}

// StepLog accumulates entries in completion order. Within a parallel level
// that order is whatever order workers finish in; across levels it follows
// level order. Safe for concurrent use.
type StepLog struct {
	mu      sync.Mutex
	entries []Entry
}

// Append adds one entry to the log.
func (l *StepLog) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the entries appended so far.
func (l *StepLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries appended so far.
func (l *StepLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Counts returns how many entries were static and how many dynamic.
func (l *StepLog) Counts() (static, dynamic int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Static {
			static++
		} else {
			dynamic++
		}
	}
	return static, dynamic
}

// Render joins every entry's text form with the chain log separator.
func (l *StepLog) Render() string {
	entries := l.Entries()
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Text()
	}
	return strings.Join(parts, entrySeparator)
}
