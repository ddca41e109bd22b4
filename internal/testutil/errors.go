// Package testutil holds shared test fixtures. Only _test.go files
// import it.
package testutil

import "errors"

// Stand-in failures for tests that need a stable sentinel to assert
// against with errors.Is.
var (
	// ErrMockFileNotFound simulates a missing file.
	ErrMockFileNotFound = errors.New("file not found")

	// ErrMockGeneration simulates a provider refusing a generation.
	ErrMockGeneration = errors.New("generation refused")

	// ErrMockNetwork simulates a network failure.
	ErrMockNetwork = errors.New("network error")
)
