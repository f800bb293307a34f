// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "fmt"

// Each failure's Error text is the diagnostic sentence streamed to the
// caller. Generation and unclassified failures are streamed with a leading
// newline so they separate from any partial answer.

// NoResultsError: both searches came back empty.
type NoResultsError struct {
	Topic string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("No Wikipedia pages found for '%s'.", e.Topic)
}

// SelectionError: the ranking call failed.
type SelectionError struct {
	Err error
}

func (e *SelectionError) Error() string { return "Error selecting page: " + e.Err.Error() }
func (e *SelectionError) Unwrap() error { return e.Err }

// FetchError: the selected page had no obtainable content.
type FetchError struct {
	Title string
	Err   error
}

func (e *FetchError) Error() string { return fmt.Sprintf("Could not fetch page '%s'.", e.Title) }
func (e *FetchError) Unwrap() error { return e.Err }

// GenerationError: the final answer stream failed, possibly after some
// tokens were delivered.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "Error generating answer: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// UnclassifiedError wraps a panic recovered from a stage.
type UnclassifiedError struct {
	Value any
}

func (e *UnclassifiedError) Error() string { return fmt.Sprintf("Fatal error: %v", e.Value) }

func (e *UnclassifiedError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
