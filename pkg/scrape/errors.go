package scrape

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork covers transport failures, timeouts and non-2xx responses.
	ErrNetwork = errors.New("network error")
	// ErrNotFound means the page lacked the mode/tense anchor or its data block.
	ErrNotFound = errors.New("conjugation not found")
	// ErrAllSourcesFailed is returned by the Resolver when no source produced forms.
	ErrAllSourcesFailed = errors.New("all sources failed")
)

// SourceError records which source failed and how. It matches its Kind and
// its cause with errors.Is.
type SourceError struct {
	Source string
	Kind   error
	Err    error
}

func (e *SourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func networkErr(source string, err error) error {
	return &SourceError{Source: source, Kind: ErrNetwork, Err: err}
}

func notFound(source, format string, args ...any) error {
	return &SourceError{Source: source, Kind: ErrNotFound, Err: fmt.Errorf(format, args...)}
}
