// ABOUTME: Sentinel errors shared across stores, adapters, and the orchestrator
// ABOUTME: Callers match with errors.Is; wrap with fmt.Errorf and %w
package models

import "errors"

var (
	// ErrNotFound indicates a missing record on a keyed lookup.
	ErrNotFound = errors.New("not found")

	// ErrIO indicates the underlying storage was unreachable or a write failed.
	ErrIO = errors.New("storage failure")

	// ErrContextUnavailable indicates the assembly step could not gather
	// required context for a message.
	ErrContextUnavailable = errors.New("context unavailable")

	// ErrInvalidToolRequest indicates the model asked for an unknown or
	// malformed tool action.
	ErrInvalidToolRequest = errors.New("invalid tool request")

	// ErrExternalAPI wraps calendar or LLM provider failures. Never
	// propagated raw to a channel.
	ErrExternalAPI = errors.New("external API failure")
)
