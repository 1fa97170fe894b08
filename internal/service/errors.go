package service

import "errors"

var (
	// ErrEmptyDocument rejects an upload that produced no chunks.
	ErrEmptyDocument = errors.New("no content found in resume")
	// ErrNotInitialized is returned by callers that check IsInitialized first.
	ErrNotInitialized = errors.New("no resume uploaded yet")
	// ErrInvalidSection rejects multi-entry extraction for other sections.
	ErrInvalidSection = errors.New("invalid section, use: education, experience, projects")
	// ErrMalformedModelOutput marks a response without a parseable JSON array.
	ErrMalformedModelOutput = errors.New("model output is not a JSON array")
)
