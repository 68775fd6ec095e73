package domain

import "errors"

var (
	// ErrNotInitialized is returned when the persistence collaborator is unavailable.
	ErrNotInitialized = errors.New("persistence not initialized")
	// ErrQueryFailed wraps a remote error surfaced by the persistence layer.
	ErrQueryFailed = errors.New("persistence query failed")
	// ErrSessionNotFound is returned when a study session does not exist.
	ErrSessionNotFound = errors.New("study session not found")
	// ErrSessionComplete is returned when answering a finished session.
	ErrSessionComplete = errors.New("study session already complete")
	// ErrSessionInProgress is returned when a score is requested before completion.
	ErrSessionInProgress = errors.New("study session still in progress")
	// ErrInvalidOption indicates a submitted option index is out of range.
	ErrInvalidOption = errors.New("option out of range")
	// ErrEmptySession indicates a session was started with no questions.
	ErrEmptySession = errors.New("no questions available")
	// ErrCategoryNotFound indicates an unknown sign category.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrTopicNotFound indicates an unknown study topic.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrLessonNotFound indicates an unknown lesson.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrMockTestNotFound indicates an unknown mock exam.
	ErrMockTestNotFound = errors.New("mock test not found")
)
