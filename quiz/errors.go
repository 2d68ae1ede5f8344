package quiz

import "errors"

var (
	ErrResourceUnavailable = errors.New("question bank unavailable")
	ErrEmptyQuestionBank   = errors.New("question bank is empty")
	ErrInvalidChoice       = errors.New("choice must be one of A, B, C or D")
	ErrSessionComplete     = errors.New("quiz already completed")
	ErrAlreadyAnswered     = errors.New("current question already answered")
	ErrNotAnswered         = errors.New("current question not answered yet")
)
