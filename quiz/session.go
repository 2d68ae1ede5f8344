package quiz

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

// Shuffler randomizes the question order. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// NewRand returns a deterministic Shuffler for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type Option func(*Session)

// WithShuffler sets the randomness used to order questions.
func WithShuffler(s Shuffler) Option {
	return func(sess *Session) {
		if s != nil {
			sess.shuffler = s
		}
	}
}

// WithLimit caps the session at n questions taken from the shuffled order.
// n <= 0 keeps every question.
func WithLimit(n int) Option {
	return func(sess *Session) { sess.limit = n }
}

// Session is one run through a shuffled question bank. Submit records an
// answer for the current question; Advance moves to the next one.
type Session struct {
	ID string

	order        []Question
	position     int
	totalCorrect int
	tally        ChapterTally
	last         *Outcome
	answeredAt   int
	shuffler     Shuffler
	limit        int
	mu           sync.Mutex
}

func NewSession(qs []Question, opts ...Option) (*Session, error) {
	if len(qs) == 0 {
		return nil, ErrEmptyQuestionBank
	}
	s := &Session{
		ID:         uuid.NewString(),
		shuffler:   globalShuffler{},
		answeredAt: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	order := make([]Question, len(qs))
	for i, q := range qs {
		order[i] = q.clone()
	}
	s.shuffler.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	if s.limit > 0 && s.limit < len(order) {
		order = order[:s.limit]
	}
	s.order = order
	return s, nil
}

func (s *Session) Current() (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position >= len(s.order) {
		return Question{}, ErrSessionComplete
	}
	return s.order[s.position].clone(), nil
}

// Submit scores choice against the current question. It does not advance;
// callers must call Advance before submitting again.
func (s *Session) Submit(choice string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submit(choice)
}

// SubmitOnce is Submit that fails with ErrAlreadyAnswered when the current
// question already has a submission.
func (s *Session) SubmitOnce(choice string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.answeredAt == s.position && s.position < len(s.order) {
		return Outcome{}, ErrAlreadyAnswered
	}
	return s.submit(choice)
}

func (s *Session) submit(choice string) (Outcome, error) {
	if s.position >= len(s.order) {
		return Outcome{}, ErrSessionComplete
	}
	key := NormalizeChoice(choice)
	if key == "" {
		return Outcome{}, fmt.Errorf("%w: got %q", ErrInvalidChoice, choice)
	}
	q := s.order[s.position]
	out := Outcome{
		Choice:        key,
		Correct:       key == q.Answer,
		CorrectChoice: q.Answer,
		Page:          q.Page,
		Source:        q.Source,
	}
	s.tally.record(q.Chapter, out.Correct)
	if out.Correct {
		s.totalCorrect++
	}
	s.last = &out
	s.answeredAt = s.position
	return out, nil
}

// Advance moves past the current question. Calls after the last question
// have no effect.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position < len(s.order) {
		s.position++
	}
}

// AdvanceAnswered advances only when the current question has been
// submitted, so no question can be skipped.
func (s *Session) AdvanceAnswered() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position >= len(s.order) {
		return ErrSessionComplete
	}
	if s.answeredAt != s.position {
		return ErrNotAnswered
	}
	s.position++
	return nil
}

func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position >= len(s.order)
}

// Answered reports whether the current question already has a submission.
func (s *Session) Answered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answeredAt == s.position && s.position < len(s.order)
}

func (s *Session) LastOutcome() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Outcome{}, false
	}
	return *s.last, true
}

// Progress returns the number of completed questions and the session size.
func (s *Session) Progress() (completed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position, len(s.order)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Questions returns the session order.
func (s *Session) Questions() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Question, len(s.order))
	for i, q := range s.order {
		out[i] = q.clone()
	}
	return out
}

func (s *Session) Results() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := Summary{
		TotalCorrect:   s.totalCorrect,
		TotalQuestions: len(s.order),
		Tally:          s.tally.Map(),
		Chapters:       make([]ChapterScore, 0, s.tally.Len()),
	}
	for _, ch := range s.tally.Chapters() {
		sc := s.tally.Get(ch)
		sum.Answered += sc.Total
		sum.Chapters = append(sum.Chapters, ChapterScore{Chapter: ch, Score: sc})
	}
	return sum
}
