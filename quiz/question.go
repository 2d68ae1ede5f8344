package quiz

import "strings"

// ChoiceKeys are the four labels every question carries, in display order.
var ChoiceKeys = [4]string{"A", "B", "C", "D"}

const DefaultChapter = "General"

type Question struct {
	Chapter string            `json:"chapter"`
	Prompt  string            `json:"question"`
	Choices map[string]string `json:"choices"`
	Answer  string            `json:"answer"`
	Page    string            `json:"page"`
	Source  string            `json:"source"`
}

func (q Question) clone() Question {
	choices := make(map[string]string, len(q.Choices))
	for k, v := range q.Choices {
		choices[k] = v
	}
	q.Choices = choices
	return q
}

// Outcome is the feedback for a single submission.
type Outcome struct {
	Choice        string `json:"choice"`
	Correct       bool   `json:"correct"`
	CorrectChoice string `json:"correctChoice"`
	Page          string `json:"page"`
	Source        string `json:"source"`
}

type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// ChapterTally counts correct/total answers per chapter and remembers the
// order chapters were first seen in. The zero value is ready to use.
type ChapterTally struct {
	order  []string
	scores map[string]*Score
}

func (t *ChapterTally) entry(chapter string) *Score {
	if t.scores == nil {
		t.scores = make(map[string]*Score)
	}
	s, ok := t.scores[chapter]
	if !ok {
		s = &Score{}
		t.scores[chapter] = s
		t.order = append(t.order, chapter)
	}
	return s
}

func (t *ChapterTally) record(chapter string, correct bool) {
	s := t.entry(chapter)
	s.Total++
	if correct {
		s.Correct++
	}
}

// Get returns the score for chapter; unseen chapters report zero.
func (t *ChapterTally) Get(chapter string) Score {
	if s, ok := t.scores[chapter]; ok {
		return *s
	}
	return Score{}
}

func (t *ChapterTally) Chapters() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func (t *ChapterTally) Len() int { return len(t.order) }

func (t *ChapterTally) Map() map[string]Score {
	out := make(map[string]Score, len(t.scores))
	for k, v := range t.scores {
		out[k] = *v
	}
	return out
}

type ChapterScore struct {
	Chapter string `json:"chapter"`
	Score
}

// Summary is the aggregate report for a session.
type Summary struct {
	TotalCorrect   int              `json:"totalCorrect"`
	TotalQuestions int              `json:"totalQuestions"`
	Answered       int              `json:"answered"`
	Tally          map[string]Score `json:"tally"`
	Chapters       []ChapterScore   `json:"chapters"`
}

func (s Summary) Percent() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.TotalCorrect) * 100 / float64(s.TotalQuestions)
}

// NormalizeChoice upper-cases and trims a user supplied key. It returns ""
// when the input is not one of ChoiceKeys.
func NormalizeChoice(choice string) string {
	c := strings.ToUpper(strings.TrimSpace(choice))
	for _, k := range ChoiceKeys {
		if c == k {
			return c
		}
	}
	return ""
}
