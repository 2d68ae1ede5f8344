package quiz

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Field describes how the value of one positional line is extracted. When
// the line starts with Label (case-insensitive) the label is removed,
// otherwise the first Width runes are cut.
type Field struct {
	Label string
	Width int
}

func (f Field) strip(line string) string {
	line = strings.TrimSpace(line)
	if f.Label != "" && len(line) >= len(f.Label) && strings.EqualFold(line[:len(f.Label)], f.Label) {
		return strings.TrimSpace(line[len(f.Label):])
	}
	r := []rune(line)
	if len(r) <= f.Width {
		return ""
	}
	return strings.TrimSpace(string(r[f.Width:]))
}

// Format is the layout of a question bank text file.
type Format struct {
	HeadingMarker string
	Prompt        Field
	Choices       [4]Field
	Answer        Field
	Page          Field
	Source        Field
}

// DefaultFormat matches banks written as
//
//	--- CH1 ---
//
//	Q: prompt
//	A: ...
//	B: ...
//	C: ...
//	D: ...
//	Answer: B
//	Page: 12
//	Source: Handbook
var DefaultFormat = Format{
	HeadingMarker: "---",
	Prompt:        Field{Label: "Q:", Width: 3},
	Choices: [4]Field{
		{Label: "A:", Width: 3},
		{Label: "B:", Width: 3},
		{Label: "C:", Width: 3},
		{Label: "D:", Width: 3},
	},
	Answer: Field{Label: "Answer:", Width: 8},
	Page:   Field{Label: "Page:", Width: 5},
	Source: Field{Label: "Source:", Width: 8},
}

const linesPerQuestion = 8

// Parse reads questions from text using DefaultFormat.
func Parse(text string) []Question {
	return DefaultFormat.Parse(text)
}

// Parse splits text into blank-line separated blocks and converts every
// well-formed block into a Question. Heading blocks change the chapter for
// the blocks after them. Short or incomplete blocks are skipped.
func (f Format) Parse(text string) []Question {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	chapter := DefaultChapter
	var qs []Question
	for _, block := range strings.Split(strings.TrimSpace(text), "\n\n") {
		lines := nonEmptyLines(block)
		if len(lines) == 0 {
			continue
		}
		if f.HeadingMarker != "" && strings.HasPrefix(lines[0], f.HeadingMarker) {
			if label := strings.TrimSpace(strings.Trim(lines[0], "- ")); label != "" {
				chapter = label
			}
			continue
		}
		if len(lines) < linesPerQuestion {
			continue
		}
		if q, ok := f.question(chapter, lines); ok {
			qs = append(qs, q)
		}
	}
	return qs
}

func (f Format) question(chapter string, lines []string) (Question, bool) {
	q := Question{
		Chapter: chapter,
		Prompt:  f.Prompt.strip(lines[0]),
		Choices: make(map[string]string, len(ChoiceKeys)),
		Answer:  answerKey(f.Answer.strip(lines[5])),
		Page:    f.Page.strip(lines[6]),
		Source:  f.Source.strip(lines[7]),
	}
	for i, k := range ChoiceKeys {
		q.Choices[k] = f.Choices[i].strip(lines[1+i])
	}
	return q, q.valid()
}

func (q Question) valid() bool {
	if q.Prompt == "" || NormalizeChoice(q.Answer) == "" || len(q.Choices) != len(ChoiceKeys) {
		return false
	}
	for _, k := range ChoiceKeys {
		if q.Choices[k] == "" {
			return false
		}
	}
	return true
}

// answerKey accepts "b", "B", "B)" or "B. text" and returns "B".
func answerKey(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if k := NormalizeChoice(v); k != "" {
		return k
	}
	r := []rune(v)
	if len(r) > 1 && !unicode.IsLetter(r[1]) && !unicode.IsDigit(r[1]) {
		return NormalizeChoice(string(r[0]))
	}
	return v
}

func nonEmptyLines(block string) []string {
	raw := strings.Split(block, "\n")
	lines := raw[:0]
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// LoadQuestions reads a question bank from disk. Spreadsheets (.xlsx) go
// through LoadWorkbook, anything else is parsed as text.
func LoadQuestions(path string) ([]Question, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadWorkbook(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	return Parse(string(data)), nil
}
