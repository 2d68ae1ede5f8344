package quiz

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook columns, in order. The first row is treated as a header when
// its first cell reads "chapter".
const (
	colChapter = iota
	colPrompt
	colA
	colB
	colC
	colD
	colAnswer
	colPage
	colSource
)

// LoadWorkbook reads questions from the first sheet of an .xlsx file.
// A row with only the chapter cell filled starts a new chapter, and rows
// with an empty chapter cell inherit the current one.
func LoadWorkbook(path string) ([]Question, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %w", ErrResourceUnavailable, err)
	}
	return questionsFromRows(rows), nil
}

func questionsFromRows(rows [][]string) []Question {
	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "chapter") {
		rows = rows[1:]
	}
	chapter := DefaultChapter
	var qs []Question
	for _, row := range rows {
		if c := cell(row, colChapter); c != "" {
			chapter = c
		}
		if len(row) <= colAnswer {
			continue
		}
		q := Question{
			Chapter: chapter,
			Prompt:  cell(row, colPrompt),
			Choices: map[string]string{
				"A": cell(row, colA),
				"B": cell(row, colB),
				"C": cell(row, colC),
				"D": cell(row, colD),
			},
			Answer: answerKey(cell(row, colAnswer)),
			Page:   cell(row, colPage),
			Source: cell(row, colSource),
		}
		if q.valid() {
			qs = append(qs, q)
		}
	}
	return qs
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
