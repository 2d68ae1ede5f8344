package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"golang.org/x/term"

	"mcq-quiz/quiz"
	"mcq-quiz/webapp"
)

var (
	activeRawState *term.State
	activeRawFD    int
	activeSession  *quiz.Session
	sessionMu      sync.Mutex
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"

	checkMark = "✅"
	crossMark = "❌"

	// raw mode turns off output post-processing, so lines end in CRLF.
	rawEOL = "\r\n"

	selectionWarning = "Please select A, B, C or D."
)

// chooser shows a question and returns the selected key, or false when
// input ended.
type chooser func(q quiz.Question, number, completed, total int) (string, bool)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	questions, err := quiz.LoadQuestions(cfg.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load '%s': %v\n", cfg.File, err)
		os.Exit(1)
	}

	if cfg.Mode == "web" {
		err := webapp.Run(webapp.Config{
			Addr:           cfg.Addr,
			CORSOrigins:    cfg.CORSOrigins,
			SessionOptions: cfg.sessionOptions(),
		}, questions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "web server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runCLI(questions, cfg.sessionOptions()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runCLI(questions []quiz.Question, opts []quiz.Option) error {
	session, err := quiz.NewSession(questions, opts...)
	if err != nil {
		return fmt.Errorf("cannot start quiz from %d questions: %w", len(questions), err)
	}
	sessionMu.Lock()
	activeSession = session
	sessionMu.Unlock()
	setupSignalHandling()

	reader := bufio.NewScanner(os.Stdin)
	choose := typedChooser(reader, os.Stdout)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		choose = arrowChooser(reader)
	}

	fmt.Println(colorize("MCQ Quiz", colorBold+colorCyan))
	fmt.Println("--------")
	fmt.Println("Answer each question with A, B, C, or D. Press Enter after each choice.")

	if !runQuiz(session, reader, os.Stdout, choose) {
		fmt.Println("\nInput ended unexpectedly. Exiting quiz.")
	}
	printSummary(os.Stdout, session.Results())
	return nil
}

// runQuiz drives session to completion. It returns false when input ran
// out before the last question.
func runQuiz(session *quiz.Session, reader *bufio.Scanner, w io.Writer, choose chooser) bool {
	for !session.IsComplete() {
		q, err := session.Current()
		if err != nil {
			return true
		}
		completed, total := session.Progress()
		choice, ok := choose(q, completed+1, completed, total)
		if !ok {
			return false
		}
		out, err := session.Submit(choice)
		if errors.Is(err, quiz.ErrInvalidChoice) {
			fmt.Fprintln(w, colorize(selectionWarning, colorYellow))
			continue
		}
		if err != nil {
			return true
		}

		showFeedback(w, q, out)
		if completed+1 < total {
			fmt.Fprintln(w, "Press Enter for the next question...")
		} else {
			fmt.Fprintln(w, "Press Enter to see your results...")
		}
		more := reader.Scan()
		session.Advance()
		fmt.Fprintln(w)
		if !more && !session.IsComplete() {
			return false
		}
	}
	return true
}

func questionLines(q quiz.Question, number int) []string {
	header := colorize(fmt.Sprintf("Q%d (%s): %s", number, q.Chapter, q.Prompt), colorBold+colorCyan)
	return []string{header, ""}
}

// arrowChooser renders a selectable list driven by the arrow keys. It falls
// back to typed input when the terminal cannot enter raw mode.
func arrowChooser(reader *bufio.Scanner) chooser {
	typed := typedChooser(reader, os.Stdout)
	return func(q quiz.Question, number, completed, total int) (string, bool) {
		choiceIdx := 0
		render := func() {
			width, rows := termSize()
			clearScreen(os.Stdout)
			lines := append([]string{formatProgress(completed, total)}, questionLines(q, number)...)
			for i, key := range quiz.ChoiceKeys {
				prefix := "  "
				if i == choiceIdx {
					prefix = colorize("> ", colorYellow)
				}
				lines = append(lines, fmt.Sprintf("%s%s) %s", prefix, key, q.Choices[key]))
			}
			lines = append(lines, "", colorize("Use ↑/↓ to select, Enter to confirm (A–D also works).", colorYellow))
			renderBlockWithVerticalCenter(os.Stdout, lines, width, rows, rawEOL)
		}

		if _, err := enableRaw(int(os.Stdin.Fd())); err != nil {
			return typed(q, number, completed, total)
		}
		defer disableRaw()
		render()

		buf := make([]byte, 3)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				return "", false
			}
			switch {
			case buf[0] == 3: // Ctrl-C, raw mode swallows SIGINT
				interrupt()
			case buf[0] == '\n' || buf[0] == '\r':
				return quiz.ChoiceKeys[choiceIdx], true
			case buf[0] == 27 && n >= 3 && buf[1] == '[':
				switch buf[2] {
				case 'A':
					if choiceIdx > 0 {
						choiceIdx--
						render()
					}
				case 'B':
					if choiceIdx < len(quiz.ChoiceKeys)-1 {
						choiceIdx++
						render()
					}
				}
			default:
				if key := quiz.NormalizeChoice(string(buf[0])); key != "" {
					return key, true
				}
			}
		}
	}
}

// typedChooser reads a letter per line. Empty or unknown input is answered
// with a warning and the prompt repeats.
func typedChooser(reader *bufio.Scanner, w io.Writer) chooser {
	return func(q quiz.Question, number, completed, total int) (string, bool) {
		lines := append([]string{formatProgress(completed, total)}, questionLines(q, number)...)
		for _, key := range quiz.ChoiceKeys {
			lines = append(lines, fmt.Sprintf("  %s) %s", key, q.Choices[key]))
		}
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
		for {
			fmt.Fprint(w, "Your answer (A-D): ")
			if !reader.Scan() {
				return "", false
			}
			if key := quiz.NormalizeChoice(reader.Text()); key != "" {
				return key, true
			}
			fmt.Fprintln(w, colorize(selectionWarning, colorYellow))
		}
	}
}

func formatProgress(completed, total int) string {
	if total <= 0 {
		return ""
	}
	if completed < 0 {
		completed = 0
	}
	if completed > total {
		completed = total
	}
	barWidth := 20
	filled := completed * barWidth / total
	bar := "[" + colorize(strings.Repeat("#", filled), colorGreen+colorBold) + strings.Repeat("-", barWidth-filled) + "]"
	return fmt.Sprintf("%s %s%d/%d answered%s, %d left", bar, colorGreen, completed, total, colorReset, total-completed)
}

func showFeedback(w io.Writer, q quiz.Question, out quiz.Outcome) {
	var lines []string
	if out.Correct {
		lines = append(lines, colorize(checkMark+" Correct!", colorGreen+colorBold))
	} else {
		lines = append(lines,
			colorize(crossMark+" Incorrect.", colorRed+colorBold),
			colorize(fmt.Sprintf("Your answer: %s", out.Choice), colorYellow),
			colorize(fmt.Sprintf("Correct: %s) %s", out.CorrectChoice, q.Choices[out.CorrectChoice]), colorGreen),
		)
	}
	lines = append(lines,
		"",
		fmt.Sprintf("📄 Page: %s", out.Page),
		fmt.Sprintf("📂 Source: %s", out.Source),
	)
	width, _ := termSize()
	renderBlock(w, lines, width, "\n")
}

// printSummary writes the chapter breakdown followed by the total score.
func printSummary(w io.Writer, sum quiz.Summary) {
	if sum.Answered == 0 {
		fmt.Fprintln(w, "No answers recorded.")
		return
	}
	fmt.Fprintln(w, colorize("Quiz Results", colorBold+colorCyan))
	fmt.Fprintln(w, "Chapter-wise breakdown:")

	colWidth := 0
	for _, ch := range sum.Chapters {
		if l := len([]rune(ch.Chapter)); l > colWidth {
			colWidth = l
		}
	}
	for _, ch := range sum.Chapters {
		color := colorGreen
		if ch.Correct < ch.Total {
			color = colorYellow
		}
		fmt.Fprintf(w, "  %s %s\n", padRight(ch.Chapter, colWidth+1), colorize(fmt.Sprintf("%d/%d", ch.Correct, ch.Total), color))
	}

	line := fmt.Sprintf("Total Score: %d/%d (%.1f%%)", sum.TotalCorrect, sum.TotalQuestions, sum.Percent())
	if sum.Answered < sum.TotalQuestions {
		line += fmt.Sprintf(", %d of %d answered", sum.Answered, sum.TotalQuestions)
	}
	fmt.Fprintln(w, colorize(line, colorBold))
}

func padRight(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(runes))
}

func colorize(s, color string) string {
	if color == "" {
		return s
	}
	return color + s + colorReset
}

func setupSignalHandling() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		<-ch
		interrupt()
	}()
}

// interrupt restores the terminal, prints what was answered so far and
// exits.
func interrupt() {
	disableRaw()
	sessionMu.Lock()
	session := activeSession
	sessionMu.Unlock()

	fmt.Println()
	if session == nil {
		fmt.Println("No answers recorded. Exiting.")
		os.Exit(1)
	}
	sum := session.Results()
	printSummary(os.Stdout, sum)
	if sum.Answered == 0 {
		os.Exit(1)
	}
	os.Exit(0)
}

func enableRaw(fd int) (*term.State, error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	sessionMu.Lock()
	activeRawState, activeRawFD = state, fd
	sessionMu.Unlock()
	return state, nil
}

func disableRaw() {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if activeRawState != nil {
		_ = term.Restore(activeRawFD, activeRawState)
		activeRawState = nil
	}
}

func termSize() (int, int) {
	width, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0, 0
	}
	return width, rows
}

func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[2J\033[H")
}

// renderBlock prints lines left-aligned within a horizontally centered
// block, ending each with nl.
func renderBlock(w io.Writer, lines []string, width int, nl string) {
	maxLen := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > maxLen {
			maxLen = n
		}
	}
	margin := 0
	if width > 0 && maxLen < width {
		margin = (width - maxLen) / 2
	}
	space := strings.Repeat(" ", margin)
	for _, l := range lines {
		fmt.Fprint(w, space+l+nl)
	}
}

func renderBlockWithVerticalCenter(w io.Writer, lines []string, width, rows int, nl string) {
	if pad := (rows - len(lines)) / 2; rows > 0 && pad > 0 {
		fmt.Fprint(w, strings.Repeat(nl, pad))
	}
	renderBlock(w, lines, width, nl)
}
