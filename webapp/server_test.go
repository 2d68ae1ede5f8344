package webapp

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"mcq-quiz/quiz"
)

func testQuestions() []quiz.Question {
	return []quiz.Question{
		{
			Chapter: "CH1",
			Prompt:  "Sky color?",
			Choices: map[string]string{"A": "Green", "B": "Blue", "C": "Red", "D": "Black"},
			Answer:  "B",
			Page:    "12",
			Source:  "Handbook",
		},
		{
			Chapter: "CH2",
			Prompt:  "Grass color?",
			Choices: map[string]string{"A": "Green", "B": "Blue", "C": "Red", "D": "Black"},
			Answer:  "A",
			Page:    "3",
			Source:  "Field guide",
		},
	}
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	s, err := New(Config{SessionOptions: []quiz.Option{quiz.WithShuffler(quiz.NewRand(1))}}, testQuestions())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s, s.Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestServerFlowStateAnswerNext(t *testing.T) {
	_, h := newTestServer(t)

	var state stateResponse
	decodeBody(t, do(t, h, http.MethodGet, "/api/state", "").Body.Bytes(), &state)
	if state.Finished || state.Question == nil {
		t.Fatalf("expected an open question: %+v", state)
	}
	if state.Progress.Completed != 0 || state.Progress.Total != 2 || state.Question.Number != 1 {
		t.Fatalf("unexpected progress: %+v", state.Progress)
	}

	answered := 0
	for !state.Finished {
		correct := answerFor(state.Question.Prompt)
		body := `{"sessionId":"` + state.SessionID + `","answer":"` + strings.ToLower(correct) + `"}`
		rr := do(t, h, http.MethodPost, "/api/answer", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("answer status %d: %s", rr.Code, rr.Body.String())
		}
		var ans answerResponse
		decodeBody(t, rr.Body.Bytes(), &ans)
		if !ans.Outcome.Correct || ans.Outcome.CorrectChoice != correct || ans.Outcome.Page == "" {
			t.Fatalf("unexpected outcome: %+v", ans.Outcome)
		}
		answered++
		if ans.Last != (answered == 2) {
			t.Fatalf("last = %v after %d answers", ans.Last, answered)
		}

		rr = do(t, h, http.MethodPost, "/api/next", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("next status %d: %s", rr.Code, rr.Body.String())
		}
		state = stateResponse{}
		decodeBody(t, rr.Body.Bytes(), &state)
	}

	if state.Summary == nil || state.Summary.TotalCorrect != 2 || state.Summary.TotalQuestions != 2 {
		t.Fatalf("unexpected final summary: %+v", state.Summary)
	}

	var sum quiz.Summary
	decodeBody(t, do(t, h, http.MethodGet, "/api/summary", "").Body.Bytes(), &sum)
	if sum.Tally["CH1"] != (quiz.Score{Correct: 1, Total: 1}) || len(sum.Chapters) != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	rr := do(t, h, http.MethodPost, "/api/answer", `{"answer":"A"}`)
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "session_complete" {
		t.Fatalf("answer after completion: %d %s", rr.Code, rr.Body.String())
	}
}

func TestAnswerInvalidChoice(t *testing.T) {
	s, h := newTestServer(t)
	rr := do(t, h, http.MethodPost, "/api/answer", `{"answer":"E"}`)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_choice" {
		t.Fatalf("unexpected response %d: %s", rr.Code, rr.Body.String())
	}
	if s.current().Answered() {
		t.Fatalf("invalid choice must not record an answer")
	}
	rr = do(t, h, http.MethodPost, "/api/answer", `{"answer":`)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_request" {
		t.Fatalf("malformed body: %d %s", rr.Code, rr.Body.String())
	}
}

func TestAnswerTwiceRejected(t *testing.T) {
	s, h := newTestServer(t)
	if rr := do(t, h, http.MethodPost, "/api/answer", `{"answer":"A"}`); rr.Code != http.StatusOK {
		t.Fatalf("first answer: %d", rr.Code)
	}
	rr := do(t, h, http.MethodPost, "/api/answer", `{"answer":"B"}`)
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "already_answered" {
		t.Fatalf("second answer: %d %s", rr.Code, rr.Body.String())
	}
	if sum := s.current().Results(); sum.Answered != 1 {
		t.Fatalf("double counted: %+v", sum)
	}

	var state stateResponse
	decodeBody(t, do(t, h, http.MethodGet, "/api/state", "").Body.Bytes(), &state)
	if !state.Answered || state.Outcome == nil || state.Outcome.Choice != "A" {
		t.Fatalf("state should carry the pending outcome: %+v", state)
	}
}

func TestNextRequiresAnswer(t *testing.T) {
	_, h := newTestServer(t)
	rr := do(t, h, http.MethodPost, "/api/next", "")
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "not_answered" {
		t.Fatalf("unexpected response %d: %s", rr.Code, rr.Body.String())
	}
}

func TestResetStartsNewSession(t *testing.T) {
	s, h := newTestServer(t)
	oldID := s.current().ID
	do(t, h, http.MethodPost, "/api/answer", `{"answer":"A"}`)
	do(t, h, http.MethodPost, "/api/next", "")

	rr := do(t, h, http.MethodPost, "/api/reset", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("reset returned status %d", rr.Code)
	}
	var state stateResponse
	decodeBody(t, rr.Body.Bytes(), &state)
	if state.SessionID == oldID || state.Finished || state.Progress.Completed != 0 || state.Progress.Correct != 0 {
		t.Fatalf("state after reset invalid: %+v", state)
	}

	rr = do(t, h, http.MethodPost, "/api/answer", `{"sessionId":"`+oldID+`","answer":"A"}`)
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "stale_session" {
		t.Fatalf("stale answer: %d %s", rr.Code, rr.Body.String())
	}
}

func TestNextRejectsStaleSession(t *testing.T) {
	s, h := newTestServer(t)
	oldID := s.current().ID
	do(t, h, http.MethodPost, "/api/reset", "")
	do(t, h, http.MethodPost, "/api/answer", `{"answer":"A"}`)

	rr := do(t, h, http.MethodPost, "/api/next", `{"sessionId":"`+oldID+`"}`)
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "stale_session" {
		t.Fatalf("stale next: %d %s", rr.Code, rr.Body.String())
	}
	if done, _ := s.current().Progress(); done != 0 {
		t.Fatalf("stale next advanced the new session to %d", done)
	}

	rr = do(t, h, http.MethodPost, "/api/next", `{"sessionId":`)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_request" {
		t.Fatalf("malformed next body: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodPost, "/api/next", `{"sessionId":"`+s.current().ID+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("next with current id: %d %s", rr.Code, rr.Body.String())
	}
}

// parallel sends n identical requests at once and returns their status codes.
func parallel(t *testing.T, h http.Handler, n int, method, path, body string) []int {
	t.Helper()
	codes := make([]int, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(method, path, strings.NewReader(body))
			rr := httptest.NewRecorder()
			<-start
			h.ServeHTTP(rr, req)
			codes[i] = rr.Code
		}(i)
	}
	close(start)
	wg.Wait()
	return codes
}

func countCode(codes []int, code int) int {
	n := 0
	for _, c := range codes {
		if c == code {
			n++
		}
	}
	return n
}

func TestConcurrentAnswersCountOnce(t *testing.T) {
	for round := 0; round < 20; round++ {
		s, h := newTestServer(t)
		codes := parallel(t, h, 8, http.MethodPost, "/api/answer", `{"answer":"A"}`)
		if countCode(codes, http.StatusOK) != 1 || countCode(codes, http.StatusConflict) != 7 {
			t.Fatalf("round %d: unexpected statuses %v", round, codes)
		}
		if sum := s.current().Results(); sum.Answered != 1 {
			t.Fatalf("round %d: answered = %d, want 1", round, sum.Answered)
		}
	}
}

func TestConcurrentNextAdvancesOnce(t *testing.T) {
	for round := 0; round < 20; round++ {
		s, h := newTestServer(t)
		do(t, h, http.MethodPost, "/api/answer", `{"answer":"A"}`)
		codes := parallel(t, h, 8, http.MethodPost, "/api/next", "")
		if countCode(codes, http.StatusOK) != 1 {
			t.Fatalf("round %d: unexpected statuses %v", round, codes)
		}
		if done, _ := s.current().Progress(); done != 1 {
			t.Fatalf("round %d: position = %d, want 1", round, done)
		}
	}
}

func TestHomeAndHealth(t *testing.T) {
	_, h := newTestServer(t)
	rr := do(t, h, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "/api/state") {
		t.Fatalf("home page: %d", rr.Code)
	}
	rr = do(t, h, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "true") {
		t.Fatalf("healthz: %d %s", rr.Code, rr.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	s, err := New(Config{CORSOrigins: []string{"http://localhost:3000"}}, testQuestions())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	req := httptest.NewRequest(http.MethodOptions, "/api/state", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	s.Routes().ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestNewEmptyBank(t *testing.T) {
	if _, err := New(Config{}, nil); !errors.Is(err, quiz.ErrEmptyQuestionBank) {
		t.Fatalf("expected ErrEmptyQuestionBank, got %v", err)
	}
}

func answerFor(prompt string) string {
	for _, q := range testQuestions() {
		if q.Prompt == prompt {
			return q.Answer
		}
	}
	return ""
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var p errorPayload
	decodeBody(t, rr.Body.Bytes(), &p)
	return p.Error.Code
}

func decodeBody(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode body: %v\nbody: %s", err, string(data))
	}
}
