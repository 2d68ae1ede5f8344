package webapp

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"mcq-quiz/quiz"
)

type Config struct {
	Addr        string
	CORSOrigins []string
	// SessionOptions are applied to every session, including resets.
	SessionOptions []quiz.Option
}

type Server struct {
	cfg       Config
	questions []quiz.Question
	session   *quiz.Session
	mu        sync.Mutex
}

var homeTemplate = template.Must(template.New("home").Parse(indexHTML))

func New(cfg Config, questions []quiz.Question) (*Server, error) {
	session, err := quiz.NewSession(questions, cfg.SessionOptions...)
	if err != nil {
		return nil, err
	}
	log.Printf("session %s started with %d questions", session.ID, session.Len())
	return &Server{cfg: cfg, questions: questions, session: session}, nil
}

func Run(cfg Config, questions []quiz.Question) error {
	s, err := New(cfg, questions)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	log.Printf("web quiz listening on %s", cfg.Addr)
	return server.ListenAndServe()
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/", s.handleHome)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Route("/api", func(api chi.Router) {
		api.Get("/state", s.handleState)
		api.Post("/answer", s.handleAnswer)
		api.Post("/next", s.handleNext)
		api.Get("/summary", s.handleSummary)
		api.Post("/reset", s.handleReset)
	})
	return r
}

type stateResponse struct {
	SessionID string           `json:"sessionId"`
	Finished  bool             `json:"finished"`
	Question  *questionPayload `json:"question,omitempty"`
	Answered  bool             `json:"answered"`
	Outcome   *quiz.Outcome    `json:"outcome,omitempty"`
	Progress  progressPayload  `json:"progress"`
	Summary   *quiz.Summary    `json:"summary,omitempty"`
}

type questionPayload struct {
	Number  int               `json:"number"`
	Chapter string            `json:"chapter"`
	Prompt  string            `json:"prompt"`
	Choices map[string]string `json:"choices"`
}

type progressPayload struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Remaining int `json:"remaining"`
	Correct   int `json:"correct"`
}

type answerRequest struct {
	SessionID string `json:"sessionId"`
	Answer    string `json:"answer"`
}

// nextRequest is optional; an empty body advances the current session.
type nextRequest struct {
	SessionID string `json:"sessionId"`
}

type answerResponse struct {
	Outcome  quiz.Outcome    `json:"outcome"`
	Last     bool            `json:"last"`
	Progress progressPayload `json:"progress"`
}

type errorPayload struct {
	OK    bool `json:"ok"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) current() *quiz.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = homeTemplate.Execute(w, nil)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildState(s.current()))
}

func buildState(session *quiz.Session) stateResponse {
	resp := stateResponse{
		SessionID: session.ID,
		Progress:  progressOf(session),
	}
	q, err := session.Current()
	if err != nil {
		sum := session.Results()
		resp.Finished = true
		resp.Summary = &sum
		return resp
	}
	resp.Question = &questionPayload{
		Number:  resp.Progress.Completed + 1,
		Chapter: q.Chapter,
		Prompt:  q.Prompt,
		Choices: q.Choices,
	}
	if session.Answered() {
		resp.Answered = true
		if out, ok := session.LastOutcome(); ok {
			resp.Outcome = &out
		}
	}
	return resp
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	session := s.current()
	if req.SessionID != "" && req.SessionID != session.ID {
		writeError(w, http.StatusConflict, "stale_session", "the quiz was reset, reload to continue")
		return
	}
	out, err := session.SubmitOnce(req.Answer)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	completed, total := session.Progress()
	writeJSON(w, http.StatusOK, answerResponse{
		Outcome:  out,
		Last:     completed+1 >= total,
		Progress: progressOf(session),
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	var req nextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	session := s.current()
	if req.SessionID != "" && req.SessionID != session.ID {
		writeError(w, http.StatusConflict, "stale_session", "the quiz was reset, reload to continue")
		return
	}
	if err := session.AdvanceAnswered(); err != nil {
		writeSessionError(w, err)
		return
	}
	if session.IsComplete() {
		sum := session.Results()
		log.Printf("session %s finished: %d/%d", session.ID, sum.TotalCorrect, sum.TotalQuestions)
	}
	writeJSON(w, http.StatusOK, buildState(session))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.current().Results())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	session, err := quiz.NewSession(s.questions, s.cfg.SessionOptions...)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	log.Printf("session %s started with %d questions", session.ID, session.Len())
	writeJSON(w, http.StatusOK, buildState(session))
}

func progressOf(session *quiz.Session) progressPayload {
	completed, total := session.Progress()
	return progressPayload{
		Completed: completed,
		Total:     total,
		Remaining: total - completed,
		Correct:   session.Results().TotalCorrect,
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrInvalidChoice):
		writeError(w, http.StatusBadRequest, "invalid_choice", "Please select A, B, C or D.")
	case errors.Is(err, quiz.ErrAlreadyAnswered):
		writeError(w, http.StatusConflict, "already_answered", "move to the next question first")
	case errors.Is(err, quiz.ErrNotAnswered):
		writeError(w, http.StatusConflict, "not_answered", "answer the current question first")
	case errors.Is(err, quiz.ErrSessionComplete):
		writeError(w, http.StatusConflict, "session_complete", err.Error())
	case errors.Is(err, quiz.ErrEmptyQuestionBank):
		writeError(w, http.StatusInternalServerError, "empty_question_bank", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	var p errorPayload
	p.Error.Code = code
	p.Error.Message = msg
	writeJSON(w, status, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
