package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"triviahub/internal/bootstrap/logging"
	"triviahub/internal/errs"
	"triviahub/internal/ports"
	"triviahub/internal/usecase/quiz"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quiz HTTP API",
	RunE: withApp(func(cmd *cobra.Command, services appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = fmt.Sprintf(":%d", services.App.Config.Server.Port)
		}

		server := &http.Server{
			Addr:    addr,
			Handler: newQuizAPIHandler(services.Quiz),
		}

		logging.Info(ctx, "quiz api server started", slog.String("addr", addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "quiz api server failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "serve quiz api")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (defaults to :$PORT)")
}

// quizAPIService is what the handlers need from the quiz use case.
type quizAPIService interface {
	RandomQuestion(context.Context, quiz.RandomQuestionInput) (quiz.RandomQuestionResult, error)
	VerifyAnswer(context.Context, quiz.VerifyAnswerInput) (quiz.VerifyAnswerResult, error)
}

type quizAPIHandler struct {
	svc quizAPIService
}

type pingResponse struct {
	Message string `json:"message"`
}

type questionResponse struct {
	QuestionID uint64 `json:"question_id"`
	Round      string `json:"round"`
	Category   string `json:"category"`
	Value      *int   `json:"value"`
	Question   string `json:"question"`
}

type verifyAnswerRequest struct {
	QuestionID uint64 `json:"question_id"`
	UserAnswer string `json:"user_answer"`
}

type verifyAnswerResponse struct {
	IsCorrect bool `json:"is_correct"`
}

type apiErrorResponse struct {
	Detail string `json:"detail"`
}

func newQuizAPIHandler(svc quizAPIService) http.Handler {
	h := &quizAPIHandler{svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", h.handlePing)
	// Trailing-slash aliases kept for clients of the reference API.
	mux.HandleFunc("/question", h.handleQuestion)
	mux.HandleFunc("/question/", h.handleQuestion)
	mux.HandleFunc("/verify-answer", h.handleVerifyAnswer)
	mux.HandleFunc("/verify-answer/", h.handleVerifyAnswer)

	return withRequestID(withCORS(mux))
}

func (h *quizAPIHandler) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeAPIJSON(w, http.StatusOK, pingResponse{Message: "pong"})
}

func (h *quizAPIHandler) handleQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	input := quiz.RandomQuestionInput{
		Round: strings.TrimSpace(r.URL.Query().Get("round")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("value")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "value must be an integer")
			return
		}
		input.Value = &parsed
	}

	out, err := h.svc.RandomQuestion(r.Context(), input)
	if err != nil {
		if errors.Is(err, ports.ErrQuestionNotFound) {
			writeAPIError(w, http.StatusNotFound, "No questions match the given filters.")
			return
		}
		logging.Error(r.Context(), "random question failed", slog.Any("err", errs.Loggable(err)))
		writeAPIError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeAPIJSON(w, http.StatusOK, questionResponse{
		QuestionID: out.QuestionID,
		Round:      out.Round,
		Category:   out.Category,
		Value:      out.Value,
		Question:   out.Question,
	})
}

func (h *quizAPIHandler) handleVerifyAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req verifyAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "request body must be JSON with question_id and user_answer")
		return
	}

	out, err := h.svc.VerifyAnswer(r.Context(), quiz.VerifyAnswerInput{
		QuestionID: req.QuestionID,
		UserAnswer: req.UserAnswer,
	})
	if err != nil {
		status := http.StatusInternalServerError
		detail := "internal server error"
		switch {
		case errors.Is(err, ports.ErrQuestionNotFound):
			status, detail = http.StatusNotFound, "Question not found."
		case errors.Is(err, ports.ErrMalformedVerdict):
			status, detail = http.StatusBadGateway, "Grading service returned a malformed verdict."
		}
		if status == http.StatusInternalServerError || status == http.StatusBadGateway {
			logging.Error(r.Context(), "verify answer failed", slog.Any("err", errs.Loggable(err)))
		}
		writeAPIError(w, status, detail)
		return
	}

	writeAPIJSON(w, http.StatusOK, verifyAnswerResponse{IsCorrect: out.IsCorrect})
}

// withCORS allows browser clients during local dev; tighten as needed in
// production.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		ctx := logging.WithAttrs(r.Context(), slog.String("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeAPIError(w http.ResponseWriter, status int, detail string) {
	writeAPIJSON(w, status, apiErrorResponse{Detail: detail})
}

func writeAPIJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
