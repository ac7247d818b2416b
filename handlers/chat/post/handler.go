package post

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"newsrag/auth"
	"newsrag/models"
	"newsrag/rag"

	"github.com/a-h/respond"
	"github.com/tmc/langchaingo/llms"
)

func New(log *slog.Logger, pipeline *rag.Pipeline) Handler {
	return Handler{
		log:      log,
		pipeline: pipeline,
	}
}

type Handler struct {
	log      *slog.Logger
	pipeline *rag.Pipeline
}

// lastHumanMessage returns the most recent human message. Only that
// message is answered: the pipeline is stateless across turns, the
// history exists for display purposes only.
func lastHumanMessage(msgs []models.ChatMessage) (content string, ok bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == models.ChatMessageTypeHuman {
			return msgs[i].Content, true
		}
	}
	return "", false
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUser(r)
	if !ok {
		http.Error(w, "authentication not provided", http.StatusUnauthorized)
		return
	}

	var req models.ChatPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}

	// If this is a test API key, don't use the LLM.
	if user == auth.TestUserNoLLM {
		writeTestMessage(w)
		return
	}

	query, ok := lastHumanMessage(req.Messages)
	if !ok {
		respond.WithError(w, "no human message to answer", http.StatusBadRequest)
		return
	}

	h.log.Info("answering chat message", slog.Int("history", len(req.Messages)))

	f := func(ctx context.Context, chunk []byte) error {
		select {
		case <-ctx.Done():
			return nil
		default:
			if _, err := w.Write(chunk); err != nil {
				return err
			}
			if flusher, canFlush := w.(http.Flusher); canFlush {
				flusher.Flush()
			}
			return nil
		}
	}

	_, err = h.pipeline.Answer(r.Context(), query, llms.WithStreamingFunc(f))
	if err != nil {
		h.log.Error("failed to generate content", slog.Any("error", err))
		respond.WithError(w, "failed to generate content", http.StatusInternalServerError)
		return
	}
}

const TestMessage = `Hello!

I'm a test message.

I'm here to help you test your integration with the API.

If you can see me, then your integration is working!`

func writeTestMessage(w http.ResponseWriter) (err error) {
	for chunk := range slices.Chunk([]rune(TestMessage), 4) {
		if _, err := io.WriteString(w, string(chunk)); err != nil {
			return err
		}
		if flusher, canFlush := w.(http.Flusher); canFlush {
			flusher.Flush()
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}
