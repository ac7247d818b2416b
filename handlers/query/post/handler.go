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

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUser(r)
	if !ok {
		http.Error(w, "authentication not provided", http.StatusUnauthorized)
		return
	}

	var req models.QueryPostRequest
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

	var docs []string
	if !req.NoContext {
		docs, err = h.pipeline.Retrieve(r.Context(), req.Text, h.pipeline.TopK())
		if err != nil {
			h.log.Error("failed to retrieve context", slog.Any("error", err))
			respond.WithError(w, "failed to retrieve context", http.StatusInternalServerError)
			return
		}
	}

	h.log.Info("query context", slog.Int("docs", len(docs)))

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

	_, err = h.pipeline.Generate(r.Context(), req.Text, docs, llms.WithStreamingFunc(f))
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
