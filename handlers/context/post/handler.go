package post

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"newsrag/auth"
	"newsrag/models"
	"newsrag/rag"

	"github.com/a-h/respond"
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

	var req models.ContextPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}

	var results []rag.Nearest

	// If this is a test API key, don't use the embedding model.
	if req.Text != "" && user != auth.TestUserNoLLM {
		results, err = h.pipeline.NearestDocuments(r.Context(), req.Text, h.pipeline.TopK())
		if err != nil {
			h.log.Error("failed to find nearest documents", slog.Any("error", err))
			respond.WithError(w, "failed to find nearest documents", http.StatusInternalServerError)
			return
		}
	}

	var resp models.ContextPostResponse
	for _, result := range results {
		resp.Results = append(resp.Results, models.ContextDocument{
			Text:     result.Text,
			Distance: result.Distance,
		})
	}

	respond.WithJSON(w, resp, http.StatusOK)
}
