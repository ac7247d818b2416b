package rag

import (
	"context"
	"fmt"
	"strings"

	"newsrag/index"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
)

// DefaultTopK is the number of documents retrieved per query when no
// override is configured.
const DefaultTopK = 3

// DefaultPromptTemplate interpolates the retrieved context and the
// question, in that order.
const DefaultPromptTemplate = "Context: %s\n\nQuestion: %s\nAnswer:"

// maxAnswerTokens caps generation per answer.
const maxAnswerTokens = 64

// Pipeline answers questions over a fixed corpus by retrieving the
// nearest documents to the query and conditioning a generation model on
// them. The corpus and its index are built once in New and never
// mutated, so a Pipeline is safe for concurrent use.
type Pipeline struct {
	docs     []string
	embedder embeddings.Embedder
	idx      *index.Flat
	llm      llms.Model
	topK     int
	prompt   string
}

type Option func(*Pipeline)

// WithTopK sets the number of documents retrieved per query.
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		p.topK = k
	}
}

// WithPromptTemplate overrides the prompt template. The template must
// contain two %s verbs: context first, question second.
func WithPromptTemplate(t string) Option {
	return func(p *Pipeline) {
		p.prompt = t
	}
}

// New embeds every document in docs and builds the index over the
// resulting matrix. Document order is preserved throughout.
func New(ctx context.Context, docs []string, embedder embeddings.Embedder, llm llms.Model, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		docs:     docs,
		embedder: embedder,
		llm:      llm,
		topK:     DefaultTopK,
		prompt:   DefaultPromptTemplate,
	}
	for _, opt := range opts {
		opt(p)
	}
	if strings.Count(p.prompt, "%s") != 2 {
		return nil, fmt.Errorf("rag: prompt template must contain two %%s verbs")
	}
	var matrix [][]float32
	if len(docs) > 0 {
		var err error
		matrix, err = embedder.EmbedDocuments(ctx, docs)
		if err != nil {
			return nil, fmt.Errorf("rag: failed to embed corpus: %w", err)
		}
	}
	if len(matrix) != len(docs) {
		return nil, fmt.Errorf("rag: embedded %d documents, expected %d", len(matrix), len(docs))
	}
	idx, err := index.NewFlat(matrix)
	if err != nil {
		return nil, fmt.Errorf("rag: failed to build index: %w", err)
	}
	p.idx = idx
	return p, nil
}

// Documents returns the corpus in load order.
func (p *Pipeline) Documents() []string {
	return p.docs
}

// TopK returns the configured retrieval count.
func (p *Pipeline) TopK() int {
	return p.topK
}

// Nearest is a single retrieval hit.
type Nearest struct {
	Text     string
	Distance float32
}

// NearestDocuments embeds text and returns the k nearest documents with
// their squared Euclidean distances, ascending.
func (p *Pipeline) NearestDocuments(ctx context.Context, text string, k int) (results []Nearest, err error) {
	embedding, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("rag: failed to embed query: %w", err)
	}
	hits, err := p.idx.Search(embedding, k)
	if err != nil {
		return nil, fmt.Errorf("rag: failed to search index: %w", err)
	}
	results = make([]Nearest, len(hits))
	for i, hit := range hits {
		results[i] = Nearest{
			Text:     p.docs[hit.Index],
			Distance: hit.Distance,
		}
	}
	return results, nil
}

// Retrieve returns the k nearest documents to query in ascending
// distance order.
func (p *Pipeline) Retrieve(ctx context.Context, query string, k int) (docs []string, err error) {
	results, err := p.NearestDocuments(ctx, query, k)
	if err != nil {
		return nil, err
	}
	docs = make([]string, len(results))
	for i, r := range results {
		docs[i] = r.Text
	}
	return docs, nil
}

// Prompt builds the generation prompt from the query and the retrieved
// documents, space-joined in retrieval order.
func (p *Pipeline) Prompt(query string, docs []string) string {
	return fmt.Sprintf(p.prompt, strings.Join(docs, " "), query)
}

// Generate passes the prompt built from query and docs to the
// generation model and returns the first candidate verbatim. Additional
// call options (e.g. llms.WithStreamingFunc) are passed through.
func (p *Pipeline) Generate(ctx context.Context, query string, docs []string, opts ...llms.CallOption) (answer string, err error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, p.Prompt(query, docs)),
	}
	opts = append([]llms.CallOption{llms.WithMaxTokens(maxAnswerTokens)}, opts...)
	resp, err := p.llm.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("rag: failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("rag: generation returned no candidates")
	}
	return resp.Choices[0].Content, nil
}

// Answer retrieves context for query and generates an answer from it.
// It is stateless with respect to prior queries.
func (p *Pipeline) Answer(ctx context.Context, query string, opts ...llms.CallOption) (answer string, err error) {
	docs, err := p.Retrieve(ctx, query, p.topK)
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, query, docs, opts...)
}
