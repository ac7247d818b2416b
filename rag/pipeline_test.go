package rag_test

import (
	"context"
	"fmt"
	"testing"

	"newsrag/rag"

	"github.com/google/go-cmp/cmp"
	"github.com/tmc/langchaingo/llms"
)

// fakeEmbedder returns canned vectors keyed by input text.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		v, ok := f.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", text)
		}
		result[i] = v
	}
	return result, nil
}

func (f fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	v, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

// fakeLLM echoes a fixed response and records the prompt and options it
// was called with.
type fakeLLM struct {
	response string
	prompt   string
	opts     llms.CallOptions
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if len(messages) != 1 || len(messages[0].Parts) != 1 {
		return nil, fmt.Errorf("expected a single single-part message, got %d", len(messages))
	}
	text, ok := messages[0].Parts[0].(llms.TextContent)
	if !ok {
		return nil, fmt.Errorf("expected a text part, got %T", messages[0].Parts[0])
	}
	f.prompt = text.Text
	for _, opt := range options {
		opt(&f.opts)
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: f.response},
		},
	}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return f.response, nil
}

var corpus = []string{
	"The sky is blue.",
	"Cats are mammals.",
	"Paris is in France.",
}

var vectors = map[string][]float32{
	"The sky is blue.":       {1, 0},
	"Cats are mammals.":      {0, 1},
	"Paris is in France.":    {-1, 0},
	"What color is the sky?": {0.9, 0.1},
}

func newTestPipeline(t *testing.T, llm llms.Model, opts ...rag.Option) *rag.Pipeline {
	t.Helper()
	p, err := rag.New(context.Background(), corpus, fakeEmbedder{vectors: vectors}, llm, opts...)
	if err != nil {
		t.Fatalf("failed to build pipeline: %v", err)
	}
	return p
}

func TestRetrieve(t *testing.T) {
	p := newTestPipeline(t, &fakeLLM{})

	t.Run("top-1 returns the nearest document", func(t *testing.T) {
		actual, err := p.Retrieve(context.Background(), "What color is the sky?", 1)
		if err != nil {
			t.Fatalf("failed to retrieve: %v", err)
		}
		if diff := cmp.Diff([]string{"The sky is blue."}, actual); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("results are corpus members in ascending distance order", func(t *testing.T) {
		results, err := p.NearestDocuments(context.Background(), "What color is the sky?", 3)
		if err != nil {
			t.Fatalf("failed to retrieve: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		members := make(map[string]bool, len(corpus))
		for _, doc := range corpus {
			members[doc] = true
		}
		for i, r := range results {
			if !members[r.Text] {
				t.Errorf("result %d is not a corpus member: %q", i, r.Text)
			}
			if i > 0 && results[i-1].Distance > r.Distance {
				t.Errorf("result %d is closer than result %d", i, i-1)
			}
		}
	})
	t.Run("k beyond the corpus size returns the whole corpus ranked", func(t *testing.T) {
		actual, err := p.Retrieve(context.Background(), "What color is the sky?", 10)
		if err != nil {
			t.Fatalf("failed to retrieve: %v", err)
		}
		if len(actual) != len(corpus) {
			t.Errorf("expected %d documents, got %d", len(corpus), len(actual))
		}
	})
	t.Run("retrieval is deterministic", func(t *testing.T) {
		first, err := p.Retrieve(context.Background(), "What color is the sky?", 3)
		if err != nil {
			t.Fatalf("failed to retrieve: %v", err)
		}
		for i := 0; i < 5; i++ {
			again, err := p.Retrieve(context.Background(), "What color is the sky?", 3)
			if err != nil {
				t.Fatalf("failed to retrieve: %v", err)
			}
			if diff := cmp.Diff(first, again); diff != "" {
				t.Error(diff)
			}
		}
	})
}

func TestPrompt(t *testing.T) {
	p := newTestPipeline(t, &fakeLLM{})

	t.Run("documents are space-joined into the template", func(t *testing.T) {
		actual := p.Prompt("What color is the sky?", []string{"The sky is blue."})
		expected := "Context: The sky is blue.\n\nQuestion: What color is the sky?\nAnswer:"
		if actual != expected {
			t.Errorf("expected %q, got %q", expected, actual)
		}
	})
	t.Run("retrieval order is preserved", func(t *testing.T) {
		actual := p.Prompt("q", []string{"a", "b", "c"})
		expected := "Context: a b c\n\nQuestion: q\nAnswer:"
		if actual != expected {
			t.Errorf("expected %q, got %q", expected, actual)
		}
	})
}

func TestGenerate(t *testing.T) {
	llm := &fakeLLM{response: "Blue."}
	p := newTestPipeline(t, llm)

	actual, err := p.Generate(context.Background(), "What color is the sky?", []string{"The sky is blue."})
	if err != nil {
		t.Fatalf("failed to generate: %v", err)
	}
	if actual != "Blue." {
		t.Errorf("expected the model output verbatim, got %q", actual)
	}
	if llm.opts.MaxTokens != 64 {
		t.Errorf("expected generation capped at 64 tokens, got %d", llm.opts.MaxTokens)
	}
	expectedPrompt := "Context: The sky is blue.\n\nQuestion: What color is the sky?\nAnswer:"
	if llm.prompt != expectedPrompt {
		t.Errorf("expected prompt %q, got %q", expectedPrompt, llm.prompt)
	}
}

func TestAnswer(t *testing.T) {
	llm := &fakeLLM{response: "The sky is blue."}
	p := newTestPipeline(t, llm, rag.WithTopK(1))

	actual, err := p.Answer(context.Background(), "What color is the sky?")
	if err != nil {
		t.Fatalf("failed to answer: %v", err)
	}
	if actual != "The sky is blue." {
		t.Errorf("expected the model output verbatim, got %q", actual)
	}
	expectedPrompt := "Context: The sky is blue.\n\nQuestion: What color is the sky?\nAnswer:"
	if llm.prompt != expectedPrompt {
		t.Errorf("expected prompt %q, got %q", expectedPrompt, llm.prompt)
	}
}

func TestNew(t *testing.T) {
	t.Run("an empty corpus is valid", func(t *testing.T) {
		llm := &fakeLLM{response: "I don't know."}
		p, err := rag.New(context.Background(), nil, fakeEmbedder{vectors: vectors}, llm)
		if err != nil {
			t.Fatalf("failed to build pipeline: %v", err)
		}
		answer, err := p.Answer(context.Background(), "What color is the sky?")
		if err != nil {
			t.Fatalf("failed to answer: %v", err)
		}
		if answer != "I don't know." {
			t.Errorf("unexpected answer %q", answer)
		}
		if llm.prompt != "Context: \n\nQuestion: What color is the sky?\nAnswer:" {
			t.Errorf("unexpected prompt %q", llm.prompt)
		}
	})
	t.Run("invalid prompt templates are rejected", func(t *testing.T) {
		_, err := rag.New(context.Background(), corpus, fakeEmbedder{vectors: vectors}, &fakeLLM{}, rag.WithPromptTemplate("no verbs"))
		if err == nil {
			t.Error("expected an error")
		}
	})
}
