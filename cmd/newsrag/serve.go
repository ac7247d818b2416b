package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"newsrag/auth"
	"newsrag/config"
	chatpost "newsrag/handlers/chat/post"
	contextpost "newsrag/handlers/context/post"
	querypost "newsrag/handlers/query/post"
	"newsrag/loader"
	"newsrag/rag"

	"github.com/rs/cors"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	defaultOllamaURL       = "http://127.0.0.1:11434/"
	defaultEmbeddingModel  = "nomic-embed-text"
	defaultGenerationModel = "llama2"
)

type ServeCommand struct {
	OllamaURL       string `help:"The URL of the Ollama server." env:"OLLAMA_URL" default:"http://127.0.0.1:11434/"`
	EmbeddingModel  string `help:"The model to use for embeddings." env:"EMBEDDING_MODEL" default:"nomic-embed-text"`
	GenerationModel string `help:"The model to generate answers with." env:"GENERATION_MODEL" default:"llama2"`
	CorpusPath      string `help:"The corpus file, one document per line." env:"CORPUS_PATH" default:"data/news_sample.txt"`
	TopK            int    `help:"The number of context documents to retrieve per query." env:"TOP_K" default:"3"`
	PromptFile      string `help:"File containing the prompt template (two %s verbs: context, question)." env:"PROMPT_FILE" default:""`
	APIKeysFile     string `help:"The file containing a JSON map of API keys to usernames. Empty runs the server anonymous." env:"API_KEYS_FILE" default:""`
	ConfigFile      string `help:"The YAML config file." env:"CONFIG_FILE" default:"newsrag.yaml"`
	ListenAddr      string `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:9020"`
	TLSCertFile     string `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile      string `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	LogLevel        string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func readFileOrDefault(filename, defaultContent string) (string, error) {
	if filename == "" {
		return defaultContent, nil
	}
	contents, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return string(contents), nil
}

// applyConfig fills in flags still at their defaults from the config
// file. Flags and env vars take precedence.
func (c *ServeCommand) applyConfig(cfg config.Config) {
	if cfg.OllamaURL != "" && c.OllamaURL == defaultOllamaURL {
		c.OllamaURL = cfg.OllamaURL
	}
	if cfg.EmbeddingModel != "" && c.EmbeddingModel == defaultEmbeddingModel {
		c.EmbeddingModel = cfg.EmbeddingModel
	}
	if cfg.GenerationModel != "" && c.GenerationModel == defaultGenerationModel {
		c.GenerationModel = cfg.GenerationModel
	}
	if cfg.CorpusPath != "" && c.CorpusPath == loader.DefaultPath {
		c.CorpusPath = cfg.CorpusPath
	}
	if cfg.TopK != 0 && c.TopK == rag.DefaultTopK {
		c.TopK = cfg.TopK
	}
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	cfg, err := config.Load(c.ConfigFile)
	if err != nil {
		return err
	}
	c.applyConfig(cfg)

	promptTemplate, err := readFileOrDefault(c.PromptFile, rag.DefaultPromptTemplate)
	if err != nil {
		return fmt.Errorf("failed to read prompt template: %w", err)
	}

	log.Info("loading corpus", slog.String("path", c.CorpusPath))
	docs, err := loader.LoadFile(c.CorpusPath)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	log.Info("creating LLM clients", slog.String("url", c.OllamaURL))
	httpClient := &http.Client{}
	ec, err := ollama.New(
		ollama.WithModel(c.EmbeddingModel),
		ollama.WithHTTPClient(httpClient),
		ollama.WithServerURL(c.OllamaURL))
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	emb, err := embeddings.NewEmbedder(ec)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	llm, err := ollama.New(
		ollama.WithModel(c.GenerationModel),
		ollama.WithHTTPClient(httpClient),
		ollama.WithServerURL(c.OllamaURL))
	if err != nil {
		return fmt.Errorf("failed to create LLM: %w", err)
	}

	log.Info("embedding corpus", slog.Int("documents", len(docs)))
	pipeline, err := rag.New(ctx, docs, emb, llm,
		rag.WithTopK(c.TopK),
		rag.WithPromptTemplate(promptTemplate))
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /query", querypost.New(log, pipeline))
	mux.Handle("POST /context", contextpost.New(log, pipeline))
	mux.Handle("POST /chat", chatpost.New(log, pipeline))

	apiKeyToUserName, err := auth.LoadFromFile(c.APIKeysFile)
	if err != nil {
		return fmt.Errorf("failed to load API keys: %w", err)
	}
	if len(apiKeyToUserName) == 0 {
		log.Info("no API keys configured, running anonymous")
	}
	authenticatedMux := auth.New(apiKeyToUserName, mux)
	withCORSAuthenticatedMux := cors.AllowAll().Handler(authenticatedMux)

	log.Info("Listening", slog.String("addr", c.ListenAddr))
	s := &http.Server{
		Addr:    c.ListenAddr,
		Handler: withCORSAuthenticatedMux,
	}
	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.ListenAndServeTLS(c.TLSCertFile, c.TLSKeyFile)
	}
	return s.ListenAndServe()
}
