package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsrag/agent"
	"newsrag/config"

	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultWikipediaUserAgent = "newsrag (https://localhost)"

type AgentCommand struct {
	OllamaURL          string `help:"The URL of the Ollama server." env:"OLLAMA_URL" default:"http://127.0.0.1:11434/"`
	Question           string `help:"The question to run the agent against. Defaults to the built-in test question." default:""`
	Model              string `help:"Override the model instead of selecting by date." default:""`
	Date               string `help:"Override the date used for model selection (YYYY-MM-DD)." default:""`
	WikipediaUserAgent string `help:"The user agent sent to the Wikipedia API." env:"WIKIPEDIA_USER_AGENT" default:"newsrag (https://localhost)"`
	ConfigFile         string `help:"The YAML config file." env:"CONFIG_FILE" default:"newsrag.yaml"`
	LogLevel           string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c AgentCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	cfg, err := config.Load(c.ConfigFile)
	if err != nil {
		return err
	}
	if cfg.OllamaURL != "" && c.OllamaURL == defaultOllamaURL {
		c.OllamaURL = cfg.OllamaURL
	}
	if cfg.WikipediaUserAgent != "" && c.WikipediaUserAgent == defaultWikipediaUserAgent {
		c.WikipediaUserAgent = cfg.WikipediaUserAgent
	}
	if c.Question == "" {
		c.Question = agent.DefaultQuestion
	}

	now := time.Now()
	if c.Date != "" {
		now, err = time.Parse(time.DateOnly, c.Date)
		if err != nil {
			return fmt.Errorf("failed to parse date: %w", err)
		}
	}
	model := c.Model
	if model == "" {
		model = agent.ModelForDate(now)
	}
	log.Info("selected model", slog.String("model", model))

	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(c.OllamaURL))
	if err != nil {
		return fmt.Errorf("failed to create LLM: %w", err)
	}

	runner, err := agent.New(llm, c.WikipediaUserAgent)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	result, err := runner.Run(ctx, c.Question)
	if err != nil {
		// One catch at the outermost layer: log, hint, carry on.
		log.Error("agent run failed", slog.Any("error", err))
		fmt.Println("Make sure Ollama is running and the model is available")
		return nil
	}
	fmt.Println("Result:", result)
	return nil
}
