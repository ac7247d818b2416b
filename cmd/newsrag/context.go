package main

import (
	"context"
	"encoding/json"
	"os"

	"newsrag/client"
	"newsrag/models"
)

type ContextCommand struct {
	ServerURL    string `help:"The URL of the news Q&A server." env:"NEWSRAG_SERVER_URL" default:"http://localhost:9020"`
	ServerAPIKey string `help:"The API key for the news Q&A server." env:"NEWSRAG_SERVER_API_KEY" default:""`
	Text         string `help:"The text to send."`
	Pretty       bool   `help:"Pretty print the JSON output." default:"true"`
	LogLevel     string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ContextCommand) Run(ctx context.Context) (err error) {
	rsc := client.New(c.ServerURL, c.ServerAPIKey)
	resp, err := rsc.ContextPost(ctx, models.ContextPostRequest{
		Text: c.Text,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
