package main

import (
	"context"
	"os"

	"newsrag/client"
	"newsrag/models"
)

type QueryCommand struct {
	ServerURL    string `help:"The URL of the news Q&A server." env:"NEWSRAG_SERVER_URL" default:"http://localhost:9020"`
	ServerAPIKey string `help:"The API key for the news Q&A server." env:"NEWSRAG_SERVER_API_KEY" default:""`
	Text         string `help:"The question to ask." short:"q"`
	NoContext    bool   `help:"Do not use retrieved context." default:"false"`
	LogLevel     string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c QueryCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)
	if c.NoContext {
		log.Info("Querying without context")
	}

	rsc := client.New(c.ServerURL, c.ServerAPIKey)
	f := func(ctx context.Context, chunk []byte) error {
		_, err := os.Stdout.Write(chunk)
		return err
	}
	return rsc.QueryPost(ctx, models.QueryPostRequest{
		Text:      c.Text,
		NoContext: c.NoContext,
	}, f)
}
