package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type CLI struct {
	Serve   ServeCommand   `cmd:"serve" help:"Start the news Q&A server."`
	Chat    ChatCommand    `cmd:"chat" help:"Chat with the news Q&A server."`
	Query   QueryCommand   `cmd:"query" help:"Ask the server a single question."`
	Context ContextCommand `cmd:"context" help:"Get the nearest corpus documents for a piece of text."`
	Agent   AgentCommand   `cmd:"agent" help:"Run the tool-using agent against a question."`
	Version VersionCommand `cmd:"version" help:"Print the version."`
}

func main() {
	_ = godotenv.Load()
	var cli CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli, kong.UsageOnError(), kong.BindTo(ctx, (*context.Context)(nil)))
	if err := kctx.Run(); err != nil {
		log := getLogger("error")
		log.Error("error", slog.Any("error", err))
		os.Exit(1)
	}
}

func getLogger(level string) *slog.Logger {
	ll := slog.LevelInfo
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "info":
		ll = slog.LevelInfo
	case "warn":
		ll = slog.LevelWarn
	case "error":
		ll = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ll,
	}))
}
