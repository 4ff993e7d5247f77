package main

import (
	"log/slog"
	"os"

	"github.com/jkfest/jkfest-api/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	if err := godotenv.Load(".env"); err != nil {
		slog.Warn("no .env file found, relying on process environment")
	}

	if err := server.Start(); err != nil {
		slog.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
