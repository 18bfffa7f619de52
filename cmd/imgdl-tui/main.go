package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/handiism/image-downloader/internal/config"
	"github.com/handiism/image-downloader/internal/tui"
)

func main() {
	_ = godotenv.Load()

	settings, err := config.Load(os.Getenv("IMGDL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}

	// The screen belongs to the TUI; logs go to a file only when asked for.
	var out io.Writer = io.Discard
	if path := os.Getenv("IMGDL_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	logger := config.NewLogger(settings.LogLevel, "json", out)

	if err := tui.Run(settings, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
