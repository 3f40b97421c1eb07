package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scene-studio/tools/logger"
)

func main() {
	// CLI flags
	addr := flag.String("addr", "", "Listen address (default :8080)")
	configPath := flag.String("config", "scene-studio.toml", "Path to TOML config file")
	apiKey := flag.String("key", "", "Anthropic API key (or set ANTHROPIC_API_KEY env)")
	model := flag.String("model", "", "Model to use")
	localURL := flag.String("local", "", "OpenAI-compatible endpoint instead of Anthropic")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Scene Studio - chat-driven 3D scene building

Usage:
  scene-studio [options]

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  scene-studio -key sk-ant-...
  scene-studio -local http://localhost:11434 -model llama3 -v

Environment:
  ANTHROPIC_API_KEY - API key for Claude (alternative to -key flag)

Endpoints:
  ws://host/ws                       chat + live scene channel
  http://host/snapshot?session=ID    rendered WebP preview
  http://host/healthz                liveness
`)
	}

	flag.Parse()

	// Load config file, then layer flags and env on top
	config, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		config.Addr = *addr
	}
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if *apiKey != "" {
		config.AnthropicKey = *apiKey
	}
	if config.AnthropicKey == "" {
		config.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if *model != "" {
		config.Model = *model
	}
	if *localURL != "" {
		config.LocalURL = *localURL
	}
	if *verbose {
		config.VerboseLogging = true
	}

	if config.AnthropicKey == "" && config.LocalURL == "" {
		fmt.Fprintln(os.Stderr, "Error: Anthropic API key required (-key or ANTHROPIC_API_KEY env), or a local endpoint (-local)")
		os.Exit(1)
	}

	// Create studio
	studio, err := NewStudio(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating studio: %v\n", err)
		os.Exit(1)
	}

	logLevel := logger.LevelInfo
	if config.VerboseLogging {
		logLevel = logger.LevelDebug
	}
	log := logger.New(os.Stdout, logLevel, "server")

	srv := &http.Server{
		Addr:    config.Addr,
		Handler: NewServer(studio, log),
	}

	// Handle interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("interrupted, shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
		cancel()
	}()

	log.Info("listening on %s (model %s)", config.Addr, config.Model)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	<-ctx.Done()
}
