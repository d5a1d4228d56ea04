package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lamim/cardforge/internal/api"
	"github.com/lamim/cardforge/internal/config"
	"github.com/lamim/cardforge/internal/langcheck"
	"github.com/lamim/cardforge/internal/metrics"
	"github.com/lamim/cardforge/internal/orchestrator"
	"github.com/lamim/cardforge/internal/prompt"
	"github.com/lamim/cardforge/internal/writer"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath  string
	envFile     string
	inputPath   string
	language    string
	contentType string
	verbose     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cardforge",
		Short: "CardForge - LLM Flashcard Generator",
		Long: `CardForge turns source documents into spaced-repetition flashcards
using an OpenAI-compatible LLM endpoint, with multi-language output and
robust recovery from malformed model responses.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate flashcards from a source document",
		Long: `Run the full flashcard pipeline:
1. Split the source document into bounded chunks
2. Generate cards per chunk via the configured model
3. Validate output language, retrying and falling back to English if needed
4. Write cards.jsonl and stats.json into a new session directory`,
		RunE: runGenerate,
	}

	generateCmd.Flags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	generateCmd.Flags().StringVar(&envFile, "env-file", ".env", "Path to environment file")
	generateCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Path to the source text file (required)")
	generateCmd.Flags().StringVar(&language, "language", "", "Override target language from config")
	generateCmd.Flags().StringVar(&contentType, "content-type", "", "Override content type from config")
	generateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	_ = generateCmd.MarkFlagRequired("input")

	languagesCmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported output languages",
		Long:  "List the output languages cards can be generated in, marking which have language-validation support",
		RunE:  listLanguages,
	}

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(languagesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if err := loadEnvFile(envFile); err != nil {
			if !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Warning: failed to load env file: %v\n", err)
			}
		} else if verbose {
			fmt.Fprintf(os.Stderr, "Loaded env file: %s\n", envFile)
		}
	}

	cfg, secrets, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flag overrides beat the config file.
	if language != "" {
		cfg.Pipeline.Language = language
	}
	if contentType != "" {
		cfg.Pipeline.ContentType = contentType
	}

	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	sessionMgr, err := writer.NewSessionManager(cfg.Output.Dir, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	logger, logFile, err := writer.SetupLogger(sessionMgr, logLevel)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer func() {
		if logFile != nil {
			_ = logFile.Sync()
			_ = logFile.Close()
		}
	}()

	logger.Info("CardForge starting",
		"version", Version,
		"config", configPath,
		"input", inputPath,
		"session_dir", sessionMgr.GetSessionDir())

	if err := sessionMgr.BackupConfig(configPath); err != nil {
		return fmt.Errorf("failed to backup config: %w", err)
	}

	collector := metrics.NewCollector(logger)
	apiClient := api.NewClient(cfg.Model, secrets.GetAPIKey(cfg.Model.BaseURL), collector, logger)
	orch := orchestrator.New(cfg, apiClient, collector, logger)

	cardWriter, err := writer.NewCardWriter(sessionMgr, logger)
	if err != nil {
		return fmt.Errorf("failed to create card writer: %w", err)
	}
	defer func() {
		if err := cardWriter.Close(); err != nil {
			logger.Error("failed to close card writer", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cards, stats, runErr := orch.GenerateCards(ctx, string(source))

	// Whatever was produced gets persisted, even after cancellation.
	if len(cards) > 0 {
		if err := cardWriter.WriteCards(cards); err != nil {
			return fmt.Errorf("failed to write cards: %w", err)
		}
	}
	if stats != nil {
		if err := writer.WriteStats(sessionMgr, stats); err != nil {
			logger.Error("failed to write statistics", "error", err)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logger.Warn("Generation interrupted, partial results saved",
				"cards", len(cards),
				"session_dir", sessionMgr.GetSessionDir())
			return fmt.Errorf("generation interrupted")
		}
		return fmt.Errorf("generation failed: %w", runErr)
	}

	logger.Info("All done",
		"cards", len(cards),
		"cards_file", sessionMgr.GetCardsPath(),
		"session_dir", sessionMgr.GetSessionDir())
	return nil
}

// listLanguages prints the supported language tags.
func listLanguages(cmd *cobra.Command, args []string) error {
	composer := prompt.NewComposer()

	fmt.Println("Supported output languages:")
	fmt.Println()
	fmt.Printf("%-15s %s\n", "LANGUAGE", "VALIDATION")
	fmt.Println(strings.Repeat("-", 30))

	for _, lang := range composer.SupportedLanguages() {
		validation := "none (always passes)"
		if langcheck.HasPatterns(lang) {
			validation = "pattern-based"
		}
		fmt.Printf("%-15s %s\n", lang, validation)
	}

	return nil
}

// loadEnvFile loads KEY=VALUE pairs from a file into the environment.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = trimQuotes(strings.TrimSpace(value))
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}

	return nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
