package writer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/lamim/cardforge/pkg/models"
)

// CardWriter handles thread-safe writing of card records to the session's
// JSONL file, one record per line.
type CardWriter struct {
	file   *os.File
	mu     sync.Mutex
	logger *slog.Logger
}

// NewCardWriter creates the cards file inside the session directory.
func NewCardWriter(sessionMgr *SessionManager, logger *slog.Logger) (*CardWriter, error) {
	cardsPath := sessionMgr.GetCardsPath()

	file, err := os.Create(cardsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create cards file: %w", err)
	}

	logger.Info("Created cards file", "path", cardsPath)

	return &CardWriter{
		file:   file,
		logger: logger,
	}, nil
}

// WriteCards appends card records as JSONL lines.
func (cw *CardWriter) WriteCards(records []models.CardRecord) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal card record: %w", err)
		}
		if _, err := cw.file.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write card record: %w", err)
		}
	}
	return nil
}

// Close syncs and closes the cards file.
func (cw *CardWriter) Close() error {
	if err := cw.file.Sync(); err != nil {
		cw.logger.Warn("Failed to sync cards file", "error", err)
	}

	if err := cw.file.Close(); err != nil {
		return fmt.Errorf("failed to close cards file: %w", err)
	}

	cw.logger.Info("Closed cards file")
	return nil
}

// WriteStats writes the run statistics snapshot as indented JSON.
func WriteStats(sessionMgr *SessionManager, stats *models.GenerationStatistics) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal statistics: %w", err)
	}

	statsPath := sessionMgr.GetStatsPath()
	if err := os.WriteFile(statsPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write statistics file: %w", err)
	}
	return nil
}
