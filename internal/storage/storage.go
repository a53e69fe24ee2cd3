// Package storage persists parsed pages to a configured backend.
package storage

import (
	"fmt"
	"log/slog"

	"github.com/caentzminger/grokipedia-go/internal/config"
	"github.com/caentzminger/grokipedia-go/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a batch of parsed pages.
	Store(pages []*types.Page) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the configured storage backend.
func New(cfg *config.StorageConfig, logger *slog.Logger) (Storage, error) {
	switch cfg.Type {
	case "json":
		return NewJSONStorage(cfg.OutputPath, logger)
	case "jsonl":
		return NewJSONLStorage(cfg.OutputPath, logger)
	case "mongodb":
		return NewMongoStorage(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Type)
	}
}
