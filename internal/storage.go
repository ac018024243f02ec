package internal

import (
	"chat-session/contract"
	"chat-session/repositories"
	"chat-session/runtime/workers"
	"chat-session/transport"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
)

// OpenStorage falls back to an in-memory database when the file one cannot be
// opened. Nothing is persisted then, but the session keeps working.
func OpenStorage(log *slog.Logger, path string) (*badger.DB, contract.Cache, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err == nil {
		return db, repositories.NewBadgerCache(db), nil
	}
	log.Warn("Local storage unavailable, session kept in memory", "path", path, "error", err)

	db, err = badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, nil, fmt.Errorf("database opening failed: %w", err)
	}
	return db, repositories.NewMemoryCache(), nil
}

// OpenHub builds the in-process hub on top of db, with its keyword index.
// The returned func closes the hub and the index.
func OpenHub(log *slog.Logger, db *badger.DB, config Config) (*transport.Hub, func(), error) {
	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		log.Warn("Search index kept in memory", "path", config.BlugeFilepath, "error", err)
		if blugeWriter, err = bluge.OpenWriter(bluge.InMemoryOnlyConfig()); err != nil {
			return nil, nil, fmt.Errorf("failed to open bluge writer: %w", err)
		}
	}

	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	messageRepository := repositories.NewMessageRepository(db, blugeWriter, log, config.LimitMessages)
	hub := transport.NewHub(log, messageRepository, supervisor)

	return hub, func() {
		hub.Close()
		supervisor.Wait()
		log.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}, nil
}
